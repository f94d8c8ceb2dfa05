package imagetable

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/fault"
)

// BoolCell groups the 8 bit-addressable pointers that share one byte's
// worth of a bool family slot ([index][bit]).
type BoolCell [8]*bool

// globalData's mutex only guards the structural lifecycle of the table
// slices themselves (allocation at Initialise, binding during
// glue_vars, release at Finalise) — all of which happen single
// threaded before the engine reaches RUNNING. Cell-level Read*/Write*
// below take no lock of their own: every caller is required to hold
// the separate image lock (see lock.go) for the duration of
// the access.
var globalData struct {
	sync.Mutex
	log *logger.L

	size int

	boolInput  []BoolCell
	boolOutput []BoolCell
	boolMemory []BoolCell

	byteInput  []*uint8
	byteOutput []*uint8

	intInput  []*uint16
	intOutput []*uint16
	intMemory []*uint16

	dintInput  []*uint32
	dintOutput []*uint32
	dintMemory []*uint32

	lintInput  []*uint64
	lintOutput []*uint64
	lintMemory []*uint64

	initialised bool
}

// Initialise allocates the fourteen image-table families with length n
// (a build-time constant), all slots unbound. Must be called once,
// before the control program's glue_vars entry point runs.
func Initialise(n int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("imagetable")
	globalData.log.Infof("initialising %d-slot image tables", n)

	globalData.size = n
	globalData.boolInput = make([]BoolCell, n)
	globalData.boolOutput = make([]BoolCell, n)
	globalData.boolMemory = make([]BoolCell, n)
	globalData.byteInput = make([]*uint8, n)
	globalData.byteOutput = make([]*uint8, n)
	globalData.intInput = make([]*uint16, n)
	globalData.intOutput = make([]*uint16, n)
	globalData.intMemory = make([]*uint16, n)
	globalData.dintInput = make([]*uint32, n)
	globalData.dintOutput = make([]*uint32, n)
	globalData.dintMemory = make([]*uint32, n)
	globalData.lintInput = make([]*uint64, n)
	globalData.lintOutput = make([]*uint64, n)
	globalData.lintMemory = make([]*uint64, n)

	globalData.initialised = true
	return nil
}

// Finalise releases the table slices. The control program retains
// ownership of the backing cell storage; this never frees it, only
// drops the core's references.
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("finalising")
	globalData.boolInput = nil
	globalData.boolOutput = nil
	globalData.boolMemory = nil
	globalData.byteInput = nil
	globalData.byteOutput = nil
	globalData.intInput = nil
	globalData.intOutput = nil
	globalData.intMemory = nil
	globalData.dintInput = nil
	globalData.dintOutput = nil
	globalData.dintMemory = nil
	globalData.lintInput = nil
	globalData.lintOutput = nil
	globalData.lintMemory = nil
	globalData.initialised = false
	return nil
}

// Size returns N, the fixed slot count every family shares.
func Size() int {
	globalData.Lock()
	defer globalData.Unlock()
	return globalData.size
}

// IsInitialised reports whether Initialise has completed.
func IsInitialised() bool {
	globalData.Lock()
	defer globalData.Unlock()
	return globalData.initialised
}

// The Table accessors below hand out the fourteen table bases
// themselves (not copies) so scancycle.Initialise can pass them to the
// module's SetBufferPointers entry point. They are only called once,
// during scancycle.Initialise, before any concurrent access begins.

func BoolInputTable() []BoolCell  { return globalData.boolInput }
func BoolOutputTable() []BoolCell { return globalData.boolOutput }
func BoolMemoryTable() []BoolCell { return globalData.boolMemory }

func ByteInputTable() []*uint8  { return globalData.byteInput }
func ByteOutputTable() []*uint8 { return globalData.byteOutput }

func IntInputTable() []*uint16  { return globalData.intInput }
func IntOutputTable() []*uint16 { return globalData.intOutput }
func IntMemoryTable() []*uint16 { return globalData.intMemory }

func DIntInputTable() []*uint32  { return globalData.dintInput }
func DIntOutputTable() []*uint32 { return globalData.dintOutput }
func DIntMemoryTable() []*uint32 { return globalData.dintMemory }

func LIntInputTable() []*uint64  { return globalData.lintInput }
func LIntOutputTable() []*uint64 { return globalData.lintOutput }
func LIntMemoryTable() []*uint64 { return globalData.lintMemory }

// BindBool publishes the cell pointer for bool family t at [index][bit].
// Called only by the control program's glue_vars hook, before the
// engine reaches RUNNING.
func BindBool(t BufferType, index int, bit int, cell *bool) {
	globalData.Lock()
	defer globalData.Unlock()
	table := boolTable(t)
	if nil == table || index < 0 || index >= len(table) || bit < 0 || bit > 7 {
		return
	}
	table[index][bit] = cell
}

// BindByte publishes the cell pointer for byte family t at [index].
func BindByte(t BufferType, index int, cell *uint8) {
	globalData.Lock()
	defer globalData.Unlock()
	table := byteTable(t)
	if nil == table || index < 0 || index >= len(table) {
		return
	}
	table[index] = cell
}

// BindInt publishes the cell pointer for int family t at [index].
func BindInt(t BufferType, index int, cell *uint16) {
	globalData.Lock()
	defer globalData.Unlock()
	table := intTable(t)
	if nil == table || index < 0 || index >= len(table) {
		return
	}
	table[index] = cell
}

// BindDInt publishes the cell pointer for dint family t at [index].
func BindDInt(t BufferType, index int, cell *uint32) {
	globalData.Lock()
	defer globalData.Unlock()
	table := dintTable(t)
	if nil == table || index < 0 || index >= len(table) {
		return
	}
	table[index] = cell
}

// BindLInt publishes the cell pointer for lint family t at [index].
func BindLInt(t BufferType, index int, cell *uint64) {
	globalData.Lock()
	defer globalData.Unlock()
	table := lintTable(t)
	if nil == table || index < 0 || index >= len(table) {
		return
	}
	table[index] = cell
}

func boolTable(t BufferType) []BoolCell {
	switch t {
	case BoolInput:
		return globalData.boolInput
	case BoolOutput:
		return globalData.boolOutput
	case BoolMemory:
		return globalData.boolMemory
	default:
		return nil
	}
}

func byteTable(t BufferType) []*uint8 {
	switch t {
	case ByteInput:
		return globalData.byteInput
	case ByteOutput:
		return globalData.byteOutput
	default:
		return nil
	}
}

func intTable(t BufferType) []*uint16 {
	switch t {
	case IntInput:
		return globalData.intInput
	case IntOutput:
		return globalData.intOutput
	case IntMemory:
		return globalData.intMemory
	default:
		return nil
	}
}

func dintTable(t BufferType) []*uint32 {
	switch t {
	case DIntInput:
		return globalData.dintInput
	case DIntOutput:
		return globalData.dintOutput
	case DIntMemory:
		return globalData.dintMemory
	default:
		return nil
	}
}

func lintTable(t BufferType) []*uint64 {
	switch t {
	case LIntInput:
		return globalData.lintInput
	case LIntOutput:
		return globalData.lintOutput
	case LIntMemory:
		return globalData.lintMemory
	default:
		return nil
	}
}

// ReadBool reads the bit at [index][bit] of bool family t. The caller
// must hold the image lock. Returns ok=false if the slot is unbound or
// out of range.
func ReadBool(t BufferType, index, bit int) (value bool, ok bool) {
	table := boolTable(t)
	if nil == table || index < 0 || index >= len(table) || bit < 0 || bit > 7 {
		return false, false
	}
	cell := table[index][bit]
	if nil == cell {
		return false, false
	}
	return *cell, true
}

// WriteBool overwrites the bit at [index][bit] of bool family t. The
// caller must hold the image lock; this is the primitive the journal's
// apply_and_clear uses, which runs with the lock already taken.
func WriteBool(t BufferType, index, bit int, value bool) (ok bool) {
	table := boolTable(t)
	if nil == table || index < 0 || index >= len(table) || bit < 0 || bit > 7 {
		return false
	}
	cell := table[index][bit]
	if nil == cell {
		return false
	}
	*cell = value
	return true
}

// ReadByte reads the byte at [index] of byte family t. The caller must
// hold the image lock.
func ReadByte(t BufferType, index int) (value uint8, ok bool) {
	table := byteTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return 0, false
	}
	return *table[index], true
}

// WriteByte overwrites the byte at [index] of byte family t. The
// caller must hold the image lock.
func WriteByte(t BufferType, index int, value uint8) (ok bool) {
	table := byteTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return false
	}
	*table[index] = value
	return true
}

// ReadInt reads the 16-bit cell at [index] of int family t. The caller
// must hold the image lock.
func ReadInt(t BufferType, index int) (value uint16, ok bool) {
	table := intTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return 0, false
	}
	return *table[index], true
}

// WriteInt overwrites the 16-bit cell at [index] of int family t. The
// caller must hold the image lock.
func WriteInt(t BufferType, index int, value uint16) (ok bool) {
	table := intTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return false
	}
	*table[index] = value
	return true
}

// ReadDInt reads the 32-bit cell at [index] of dint family t. The
// caller must hold the image lock.
func ReadDInt(t BufferType, index int) (value uint32, ok bool) {
	table := dintTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return 0, false
	}
	return *table[index], true
}

// WriteDInt overwrites the 32-bit cell at [index] of dint family t.
// The caller must hold the image lock.
func WriteDInt(t BufferType, index int, value uint32) (ok bool) {
	table := dintTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return false
	}
	*table[index] = value
	return true
}

// ReadLInt reads the 64-bit cell at [index] of lint family t. The
// caller must hold the image lock.
func ReadLInt(t BufferType, index int) (value uint64, ok bool) {
	table := lintTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return 0, false
	}
	return *table[index], true
}

// WriteLInt overwrites the 64-bit cell at [index] of lint family t.
// The caller must hold the image lock.
func WriteLInt(t BufferType, index int, value uint64) (ok bool) {
	table := lintTable(t)
	if nil == table || index < 0 || index >= len(table) || nil == table[index] {
		return false
	}
	*table[index] = value
	return true
}
