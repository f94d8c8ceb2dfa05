// Package journal absorbs plugin writes between scan-cycle ticks and
// applies them, in sequence order, to the image tables atomically at
// the start of the next tick.
package journal

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
)

var globalData struct {
	mu sync.Mutex

	log *logger.L

	entries      [MaxEntries]Entry
	count        int
	nextSequence uint32

	initialised bool
}

// Init marks the journal ready for writes. Must be called once, after
// the image tables are initialised.
func Init() error {
	globalData.mu.Lock()
	defer globalData.mu.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("journal")
	globalData.log.Info("initialising")

	globalData.count = 0
	globalData.nextSequence = 0
	globalData.initialised = true
	return nil
}

// Cleanup marks the journal uninitialised and zeroes its state. Safe
// to call even if Init was never called.
func Cleanup() {
	globalData.mu.Lock()
	defer globalData.mu.Unlock()

	globalData.count = 0
	globalData.nextSequence = 0
	globalData.initialised = false
}

// IsInitialised reports whether Init has completed.
func IsInitialised() bool {
	globalData.mu.Lock()
	defer globalData.mu.Unlock()
	return globalData.initialised
}

// Pending returns the current entry count.
func Pending() int {
	globalData.mu.Lock()
	defer globalData.mu.Unlock()
	return globalData.count
}

// WriteBool appends a bool-family write. type must be one of
// {BoolInput, BoolOutput, BoolMemory} and bit must be 0..7.
func WriteBool(t imagetable.BufferType, index uint16, bit uint8, value bool) error {
	if !imagetable.IsBool(t) {
		return fault.ErrInvalidBufferType
	}
	if bit > 7 {
		return fault.ErrInvalidBitIndex
	}
	var v uint64
	if value {
		v = 1
	}
	return appendEntry(t, bit, index, v)
}

// WriteByte appends a byte-family write. type must be ByteInput or
// ByteOutput.
func WriteByte(t imagetable.BufferType, index uint16, value uint8) error {
	if !imagetable.IsByte(t) {
		return fault.ErrInvalidBufferType
	}
	return appendEntry(t, NoBit, index, uint64(value))
}

// WriteInt appends a 16-bit int-family write.
func WriteInt(t imagetable.BufferType, index uint16, value uint16) error {
	if !imagetable.IsInt(t) {
		return fault.ErrInvalidBufferType
	}
	return appendEntry(t, NoBit, index, uint64(value))
}

// WriteDInt appends a 32-bit dint-family write.
func WriteDInt(t imagetable.BufferType, index uint16, value uint32) error {
	if !imagetable.IsDInt(t) {
		return fault.ErrInvalidBufferType
	}
	return appendEntry(t, NoBit, index, uint64(value))
}

// WriteLInt appends a 64-bit lint-family write.
func WriteLInt(t imagetable.BufferType, index uint16, value uint64) error {
	if !imagetable.IsLInt(t) {
		return fault.ErrInvalidBufferType
	}
	return appendEntry(t, NoBit, index, value)
}

// appendEntry assigns the next sequence number and appends the entry
// under the journal lock, triggering an emergency flush if the
// journal is already full.
func appendEntry(t imagetable.BufferType, bit uint8, index uint16, value uint64) error {
	globalData.mu.Lock()

	if !globalData.initialised {
		globalData.mu.Unlock()
		return fault.ErrJournalNotInitialised
	}

	if globalData.count == MaxEntries {
		// Emergency flush: image-then-journal lock ordering, always.
		globalData.mu.Unlock()
		imagetable.Lock()
		applyAndClearLocking()
		imagetable.Unlock()
		globalData.mu.Lock()
	}

	globalData.entries[globalData.count] = Entry{
		Sequence:   globalData.nextSequence,
		BufferType: t,
		BitIndex:   bit,
		Index:      index,
		Value:      value,
	}
	globalData.count++
	globalData.nextSequence++

	globalData.mu.Unlock()
	return nil
}

// ApplyAndClear applies every pending entry, in sequence order, to the
// image tables and resets the journal to empty. The caller must
// already hold the image lock; this acquires the journal lock
// internally.
func ApplyAndClear() {
	applyAndClearLocking()
}

// applyAndClearLocking takes the journal lock itself, applies pending
// entries and resets the journal. The image lock must already be held
// by the caller (either the normal tick path, or the emergency-flush
// path above, which acquires it just before calling this).
func applyAndClearLocking() {
	globalData.mu.Lock()
	defer globalData.mu.Unlock()

	n := imagetable.Size()
	for i := 0; i < globalData.count; i++ {
		e := globalData.entries[i]
		if int(e.Index) >= n {
			continue // dropped silently: bounds checked at apply-time
		}
		applyOne(e)
	}
	globalData.count = 0
	globalData.nextSequence = 0
}

// applyOne writes a single entry's value to the image tables, masked
// to the destination's element width. Unbound slots are dropped
// silently by the underlying Write* calls.
func applyOne(e Entry) {
	switch {
	case imagetable.IsBool(e.BufferType):
		imagetable.WriteBool(e.BufferType, int(e.Index), int(e.BitIndex), e.Value != 0)
	case imagetable.IsByte(e.BufferType):
		imagetable.WriteByte(e.BufferType, int(e.Index), uint8(e.Value))
	case imagetable.IsInt(e.BufferType):
		imagetable.WriteInt(e.BufferType, int(e.Index), uint16(e.Value))
	case imagetable.IsDInt(e.BufferType):
		imagetable.WriteDInt(e.BufferType, int(e.Index), uint32(e.Value))
	case imagetable.IsLInt(e.BufferType):
		imagetable.WriteLInt(e.BufferType, int(e.Index), e.Value)
	}
}
