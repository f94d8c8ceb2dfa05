package protocolserver

import (
	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
)

// AreaCode names one of the protocol's four addressable area kinds.
type AreaCode uint8

const (
	AreaPE AreaCode = iota // process inputs
	AreaPA                 // process outputs
	AreaMK                 // markers
	AreaDB                 // numbered data block
)

// area is one staging buffer: a contiguous byte range backed by an
// image-table family starting at StartBuffer, plus the raw bytes the
// protocol library reads and writes directly.
type area struct {
	code          AreaCode
	number        int // db_number for AreaDB, 0 otherwise
	bufferType    imagetable.BufferType
	startBuffer   int
	bitAddressing bool
	staging       []byte
}

// areaTable indexes every configured area by (code, number) so a
// frame's (area code, area number) pair resolves in O(1).
type areaTable struct {
	byKey map[areaKey]*area
}

type areaKey struct {
	code   AreaCode
	number int
}

func newAreaTable() *areaTable {
	return &areaTable{byKey: make(map[areaKey]*area)}
}

func (t *areaTable) add(a *area) {
	t.byKey[areaKey{a.code, a.number}] = a
}

func (t *areaTable) lookup(code AreaCode, number int) (*area, error) {
	a, ok := t.byKey[areaKey{code, number}]
	if !ok {
		return nil, fault.ErrInvalidAreaCode
	}
	return a, nil
}

// buildAreaTable allocates one staging buffer per configured,
// enabled area, sized to its declared byte length.
func buildAreaTable(cfg Config) (*areaTable, error) {
	t := newAreaTable()

	add := func(code AreaCode, number int, enabled bool, sizeBytes int, m BufferMapping) error {
		if !enabled {
			return nil
		}
		bt, err := bufferTypeFromMapping(m)
		if nil != err {
			return err
		}
		t.add(&area{
			code:          code,
			number:        number,
			bufferType:    bt,
			startBuffer:   m.StartBuffer,
			bitAddressing: m.BitAddressing,
			staging:       make([]byte, sizeBytes),
		})
		return nil
	}

	if err := add(AreaPE, 0, cfg.SystemAreas.PE.Enabled, cfg.SystemAreas.PE.SizeBytes, cfg.SystemAreas.PE.Mapping); nil != err {
		return nil, err
	}
	if err := add(AreaPA, 0, cfg.SystemAreas.PA.Enabled, cfg.SystemAreas.PA.SizeBytes, cfg.SystemAreas.PA.Mapping); nil != err {
		return nil, err
	}
	if err := add(AreaMK, 0, cfg.SystemAreas.MK.Enabled, cfg.SystemAreas.MK.SizeBytes, cfg.SystemAreas.MK.Mapping); nil != err {
		return nil, err
	}
	for _, db := range cfg.DataBlocks {
		if err := add(AreaDB, db.DBNumber, true, db.SizeBytes, db.Mapping); nil != err {
			return nil, err
		}
	}
	return t, nil
}
