package journal

import "github.com/scanworks/plcruntime/internal/imagetable"

// MaxEntries is J, the journal's fixed capacity. Reaching it triggers
// an emergency flush rather than growing the backing store.
const MaxEntries = 1024

// NoBit marks a journal entry that does not address an individual bit
// (byte/int/dint/lint writes).
const NoBit uint8 = 0xFF

// Entry is one pending write, value-typed so the journal can hold a
// fixed slice of them without per-entry allocation.
type Entry struct {
	Sequence   uint32
	BufferType imagetable.BufferType
	BitIndex   uint8
	Index      uint16
	Value      uint64
}
