// Package imagetable holds the fourteen typed image-table families: the
// optional pointers into the control program's variable storage that
// the scan-cycle engine, the journal and every plugin read and write
// through a single image lock.
package imagetable

// BufferType names one (family x element-width) pair. The numeric
// encoding is the sole cross-boundary identifier shared with the
// journal and with plugins.
type BufferType uint8

const (
	BoolInput BufferType = iota
	BoolOutput
	BoolMemory
	ByteInput
	ByteOutput
	IntInput
	IntOutput
	IntMemory
	DIntInput
	DIntOutput
	DIntMemory
	LIntInput
	LIntOutput
	LIntMemory

	typeCount
)

// TypeCount is the number of defined buffer-type codes (14).
const TypeCount = int(typeCount)

func (t BufferType) String() string {
	switch t {
	case BoolInput:
		return "bool_input"
	case BoolOutput:
		return "bool_output"
	case BoolMemory:
		return "bool_memory"
	case ByteInput:
		return "byte_input"
	case ByteOutput:
		return "byte_output"
	case IntInput:
		return "int_input"
	case IntOutput:
		return "int_output"
	case IntMemory:
		return "int_memory"
	case DIntInput:
		return "dint_input"
	case DIntOutput:
		return "dint_output"
	case DIntMemory:
		return "dint_memory"
	case LIntInput:
		return "lint_input"
	case LIntOutput:
		return "lint_output"
	case LIntMemory:
		return "lint_memory"
	default:
		return "*unknown*"
	}
}

// IsBool reports whether t addresses one of the three bool families.
func IsBool(t BufferType) bool {
	return t == BoolInput || t == BoolOutput || t == BoolMemory
}

// IsByte reports whether t addresses one of the two byte families.
func IsByte(t BufferType) bool {
	return t == ByteInput || t == ByteOutput
}

// IsInt reports whether t addresses one of the three 16-bit families.
func IsInt(t BufferType) bool {
	return t == IntInput || t == IntOutput || t == IntMemory
}

// IsDInt reports whether t addresses one of the three 32-bit families.
func IsDInt(t BufferType) bool {
	return t == DIntInput || t == DIntOutput || t == DIntMemory
}

// IsLInt reports whether t addresses one of the three 64-bit families.
func IsLInt(t BufferType) bool {
	return t == LIntInput || t == LIntOutput || t == LIntMemory
}

// Width returns the element width in bits for a valid buffer type, or 0
// if t is not one of the fourteen defined codes.
func Width(t BufferType) int {
	switch {
	case IsBool(t):
		return 1
	case IsByte(t):
		return 8
	case IsInt(t):
		return 16
	case IsDInt(t):
		return 32
	case IsLInt(t):
		return 64
	default:
		return 0
	}
}

// Valid reports whether t is one of the fourteen defined buffer types.
func Valid(t BufferType) bool {
	return t < typeCount
}

// IsInputFamily reports whether t addresses one of the five *_input
// families (bool/byte/int/dint/lint). Remote writes to any of these
// must be silently dropped: the control program owns input storage
// and a plugin overwriting it would race the next scan's refresh.
func IsInputFamily(t BufferType) bool {
	switch t {
	case BoolInput, ByteInput, IntInput, DIntInput, LIntInput:
		return true
	default:
		return false
	}
}
