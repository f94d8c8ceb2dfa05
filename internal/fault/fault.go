// Package fault provides a single instance of errors for the runtime
// core, allowing callers to branch on error class instead of matching
// strings.
package fault

// error base
type GenericError string

// to allow for different classes of errors
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised = ProcessError("already initialised")
	ErrNotInitialised     = ProcessError("not initialised")

	ErrBindFailed             = ProcessError("bind failed")
	ErrConfigurationRejected  = InvalidError("configuration rejected")
	ErrDuplicateDataBlock     = InvalidError("duplicate data block number")
	ErrEntryPointMissing      = NotFoundError("required entry point missing")
	ErrInvalidAreaCode        = InvalidError("invalid area code")
	ErrInvalidBitIndex        = InvalidError("bit index out of range")
	ErrInvalidBufferType      = InvalidError("buffer type invalid for operation")
	ErrInvalidMappingType     = InvalidError("unknown mapping type")
	ErrInvalidOffset          = InvalidError("offset out of range")
	ErrInvalidPDUSize         = InvalidError("pdu size out of protocol range")
	ErrInvalidPort            = InvalidError("invalid port")
	ErrJournalNotInitialised  = ProcessError("journal not initialised")
	ErrModuleLoadFailed       = ProcessError("module load failed")
	ErrNegativeStartBuffer    = InvalidError("start_buffer cannot be negative")
	ErrPeerProtocolError      = ProcessError("peer protocol error")
	ErrPluginPanic            = ProcessError("plugin entry point panicked")
	ErrTooManyClients         = ProcessError("maximum client connections exceeded")
	ErrUnexpectedState        = ProcessError("operation invalid in current state")
	ErrWriteToInputSuppressed = ProcessError("write to input family suppressed")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
