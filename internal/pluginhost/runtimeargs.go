package pluginhost

import (
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/journal"
)

// LogFunc is the shape every logging callback in RuntimeArgs shares.
type LogFunc func(format string, args ...interface{})

// RuntimeArgs is the bundle handed to every plugin instance's init
// entry point. The host retains it for the instance's whole lifetime
// so the pointers and closures inside stay valid; a plugin must not
// keep its own copy past cleanup.
type RuntimeArgs struct {
	// ConfigPath is the descriptor's config_path field, opaque to the
	// host.
	ConfigPath string

	// Size is N, the fixed slot count shared by every image-table
	// family.
	Size int

	// AcquireImageLock and ReleaseImageLock bracket a run of reads
	// through ReadBool/ReadByte/ReadInt/ReadDInt/ReadLInt. A plugin
	// must release before returning control to the host and must never
	// call either from inside a cycle hook, which already runs with
	// the lock held.
	AcquireImageLock imagetable.AcquireFunc
	ReleaseImageLock imagetable.ReleaseFunc

	// ReadBool etc. are only safe to call while the image lock is
	// held, either by the caller (via AcquireImageLock) or by the
	// scan-cycle engine (inside a cycle hook).
	ReadBool func(t imagetable.BufferType, index, bit int) (value, ok bool)
	ReadByte func(t imagetable.BufferType, index int) (value uint8, ok bool)
	ReadInt  func(t imagetable.BufferType, index int) (value uint16, ok bool)
	ReadDInt func(t imagetable.BufferType, index int) (value uint32, ok bool)
	ReadLInt func(t imagetable.BufferType, index int) (value uint64, ok bool)

	// WriteBool etc. are the five journal write callbacks. Each handles
	// its own locking; a plugin may call these from any thread, at any
	// time, without holding the image lock.
	WriteBool func(t imagetable.BufferType, index uint16, bit uint8, value bool) error
	WriteByte func(t imagetable.BufferType, index uint16, value uint8) error
	WriteInt  func(t imagetable.BufferType, index uint16, value uint16) error
	WriteDInt func(t imagetable.BufferType, index uint16, value uint32) error
	WriteLInt func(t imagetable.BufferType, index uint16, value uint64) error

	// LogInfo, LogDebug, LogWarn and LogError route through the host's
	// own logger, tagged with the plugin's descriptor name.
	LogInfo  LogFunc
	LogDebug LogFunc
	LogWarn  LogFunc
	LogError LogFunc
}

// newRuntimeArgs builds a RuntimeArgs for the named instance, wiring
// every callback to the shared imagetable/journal singletons.
func newRuntimeArgs(name string, configPath string, log LogFunc, debug LogFunc, warn LogFunc, errf LogFunc) RuntimeArgs {
	acquire, release := imagetable.LockFuncs()
	return RuntimeArgs{
		ConfigPath:       configPath,
		Size:             imagetable.Size(),
		AcquireImageLock: acquire,
		ReleaseImageLock: release,
		ReadBool:         imagetable.ReadBool,
		ReadByte:         imagetable.ReadByte,
		ReadInt:          imagetable.ReadInt,
		ReadDInt:         imagetable.ReadDInt,
		ReadLInt:         imagetable.ReadLInt,
		WriteBool:        journal.WriteBool,
		WriteByte:        journal.WriteByte,
		WriteInt:         journal.WriteInt,
		WriteDInt:        journal.WriteDInt,
		WriteLInt:        journal.WriteLInt,
		LogInfo:          log,
		LogDebug:         debug,
		LogWarn:          warn,
		LogError:         errf,
	}
}
