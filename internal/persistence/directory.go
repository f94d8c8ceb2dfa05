// Package persistence owns creation of the runtime's well-known
// state directory: the .env file, the opaque database file and the
// two UNIX-domain sockets all live under it, but this package creates
// only the directory itself and leaves their contents and schemas
// opaque.
package persistence

import (
	"os"
	"path/filepath"
)

const directoryMode = 0775

// EnsureDirectory creates path (and any missing parents) with
// group-writable permissions if it does not already exist. It is safe
// to call on every startup.
func EnsureDirectory(path string) error {
	abs, err := filepath.Abs(path)
	if nil != err {
		return err
	}
	info, err := os.Stat(abs)
	if nil == err {
		if !info.IsDir() {
			return &os.PathError{Op: "ensure", Path: abs, Err: os.ErrExist}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(abs, directoryMode)
}

// SocketPath and DatabasePath are opaque, conventional filenames
// inside the state directory; this package does not interpret either
// file's contents.
func SocketPath(dir, name string) string {
	return filepath.Join(dir, name+".sock")
}

func DatabasePath(dir, name string) string {
	return filepath.Join(dir, name+".db")
}

func EnvPath(dir string) string {
	return filepath.Join(dir, ".env")
}
