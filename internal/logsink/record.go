package logsink

import (
	"fmt"
	"io"
	"time"
)

// FormatRecord renders one RFC-3339-prefixed, level-tagged,
// component-bracketed line, independent of whatever internal format
// the process's own file logger uses — the sink only needs to be
// greppable, not byte-identical to the log file.
func FormatRecord(t time.Time, level, component, message string) []byte {
	line := fmt.Sprintf("%s %s [%s] %s\n", t.Format(time.RFC3339Nano), level, component, message)
	return []byte(line)
}

// Sink duplicates formatted records onto stdout and a best-effort
// UNIX-domain socket Writer. Connection failures to the socket never
// suppress the stdout copy.
type Sink struct {
	stdout io.Writer
	socket *Writer
}

// NewSink wraps stdout with a socket-backed duplicate. sockPath may be
// empty, in which case Emit only ever writes to stdout.
func NewSink(stdout io.Writer, sockPath string) *Sink {
	s := &Sink{stdout: stdout}
	if "" != sockPath {
		s.socket = New(sockPath)
	}
	return s
}

// Emit formats and writes one record.
func (s *Sink) Emit(level, component, message string) {
	record := FormatRecord(time.Now(), level, component, message)
	_, _ = s.stdout.Write(record)
	if nil != s.socket {
		_, _ = s.socket.Write(record)
	}
}

// Close releases the socket connection, if any.
func (s *Sink) Close() error {
	if nil != s.socket {
		return s.socket.Close()
	}
	return nil
}
