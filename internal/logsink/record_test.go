package logsink

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmitAlwaysWritesStdoutCopy(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, "")
	sink.Emit("ERROR", "scancycle", "overrun detected")

	out := buf.String()
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "[scancycle]") || !strings.Contains(out, "overrun detected") {
		t.Fatalf("unexpected record: %q", out)
	}
}

func TestEmitWithUnreachableSocketStillWritesStdout(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, "/nonexistent/sink.sock")
	sink.Emit("INFO", "pluginhost", "loaded 3 instances")

	if 0 == buf.Len() {
		t.Fatal("expected stdout copy even when the socket is unreachable")
	}
}
