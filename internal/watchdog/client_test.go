package watchdog

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestPublishWritesOneLinePerTick(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "watchdog.sock")

	ln, err := net.Listen("unix", sockPath)
	if nil != err {
		t.Fatalf("listen: %s", err)
	}
	defer ln.Close()

	received := make(chan string, 2)
	go func() {
		conn, err := ln.Accept()
		if nil != err {
			return
		}
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			received <- scanner.Text()
		}
	}()

	c := NewClient(sockPath)
	defer c.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.Publish(now)

	select {
	case line := <-received:
		if line != now.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected line: %s", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published line")
	}
}

func TestPublishToUnreachableSocketDoesNotPanic(t *testing.T) {
	c := NewClient("/nonexistent/path/to.sock")
	c.Publish(time.Now())
}
