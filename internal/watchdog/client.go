// Package watchdog publishes the scan-cycle engine's monotonic tick
// timestamp to an external collaborator once per cycle, over a
// best-effort UNIX-domain connection.
package watchdog

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// Publisher is the interface the scan-cycle engine calls once per
// tick; it matches scancycle.WatchdogPublisher structurally without
// either package importing the other.
type Publisher interface {
	Publish(tick time.Time)
}

// Client dials a UNIX-domain socket on demand and writes one line per
// tick. A failed dial or write only drops that publication; it never
// propagates to the scan-cycle thread.
type Client struct {
	mu       sync.Mutex
	log      *logger.L
	sockPath string
	conn     net.Conn
}

// NewClient returns a Client that will attempt to reach sockPath. The
// first Publish call performs the initial dial.
func NewClient(sockPath string) *Client {
	return &Client{
		log:      logger.New("watchdog"),
		sockPath: sockPath,
	}
}

// Publish writes tick as a RFC-3339 nanosecond line. Reconnects
// lazily after any write failure.
func (c *Client) Publish(tick time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nil == c.conn {
		conn, err := net.Dial("unix", c.sockPath)
		if nil != err {
			return
		}
		c.conn = conn
	}

	line := fmt.Sprintf("%s\n", tick.Format(time.RFC3339Nano))
	if _, err := c.conn.Write([]byte(line)); nil != err {
		c.log.Warnf("watchdog publish failed, will redial: %s", err)
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Close releases the underlying connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if nil != c.conn {
		_ = c.conn.Close()
		c.conn = nil
	}
}
