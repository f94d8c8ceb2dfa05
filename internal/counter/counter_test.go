package counter_test

import (
	"testing"

	"github.com/scanworks/plcruntime/internal/counter"
)

func TestCounter(t *testing.T) {
	var c counter.Counter

	if !c.IsZero() {
		t.Errorf("counter is not zero at start: %d", c.Uint64())
	}

	for i := 0; i < 5; i++ {
		c.Increment()
	}
	if c.Uint64() != 5 {
		t.Errorf("expected 5, got %d", c.Uint64())
	}

	c.Decrement()
	c.Decrement()
	if c.Uint64() != 3 {
		t.Errorf("expected 3, got %d", c.Uint64())
	}

	c.Set(0)
	if !c.IsZero() {
		t.Errorf("expected zero after Set(0), got %d", c.Uint64())
	}
}
