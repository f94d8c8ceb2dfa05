package imagetable_test

import (
	"testing"

	"github.com/scanworks/plcruntime/internal/imagetable"
)

func setup(t *testing.T, n int) {
	t.Helper()
	if imagetable.IsInitialised() {
		if err := imagetable.Finalise(); err != nil {
			t.Fatalf("finalise before setup: %s", err)
		}
	}
	if err := imagetable.Initialise(n); err != nil {
		t.Fatalf("initialise: %s", err)
	}
	t.Cleanup(func() {
		_ = imagetable.Finalise()
	})
}

func TestUnboundSlotsAreSilentlyDropped(t *testing.T) {
	setup(t, 8)

	imagetable.Lock()
	defer imagetable.Unlock()

	if _, ok := imagetable.ReadInt(imagetable.IntOutput, 0); ok {
		t.Fatal("expected unbound read to report ok=false")
	}
	if ok := imagetable.WriteInt(imagetable.IntOutput, 0, 42); ok {
		t.Fatal("expected unbound write to report ok=false")
	}
}

func TestBindAndRoundTrip(t *testing.T) {
	setup(t, 8)

	var cell uint16
	imagetable.BindInt(imagetable.IntOutput, 3, &cell)

	imagetable.Lock()
	ok := imagetable.WriteInt(imagetable.IntOutput, 3, 0x1234)
	imagetable.Unlock()
	if !ok {
		t.Fatal("expected write to bound slot to succeed")
	}

	imagetable.Lock()
	value, ok := imagetable.ReadInt(imagetable.IntOutput, 3)
	imagetable.Unlock()
	if !ok || value != 0x1234 {
		t.Fatalf("expected 0x1234, got %#x ok=%v", value, ok)
	}
	if cell != 0x1234 {
		t.Fatalf("underlying cell not updated: %#x", cell)
	}
}

func TestBoolBitAddressing(t *testing.T) {
	setup(t, 4)

	var bit3 bool
	imagetable.BindBool(imagetable.BoolOutput, 0, 3, &bit3)

	imagetable.Lock()
	if !imagetable.WriteBool(imagetable.BoolOutput, 0, 3, true) {
		t.Fatal("expected write to bound bit to succeed")
	}
	// neighbouring unbound bit must still report unbound
	if _, ok := imagetable.ReadBool(imagetable.BoolOutput, 0, 2); ok {
		t.Fatal("expected neighbouring bit to be unbound")
	}
	v, ok := imagetable.ReadBool(imagetable.BoolOutput, 0, 3)
	imagetable.Unlock()

	if !ok || !v {
		t.Fatalf("expected bit 3 true, got %v ok=%v", v, ok)
	}
}

func TestOutOfRangeIndexIsSilentlyDropped(t *testing.T) {
	setup(t, 4)

	imagetable.Lock()
	defer imagetable.Unlock()

	if ok := imagetable.WriteInt(imagetable.IntOutput, 99, 1); ok {
		t.Fatal("expected out-of-range write to report ok=false")
	}
}
