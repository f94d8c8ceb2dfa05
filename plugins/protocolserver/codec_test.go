package protocolserver

import (
	"testing"

	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/pluginhost"
)

// fakeImage is a tiny in-memory stand-in for the image tables, wired
// into a pluginhost.RuntimeArgs so codec tests never need the real
// imagetable/journal singletons.
type fakeImage struct {
	bools map[int][8]bool
	ints  map[int]uint16
}

func newFakeArgs() (pluginhost.RuntimeArgs, *fakeImage) {
	f := &fakeImage{bools: map[int][8]bool{}, ints: map[int]uint16{}}
	return pluginhost.RuntimeArgs{
		AcquireImageLock: func() {},
		ReleaseImageLock: func() {},
		ReadBool: func(t imagetable.BufferType, index, bit int) (bool, bool) {
			row := f.bools[index]
			return row[bit], true
		},
		ReadInt: func(t imagetable.BufferType, index int) (uint16, bool) {
			return f.ints[index], true
		},
		WriteBool: func(t imagetable.BufferType, index uint16, bit uint8, value bool) error {
			row := f.bools[int(index)]
			row[bit] = value
			f.bools[int(index)] = row
			return nil
		},
		WriteInt: func(t imagetable.BufferType, index uint16, value uint16) error {
			f.ints[int(index)] = value
			return nil
		},
	}, f
}

func TestRefreshStagingPacksBoolBits(t *testing.T) {
	args, f := newFakeArgs()
	f.bools[0] = [8]bool{true, false, true, false, false, false, false, false}

	a := &area{bufferType: imagetable.BoolInput, startBuffer: 0, staging: make([]byte, 1)}
	refreshStaging(args, a)

	if 0x05 != a.staging[0] {
		t.Fatalf("expected bit pattern 0x05, got %#x", a.staging[0])
	}
}

func TestRefreshStagingBigEndianInts(t *testing.T) {
	args, f := newFakeArgs()
	f.ints[0] = 0x1234
	f.ints[1] = 0xABCD

	a := &area{bufferType: imagetable.IntMemory, startBuffer: 0, staging: make([]byte, 4)}
	refreshStaging(args, a)

	want := []byte{0x12, 0x34, 0xAB, 0xCD}
	for i, b := range want {
		if a.staging[i] != b {
			t.Fatalf("staging[%d] = %#x, want %#x", i, a.staging[i], b)
		}
	}
}

func TestApplyWriteBoolBits(t *testing.T) {
	args, f := newFakeArgs()
	a := &area{bufferType: imagetable.BoolOutput, startBuffer: 0, staging: make([]byte, 1)}

	if err := applyWrite(args, a, 0, 1, []byte{0x81}); nil != err {
		t.Fatalf("applyWrite failed: %s", err)
	}
	row := f.bools[0]
	if !row[0] || !row[7] {
		t.Fatalf("expected bits 0 and 7 set, got %v", row)
	}
	if row[1] {
		t.Fatalf("expected bit 1 clear, got %v", row)
	}
}

func TestApplyWriteIntBigEndian(t *testing.T) {
	args, f := newFakeArgs()
	a := &area{bufferType: imagetable.IntOutput, startBuffer: 3, staging: make([]byte, 2)}

	if err := applyWrite(args, a, 0, 2, []byte{0x12, 0x34}); nil != err {
		t.Fatalf("applyWrite failed: %s", err)
	}
	if 0x1234 != f.ints[3] {
		t.Fatalf("expected index 3 = 0x1234, got %#x", f.ints[3])
	}
}

func TestApplyWriteRejectsOutOfRangeOffset(t *testing.T) {
	args, _ := newFakeArgs()
	a := &area{bufferType: imagetable.IntOutput, startBuffer: 0, staging: make([]byte, 2)}

	if err := applyWrite(args, a, 4, 2, []byte{0, 0}); nil == err {
		t.Fatal("expected out-of-range offset to be rejected")
	}
}
