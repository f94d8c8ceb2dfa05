package protocolserver

import (
	"encoding/binary"

	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/pluginhost"
)

// refreshStaging transcodes the image table slice a.staging backs
// into network byte order, big-endian for word widths and bit-packed
// for the bool family. The caller must already hold the image lock.
func refreshStaging(args pluginhost.RuntimeArgs, a *area) {
	switch {
	case imagetable.IsBool(a.bufferType):
		for i := range a.staging {
			a.staging[i] = packBoolByte(args, a.bufferType, a.startBuffer+i)
		}
	case imagetable.IsByte(a.bufferType):
		for i := range a.staging {
			v, _ := args.ReadByte(a.bufferType, a.startBuffer+i)
			a.staging[i] = v
		}
	case imagetable.IsInt(a.bufferType):
		for i := 0; i+2 <= len(a.staging); i += 2 {
			v, _ := args.ReadInt(a.bufferType, a.startBuffer+i/2)
			binary.BigEndian.PutUint16(a.staging[i:i+2], v)
		}
	case imagetable.IsDInt(a.bufferType):
		for i := 0; i+4 <= len(a.staging); i += 4 {
			v, _ := args.ReadDInt(a.bufferType, a.startBuffer+i/4)
			binary.BigEndian.PutUint32(a.staging[i:i+4], v)
		}
	case imagetable.IsLInt(a.bufferType):
		for i := 0; i+8 <= len(a.staging); i += 8 {
			v, _ := args.ReadLInt(a.bufferType, a.startBuffer+i/8)
			binary.BigEndian.PutUint64(a.staging[i:i+8], v)
		}
	}
}

func packBoolByte(args pluginhost.RuntimeArgs, t imagetable.BufferType, index int) byte {
	var b byte
	for bit := 0; bit < 8; bit++ {
		v, _ := args.ReadBool(t, index, bit)
		if v {
			b |= 1 << uint(bit)
		}
	}
	return b
}

// applyWrite decodes length bytes of data at offset (already in
// network byte order, as received off the wire) and submits one
// journal write per destination cell. No lock is required; the
// journal write callbacks handle their own locking. The caller is
// responsible for dropping writes to an input-backed area before
// calling applyWrite; the journal itself applies any write it is
// given.
func applyWrite(args pluginhost.RuntimeArgs, a *area, offset, length int, data []byte) error {
	if offset < 0 || length < 0 || offset+length > len(a.staging) || length > len(data) {
		return fault.ErrInvalidOffset
	}

	switch {
	case imagetable.IsBool(a.bufferType):
		for i := 0; i < length; i++ {
			index := a.startBuffer + offset + i
			b := data[i]
			for bit := 0; bit < 8; bit++ {
				v := 0 != b&(1<<uint(bit))
				_ = args.WriteBool(a.bufferType, uint16(index), uint8(bit), v)
			}
		}
	case imagetable.IsByte(a.bufferType):
		for i := 0; i < length; i++ {
			_ = args.WriteByte(a.bufferType, uint16(a.startBuffer+offset+i), data[i])
		}
	case imagetable.IsInt(a.bufferType):
		for i := 0; i+2 <= length; i += 2 {
			v := binary.BigEndian.Uint16(data[i : i+2])
			_ = args.WriteInt(a.bufferType, uint16(a.startBuffer+(offset+i)/2), v)
		}
	case imagetable.IsDInt(a.bufferType):
		for i := 0; i+4 <= length; i += 4 {
			v := binary.BigEndian.Uint32(data[i : i+4])
			_ = args.WriteDInt(a.bufferType, uint16(a.startBuffer+(offset+i)/4), v)
		}
	case imagetable.IsLInt(a.bufferType):
		for i := 0; i+8 <= length; i += 8 {
			v := binary.BigEndian.Uint64(data[i : i+8])
			_ = args.WriteLInt(a.bufferType, uint16(a.startBuffer+(offset+i)/8), v)
		}
	}
	return nil
}
