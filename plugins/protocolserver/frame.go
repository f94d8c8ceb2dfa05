package protocolserver

import (
	"encoding/binary"
	"errors"
)

// FunctionCode selects the requested operation. The wire shape is
// deliberately modest: a fixed ten-byte header followed by an
// optional payload, inspired by the connection-oriented, function-code
// + area-selector framing of industrial fieldbus protocols without
// attempting wire compatibility with any of them.
type FunctionCode uint8

const (
	FuncNegotiatePDU FunctionCode = 0x01
	FuncReadArea     FunctionCode = 0x02
	FuncWriteArea    FunctionCode = 0x03
	FuncIdentify     FunctionCode = 0x04
)

// StatusCode is the one-byte result every response frame opens with.
type StatusCode uint8

const (
	StatusOK              StatusCode = 0x00
	StatusUnknownFunction StatusCode = 0x01
	StatusInvalidArea     StatusCode = 0x02
	StatusInvalidOffset   StatusCode = 0x03
	StatusWriteSuppressed StatusCode = 0x04
	StatusInternalError   StatusCode = 0x05
)

// headerSize is function(1) + area code(1) + area number(2) +
// offset(4) + length(2).
const headerSize = 10

var errShortFrame = errors.New("frame shorter than header")

// RequestHeader is a parsed request frame's fixed-size header.
type RequestHeader struct {
	Function FunctionCode
	Area     AreaCode
	Number   uint16
	Offset   uint32
	Length   uint16
}

// ParseRequestHeader reads the fixed header from the front of buf. For
// FuncWriteArea the caller must still have Length more bytes following
// in buf (or arriving next off the wire).
func ParseRequestHeader(buf []byte) (RequestHeader, error) {
	if len(buf) < headerSize {
		return RequestHeader{}, errShortFrame
	}
	return RequestHeader{
		Function: FunctionCode(buf[0]),
		Area:     AreaCode(buf[1]),
		Number:   binary.BigEndian.Uint16(buf[2:4]),
		Offset:   binary.BigEndian.Uint32(buf[4:8]),
		Length:   binary.BigEndian.Uint16(buf[8:10]),
	}, nil
}

// EncodeRequestHeader is the header's inverse, used by tests and by
// any future client-side helper.
func EncodeRequestHeader(h RequestHeader) []byte {
	buf := make([]byte, headerSize)
	buf[0] = byte(h.Function)
	buf[1] = byte(h.Area)
	binary.BigEndian.PutUint16(buf[2:4], h.Number)
	binary.BigEndian.PutUint32(buf[4:8], h.Offset)
	binary.BigEndian.PutUint16(buf[8:10], h.Length)
	return buf
}

// EncodeReadResponse builds a successful read response: status byte
// followed by the payload.
func EncodeReadResponse(payload []byte) []byte {
	out := make([]byte, 1+len(payload))
	out[0] = byte(StatusOK)
	copy(out[1:], payload)
	return out
}

// EncodeStatusResponse builds a response carrying only a status byte,
// used for writes, negotiation acks and errors.
func EncodeStatusResponse(status StatusCode) []byte {
	return []byte{byte(status)}
}

// EncodeNegotiateResponse builds the PDU-negotiation response: status
// byte followed by the two-byte agreed PDU size.
func EncodeNegotiateResponse(agreedPDU uint16) []byte {
	out := make([]byte, 3)
	out[0] = byte(StatusOK)
	binary.BigEndian.PutUint16(out[1:3], agreedPDU)
	return out
}

// EncodeIdentifyResponse marshals identity strings as
// length-prefixed (one byte each) fields in a fixed order.
func EncodeIdentifyResponse(id Identity) []byte {
	fields := []string{id.Name, id.ModuleType, id.SerialNumber, id.Copyright, id.ModuleName}
	out := []byte{byte(StatusOK)}
	for _, f := range fields {
		if len(f) > 255 {
			f = f[:255]
		}
		out = append(out, byte(len(f)))
		out = append(out, f...)
	}
	return out
}
