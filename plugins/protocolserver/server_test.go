package protocolserver

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/pluginhost"
)

// testConfig builds a config with the PE system area mapped to
// bool_input, one data block mapped to int_input (the scenario the
// write-suppression bug missed: an input-backed area that is not the
// PE system area) and one data block mapped to int_output.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Server.Enabled = true
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Identity = Identity{
		Name:         "plcruntime",
		ModuleType:   "protocolserver",
		SerialNumber: "0001",
		Copyright:    "test",
		ModuleName:   "ref",
	}
	cfg.SystemAreas.PE = SystemArea{
		Enabled:   true,
		SizeBytes: 2,
		Mapping:   BufferMapping{Type: "bool_input", StartBuffer: 0},
	}
	cfg.DataBlocks = []DataBlock{
		{DBNumber: 1, SizeBytes: 4, Mapping: BufferMapping{Type: "int_input", StartBuffer: 0}},
		{DBNumber: 2, SizeBytes: 4, Mapping: BufferMapping{Type: "int_output", StartBuffer: 0}},
	}
	return cfg
}

func startTestServer(t *testing.T, cfg Config, args pluginhost.RuntimeArgs) (*server, net.Addr) {
	t.Helper()
	areas, err := buildAreaTable(cfg)
	if nil != err {
		t.Fatalf("buildAreaTable: %s", err)
	}
	srv := newServer(cfg, areas, args, logger.New("protocolserver-test"))
	if err := srv.start(); nil != err {
		t.Fatalf("start: %s", err)
	}
	t.Cleanup(srv.stop)
	return srv, srv.listener.Addr()
}

func roundTrip(t *testing.T, addr net.Addr, header RequestHeader, payload []byte) []byte {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if nil != err {
		t.Fatalf("dial: %s", err)
	}
	defer conn.Close()

	frame := append(EncodeRequestHeader(header), payload...)
	if _, err := conn.Write(frame); nil != err {
		t.Fatalf("write frame: %s", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	resp := make([]byte, 512)
	n, err := conn.Read(resp)
	if nil != err && io.EOF != err {
		t.Fatalf("read response: %s", err)
	}
	return resp[:n]
}

func TestDispatchNegotiatePDUAndIdentify(t *testing.T) {
	args, _ := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FuncNegotiatePDU}, nil)
	want := EncodeNegotiateResponse(defaultPDUSize)
	if string(want) != string(resp) {
		t.Fatalf("negotiate response = %v, want %v", resp, want)
	}

	resp = roundTrip(t, addr, RequestHeader{Function: FuncIdentify}, nil)
	if StatusOK != StatusCode(resp[0]) {
		t.Fatalf("identify status = %#x, want OK", resp[0])
	}
}

func TestDispatchReadAreaUnknownAreaReturnsInvalidArea(t *testing.T) {
	args, _ := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FuncReadArea, Area: AreaDB, Number: 99}, nil)
	if StatusInvalidArea != StatusCode(resp[0]) {
		t.Fatalf("status = %#x, want StatusInvalidArea", resp[0])
	}
}

func TestDispatchReadAreaOffsetOutOfRangeReturnsInvalidOffset(t *testing.T) {
	args, _ := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FuncReadArea, Area: AreaPE, Offset: 1, Length: 10}, nil)
	if StatusInvalidOffset != StatusCode(resp[0]) {
		t.Fatalf("status = %#x, want StatusInvalidOffset", resp[0])
	}
}

func TestDispatchWriteAreaSuppressedForInputMappedDataBlock(t *testing.T) {
	args, f := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FuncWriteArea, Area: AreaDB, Number: 1, Offset: 0, Length: 2},
		[]byte{0xFF, 0xFF})
	if StatusOK != StatusCode(resp[0]) {
		t.Fatalf("status = %#x, want StatusOK (suppressed writes still ack)", resp[0])
	}
	if 0 != f.ints[0] {
		t.Fatalf("write to int_input-mapped data block was not suppressed: ints[0] = %#x", f.ints[0])
	}
}

func TestDispatchWriteAreaAppliedForOutputMappedDataBlock(t *testing.T) {
	args, f := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FuncWriteArea, Area: AreaDB, Number: 2, Offset: 0, Length: 2},
		[]byte{0x12, 0x34})
	if StatusOK != StatusCode(resp[0]) {
		t.Fatalf("status = %#x, want StatusOK", resp[0])
	}
	if 0x1234 != f.ints[0] {
		t.Fatalf("expected ints[0] = 0x1234, got %#x", f.ints[0])
	}
}

func TestDispatchUnknownFunctionReturnsUnknownFunction(t *testing.T) {
	args, _ := newFakeArgs()
	_, addr := startTestServer(t, testConfig(), args)

	resp := roundTrip(t, addr, RequestHeader{Function: FunctionCode(0xFE)}, nil)
	if StatusUnknownFunction != StatusCode(resp[0]) {
		t.Fatalf("status = %#x, want StatusUnknownFunction", resp[0])
	}
}
