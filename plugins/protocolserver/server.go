package protocolserver

import (
	"fmt"
	"net"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/counter"
	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/pluginhost"
)

// clientMeta is the per-connection bookkeeping kept in the TTL cache:
// the PDU size this connection negotiated. The entry is stored when the
// connection is accepted and expires ping_timeout_ms later; later
// frames do not extend it.
type clientMeta struct {
	negotiatedPDU uint16
}

// server binds the listener, tracks live connections against
// max_clients with an atomic counter, and keeps a short-lived,
// address-keyed metadata cache evicted at ping_timeout_ms.
type server struct {
	log      *logger.L
	cfg      ServerConfig
	identity Identity
	logging  LoggingConfig
	areas    *areaTable
	args     pluginhost.RuntimeArgs

	listener net.Listener
	count    counter.Counter
	clients  *cache.Cache

	wg       sync.WaitGroup
	shutdown chan struct{}
}

func newServer(cfg Config, areas *areaTable, args pluginhost.RuntimeArgs, log *logger.L) *server {
	ping := time.Duration(cfg.Server.PingTimeoutMs) * time.Millisecond
	return &server{
		log:      log,
		cfg:      cfg.Server,
		identity: cfg.Identity,
		logging:  cfg.Logging,
		areas:    areas,
		args:     args,
		clients:  cache.New(ping, 2*ping),
		shutdown: make(chan struct{}),
	}
}

func (s *server) start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if nil != err {
		s.log.Errorf("bind failed on %s: %s (privileged ports below 1024 need elevated capability)", addr, err)
		return err
	}
	s.listener = listener
	s.wg.Add(1)
	go s.acceptLoop()
	s.log.Infof("listening on %s", addr)
	return nil
}

func (s *server) stop() {
	close(s.shutdown)
	if nil != s.listener {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	s.clients.Flush()
}

func (s *server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if nil != err {
			select {
			case <-s.shutdown:
				return
			default:
				s.log.Errorf("accept error: %s", err)
				return
			}
		}
		if s.count.Increment() > uint64(s.cfg.MaxClients) {
			s.count.Decrement()
			if s.logging.LogConnections {
				s.log.Warnf("rejecting %s: max_clients reached", conn.RemoteAddr())
			}
			_ = conn.Close()
			continue
		}
		if s.logging.LogConnections {
			s.log.Infof("accepted %s", conn.RemoteAddr())
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.count.Decrement()
	defer conn.Close()

	key := conn.RemoteAddr().String()
	s.clients.Set(key, &clientMeta{negotiatedPDU: uint16(s.cfg.PDUSize)}, cache.DefaultExpiration)

	limiter := rate.NewLimiter(rate.Limit(50), 50) // frames/sec per connection

	header := make([]byte, headerSize)
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		r := limiter.Reserve()
		if !r.OK() {
			return
		}
		time.Sleep(r.Delay())

		if 0 != s.cfg.RecvTimeoutMs {
			_ = conn.SetReadDeadline(time.Now().Add(time.Duration(s.cfg.RecvTimeoutMs) * time.Millisecond))
		}
		if _, err := readFull(conn, header); nil != err {
			return
		}
		h, err := ParseRequestHeader(header)
		if nil != err {
			return
		}

		var payload []byte
		if FuncWriteArea == h.Function && h.Length > 0 {
			payload = make([]byte, h.Length)
			if _, err := readFull(conn, payload); nil != err {
				return
			}
		}

		resp := s.dispatch(h, payload, key)

		if 0 != s.cfg.SendTimeoutMs {
			_ = conn.SetWriteDeadline(time.Now().Add(time.Duration(s.cfg.SendTimeoutMs) * time.Millisecond))
		}
		if _, err := conn.Write(resp); nil != err {
			return
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if nil != err {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *server) dispatch(h RequestHeader, payload []byte, clientKey string) []byte {
	switch h.Function {
	case FuncNegotiatePDU:
		agreed := uint16(s.cfg.PDUSize)
		if meta, ok := s.clients.Get(clientKey); ok {
			meta.(*clientMeta).negotiatedPDU = agreed
		}
		return EncodeNegotiateResponse(agreed)

	case FuncIdentify:
		return EncodeIdentifyResponse(s.identity)

	case FuncReadArea:
		a, err := s.areas.lookup(h.Area, int(h.Number))
		if nil != err {
			return EncodeStatusResponse(StatusInvalidArea)
		}
		if int(h.Offset)+int(h.Length) > len(a.staging) {
			return EncodeStatusResponse(StatusInvalidOffset)
		}
		s.args.AcquireImageLock()
		refreshStaging(s.args, a)
		slice := append([]byte(nil), a.staging[h.Offset:h.Offset+uint32(h.Length)]...)
		s.args.ReleaseImageLock()
		if s.logging.LogDataAccess {
			s.log.Infof("read area=%d number=%d offset=%d length=%d", h.Area, h.Number, h.Offset, h.Length)
		}
		return EncodeReadResponse(slice)

	case FuncWriteArea:
		a, err := s.areas.lookup(h.Area, int(h.Number))
		if nil != err {
			return EncodeStatusResponse(StatusInvalidArea)
		}
		if imagetable.IsInputFamily(a.bufferType) {
			if s.logging.LogDataAccess {
				s.log.Infof("%s: area=%d number=%d offset=%d length=%d", fault.ErrWriteToInputSuppressed, h.Area, h.Number, h.Offset, h.Length)
			}
			return EncodeStatusResponse(StatusOK)
		}
		if err := applyWrite(s.args, a, int(h.Offset), int(h.Length), payload); nil != err {
			return EncodeStatusResponse(StatusInvalidOffset)
		}
		if s.logging.LogDataAccess {
			s.log.Infof("write area=%d number=%d offset=%d length=%d", h.Area, h.Number, h.Offset, h.Length)
		}
		return EncodeStatusResponse(StatusOK)

	default:
		return EncodeStatusResponse(StatusUnknownFunction)
	}
}
