package protocolserver

import (
	"os"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/pluginhost"
)

// lifecycleState is the plugin's own UNINITIALISED -> INITIALISED ->
// RUNNING <-> STOPPED -> CLEANED state machine, independent of the
// host's plugin-instance bookkeeping.
type lifecycleState int

const (
	stateUninitialised lifecycleState = iota
	stateInitialised
	stateRunning
	stateStopped
	stateCleaned
)

var global struct {
	sync.Mutex

	log   *logger.L
	state lifecycleState

	cfg   Config
	areas *areaTable
	args  pluginhost.RuntimeArgs
	srv   *server
}

// Init builds the area table and allocates staging buffers. It does
// not bind the listener; binding happens in Start. A config that fails
// to parse or validate falls back to DefaultConfig() with the server
// disabled, per the "defaults are used, a warning is logged, the
// plugin still starts" rule.
func Init(args pluginhost.RuntimeArgs) error {
	global.Lock()
	defer global.Unlock()

	global.log = logger.New("protocolserver")
	global.args = args

	cfg := DefaultConfig()
	if "" != args.ConfigPath {
		f, err := os.Open(args.ConfigPath)
		if nil != err {
			global.log.Warnf("config open failed, using defaults: %s", err)
		} else {
			defer f.Close()
			loaded, err := LoadConfig(f)
			if nil != err {
				global.log.Warnf("config rejected, using defaults: %s", err)
			} else {
				cfg = loaded
			}
		}
	}
	global.cfg = cfg

	areas, err := buildAreaTable(cfg)
	if nil != err {
		global.log.Warnf("area table build failed, using defaults: %s", err)
		areas, _ = buildAreaTable(DefaultConfig())
		global.cfg = DefaultConfig()
	}
	global.areas = areas

	global.state = stateInitialised
	return nil
}

// Start binds the listener and begins accepting connections, if the
// server is enabled.
func Start() error {
	global.Lock()
	defer global.Unlock()

	if !global.cfg.Server.Enabled {
		global.log.Info("server disabled in configuration, not binding")
		global.state = stateRunning
		return nil
	}

	srv := newServer(global.cfg, global.areas, global.args, global.log)
	if err := srv.start(); nil != err {
		// bind failure does not crash the plugin; it simply runs with
		// no listener.
		global.state = stateRunning
		return nil
	}
	global.srv = srv
	global.state = stateRunning
	return nil
}

// Stop closes the listener and drains clients.
func Stop() error {
	global.Lock()
	defer global.Unlock()

	if nil != global.srv {
		global.srv.stop()
		global.srv = nil
	}
	global.state = stateStopped
	return nil
}

// Cleanup releases the staging buffers.
func Cleanup() error {
	global.Lock()
	defer global.Unlock()

	global.areas = nil
	global.state = stateCleaned
	return nil
}

// CycleStart refreshes the staging buffer of the PE (process inputs)
// system area. Other areas, including data blocks mapped to an input
// family, are refreshed only when a client reads them. Called with the
// image lock already held.
func CycleStart() {
	global.Lock()
	areas := global.areas
	args := global.args
	global.Unlock()

	if nil == areas {
		return
	}
	for _, a := range areas.byKey {
		if AreaPE == a.code {
			refreshStaging(args, a)
		}
	}
}

// CycleEnd is a no-op: output-area writes already flow through the
// journal write callbacks as remote clients submit them, with no
// batching tied to the tick boundary.
func CycleEnd() {}
