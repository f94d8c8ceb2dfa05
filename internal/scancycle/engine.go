// Package scancycle drives the control program at a configured tick
// rate with bounded jitter: apply journal, run one control iteration,
// run cycle hooks, sleep until the next tick.
package scancycle

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/background"
	"github.com/scanworks/plcruntime/internal/controlprogram"
	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/journal"
)

var globalData struct {
	sync.RWMutex

	log *logger.L

	state State

	module controlprogram.Module
	hooks  CycleHooks
	wd     WatchdogPublisher

	tickCounter uint64
	tickPeriod  time.Duration
	overruns    uint64

	scanStats    rollingStats
	latencyStats rollingStats

	background *background.T
}

// Initialise loads the control program (ConfigInit, SetBufferPointers,
// GlueVars, in that order) and transitions EMPTY -> INIT. hooks and wd
// may be nil, in which case cycle hooks and watchdog publication are
// no-ops.
func Initialise(module controlprogram.Module, hooks CycleHooks, wd WatchdogPublisher) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.state != Empty {
		return fault.ErrUnexpectedState
	}

	globalData.log = logger.New("scancycle")
	globalData.log.Info("initialising control program")

	if nil == module {
		globalData.state = Error
		return fault.ErrModuleLoadFailed
	}

	if err := module.ConfigInit(); nil != err {
		globalData.log.Criticalf("control program config_init failed: %s", err)
		globalData.state = Error
		return fault.ErrModuleLoadFailed
	}

	module.SetBufferPointers(controlprogram.BufferBases{
		BoolInput:  imagetable.BoolInputTable(),
		BoolOutput: imagetable.BoolOutputTable(),
		BoolMemory: imagetable.BoolMemoryTable(),
		ByteInput:  imagetable.ByteInputTable(),
		ByteOutput: imagetable.ByteOutputTable(),
		IntInput:   imagetable.IntInputTable(),
		IntOutput:  imagetable.IntOutputTable(),
		IntMemory:  imagetable.IntMemoryTable(),
		DIntInput:  imagetable.DIntInputTable(),
		DIntOutput: imagetable.DIntOutputTable(),
		DIntMemory: imagetable.DIntMemoryTable(),
		LIntInput:  imagetable.LIntInputTable(),
		LIntOutput: imagetable.LIntOutputTable(),
		LIntMemory: imagetable.LIntMemoryTable(),
	})
	module.GlueVars()

	globalData.module = module
	globalData.tickPeriod = module.TickPeriod()

	if nil == hooks {
		hooks = noopHooks{}
	}
	if nil == wd {
		wd = noopWatchdog{}
	}
	globalData.hooks = hooks
	globalData.wd = wd

	globalData.tickCounter = 0
	globalData.overruns = 0
	globalData.scanStats = rollingStats{}
	globalData.latencyStats = rollingStats{}

	globalData.state = Init
	globalData.log.Infof("control program initialised, tick period %s", globalData.tickPeriod)
	return nil
}

// Start transitions INIT or STOPPED -> RUNNING and launches the tick
// goroutine.
func Start() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.state != Init && globalData.state != Stopped {
		return fault.ErrUnexpectedState
	}

	globalData.log.Info("starting")
	globalData.state = Running
	globalData.background = background.Start(background.Processes{tickLoop}, nil)
	return nil
}

// Stop transitions RUNNING -> STOPPED, signalling the tick goroutine to
// exit after the current tick completes.
func Stop() error {
	globalData.Lock()
	bg := globalData.background
	if globalData.state != Running {
		globalData.Unlock()
		return fault.ErrUnexpectedState
	}
	globalData.state = Stopped
	globalData.background = nil
	globalData.Unlock()

	bg.Stop()

	globalData.Lock()
	globalData.log.Info("stopped")
	globalData.Unlock()
	return nil
}

// Reset clears an ERROR state back to EMPTY. This is the only way out
// of ERROR; the caller (the command socket, typically) decides when a
// retry is warranted.
func Reset() error {
	globalData.Lock()
	defer globalData.Unlock()
	if globalData.state != Error {
		return fault.ErrUnexpectedState
	}
	globalData.state = Empty
	globalData.module = nil
	return nil
}

// Current reports the engine's current state.
func Current() State {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.state
}

// SnapshotStats returns a read-only copy of the rolling timing
// statistics, safe to call from any goroutine.
func SnapshotStats() Stats {
	globalData.RLock()
	tickCounter := globalData.tickCounter
	overruns := globalData.overruns
	globalData.RUnlock()

	scanMin, scanMax, scanMean, scanCount := globalData.scanStats.snapshot()
	latMin, latMax, latMean, _ := globalData.latencyStats.snapshot()

	return Stats{
		ScanMin:     scanMin,
		ScanMax:     scanMax,
		ScanMean:    scanMean,
		LatencyMin:  latMin,
		LatencyMax:  latMax,
		LatencyMean: latMean,
		Overruns:    overruns,
		TickCounter: tickCounter,
		SampleCount: scanCount,
	}
}

// journalApplyAndClear is the journal apply step runTick calls under
// the image lock; it holds journal.ApplyAndClear.
var journalApplyAndClear = journal.ApplyAndClear
