package scancycle

import (
	"time"

	"github.com/scanworks/plcruntime/internal/imagetable"
)

// tickLoop is the background.Process driving the scan cycle. It runs
// until shutdown is closed, at which point it finishes the in-flight
// tick and returns without sleeping again.
func tickLoop(args interface{}, shutdown <-chan bool, done chan<- bool) {
	defer close(done)

	globalData.RLock()
	scheduled := time.Now()
	globalData.RUnlock()

	first := true
	for {
		actualWake := time.Now()
		if !first {
			latency := actualWake.Sub(scheduled)
			globalData.latencyStats.record(latency)
			observeLatency(latency)
		}
		first = false

		tickStart := actualWake
		runTick()
		scanDuration := time.Since(tickStart)
		globalData.scanStats.record(scanDuration)
		observeScan(scanDuration)

		publishWatchdog(tickStart)

		select {
		case <-shutdown:
			return
		default:
		}

		globalData.RLock()
		period := globalData.tickPeriod
		globalData.RUnlock()

		scheduled = tickStart.Add(period)
		now := time.Now()
		if now.After(scheduled) {
			globalData.Lock()
			globalData.overruns++
			globalData.Unlock()
			observeOverrun()
			// fail-sloppy: no catch-up, next tick starts immediately
			continue
		}
		time.Sleep(scheduled.Sub(now))
	}
}

// runTick is the invariant body of every iteration: acquire the image
// lock, apply the journal, run cycle_start hooks, run the control
// program, run cycle_end hooks, release the image lock.
func runTick() {
	globalData.RLock()
	module := globalData.module
	hooks := globalData.hooks
	globalData.RUnlock()

	imagetable.Lock()
	defer imagetable.Unlock()

	journalApplyAndClear()

	hooks.CycleStart()

	globalData.Lock()
	tickCounter := globalData.tickCounter
	globalData.tickCounter++
	globalData.Unlock()

	module.ConfigRun(tickCounter)
	module.UpdateTime()

	hooks.CycleEnd()
}

func publishWatchdog(tick time.Time) {
	globalData.RLock()
	wd := globalData.wd
	globalData.RUnlock()
	wd.Publish(tick)
}
