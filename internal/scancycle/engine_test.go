package scancycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/scanworks/plcruntime/internal/controlprogram"
	"github.com/scanworks/plcruntime/internal/imagetable"
	"github.com/scanworks/plcruntime/internal/journal"
	"github.com/scanworks/plcruntime/internal/scancycle"
)

type countingHooks struct {
	starts, ends int32
}

func (h *countingHooks) CycleStart() { atomic.AddInt32(&h.starts, 1) }
func (h *countingHooks) CycleEnd()   { atomic.AddInt32(&h.ends, 1) }

type recordingWatchdog struct {
	publishes int32
}

func (w *recordingWatchdog) Publish(time.Time) { atomic.AddInt32(&w.publishes, 1) }

func resetEngine(t *testing.T) {
	t.Helper()
	if imagetable.IsInitialised() {
		_ = imagetable.Finalise()
	}
	if err := imagetable.Initialise(8); err != nil {
		t.Fatalf("imagetable initialise: %s", err)
	}
	journal.Cleanup()
	if err := journal.Init(); err != nil {
		t.Fatalf("journal init: %s", err)
	}
	if scancycle.Current() == scancycle.Running {
		_ = scancycle.Stop()
	}
	if scancycle.Current() == scancycle.Error {
		_ = scancycle.Reset()
	}
}

func TestEngineRunsTicksAndStops(t *testing.T) {
	resetEngine(t)

	fake := &controlprogram.Fake{TickPeriodValue: 5 * time.Millisecond}
	hooks := &countingHooks{}
	wd := &recordingWatchdog{}

	if err := scancycle.Initialise(fake, hooks, wd); err != nil {
		t.Fatalf("initialise: %s", err)
	}
	if scancycle.Current() != scancycle.Init {
		t.Fatalf("expected INIT, got %s", scancycle.Current())
	}

	if err := scancycle.Start(); err != nil {
		t.Fatalf("start: %s", err)
	}
	if scancycle.Current() != scancycle.Running {
		t.Fatalf("expected RUNNING, got %s", scancycle.Current())
	}

	time.Sleep(60 * time.Millisecond)

	if err := scancycle.Stop(); err != nil {
		t.Fatalf("stop: %s", err)
	}
	if scancycle.Current() != scancycle.Stopped {
		t.Fatalf("expected STOPPED, got %s", scancycle.Current())
	}

	if len(fake.RunCalls) < 2 {
		t.Fatalf("expected several ticks to have run, got %d", len(fake.RunCalls))
	}
	for i, tc := range fake.RunCalls {
		if tc != uint64(i) {
			t.Fatalf("expected monotonic tick counters, call %d got %d", i, tc)
		}
	}
	if atomic.LoadInt32(&hooks.starts) != int32(len(fake.RunCalls)) {
		t.Fatalf("expected one cycle_start per tick")
	}
	if atomic.LoadInt32(&hooks.ends) != int32(len(fake.RunCalls)) {
		t.Fatalf("expected one cycle_end per tick")
	}
	if atomic.LoadInt32(&wd.publishes) != int32(len(fake.RunCalls)) {
		t.Fatalf("expected one watchdog publish per tick")
	}

	stats := scancycle.SnapshotStats()
	if stats.TickCounter != uint64(len(fake.RunCalls)) {
		t.Fatalf("stats tick counter mismatch: %d vs %d", stats.TickCounter, len(fake.RunCalls))
	}
}

func TestSingleTickAppliesPendingJournalWrites(t *testing.T) {
	resetEngine(t)

	var cell uint16
	imagetable.BindInt(imagetable.IntOutput, 7, &cell)
	if err := journal.WriteInt(imagetable.IntOutput, 7, 0x1234); err != nil {
		t.Fatalf("write_int: %s", err)
	}

	fake := &controlprogram.Fake{TickPeriodValue: 10 * time.Millisecond}
	if err := scancycle.Initialise(fake, nil, nil); err != nil {
		t.Fatalf("initialise: %s", err)
	}
	if err := scancycle.Start(); err != nil {
		t.Fatalf("start: %s", err)
	}
	time.Sleep(25 * time.Millisecond)
	_ = scancycle.Stop()

	if cell != 0x1234 {
		t.Fatalf("expected journal write applied by tick, got %#x", cell)
	}
	if journal.Pending() != 0 {
		t.Fatalf("expected journal empty after apply, got %d pending", journal.Pending())
	}
}

func TestOverrunCountedWithoutSkippingTicks(t *testing.T) {
	resetEngine(t)

	fake := &controlprogram.Fake{TickPeriodValue: time.Millisecond}
	fake.OnRun = func(uint64) {
		time.Sleep(3 * time.Millisecond)
	}

	if err := scancycle.Initialise(fake, nil, nil); err != nil {
		t.Fatalf("initialise: %s", err)
	}
	if err := scancycle.Start(); err != nil {
		t.Fatalf("start: %s", err)
	}
	time.Sleep(30 * time.Millisecond)
	_ = scancycle.Stop()

	stats := scancycle.SnapshotStats()
	if stats.Overruns == 0 {
		t.Fatal("expected overruns to be counted")
	}
	if stats.TickCounter != uint64(len(fake.RunCalls)) {
		t.Fatalf("tick counter should still advance once per iteration: %d vs %d", stats.TickCounter, len(fake.RunCalls))
	}
}
