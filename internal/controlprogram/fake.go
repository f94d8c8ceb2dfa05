package controlprogram

import "time"

// Fake is an in-process Module double for tests of the scan-cycle
// engine and plugin host, standing in for a real dynamically loaded
// module so unit tests never need to build or load a real .so.
type Fake struct {
	TickPeriodValue time.Duration

	InitErr error

	InitCalls       int
	RunCalls        []uint64
	UpdateTimeCalls int
	GlueVarsCalls   int
	Bases           BufferBases

	OnRun func(tickCounter uint64)
}

func (f *Fake) ConfigInit() error {
	f.InitCalls++
	return f.InitErr
}

func (f *Fake) ConfigRun(tickCounter uint64) {
	f.RunCalls = append(f.RunCalls, tickCounter)
	if nil != f.OnRun {
		f.OnRun(tickCounter)
	}
}

func (f *Fake) UpdateTime() {
	f.UpdateTimeCalls++
}

func (f *Fake) GlueVars() {
	f.GlueVarsCalls++
}

func (f *Fake) SetBufferPointers(bases BufferBases) {
	f.Bases = bases
}

func (f *Fake) TickPeriod() time.Duration {
	return f.TickPeriodValue
}
