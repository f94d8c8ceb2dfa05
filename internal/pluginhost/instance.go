package pluginhost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/logger"
)

// instance is one loaded, registered plugin: its resolved entry
// points, its Runtime-Args, and the failure-boundary state that
// suppresses further hook calls once it has faulted.
type instance struct {
	descriptor Descriptor
	entry      entryPoints
	args       RuntimeArgs
	luaState   *lua.LState // nil for native plugins
	unhealthy  bool
	log        *logger.L
}

func (inst *instance) callInit() {
	inst.guard(inst.log, "init", func() error { return inst.entry.init(inst.args) })
}

func (inst *instance) callStart() {
	inst.guard(inst.log, "start", inst.entry.start)
}

func (inst *instance) callStop() {
	inst.guard(inst.log, "stop", inst.entry.stop)
}

func (inst *instance) callCleanup() {
	inst.guard(inst.log, "cleanup", inst.entry.cleanup)
	if nil != inst.luaState {
		inst.luaState.Close()
	}
}

func (inst *instance) callCycleStart() {
	if nil == inst.entry.cycleStart {
		return
	}
	inst.guardVoid(inst.log, "cycle_start", inst.entry.cycleStart)
}

func (inst *instance) callCycleEnd() {
	if nil == inst.entry.cycleEnd {
		return
	}
	inst.guardVoid(inst.log, "cycle_end", inst.entry.cycleEnd)
}
