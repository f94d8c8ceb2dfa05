package pluginhost

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/scanworks/plcruntime/internal/fault"
	"github.com/scanworks/plcruntime/internal/imagetable"
)

// loadScripted runs a Lua module file in its own interpreter state and
// resolves its four required global functions and two optional ones.
// Runtime-Args pointers and closures cannot cross into Lua directly,
// so the subset a script actually needs — image reads/writes and
// logging — is projected as bound Lua functions instead, the same way
// the host's own configuration loader projects Lua tables into Go
// structs through a typed mapper, just in the opposite direction.
func loadScripted(path string, args RuntimeArgs) (entryPoints, *lua.LState, error) {
	L := lua.NewState()
	L.OpenLibs()

	registerRuntimeArgs(L, args)

	if err := L.DoFile(path); nil != err {
		L.Close()
		return entryPoints{}, nil, fault.ErrModuleLoadFailed
	}

	init, err := luaRequired(L, "Init")
	if nil != err {
		L.Close()
		return entryPoints{}, nil, err
	}
	start, err := luaRequired(L, "Start")
	if nil != err {
		L.Close()
		return entryPoints{}, nil, err
	}
	stop, err := luaRequired(L, "Stop")
	if nil != err {
		L.Close()
		return entryPoints{}, nil, err
	}
	cleanup, err := luaRequired(L, "Cleanup")
	if nil != err {
		L.Close()
		return entryPoints{}, nil, err
	}

	entry := entryPoints{
		init:    func(RuntimeArgs) error { return callLua(L, init) },
		start:   func() error { return callLua(L, start) },
		stop:    func() error { return callLua(L, stop) },
		cleanup: func() error { return callLua(L, cleanup) },
	}
	if cycleStart := luaOptional(L, "CycleStart"); nil != cycleStart {
		entry.cycleStart = func() { _ = callLua(L, cycleStart) }
	}
	if cycleEnd := luaOptional(L, "CycleEnd"); nil != cycleEnd {
		entry.cycleEnd = func() { _ = callLua(L, cycleEnd) }
	}
	return entry, L, nil
}

func luaRequired(L *lua.LState, name string) (*lua.LFunction, error) {
	v := L.GetGlobal(name)
	fn, ok := v.(*lua.LFunction)
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func luaOptional(L *lua.LState, name string) *lua.LFunction {
	v := L.GetGlobal(name)
	fn, _ := v.(*lua.LFunction)
	return fn
}

// callLua invokes a zero-argument Lua global that may return a string
// error or nothing, converting a non-empty string return into a Go
// error.
func callLua(L *lua.LState, fn *lua.LFunction) error {
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); nil != err {
		return err
	}
	ret := L.Get(-1)
	L.Pop(1)
	if s, ok := ret.(lua.LString); ok && "" != string(s) {
		return fault.GenericError(string(s))
	}
	return nil
}

// registerRuntimeArgs projects the subset of RuntimeArgs a scripted
// plugin may use as bound Lua global functions: plcruntime_read_* /
// plcruntime_write_* / plcruntime_log_*.
func registerRuntimeArgs(L *lua.LState, args RuntimeArgs) {
	L.SetGlobal("plcruntime_read_int", L.NewFunction(func(L *lua.LState) int {
		t := imagetable.BufferType(L.CheckInt(1))
		index := L.CheckInt(2)
		value, ok := args.ReadInt(t, index)
		L.Push(lua.LNumber(value))
		L.Push(lua.LBool(ok))
		return 2
	}))
	L.SetGlobal("plcruntime_write_int", L.NewFunction(func(L *lua.LState) int {
		t := imagetable.BufferType(L.CheckInt(1))
		index := L.CheckInt(2)
		value := L.CheckInt(3)
		err := args.WriteInt(t, uint16(index), uint16(value))
		if nil != err {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		return 0
	}))
	L.SetGlobal("plcruntime_log_info", L.NewFunction(func(L *lua.LState) int {
		args.LogInfo(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("plcruntime_log_error", L.NewFunction(func(L *lua.LState) int {
		args.LogError(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("plcruntime_config_path", lua.LString(args.ConfigPath))
	L.SetGlobal("plcruntime_size", lua.LNumber(args.Size))
}
