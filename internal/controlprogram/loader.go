package controlprogram

import (
	"plugin"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/fault"
)

// symbol names the module's shared object must export. Go's plugin
// package is the only mechanism the standard library offers for
// loading code from a .so at runtime; there is no third-party
// substitute for this specific job anywhere in the reference pack, so
// it is used directly rather than hand-rolled with cgo/dlopen.
const (
	symConfigInit         = "ConfigInit"
	symConfigRun          = "ConfigRun"
	symUpdateTime         = "UpdateTime"
	symGlueVars           = "GlueVars"
	symSetBufferPointers  = "SetBufferPointers"
	symCommonTickTimeNsec = "CommonTickTimeNsec"
)

// pluginModule adapts the symbols resolved from a loaded .so into the
// Module interface.
type pluginModule struct {
	configInit        func() error
	configRun         func(uint64)
	updateTime        func()
	glueVars          func()
	setBufferPointers func(BufferBases)
	tickTimeNsec      func() uint64
}

func (m *pluginModule) ConfigInit() error                   { return m.configInit() }
func (m *pluginModule) ConfigRun(tickCounter uint64)        { m.configRun(tickCounter) }
func (m *pluginModule) UpdateTime()                         { m.updateTime() }
func (m *pluginModule) GlueVars()                           { m.glueVars() }
func (m *pluginModule) SetBufferPointers(bases BufferBases) { m.setBufferPointers(bases) }
func (m *pluginModule) TickPeriod() time.Duration {
	return time.Duration(m.tickTimeNsec())
}

// Load resolves the control-program module at path and returns it as a
// Module. A module that cannot be opened is ModuleLoadFailed; a missing
// or mistyped symbol is EntryPointMissing. cmd/plcd exits on either
// error, since the engine has nothing to drive.
func Load(path string) (Module, error) {
	log := logger.New("controlprogram")
	log.Infof("loading control program: %s", path)

	p, err := plugin.Open(path)
	if nil != err {
		log.Errorf("plugin open failed: %s", err)
		return nil, fault.ErrModuleLoadFailed
	}

	m := &pluginModule{}

	if m.configInit, err = lookupConfigInit(p); nil != err {
		return nil, err
	}
	if m.configRun, err = lookupConfigRun(p); nil != err {
		return nil, err
	}
	if m.updateTime, err = lookupUpdateTime(p); nil != err {
		return nil, err
	}
	if m.glueVars, err = lookupGlueVars(p); nil != err {
		return nil, err
	}
	if m.setBufferPointers, err = lookupSetBufferPointers(p); nil != err {
		return nil, err
	}
	if m.tickTimeNsec, err = lookupTickTime(p); nil != err {
		return nil, err
	}

	log.Info("control program loaded")
	return m, nil
}

func lookupConfigInit(p *plugin.Plugin) (func() error, error) {
	sym, err := p.Lookup(symConfigInit)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func() error)
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func lookupConfigRun(p *plugin.Plugin) (func(uint64), error) {
	sym, err := p.Lookup(symConfigRun)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func(uint64))
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func lookupUpdateTime(p *plugin.Plugin) (func(), error) {
	sym, err := p.Lookup(symUpdateTime)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func())
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func lookupGlueVars(p *plugin.Plugin) (func(), error) {
	sym, err := p.Lookup(symGlueVars)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func())
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func lookupSetBufferPointers(p *plugin.Plugin) (func(BufferBases), error) {
	sym, err := p.Lookup(symSetBufferPointers)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func(BufferBases))
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}

func lookupTickTime(p *plugin.Plugin) (func() uint64, error) {
	sym, err := p.Lookup(symCommonTickTimeNsec)
	if nil != err {
		return nil, fault.ErrEntryPointMissing
	}
	fn, ok := sym.(func() uint64)
	if !ok {
		return nil, fault.ErrEntryPointMissing
	}
	return fn, nil
}
