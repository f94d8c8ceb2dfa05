package pluginhost

import (
	"plugin"

	"github.com/scanworks/plcruntime/internal/fault"
)

const (
	symInit       = "Init"
	symStart      = "Start"
	symStop       = "Stop"
	symCleanup    = "Cleanup"
	symCycleStart = "CycleStart"
	symCycleEnd   = "CycleEnd"
)

// loadNative opens a compiled Go plugin (buildmode=plugin) and resolves
// its four required symbols and two optional ones. Each symbol may be an
// exported function or an exported variable holding one (plugin.Lookup
// returns a pointer to a variable).
func loadNative(path string) (entryPoints, error) {
	p, err := plugin.Open(path)
	if nil != err {
		return entryPoints{}, fault.ErrModuleLoadFailed
	}

	init, err := lookupRequired[func(RuntimeArgs) error](p, symInit)
	if nil != err {
		return entryPoints{}, err
	}
	start, err := lookupRequired[func() error](p, symStart)
	if nil != err {
		return entryPoints{}, err
	}
	stop, err := lookupRequired[func() error](p, symStop)
	if nil != err {
		return entryPoints{}, err
	}
	cleanup, err := lookupRequired[func() error](p, symCleanup)
	if nil != err {
		return entryPoints{}, err
	}

	return entryPoints{
		init:       init,
		start:      start,
		stop:       stop,
		cleanup:    cleanup,
		cycleStart: lookupOptional[func()](p, symCycleStart),
		cycleEnd:   lookupOptional[func()](p, symCycleEnd),
	}, nil
}

func lookupRequired[T any](p *plugin.Plugin, name string) (T, error) {
	var zero T
	sym, err := p.Lookup(name)
	if nil != err {
		return zero, fault.ErrEntryPointMissing
	}
	if fn, ok := sym.(T); ok {
		return fn, nil
	}
	if ptr, ok := sym.(*T); ok && nil != ptr {
		return *ptr, nil
	}
	return zero, fault.ErrEntryPointMissing
}

func lookupOptional[T any](p *plugin.Plugin, name string) T {
	var zero T
	sym, err := p.Lookup(name)
	if nil != err {
		return zero
	}
	if fn, ok := sym.(T); ok {
		return fn
	}
	if ptr, ok := sym.(*T); ok && nil != ptr {
		return *ptr
	}
	return zero
}
