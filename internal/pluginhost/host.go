// Package pluginhost discovers, loads and drives plugin instances:
// native Go plugins and scripted Lua modules, both exposing the same
// six lifecycle entry points and sharing a Runtime-Args bundle with
// the image tables and the journal.
package pluginhost

import (
	"io"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/scanworks/plcruntime/internal/fault"
)

var globalData struct {
	sync.RWMutex

	log *logger.L

	instances []*instance

	initialised bool
}

// Initialise discovers enabled plugins from descriptorSource, loads
// each and calls its init entry point. A descriptor whose module fails
// to load or whose init returns an error is logged and dropped; the
// host proceeds with the rest. Must be called before the scan-cycle
// engine enters RUNNING.
func Initialise(descriptorSource io.Reader) error {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.log = logger.New("pluginhost")

	descriptors, parseErrs := ParseDescriptors(descriptorSource)
	for _, e := range parseErrs {
		globalData.log.Errorf("malformed plugin descriptor: %s", e)
	}

	var instances []*instance
	for _, d := range descriptors {
		if !d.Enabled {
			globalData.log.Infof("plugin %s disabled, skipping", d.Name)
			continue
		}
		inst, err := loadInstance(d)
		if nil != err {
			globalData.log.Errorf("plugin %s: load failed: %s", d.Name, err)
			continue
		}
		inst.callInit()
		if inst.unhealthy {
			globalData.log.Errorf("plugin %s: init failed, instance dropped", d.Name)
			continue
		}
		instances = append(instances, inst)
	}

	globalData.instances = instances
	globalData.initialised = true
	refreshMetrics()
	globalData.log.Infof("plugin host initialised with %d instance(s)", len(instances))
	return nil
}

func loadInstance(d Descriptor) (*instance, error) {
	log := logger.New("plugin-" + d.Name)
	args := newRuntimeArgs(d.Name, d.ConfigPath,
		func(format string, a ...interface{}) { log.Infof(format, a...) },
		func(format string, a ...interface{}) { log.Debugf(format, a...) },
		func(format string, a ...interface{}) { log.Warnf(format, a...) },
		func(format string, a ...interface{}) { log.Errorf(format, a...) },
	)

	switch d.Kind {
	case KindNative:
		entry, err := loadNative(d.Path)
		if nil != err {
			return nil, err
		}
		return &instance{descriptor: d, entry: entry, args: args, log: log}, nil
	case KindScripted:
		entry, L, err := loadScripted(d.Path, args)
		if nil != err {
			return nil, err
		}
		return &instance{descriptor: d, entry: entry, args: args, luaState: L, log: log}, nil
	default:
		return nil, fault.ErrConfigurationRejected
	}
}

// Start calls start() on every surviving instance, in registration
// order. Must be called once the scan-cycle engine has reached
// RUNNING.
func Start() {
	globalData.RLock()
	defer globalData.RUnlock()
	for _, inst := range globalData.instances {
		inst.callStart()
	}
	refreshMetrics()
}

// Stop calls stop() then cleanup() on every instance, in reverse
// registration order, and releases the instance list.
func Stop() {
	globalData.Lock()
	defer globalData.Unlock()
	for i := len(globalData.instances) - 1; i >= 0; i-- {
		inst := globalData.instances[i]
		inst.callStop()
		inst.callCleanup()
	}
	globalData.instances = nil
	globalData.initialised = false
	refreshMetrics()
}

// Reload tears down every instance and rebuilds the list from a fresh
// read of descriptorSource, without touching the scan-cycle engine's
// state. A plugin whose new descriptor fails init is simply absent
// afterward.
func Reload(descriptorSource io.Reader) error {
	Stop()
	return Initialise(descriptorSource)
}

// Hooks adapts the package-level CycleStart/CycleEnd functions to
// scancycle.CycleHooks without importing the scancycle package (which
// itself has no reason to depend on pluginhost).
type Hooks struct{}

func (Hooks) CycleStart() { CycleStart() }
func (Hooks) CycleEnd()   { CycleEnd() }

// CycleStart implements scancycle.CycleHooks: called once per tick,
// with the image lock already held, before the control program runs.
func CycleStart() {
	globalData.RLock()
	defer globalData.RUnlock()
	for _, inst := range globalData.instances {
		inst.callCycleStart()
	}
}

// CycleEnd implements scancycle.CycleHooks: called once per tick,
// with the image lock still held, after the control program runs.
func CycleEnd() {
	globalData.RLock()
	defer globalData.RUnlock()
	for _, inst := range globalData.instances {
		inst.callCycleEnd()
	}
}

// IsInitialised reports whether Initialise has completed and Stop has
// not since been called.
func IsInitialised() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.initialised
}

// InstanceCount returns the number of currently registered instances,
// healthy or not.
func InstanceCount() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.instances)
}

func refreshMetrics() {
	healthy := 0
	unhealthy := 0
	for _, inst := range globalData.instances {
		if inst.unhealthy {
			unhealthy++
		} else {
			healthy++
		}
	}
	metricInstancesLoaded.Set(float64(healthy))
	metricInstancesUnhealthy.Set(float64(unhealthy))
}
