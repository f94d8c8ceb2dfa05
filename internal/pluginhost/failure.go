package pluginhost

import (
	"github.com/bitmark-inc/logger"
)

// guard recovers a panic from inside a plugin entry point, logs it and
// marks the instance unhealthy; an error returned by fn is logged and
// marks the instance unhealthy too. Once unhealthy, the host skips every further hook
// call for the instance except stop and cleanup, matching the
// "crashing plugin must not tear down the runtime" rule.
func (inst *instance) guard(log *logger.L, step string, fn func() error) {
	if inst.unhealthy && "stop" != step && "cleanup" != step {
		return
	}
	defer func() {
		if r := recover(); nil != r {
			log.Errorf("plugin %s: panic in %s: %v", inst.descriptor.Name, step, r)
			inst.unhealthy = true
			metricHookPanics.Inc()
		}
	}()
	if err := fn(); nil != err {
		log.Errorf("plugin %s: %s returned error: %s", inst.descriptor.Name, step, err)
		inst.unhealthy = true
	}
}

// guardVoid is guard's sibling for entry points with no return value.
func (inst *instance) guardVoid(log *logger.L, step string, fn func()) {
	if inst.unhealthy && "stop" != step && "cleanup" != step {
		return
	}
	defer func() {
		if r := recover(); nil != r {
			log.Errorf("plugin %s: panic in %s: %v", inst.descriptor.Name, step, r)
			inst.unhealthy = true
			metricHookPanics.Inc()
		}
	}()
	fn()
}
