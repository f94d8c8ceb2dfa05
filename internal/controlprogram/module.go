// Package controlprogram resolves and wraps the compiled control
// program the scan-cycle engine drives. The core treats it as an
// opaque module exposing a fixed set of lifecycle symbols; everything
// about the control logic itself is out of scope.
package controlprogram

import (
	"time"

	"github.com/scanworks/plcruntime/internal/imagetable"
)

// BufferBases is the fourteen-pointer bundle the core hands to the
// module via SetBufferPointers — the inverse of the bindings the
// module publishes back through GlueVars.
type BufferBases struct {
	BoolInput, BoolOutput, BoolMemory []imagetable.BoolCell
	ByteInput, ByteOutput             []*uint8
	IntInput, IntOutput, IntMemory    []*uint16
	DIntInput, DIntOutput, DIntMemory []*uint32
	LIntInput, LIntOutput, LIntMemory []*uint64
}

// Module is the typed interface the scan-cycle engine drives, on the
// scan-cycle thread only. It corresponds exactly to the six symbols a
// compiled control program must export.
type Module interface {
	// ConfigInit is the one-shot call that establishes the module's
	// own variable storage.
	ConfigInit() error

	// ConfigRun advances control logic by one tick.
	ConfigRun(tickCounter uint64)

	// UpdateTime advances the module's internal clock.
	UpdateTime()

	// GlueVars is the post-init hook that wires the module's variable
	// storage into the image tables (via imagetable.Bind*).
	GlueVars()

	// SetBufferPointers hands the module the core's fourteen table
	// bases, the inverse binding direction from GlueVars.
	SetBufferPointers(BufferBases)

	// TickPeriod returns common_ticktime: the configured scan period.
	TickPeriod() time.Duration
}
