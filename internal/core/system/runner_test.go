package system_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/actorbus/engine/internal/core/system"
)

type recorder struct {
	name  string
	phase system.Phase
	log   *[]string
}

func (r recorder) Phase() system.Phase  { return r.phase }
func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := system.NewRunner()
	r.Register(recorder{"persist", system.PhasePersist, &log})
	r.Register(recorder{"out-a", system.PhaseOutput, &log})
	r.Register(recorder{"update", system.PhaseUpdate, &log})
	r.Register(recorder{"out-b", system.PhaseOutput, &log})
	r.Register(recorder{"input", system.PhaseInput, &log})
	assert.Equal(t, 5, r.Len())

	assert.Equal(t, uint64(1), r.Tick(time.Millisecond))
	assert.Equal(t, []string{"input", "update", "out-a", "out-b", "persist"}, log)

	assert.Equal(t, uint64(1), r.Ticks())

	log = log[:0]
	r.Register(recorder{"late-input", system.PhaseInput, &log})
	assert.Equal(t, uint64(2), r.Tick(time.Millisecond))
	assert.Equal(t, []string{"input", "late-input", "update", "out-a", "out-b", "persist"}, log)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "input", system.PhaseInput.String())
	assert.Equal(t, "persist", system.PhasePersist.String())
	assert.Equal(t, "unknown", system.Phase(42).String())
}
