package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
)

func TestConfigAccessors(t *testing.T) {
	cfg := component.Config{
		"name":  "drone",
		"speed": 3,
		"ratio": 0.25,
		"count": 4.0,
		"pos":   []any{1, 2, 3.5},
	}

	s, err := cfg.String("name", "")
	require.NoError(t, err)
	assert.Equal(t, "drone", s)

	f, err := cfg.Float("speed", 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	n, err := cfg.Int("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = cfg.Int("ratio", 0)
	assert.Error(t, err)

	v, err := cfg.Vec3("pos", event.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, event.Vec3{X: 1, Y: 2, Z: 3.5}, v)

	d, err := cfg.Float("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9.0, d)

	_, err = cfg.String("speed", "")
	assert.Error(t, err)
}

func TestConfigMergeDoesNotAlias(t *testing.T) {
	base := component.Config{"seconds": 1, "keep": true}
	merged := base.Merge(component.Config{"seconds": 5})

	assert.Equal(t, 5, merged["seconds"])
	assert.Equal(t, true, merged["keep"])
	assert.Equal(t, 1, base["seconds"])

	var empty component.Config
	assert.Equal(t, component.Config{"a": 1}, empty.Merge(component.Config{"a": 1}))
}
