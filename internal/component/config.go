package component

import (
	"fmt"

	"github.com/actorbus/engine/internal/core/event"
)

// Config is a component's configuration block as decoded from data files:
// numbers arrive as int or float64, lists as []any, blocks as map[string]any.
type Config map[string]any

func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Clone copies the top level of c.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a copy of c with every key of over applied on top.
func (c Config) Merge(over Config) Config {
	out := c.Clone()
	if out == nil {
		out = make(Config, len(over))
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func (c Config) String(key, def string) (string, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("config %q: want string, got %T", key, v)
	}
	return s, nil
}

func (c Config) Float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("config %q: want number, got %T", key, v)
	}
	return f, nil
}

func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("config %q: want integer, got %v", key, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("config %q: want integer, got %T", key, v)
}

// Vec3 reads a three element list.
func (c Config) Vec3(key string, def event.Vec3) (event.Vec3, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	var xs []float64
	switch l := v.(type) {
	case []any:
		for _, e := range l {
			f, ok := toFloat(e)
			if !ok {
				return def, fmt.Errorf("config %q: want number element, got %T", key, e)
			}
			xs = append(xs, f)
		}
	case []float64:
		xs = l
	case event.Vec3:
		return l, nil
	default:
		return def, fmt.Errorf("config %q: want [x, y, z], got %T", key, v)
	}
	if len(xs) != 3 {
		return def, fmt.Errorf("config %q: want 3 elements, got %d", key, len(xs))
	}
	return event.Vec3{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
