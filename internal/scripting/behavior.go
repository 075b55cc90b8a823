package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Host is the Go side a behavior instance talks to. The script component
// implements it; the engine knows nothing about actors or scopes.
type Host interface {
	ID() uint64
	Actor() uint64
	Position() (x, y, z float64)
	Delete()
	Spawn(template string, x, y, z float64) error
	Log(msg string)
}

// Instance is one behavior bound to one host. Behavior hooks are optional:
//
//	load(self, cfg)    once, after the owning context is known
//	update(self, dt)   every tick, dt in seconds
//	on_delete(self)    when the actor is asked to delete itself
type Instance struct {
	e    *Engine
	name string
	self *lua.LTable
}

// Instantiate creates a new instance of a loaded behavior. Instance state is
// a fresh table whose metatable falls back to the behavior table.
func (e *Engine) Instantiate(name string, host Host) (*Instance, error) {
	class, ok := e.behaviors[name]
	if !ok {
		return nil, fmt.Errorf("unknown behavior %q", name)
	}
	vm := e.vm
	self := vm.NewTable()
	mt := vm.NewTable()
	mt.RawSetString("__index", class)
	vm.SetMetatable(self, mt)

	self.RawSetString("id", lua.LNumber(host.ID()))
	self.RawSetString("actor", lua.LNumber(host.Actor()))
	self.RawSetString("position", vm.NewFunction(func(L *lua.LState) int {
		x, y, z := host.Position()
		L.Push(lua.LNumber(x))
		L.Push(lua.LNumber(y))
		L.Push(lua.LNumber(z))
		return 3
	}))
	self.RawSetString("delete", vm.NewFunction(func(L *lua.LState) int {
		host.Delete()
		return 0
	}))
	self.RawSetString("spawn", vm.NewFunction(func(L *lua.LState) int {
		// called as self:spawn(template, x, y, z)
		template := L.CheckString(2)
		x := float64(L.OptNumber(3, 0))
		y := float64(L.OptNumber(4, 0))
		z := float64(L.OptNumber(5, 0))
		if err := host.Spawn(template, x, y, z); err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LTrue)
		return 1
	}))
	self.RawSetString("log", vm.NewFunction(func(L *lua.LState) int {
		host.Log(L.CheckString(2))
		return 0
	}))

	return &Instance{e: e, name: name, self: self}, nil
}

func (i *Instance) Name() string { return i.name }

// Load calls the behavior's load hook with cfg converted to a Lua table.
func (i *Instance) Load(cfg map[string]any) error {
	return i.call("load", toLua(i.e.vm, cfg))
}

// Update calls the behavior's update hook.
func (i *Instance) Update(dtSeconds float64) error {
	return i.call("update", lua.LNumber(dtSeconds))
}

func (i *Instance) OnDelete() error {
	return i.call("on_delete")
}

// Field reads a value the script stored on self, converted back to Go.
func (i *Instance) Field(key string) any {
	return fromLua(i.e.vm.GetField(i.self, key))
}

func (i *Instance) call(hook string, args ...lua.LValue) error {
	vm := i.e.vm
	fn, ok := vm.GetField(i.self, hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{i.self}, args...)...); err != nil {
		i.e.log.Error("lua behavior error",
			zap.String("behavior", i.name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return fmt.Errorf("behavior %s %s: %w", i.name, hook, err)
	}
	return nil
}

// --- Lua helpers ---

func toLua(vm *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []any:
		t := vm.NewTable()
		for _, e := range x {
			t.Append(toLua(vm, e))
		}
		return t
	case map[string]any:
		t := vm.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(vm, x[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if n := x.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := map[string]any{}
		x.ForEach(func(k, val lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				out[string(ks)] = fromLua(val)
			}
		})
		return out
	default:
		return nil
	}
}
