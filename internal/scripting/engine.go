package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding every loaded behavior.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	behaviors map[string]*lua.LTable
}

// NewEngine creates a Lua engine and loads every behavior script found in
// scriptsDir. A missing directory yields an empty engine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		e.Close()
		return nil, fmt.Errorf("load behavior scripts: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{
		vm:        vm,
		log:       log,
		behaviors: make(map[string]*lua.LTable, 8),
	}
}

// loadDir loads all .lua files in a directory. The behavior name is the file
// name without extension.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fn, err := e.vm.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		if err := e.define(name, fn); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua behavior", zap.String("file", path), zap.String("behavior", name))
	}
	return nil
}

// LoadString compiles src and registers the table it returns as behavior
// name, replacing any previous definition.
func (e *Engine) LoadString(name, src string) error {
	fn, err := e.vm.LoadString(src)
	if err != nil {
		return fmt.Errorf("compile behavior %s: %w", name, err)
	}
	if err := e.define(name, fn); err != nil {
		return fmt.Errorf("behavior %s: %w", name, err)
	}
	return nil
}

// define runs a compiled chunk; the chunk must return the behavior table.
func (e *Engine) define(name string, chunk *lua.LFunction) error {
	if err := e.vm.CallByParam(lua.P{
		Fn:      chunk,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return err
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	t, ok := result.(*lua.LTable)
	if !ok {
		return fmt.Errorf("chunk returned %s, want table", result.Type())
	}
	e.behaviors[name] = t
	return nil
}

func (e *Engine) Has(name string) bool {
	_, ok := e.behaviors[name]
	return ok
}

// Count returns the number of loaded behaviors.
func (e *Engine) Count() int {
	return len(e.behaviors)
}

func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.behaviors))
	for name := range e.behaviors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
