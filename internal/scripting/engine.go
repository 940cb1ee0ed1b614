package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/blockbots/server/internal/world"
)

// Engine wraps a single gopher-lua VM holding optional robot tuning hooks.
// Single-goroutine access only (tick loop). Every hook has a Go default:
// a missing function or a bad return value falls back to it.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromString loads a single chunk. Used by tests and by callers
// embedding their hooks.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasHook reports whether a global function is defined.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// BootDelay calls boot_delay{min, max, roll} and returns the delay in
// seconds. ok is false when the hook is absent or misbehaves.
func (e *Engine) BootDelay(min, max, roll float64) (float64, bool) {
	t := e.vm.NewTable()
	t.RawSetString("min", lua.LNumber(min))
	t.RawSetString("max", lua.LNumber(max))
	t.RawSetString("roll", lua.LNumber(roll))

	v, ok := e.call("boot_delay", t)
	if !ok {
		return 0, false
	}
	n, isNum := v.(lua.LNumber)
	if !isNum || float64(n) < 0 {
		e.log.Error("lua boot_delay returned an invalid delay", zap.String("value", v.String()))
		return 0, false
	}
	return float64(n), true
}

// RobotSpawn is the placement of one robot.
type RobotSpawn struct {
	Position        float64 // fraction of the inset width
	Facing          world.Direction
	SpeedMultiplier float64
}

// RobotSpawn calls robot_spawn{index, count, roll, position, speed} and
// returns the placement. def supplies the Go default for every field the
// hook leaves out.
func (e *Engine) RobotSpawn(index, count int, roll float64, def RobotSpawn) (RobotSpawn, bool) {
	t := e.vm.NewTable()
	t.RawSetString("index", lua.LNumber(index))
	t.RawSetString("count", lua.LNumber(count))
	t.RawSetString("roll", lua.LNumber(roll))
	t.RawSetString("position", lua.LNumber(def.Position))
	t.RawSetString("speed", lua.LNumber(def.SpeedMultiplier))

	v, ok := e.call("robot_spawn", t)
	if !ok {
		return def, false
	}
	rt, isTable := v.(*lua.LTable)
	if !isTable {
		e.log.Error("lua robot_spawn returned non-table")
		return def, false
	}

	out := def
	if n, ok := rt.RawGetString("position").(lua.LNumber); ok {
		if p := float64(n); p >= 0 && p <= 1 {
			out.Position = p
		}
	}
	if n, ok := rt.RawGetString("speed").(lua.LNumber); ok && n > 0 {
		out.SpeedMultiplier = float64(n)
	}
	switch lStr(rt, "direction") {
	case "left":
		out.Facing = world.Left
	case "right":
		out.Facing = world.Right
	}
	return out, true
}

// call runs a global function with one argument and returns its single
// result. Absent hooks are not errors.
func (e *Engine) call(name string, arg lua.LValue) (lua.LValue, bool) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	return lua.LVAsString(v)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
