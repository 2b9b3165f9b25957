// Package scripting embeds a Lua VM for scenario scripts: small .lua
// files that add custom bodies to the system at boot.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/catalog"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only
// (boot path).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

func (e *Engine) Close() {
	e.vm.Close()
}

// RunScenarios executes every .lua file in dir. Scripts call
// add_body{...} with the same fields as a YAML catalog entry; each added
// body goes through the catalog validation and placement path. A missing
// dir is not an error.
func (e *Engine) RunScenarios(dir string, add func(catalog.BodyEntry) error) error {
	e.vm.SetGlobal("add_body", e.vm.NewFunction(func(L *lua.LState) int {
		entry := entryFromTable(L.CheckTable(1))
		if err := add(entry); err != nil {
			L.RaiseError("add_body %s: %v", entry.ID, err)
		}
		return 0
	}))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("run %s: %w", path, err)
		}
		e.log.Debug("ran scenario script", zap.String("file", path))
	}
	return nil
}

func entryFromTable(t *lua.LTable) catalog.BodyEntry {
	entry := catalog.BodyEntry{
		ID:              str(t, "id"),
		Name:            str(t, "name"),
		Kind:            str(t, "kind"),
		Parent:          str(t, "parent"),
		MassKg:          num(t, "mass_kg"),
		RadiusM:         num(t, "radius_m"),
		IgnorePhysics:   boolean(t, "ignore_physics"),
		RotationPeriodS: num(t, "rotation_period_s"),
		AxialTiltDeg:    num(t, "axial_tilt_deg"),
	}
	if ov, ok := t.RawGetString("orbit").(*lua.LTable); ok {
		entry.Orbit = &catalog.OrbitEntry{
			SemiMajorAxisM:   num(ov, "semi_major_axis_m"),
			Eccentricity:     num(ov, "eccentricity"),
			InclinationDeg:   num(ov, "inclination_deg"),
			AscendingNodeDeg: num(ov, "ascending_node_deg"),
			ArgPeriapsisDeg:  num(ov, "arg_periapsis_deg"),
			MeanAnomalyDeg:   num(ov, "mean_anomaly_deg"),
			PeriodS:          num(ov, "period_s"),
		}
	}
	return entry
}

func str(t *lua.LTable, key string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func num(t *lua.LTable, key string) float64 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return 0
}

func boolean(t *lua.LTable, key string) bool {
	if v, ok := t.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return false
}
