package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/catalog"
)

const cometScript = `
add_body{
  id = "comet",
  name = "Test Comet",
  kind = "dwarf_planet",
  parent = "sun",
  mass_kg = 2.2e14,
  radius_m = 5.5e3,
  orbit = {
    semi_major_axis_m = 2.667e12,
    eccentricity = 0.967,
    inclination_deg = 162.26,
    period_s = 2.38e9,
  },
}
`

func TestRunScenarios(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "comet.lua"), []byte(cometScript), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-lua files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a script"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(zap.NewNop())
	defer e.Close()

	var got []catalog.BodyEntry
	err := e.RunScenarios(dir, func(entry catalog.BodyEntry) error {
		got = append(got, entry)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}

	c := got[0]
	if c.ID != "comet" || c.Kind != "dwarf_planet" || c.Parent != "sun" {
		t.Errorf("entry = %+v", c)
	}
	if c.MassKg != 2.2e14 {
		t.Errorf("mass = %v", c.MassKg)
	}
	if c.Orbit == nil {
		t.Fatal("orbit table not decoded")
	}
	if c.Orbit.Eccentricity != 0.967 || c.Orbit.InclinationDeg != 162.26 {
		t.Errorf("orbit = %+v", c.Orbit)
	}
}

func TestRunScenariosMissingDirIsFine(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()

	err := e.RunScenarios(filepath.Join(t.TempDir(), "absent"), func(catalog.BodyEntry) error {
		t.Fatal("callback fired with no scripts")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunScenariosPropagatesAddError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`add_body{id = "x", kind = "star"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(zap.NewNop())
	defer e.Close()

	rejected := errors.New("rejected")
	err := e.RunScenarios(dir, func(catalog.BodyEntry) error { return rejected })
	if err == nil {
		t.Fatal("add error swallowed")
	}
}
