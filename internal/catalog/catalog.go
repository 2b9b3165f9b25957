// Package catalog loads star-system definitions from YAML files and
// turns them into placed, moving bodies.
package catalog

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
)

// BodyEntry is one body in a system file. Angles are written in degrees
// for readability and converted on load. Parents must precede children in
// the file.
type BodyEntry struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Kind          string  `yaml:"kind"`
	Parent        string  `yaml:"parent"`
	MassKg        float64 `yaml:"mass_kg"`
	RadiusM       float64 `yaml:"radius_m"`
	IgnorePhysics bool    `yaml:"ignore_physics"`

	RotationPeriodS float64 `yaml:"rotation_period_s"`
	AxialTiltDeg    float64 `yaml:"axial_tilt_deg"`

	Orbit *OrbitEntry `yaml:"orbit"`
}

type OrbitEntry struct {
	SemiMajorAxisM   float64 `yaml:"semi_major_axis_m"`
	Eccentricity     float64 `yaml:"eccentricity"`
	InclinationDeg   float64 `yaml:"inclination_deg"`
	AscendingNodeDeg float64 `yaml:"ascending_node_deg"`
	ArgPeriapsisDeg  float64 `yaml:"arg_periapsis_deg"`
	MeanAnomalyDeg   float64 `yaml:"mean_anomaly_deg"`
	PeriodS          float64 `yaml:"period_s"`
}

type systemFile struct {
	Name   string      `yaml:"name"`
	Bodies []BodyEntry `yaml:"bodies"`
}

// System is a loaded, validated star system.
type System struct {
	Name   string
	Bodies []*body.Body
}

// LoadSystem reads a system YAML file and places every body: positions
// from the analytic orbit at epoch, velocities from vis-viva along the
// orbit tangent, both relative to the (already placed) parent.
func LoadSystem(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read system file: %w", err)
	}
	var f systemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse system file %s: %w", path, err)
	}

	sys := &System{Name: f.Name}
	placed := make(map[string]*body.Body, len(f.Bodies))

	for i, e := range f.Bodies {
		b, err := Build(e, placed)
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, e.ID, err)
		}
		placed[b.ID] = b
		sys.Bodies = append(sys.Bodies, b)
	}
	return sys, nil
}

// Build validates one entry and places the resulting body. Exposed so Lua
// scenario scripts can append bodies through the same path as YAML files.
func Build(e BodyEntry, placed map[string]*body.Body) (*body.Body, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if _, dup := placed[e.ID]; dup {
		return nil, fmt.Errorf("duplicate id")
	}
	kind := body.Kind(e.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", e.Kind)
	}
	if e.MassKg < 0 || e.RadiusM < 0 {
		return nil, fmt.Errorf("negative mass or radius")
	}

	var parent *body.Body
	if e.Parent != "" {
		parent = placed[e.Parent]
		if parent == nil {
			return nil, fmt.Errorf("parent %q not defined before child", e.Parent)
		}
	}

	b := &body.Body{
		ID:                      e.ID,
		Name:                    e.Name,
		Kind:                    kind,
		Status:                  body.StatusActive,
		MassKg:                  e.MassKg,
		RadiusM:                 e.RadiusM,
		ParentID:                e.Parent,
		CurrentParentID:         e.Parent,
		IgnorePhysics:           e.IgnorePhysics,
		SiderealRotationPeriodS: e.RotationPeriodS,
		AxialTiltRad:            mgl64.DegToRad(e.AxialTiltDeg),
	}
	if e.Orbit != nil {
		b.Orbit = &orbit.Elements{
			SemiMajorAxisM:   e.Orbit.SemiMajorAxisM,
			Eccentricity:     e.Orbit.Eccentricity,
			InclinationRad:   mgl64.DegToRad(e.Orbit.InclinationDeg),
			AscendingNodeRad: mgl64.DegToRad(e.Orbit.AscendingNodeDeg),
			ArgPeriapsisRad:  mgl64.DegToRad(e.Orbit.ArgPeriapsisDeg),
			MeanAnomalyRad:   mgl64.DegToRad(e.Orbit.MeanAnomalyDeg),
			PeriodS:          e.Orbit.PeriodS,
		}
	}

	if !e.IgnorePhysics {
		b.Phys = placeBody(b, parent)
	}
	return b, nil
}

// placeBody computes the initial Cartesian state. Root bodies sit at the
// origin at rest; orbiting bodies start on their analytic orbit with a
// vis-viva speed along the local tangent, offset by the parent's state.
func placeBody(b *body.Body, parent *body.Body) *body.PhysicsState {
	ps := &body.PhysicsState{MassKg: b.MassKg}
	if parent == nil || b.Orbit == nil || b.Orbit.Degenerate() {
		return ps
	}

	rel := orbit.PositionAt(*b.Orbit, 0)
	ps.Position = rel

	// Tangent via a small finite step along the orbit.
	h := b.Orbit.PeriodS * 1e-6
	tangent := orbit.PositionAt(*b.Orbit, h).Sub(rel)
	if l := tangent.Len(); l > 0 {
		speed := orbit.VisVivaSpeed(parent.MassKg, rel.Len(), b.Orbit.SemiMajorAxisM)
		ps.Velocity = tangent.Mul(speed / l)
	}

	if parent.Phys != nil {
		ps.Position = ps.Position.Add(parent.Phys.Position)
		ps.Velocity = ps.Velocity.Add(parent.Phys.Velocity)
	}
	return ps
}
