package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
)

func twoBody() (map[string]body.PhysicsState, map[string]float64, map[string]bool, map[string]body.Kind) {
	const sunMass = 1.989e30
	v := math.Sqrt(orbit.G * sunMass / orbit.AU)
	states := map[string]body.PhysicsState{
		"sun":   {MassKg: sunMass},
		"terra": {Position: mgl64.Vec3{orbit.AU, 0, 0}, Velocity: mgl64.Vec3{0, v, 0}, MassKg: 5.97e24},
	}
	radii := map[string]float64{"sun": 7e8, "terra": 6.4e6}
	stars := map[string]bool{"sun": true}
	kinds := map[string]body.Kind{"sun": body.KindStar, "terra": body.KindPlanet}
	return states, radii, stars, kinds
}

func TestAdvanceCircularOrbitStaysBounded(t *testing.T) {
	g := NewGravity()
	states, radii, stars, kinds := twoBody()

	// A full hour per step for a month of simulated time; the radius of a
	// circular orbit should stay within a few percent of 1 AU.
	for i := 0; i < 24*30; i++ {
		result := g.Advance(states, 3600, radii, stars, kinds)
		states = result.States
		if len(result.Destroyed) != 0 {
			t.Fatal("spurious collision in a clean two-body orbit")
		}
	}

	r := states["terra"].Position.Sub(states["sun"].Position).Len()
	if r < 0.97*orbit.AU || r > 1.03*orbit.AU {
		t.Errorf("orbit radius drifted to %.4f AU", r/orbit.AU)
	}
}

func TestAdvanceMasslessBodyFeelsGravity(t *testing.T) {
	g := NewGravity()
	states := map[string]body.PhysicsState{
		"sun":  {MassKg: 1.989e30},
		"mote": {Position: mgl64.Vec3{orbit.AU, 0, 0}},
	}
	radii := map[string]float64{"sun": 7e8}
	stars := map[string]bool{"sun": true}
	kinds := map[string]body.Kind{"sun": body.KindStar, "mote": body.KindAsteroidField}

	result := g.Advance(states, 60, radii, stars, kinds)

	// The massless mote accelerates toward the sun but exerts nothing back.
	if result.States["mote"].Velocity.X() >= 0 {
		t.Error("massless body did not fall toward the sun")
	}
	if result.States["sun"].Velocity != (mgl64.Vec3{}) {
		t.Errorf("massless body pulled the sun: %v", result.States["sun"].Velocity)
	}
}

func TestAdvanceCollisionMerge(t *testing.T) {
	g := NewGravity()
	g.G = 0 // isolate the collision pass

	states := map[string]body.PhysicsState{
		"big":   {MassKg: 2e24},
		"small": {Position: mgl64.Vec3{1.5e6, 0, 0}, Velocity: mgl64.Vec3{-9, 0, 0}, MassKg: 1e24},
	}
	radii := map[string]float64{"big": 1e6, "small": 1e6}
	stars := map[string]bool{}
	kinds := map[string]body.Kind{"big": body.KindPlanet, "small": body.KindPlanet}

	result := g.Advance(states, 1e-6, radii, stars, kinds)

	if len(result.Destroyed) != 1 || result.Destroyed[0].ID != "small" {
		t.Fatalf("destroyed = %v, want the less massive body", result.Destroyed)
	}
	if _, ok := result.States["small"]; ok {
		t.Error("destroyed body still present in step result")
	}

	survivor := result.States["big"]
	if survivor.MassKg != 3e24 {
		t.Errorf("survivor mass = %v, want combined 3e24", survivor.MassKg)
	}
	// Momentum conservation: (1e24 * -9) / 3e24 = -3 m/s.
	if diff := math.Abs(survivor.Velocity.X() + 3); diff > 1e-9 {
		t.Errorf("survivor velocity = %v, want -3 on X", survivor.Velocity)
	}
	// Equal radii means debris remains.
	if result.Destroyed[0].Annihilated {
		t.Error("equal-sized impactor flagged as annihilated")
	}
}

func TestAdvanceStarBeatsHeavierPlanet(t *testing.T) {
	g := NewGravity()
	g.G = 0

	states := map[string]body.PhysicsState{
		"dwarf": {MassKg: 1e29},
		"world": {Position: mgl64.Vec3{1e8, 0, 0}, MassKg: 5e29},
	}
	radii := map[string]float64{"dwarf": 1e8, "world": 7e7}
	stars := map[string]bool{"dwarf": true}
	kinds := map[string]body.Kind{"dwarf": body.KindStar, "world": body.KindGasGiant}

	result := g.Advance(states, 1e-6, radii, stars, kinds)

	if len(result.Destroyed) != 1 || result.Destroyed[0].ID != "world" {
		t.Fatalf("destroyed = %v, want the planet despite its mass", result.Destroyed)
	}
}

func TestAdvanceAnnihilatesSwallowedBody(t *testing.T) {
	g := NewGravity()
	g.G = 0

	states := map[string]body.PhysicsState{
		"sun":    {MassKg: 2e30},
		"pebble": {Position: mgl64.Vec3{1e8, 0, 0}, MassKg: 1e10},
	}
	radii := map[string]float64{"sun": 7e8, "pebble": 1e3}
	stars := map[string]bool{"sun": true}
	kinds := map[string]body.Kind{"sun": body.KindStar, "pebble": body.KindPlanet}

	result := g.Advance(states, 1e-6, radii, stars, kinds)

	if len(result.Destroyed) != 1 {
		t.Fatal("expected the pebble to be swallowed")
	}
	if !result.Destroyed[0].Annihilated {
		t.Error("tiny body inside a star should be annihilated, not merely destroyed")
	}
}

func TestAdvanceDiffuseBodiesNeverCollide(t *testing.T) {
	g := NewGravity()
	g.G = 0

	states := map[string]body.PhysicsState{
		"terra": {MassKg: 6e24},
		"belt":  {Position: mgl64.Vec3{1e3, 0, 0}, MassKg: 3e21},
	}
	radii := map[string]float64{"terra": 6.4e6, "belt": 5e11}
	stars := map[string]bool{}
	kinds := map[string]body.Kind{"terra": body.KindPlanet, "belt": body.KindAsteroidField}

	result := g.Advance(states, 1e-6, radii, stars, kinds)
	if len(result.Destroyed) != 0 {
		t.Errorf("diffuse body collided: %v", result.Destroyed)
	}
}

func TestAdvanceDeterministic(t *testing.T) {
	run := func() body.PhysicsState {
		g := NewGravity()
		states, radii, stars, kinds := twoBody()
		states["ares"] = body.PhysicsState{
			Position: mgl64.Vec3{0, 1.52 * orbit.AU, 0},
			Velocity: mgl64.Vec3{-24070, 0, 0},
			MassKg:   6.42e23,
		}
		kinds["ares"] = body.KindPlanet
		radii["ares"] = 3.4e6
		for i := 0; i < 100; i++ {
			states = g.Advance(states, 3600, radii, stars, kinds).States
		}
		return states["terra"]
	}

	a, b := run(), run()
	if a.Position != b.Position || a.Velocity != b.Velocity {
		t.Errorf("identical runs diverged: %v vs %v", a.Position, b.Position)
	}
}
