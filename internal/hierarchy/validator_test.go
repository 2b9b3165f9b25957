package hierarchy

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

func star(id string, mass float64) *body.Body {
	return &body.Body{ID: id, Kind: body.KindStar, Status: body.StatusActive, MassKg: mass}
}

func child(id string, kind body.Kind, parent string) *body.Body {
	return &body.Body{ID: id, Kind: kind, Status: body.StatusActive, ParentID: parent, CurrentParentID: parent}
}

func TestValidateNoStars(t *testing.T) {
	s := world.NewState()
	p := child("lonely", body.KindPlanet, "")
	s.Add(p)

	if n := Validate(s, zap.NewNop()); n != 0 {
		t.Fatalf("corrections with no stars = %d, want 0", n)
	}
	if p.ParentID != "" {
		t.Errorf("planet modified in degraded state: parent %q", p.ParentID)
	}
}

func TestValidateRootReassignment(t *testing.T) {
	// Three stars with masses 5, 3, 1, the mass-3 star wrongly flagged as
	// root. After validation the mass-5 star is the single parentless root
	// and the other two orbit it.
	s := world.NewState()
	a := star("alpha", 5e30)
	b := star("beta", 3e30)
	c := star("gamma", 1e30)
	a.ParentID, a.CurrentParentID = "beta", "beta"
	c.ParentID, c.CurrentParentID = "beta", "beta"
	s.Add(a)
	s.Add(b)
	s.Add(c)

	Validate(s, zap.NewNop())

	if !a.Orphan() {
		t.Errorf("alpha should be root, has parent %q", a.EffectiveParent())
	}
	if b.EffectiveParent() != "alpha" {
		t.Errorf("beta parent = %q, want alpha", b.EffectiveParent())
	}
	if c.EffectiveParent() != "alpha" {
		t.Errorf("gamma parent = %q, want alpha", c.EffectiveParent())
	}
	if len(a.Partners) != 2 || len(b.Partners) != 2 || len(c.Partners) != 2 {
		t.Errorf("partner lists not symmetric: %v %v %v", a.Partners, b.Partners, c.Partners)
	}
}

func TestValidateSecondOrphanStarAttached(t *testing.T) {
	s := world.NewState()
	a := star("alpha", 5e30)
	b := star("beta", 1e30)
	s.Add(a)
	s.Add(b)

	Validate(s, zap.NewNop())

	if !a.Orphan() {
		t.Errorf("alpha should stay root")
	}
	if b.EffectiveParent() != "alpha" {
		t.Errorf("beta parent = %q, want alpha", b.EffectiveParent())
	}
}

func TestValidateOrphanRepairByInfluence(t *testing.T) {
	// Two stars: the heavier one farther away, the lighter one closer.
	// influence = mass / d², so closeness wins here:
	//   alpha: 2e30 / 2² = 5e29
	//   beta:  1e30 / 1² = 1e30
	s := world.NewState()
	a := star("alpha", 2e30)
	a.Phys = &body.PhysicsState{Position: mgl64.Vec3{2 * orbit.AU, 0, 0}}
	b := star("beta", 1e30)
	b.Phys = &body.PhysicsState{Position: mgl64.Vec3{-1 * orbit.AU, 0, 0}}
	p := child("drifter", body.KindPlanet, "ghost")
	p.Phys = &body.PhysicsState{}
	s.Add(a)
	s.Add(b)
	s.Add(p)

	Validate(s, zap.NewNop())

	if p.EffectiveParent() != "beta" {
		t.Errorf("drifter parent = %q, want beta", p.EffectiveParent())
	}
}

func TestValidateMoonOnStarMovesToNearestPlanet(t *testing.T) {
	s := world.NewState()
	sun := star("sun", 2e30)
	sun.Phys = &body.PhysicsState{}
	near := child("near", body.KindPlanet, "sun")
	near.Phys = &body.PhysicsState{Position: mgl64.Vec3{1 * orbit.AU, 0, 0}}
	far := child("far", body.KindGasGiant, "sun")
	far.Phys = &body.PhysicsState{Position: mgl64.Vec3{5 * orbit.AU, 0, 0}}
	m := child("luna", body.KindMoon, "sun")
	m.Phys = &body.PhysicsState{Position: mgl64.Vec3{1.01 * orbit.AU, 0, 0}}
	s.Add(sun)
	s.Add(near)
	s.Add(far)
	s.Add(m)

	Validate(s, zap.NewNop())

	if m.EffectiveParent() != "near" {
		t.Errorf("moon parent = %q, want near", m.EffectiveParent())
	}
}

func TestValidateBoundedDepth(t *testing.T) {
	// After validation every body reaches the root within the star ->
	// planet -> moon depth bound.
	s := world.NewState()
	sun := star("sun", 2e30)
	p := child("terra", body.KindPlanet, "sun")
	m := child("luna", body.KindMoon, "terra")
	s.Add(sun)
	s.Add(p)
	s.Add(m)

	Validate(s, zap.NewNop())

	for _, b := range s.Bodies() {
		cur, hops := b, 0
		for !cur.Orphan() {
			hops++
			if hops > 3 {
				t.Fatalf("body %s does not reach the root within 3 hops", b.ID)
			}
			cur = s.Get(cur.EffectiveParent())
			if cur == nil {
				t.Fatalf("body %s has a dangling parent after validation", b.ID)
			}
		}
	}
}

func TestAdmissible(t *testing.T) {
	cases := []struct {
		parent, child body.Kind
		want          bool
	}{
		{body.KindStar, body.KindPlanet, true},
		{body.KindStar, body.KindMoon, false},
		{body.KindPlanet, body.KindMoon, true},
		{body.KindGasGiant, body.KindRingSystem, true},
		{body.KindMoon, body.KindMoon, false},
		{body.KindPlanet, body.KindPlanet, false},
	}
	for _, tc := range cases {
		if got := Admissible(tc.parent, tc.child); got != tc.want {
			t.Errorf("Admissible(%s, %s) = %v, want %v", tc.parent, tc.child, got, tc.want)
		}
	}
}

func TestSeparationFallsBackToSemiMajorAxis(t *testing.T) {
	a := child("a", body.KindPlanet, "")
	a.Orbit = &orbit.Elements{SemiMajorAxisM: 3 * orbit.AU}
	b := child("b", body.KindPlanet, "")
	b.Orbit = &orbit.Elements{SemiMajorAxisM: 1 * orbit.AU}

	if d := separationAU(a, b); d != 2 {
		t.Errorf("separation = %v AU, want 2", d)
	}
}
