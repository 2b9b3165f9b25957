package body

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/orbit"
)

// Kind tags the celestial body variant. Stored as a string so YAML catalogs
// and JSON frames carry readable values without marshal plumbing.
type Kind string

const (
	KindStar          Kind = "star"
	KindPlanet        Kind = "planet"
	KindGasGiant      Kind = "gas_giant"
	KindDwarfPlanet   Kind = "dwarf_planet"
	KindMoon          Kind = "moon"
	KindAsteroidField Kind = "asteroid_field"
	KindOortCloud     Kind = "oort_cloud"
	KindRingSystem    Kind = "ring_system"
)

// Valid reports whether k is a known body kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStar, KindPlanet, KindGasGiant, KindDwarfPlanet,
		KindMoon, KindAsteroidField, KindOortCloud, KindRingSystem:
		return true
	}
	return false
}

// Status is the body lifecycle state. Destroyed bodies are retained for
// audit/UI but excluded from physics; Annihilated means no residual mass.
type Status string

const (
	StatusActive      Status = "active"
	StatusDestroyed   Status = "destroyed"
	StatusAnnihilated Status = "annihilated"
)

// PhysicsState is the Cartesian state advanced by the integrator.
// Positions in meters, velocities in m/s. Mass rides along because merge
// collisions transfer it between bodies within a step.
type PhysicsState struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	MassKg   float64
}

// Body is one celestial entity. Mutated only from the simulation goroutine.
type Body struct {
	ID     string
	Name   string
	Kind   Kind
	Status Status

	MassKg  float64 // zero for massless visual-only bodies (rings, clouds)
	RadiusM float64

	// ParentID is the declared (structural) parent; CurrentParentID is the
	// currently-effective gravitational parent. They diverge transiently
	// while a reassignment is pending.
	ParentID        string
	CurrentParentID string

	// Partners holds companion-star IDs; maintained symmetrically by the
	// hierarchy validator whenever the root changes.
	Partners []string

	Orbit *orbit.Elements

	// Phys is nil (or IgnorePhysics set) for bodies excluded from the
	// integrator entirely.
	Phys          *PhysicsState
	IgnorePhysics bool

	SiderealRotationPeriodS float64
	AxialTiltRad            float64
	RotationAngleRad        float64
}

// Active reports whether the body participates in the live hierarchy.
func (b *Body) Active() bool { return b.Status == StatusActive }

// IsStar reports whether the body is a star.
func (b *Body) IsStar() bool { return b.Kind == KindStar }

// EffectiveParent returns the currently-effective parent ID, falling back
// to the declared one.
func (b *Body) EffectiveParent() string {
	if b.CurrentParentID != "" {
		return b.CurrentParentID
	}
	return b.ParentID
}

// Orphan reports whether the body has neither a declared nor an effective
// parent.
func (b *Body) Orphan() bool {
	return b.ParentID == "" && b.CurrentParentID == ""
}

// Simulated reports whether the body should be handed to the integrator.
func (b *Body) Simulated() bool {
	return b.Active() && !b.IgnorePhysics && b.Phys != nil
}

// RotationAxis returns the body's spin axis, the Y axis tilted by the
// axial tilt in the XZ plane.
func (b *Body) RotationAxis() mgl64.Vec3 {
	q := mgl64.QuatRotate(b.AxialTiltRad, mgl64.Vec3{0, 0, 1})
	return q.Rotate(mgl64.Vec3{0, 1, 0})
}
