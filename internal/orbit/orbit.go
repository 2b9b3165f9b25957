// Package orbit holds the analytic Keplerian machinery: orbital elements,
// Kepler-equation solving, and the sampled-path generator used to render
// and predict orbit shapes. Everything here is pure and stateless.
package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AU is one astronomical unit in meters.
const AU = 1.495978707e11

// G is the gravitational constant in m³/(kg·s²).
const G = 6.6743e-11

// Elements are classical Keplerian orbital elements. Angles in radians,
// lengths in meters, period in seconds. Used only for analytic rendering
// and prediction; integration works in Cartesian state.
type Elements struct {
	SemiMajorAxisM   float64
	Eccentricity     float64
	InclinationRad   float64
	AscendingNodeRad float64
	ArgPeriapsisRad  float64
	MeanAnomalyRad   float64
	PeriodS          float64
}

// Degenerate reports whether the elements cannot describe an orbit.
func (el Elements) Degenerate() bool {
	return el.PeriodS == 0 || el.SemiMajorAxisM == 0
}

// solveKepler solves E − e·sin(E) = M for the eccentric anomaly with a
// fixed five Newton-Raphson iterations. Geometry sampling does not need
// machine precision, and the bounded iteration count keeps per-frame cost
// predictable.
func solveKepler(m, e float64) float64 {
	eca := m
	for i := 0; i < 5; i++ {
		eca -= (eca - e*math.Sin(eca) - m) / (1 - e*math.Cos(eca))
	}
	return eca
}

// pointAt returns the parent-centered position in meters for a mean
// anomaly, applying the perifocal rotations in the fixed order: argument
// of periapsis, inclination, ascending node. The order must match the
// integrator's analytic-orbit code or rendered paths drift off the
// simulated trajectories.
func pointAt(el Elements, meanAnomaly float64) mgl64.Vec3 {
	e := el.Eccentricity
	eca := solveKepler(meanAnomaly, e)

	// True anomaly via the half-angle arctangent identity.
	nu := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(eca/2),
		math.Sqrt(1-e)*math.Cos(eca/2),
	)

	// Radius in real meters; precision is preserved in the physical
	// domain, scaling happens at the very end.
	r := el.SemiMajorAxisM * (1 - e*math.Cos(eca))

	x := r * math.Cos(nu)
	y := r * math.Sin(nu)

	sinW, cosW := math.Sincos(el.ArgPeriapsisRad)
	sinI, cosI := math.Sincos(el.InclinationRad)
	sinO, cosO := math.Sincos(el.AscendingNodeRad)

	// Rotate by argument of periapsis.
	xw := x*cosW - y*sinW
	yw := x*sinW + y*cosW

	// Rotate by inclination.
	yi := yw * cosI
	zi := yw * sinI

	// Rotate by longitude of ascending node.
	return mgl64.Vec3{
		xw*cosO - yi*sinO,
		xw*sinO + yi*cosO,
		zi,
	}
}

// PositionAt returns the parent-centered position in meters at elapsed
// time t seconds past epoch. Returns the zero vector for degenerate
// elements.
func PositionAt(el Elements, t float64) mgl64.Vec3 {
	if el.Degenerate() {
		return mgl64.Vec3{}
	}
	m := el.MeanAnomalyRad + 2*math.Pi*t/el.PeriodS
	return pointAt(el, m)
}

// SamplePath samples one full period of the orbit into a closed polyline
// of segments+1 points, parent at the origin, scaled into render units
// (scale = render units per meter). Degenerate elements yield nil; callers
// treat an empty path as "no orbit to draw", not an error.
func SamplePath(el Elements, segments int, scale float64) []mgl64.Vec3 {
	if el.Degenerate() || segments < 1 {
		return nil
	}

	pts := make([]mgl64.Vec3, segments+1)
	for i := 0; i <= segments; i++ {
		t := el.PeriodS * float64(i) / float64(segments)
		m := el.MeanAnomalyRad + 2*math.Pi*t/el.PeriodS
		pts[i] = pointAt(el, m).Mul(scale)
	}

	// Force exact closure; float accumulation across the sweep otherwise
	// leaves a visible seam.
	pts[segments] = pts[0]
	return pts
}

// VisVivaSpeed returns the orbital speed in m/s at distance r from a
// parent of mass parentMassKg, for a semi-major axis a. Used when placing
// catalog bodies with consistent initial velocities.
func VisVivaSpeed(parentMassKg, r, a float64) float64 {
	if r <= 0 || a <= 0 {
		return 0
	}
	return math.Sqrt(G * parentMassKg * (2/r - 1/a))
}
