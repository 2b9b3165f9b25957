package sim

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
)

// Gravity is the reference Integrator: direct pairwise Newtonian gravity
// with Plummer softening, advanced by semi-implicit Euler, with
// sphere-overlap collision merging. O(n²) per step, fine for the body
// counts a star system carries. Deterministic: bodies are processed in
// sorted ID order.
type Gravity struct {
	G          float64
	SofteningM float64
}

func NewGravity() *Gravity {
	return &Gravity{
		G:          orbit.G,
		SofteningM: 1e3,
	}
}

// collidable kinds: diffuse visual bodies never collide.
func collidable(k body.Kind) bool {
	switch k {
	case body.KindAsteroidField, body.KindOortCloud, body.KindRingSystem:
		return false
	}
	return true
}

func (g *Gravity) Advance(
	states map[string]body.PhysicsState,
	dt float64,
	radiusByID map[string]float64,
	isStarByID map[string]bool,
	kindByID map[string]body.Kind,
) StepResult {
	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cur := make(map[string]body.PhysicsState, len(states))
	for id, ps := range states {
		cur[id] = ps
	}

	// Acceleration from all massive bodies; massless bodies feel gravity
	// but exert none.
	accels := make(map[string]mgl64.Vec3, len(ids))
	eps2 := g.SofteningM * g.SofteningM
	for _, id := range ids {
		si := cur[id]
		var a mgl64.Vec3
		for _, jid := range ids {
			if jid == id {
				continue
			}
			sj := cur[jid]
			if sj.MassKg == 0 {
				continue
			}
			d := sj.Position.Sub(si.Position)
			r2 := d.Dot(d) + eps2
			a = a.Add(d.Mul(g.G * sj.MassKg / (r2 * math.Sqrt(r2))))
		}
		accels[id] = a
	}

	// Semi-implicit Euler: velocity first, then position with the new
	// velocity.
	for _, id := range ids {
		s := cur[id]
		s.Velocity = s.Velocity.Add(accels[id].Mul(dt))
		s.Position = s.Position.Add(s.Velocity.Mul(dt))
		cur[id] = s
	}

	// Collision pass on post-step positions. The less massive body of an
	// overlapping pair is destroyed and its momentum merged into the
	// survivor; a star always survives against a non-star.
	destroyed := make(map[string]bool, 4)
	var events []DestructionEvent
	for i, id := range ids {
		if destroyed[id] || !collidable(kindByID[id]) {
			continue
		}
		for _, jid := range ids[i+1:] {
			if destroyed[id] {
				break
			}
			if destroyed[jid] || !collidable(kindByID[jid]) {
				continue
			}
			si, sj := cur[id], cur[jid]
			ri, rj := radiusByID[id], radiusByID[jid]
			if ri == 0 || rj == 0 {
				continue
			}
			if si.Position.Sub(sj.Position).Len() >= ri+rj {
				continue
			}

			survivor, victim := id, jid
			if loses(id, jid, cur, isStarByID) {
				survivor, victim = jid, id
			}
			ss, vs := cur[survivor], cur[victim]

			total := ss.MassKg + vs.MassKg
			if total > 0 {
				ss.Velocity = ss.Velocity.Mul(ss.MassKg / total).
					Add(vs.Velocity.Mul(vs.MassKg / total))
			}
			ss.MassKg = total
			cur[survivor] = ss
			destroyed[victim] = true

			vr := radiusByID[victim]
			events = append(events, DestructionEvent{
				ID:               victim,
				RadiusM:          vr,
				ImpactPosition:   contactPoint(ss.Position, vs.Position, radiusByID[survivor]),
				RelativeVelocity: vs.Velocity.Sub(ss.Velocity),
				// Fully swallowed bodies leave no debris.
				Annihilated: vr*2 <= radiusByID[survivor],
			})
		}
	}

	out := StepResult{
		States:        make(map[string]body.PhysicsState, len(ids)),
		Accelerations: accels,
		Destroyed:     events,
	}
	for _, id := range ids {
		if !destroyed[id] {
			out.States[id] = cur[id]
		}
	}
	return out
}

// loses reports whether a loses the collision against b: stars beat
// non-stars, otherwise lower mass loses, ties broken by ID order.
func loses(a, b string, cur map[string]body.PhysicsState, isStar map[string]bool) bool {
	if isStar[a] != isStar[b] {
		return !isStar[a]
	}
	ma, mb := cur[a].MassKg, cur[b].MassKg
	if ma != mb {
		return ma < mb
	}
	return a > b
}

// contactPoint approximates the impact position on the survivor's
// surface along the line toward the victim.
func contactPoint(survivorPos, victimPos mgl64.Vec3, survivorRadius float64) mgl64.Vec3 {
	d := victimPos.Sub(survivorPos)
	if l := d.Len(); l > 0 {
		return survivorPos.Add(d.Mul(survivorRadius / l))
	}
	return survivorPos
}
