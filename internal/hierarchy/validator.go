// Package hierarchy keeps the parent/child body tree gravitationally
// consistent: root-star selection by mass, orphan repair by gravitational
// influence, and replacement-root selection after a root star dies.
package hierarchy

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

// admissibleChildren gates which kinds a parent kind may adopt. Moons
// never hang directly off a star.
var admissibleChildren = map[body.Kind]map[body.Kind]bool{
	body.KindStar: {
		body.KindPlanet:        true,
		body.KindGasGiant:      true,
		body.KindDwarfPlanet:   true,
		body.KindAsteroidField: true,
		body.KindOortCloud:     true,
	},
	body.KindPlanet: {
		body.KindMoon:       true,
		body.KindRingSystem: true,
	},
	body.KindGasGiant: {
		body.KindMoon:       true,
		body.KindRingSystem: true,
	},
}

// Admissible reports whether a body of parent kind may adopt a child of
// child kind.
func Admissible(parent, child body.Kind) bool {
	return admissibleChildren[parent][child]
}

// Validate corrects the hierarchy in place so the invariant set holds:
// a single parentless root star of maximal mass, no dangling parents, no
// moons parented to stars. Returns the number of corrective
// reassignments. With no active stars at all the snapshot is returned
// unmodified, a degraded but non-fatal state.
func Validate(state *world.State, log *zap.Logger) int {
	stars := state.ActiveStars()
	if len(stars) == 0 {
		log.Error("hierarchy validation skipped: no active stars")
		return 0
	}

	corrected := 0
	corrected += enforceRoot(state, stars, log)
	corrected += repairOrphans(state, log)
	corrected += repairMoonParents(state, log)

	logSummary(state, log)
	return corrected
}

// enforceRoot makes the most massive active star the single parentless
// root and parents every other active star to it.
func enforceRoot(state *world.State, stars []*body.Body, log *zap.Logger) int {
	// Stable sort keeps insertion order among equal masses deterministic.
	sort.SliceStable(stars, func(i, j int) bool {
		return stars[i].MassKg > stars[j].MassKg
	})
	expected := stars[0]

	var current *body.Body
	for _, s := range stars {
		if s.Orphan() {
			current = s
			break
		}
	}

	corrected := 0
	if current == nil || current.ID != expected.ID {
		log.Warn("root star changed",
			zap.String("new_root", expected.ID),
			zap.String("old_root", rootID(current)))

		expected.ParentID = ""
		expected.CurrentParentID = ""
		for _, s := range stars[1:] {
			if s.ParentID != expected.ID || s.CurrentParentID != expected.ID {
				s.ParentID = expected.ID
				s.CurrentParentID = expected.ID
				corrected++
			}
		}
		updatePartners(stars)
	} else {
		// Root is correct; any additional parentless star still violates
		// the single-root invariant and gets attached.
		for _, s := range stars[1:] {
			if s.Orphan() {
				s.ParentID = expected.ID
				s.CurrentParentID = expected.ID
				corrected++
			}
		}
	}
	return corrected
}

// updatePartners rewrites the mutual companion-star lists symmetrically.
func updatePartners(stars []*body.Body) {
	for _, s := range stars {
		s.Partners = s.Partners[:0]
		for _, o := range stars {
			if o.ID != s.ID {
				s.Partners = append(s.Partners, o.ID)
			}
		}
	}
}

// repairOrphans reassigns every non-star active body whose parent is
// missing or dead to the admissible candidate with the highest
// gravitational influence score (mass / distance_AU²).
func repairOrphans(state *world.State, log *zap.Logger) int {
	corrected := 0
	state.All(func(b *body.Body) {
		if !b.Active() || b.IsStar() {
			return
		}
		if !danglingParent(state, b) {
			return
		}

		best := bestParent(state, b)
		if best == nil {
			log.Warn("no admissible parent found",
				zap.String("body", b.ID), zap.String("kind", string(b.Kind)))
			return
		}
		log.Info("reparented orphan",
			zap.String("body", b.ID),
			zap.String("parent", best.ID))
		b.ParentID = best.ID
		b.CurrentParentID = best.ID
		corrected++
	})
	return corrected
}

// repairMoonParents is a defensive second pass: a moon parented directly
// to a star is structurally invalid, so it moves to the nearest planet or
// gas giant.
func repairMoonParents(state *world.State, log *zap.Logger) int {
	corrected := 0
	state.All(func(b *body.Body) {
		if !b.Active() || b.Kind != body.KindMoon {
			return
		}
		parent := state.Get(b.EffectiveParent())
		if parent == nil || !parent.IsStar() {
			return
		}

		var nearest *body.Body
		nearestDist := math.Inf(1)
		state.All(func(c *body.Body) {
			if !c.Active() || c.ID == b.ID {
				return
			}
			if c.Kind != body.KindPlanet && c.Kind != body.KindGasGiant {
				return
			}
			if d := separationAU(b, c); d < nearestDist {
				nearest, nearestDist = c, d
			}
		})
		if nearest == nil {
			return
		}
		log.Warn("moon was parented to a star",
			zap.String("moon", b.ID),
			zap.String("star", parent.ID),
			zap.String("new_parent", nearest.ID))
		b.ParentID = nearest.ID
		b.CurrentParentID = nearest.ID
		corrected++
	})
	return corrected
}

// danglingParent reports whether b has no parent or a parent that is
// missing or no longer active.
func danglingParent(state *world.State, b *body.Body) bool {
	pid := b.EffectiveParent()
	if pid == "" {
		return true
	}
	p := state.Get(pid)
	return p == nil || !p.Active()
}

// bestParent scores every admissible candidate by mass over squared
// separation in AU and returns the maximum.
func bestParent(state *world.State, b *body.Body) *body.Body {
	var best *body.Body
	bestScore := -1.0
	state.All(func(c *body.Body) {
		if !c.Active() || c.ID == b.ID || !Admissible(c.Kind, b.Kind) {
			return
		}
		if score := influence(c, b); score > bestScore {
			best, bestScore = c, score
		}
	})
	return best
}

// influence is the gravitational-influence proxy mass / distance_AU².
func influence(candidate, child *body.Body) float64 {
	d := separationAU(candidate, child)
	if d < 1e-9 {
		d = 1e-9
	}
	return candidate.MassKg / (d * d)
}

// separationAU measures body separation in AU from physics positions,
// falling back to the semi-major-axis difference when either body has no
// Cartesian state.
func separationAU(a, b *body.Body) float64 {
	if a.Phys != nil && b.Phys != nil {
		return a.Phys.Position.Sub(b.Phys.Position).Len() / orbit.AU
	}
	var aa, ab float64
	if a.Orbit != nil {
		aa = a.Orbit.SemiMajorAxisM
	}
	if b.Orbit != nil {
		ab = b.Orbit.SemiMajorAxisM
	}
	return math.Abs(aa-ab) / orbit.AU
}

func rootID(b *body.Body) string {
	if b == nil {
		return ""
	}
	return b.ID
}

// logSummary emits the structured post-validation overview: root,
// companions, and per-star planet counts. Observability only.
func logSummary(state *world.State, log *zap.Logger) {
	stars := state.ActiveStars()
	var root *body.Body
	for _, s := range stars {
		if s.Orphan() {
			root = s
			break
		}
	}
	if root == nil {
		return
	}

	planetCounts := make(map[string]int, len(stars))
	state.All(func(b *body.Body) {
		if !b.Active() {
			return
		}
		if b.Kind == body.KindPlanet || b.Kind == body.KindGasGiant {
			planetCounts[b.EffectiveParent()]++
		}
	})

	companions := make([]string, 0, len(stars)-1)
	for _, s := range stars {
		if s.ID != root.ID {
			companions = append(companions, s.ID)
		}
	}

	log.Info("hierarchy summary",
		zap.String("root", root.ID),
		zap.Strings("companions", companions),
		zap.Any("planets_per_star", planetCounts))
}
