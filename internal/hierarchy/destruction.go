package hierarchy

import (
	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

// WasRoot reports whether a destroyed body held the root position: a star
// with neither a declared nor an effective parent before destruction.
func WasRoot(b *body.Body) bool {
	return b.IsStar() && b.Orphan()
}

// SelectNewRoot picks the replacement root after a root star dies: the
// first active star in iteration order, excluding the destroyed one.
// Returns nil when no star survives. This mutates nothing; the caller
// runs Validate to perform the actual reassignment.
//
// TODO: pick the nearest or most massive surviving star instead of
// iteration order. Needs product sign-off first, since it changes which
// star systems survive a root collision.
func SelectNewRoot(state *world.State, destroyedID string) *body.Body {
	for _, s := range state.ActiveStars() {
		if s.ID != destroyedID {
			return s
		}
	}
	return nil
}

// NeedsReassignment reports whether a body should be handed to a distant
// star after a destruction event: it has no parent, or its current parent
// is missing or no longer active. Stars are never flagged here; the
// validator's mass-ordering pass owns star placement.
func NeedsReassignment(state *world.State, b *body.Body) bool {
	if b.IsStar() {
		return false
	}
	return danglingParent(state, b)
}
