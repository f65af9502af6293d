package match

import "github.com/mapforge/crossid/internal/domain/catalog"

// NoMatchAction selects what a paste does with an unresolvable record.
type NoMatchAction int

const (
	NoMatchSkip NoMatchAction = iota
	NoMatchPlaceholder
)

// CollisionAction selects what a paste does with an ambiguous record.
type CollisionAction int

const (
	CollisionUseFirst CollisionAction = iota
	CollisionSkip
)

// Policy is the caller-configurable fallback layer above Resolve. The
// matcher itself never applies policy; consumers do, so every outcome kind
// stays visible at the call site.
type Policy struct {
	OnNoMatch     NoMatchAction
	PlaceholderID catalog.ServerID
	OnCollision   CollisionAction
}

// DefaultPolicy skips unmatched items and accepts the first-discovered entry
// on collisions, surfacing the ambiguity through the report.
func DefaultPolicy() Policy {
	return Policy{OnNoMatch: NoMatchSkip, OnCollision: CollisionUseFirst}
}

// Apply turns an outcome into a concrete server id. The bool is false when
// the item should be skipped.
func (p Policy) Apply(o Outcome) (catalog.ServerID, bool) {
	switch o.Kind {
	case MatchExact, MatchHash:
		return o.ServerID, true
	case MatchCollision:
		if p.OnCollision == CollisionSkip {
			return 0, false
		}
		return o.ServerID, true
	default:
		if p.OnNoMatch == NoMatchPlaceholder {
			return p.PlaceholderID, true
		}
		return 0, false
	}
}
