// Package match decides which local item, if any, a transferred item record
// represents. Resolution is a pure function of the record plus the two
// read-only tables (catalog and fingerprint index); it performs no I/O and is
// safe to call inline during a paste gesture.
package match

import (
	"fmt"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
	"github.com/mapforge/crossid/internal/platform/metrics"
	"github.com/mapforge/crossid/internal/report"
)

// Offset is the position of a transferred item relative to the paste anchor.
type Offset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
	DZ int `json:"dz"`
}

// TransferRecord is one item as captured at copy time by the source
// instance. It is immutable for its transfer lifetime and carries everything
// a target instance needs: the source numbering is advisory, the fingerprint
// is authoritative.
type TransferRecord struct {
	OriginalID  catalog.ServerID `json:"original_id"`
	Subtype     uint16           `json:"subtype,omitempty"`
	Fingerprint uint64           `json:"fingerprint"`
	Attributes  map[string]any   `json:"attributes,omitempty"`
	Offset      Offset           `json:"offset"`
}

// Kind enumerates the four resolution outcomes.
type Kind int

const (
	MatchNone Kind = iota
	MatchExact
	MatchHash
	MatchCollision
)

func (k Kind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchHash:
		return "hash"
	case MatchCollision:
		return "collision"
	default:
		return "none"
	}
}

// Confidence values per outcome kind.
const (
	ConfidenceExact     = 1.0
	ConfidenceHash      = 0.95
	ConfidenceCollision = 0.70
	ConfidenceNone      = 0.0
)

// Outcome is the tagged result of resolving one record. ServerID and Subtype
// are meaningful for every kind except MatchNone; Alternates carries the
// remaining candidates of a collision, ordered by (ServerID, Subtype).
type Outcome struct {
	Kind       Kind
	ServerID   catalog.ServerID
	Subtype    uint16
	Alternates []fingerprint.Entry
	Confidence float64
}

// Matcher resolves transfer records against one instance's tables.
type Matcher struct {
	catalog *catalog.Catalog
	index   *fingerprint.Index
	rep     *report.Report
}

// NewMatcher builds a matcher over a catalog and its fingerprint index. The
// report is optional; collisions are recorded there when present.
func NewMatcher(c *catalog.Catalog, ix *fingerprint.Index, rep *report.Report) *Matcher {
	return &Matcher{catalog: c, index: ix, rep: rep}
}

// Resolve evaluates the layered decision procedure in strict order:
//
//  1. The record's original id exists locally AND its recomputed local
//     fingerprint equals the record's -> MatchExact. A fingerprint mismatch
//     falls through; the id alone is never trusted.
//  2. Fingerprint index lookup: one hit -> MatchHash; several -> the lowest
//     server id wins as MatchCollision with the rest as alternates.
//  3. Otherwise MatchNone.
func (m *Matcher) Resolve(rec TransferRecord) Outcome {
	out := m.resolve(rec)
	metrics.Get().RecordMatch(out.Kind.String())
	return out
}

func (m *Matcher) resolve(rec TransferRecord) Outcome {
	if def, ok := m.catalog.Definition(rec.OriginalID); ok {
		if local, ok := m.index.FingerprintOf(def.ServerID, rec.Subtype); ok && local == rec.Fingerprint {
			return Outcome{
				Kind:       MatchExact,
				ServerID:   def.ServerID,
				Subtype:    rec.Subtype,
				Confidence: ConfidenceExact,
			}
		}
	}

	entries := m.index.Lookup(rec.Fingerprint)
	switch {
	case len(entries) == 1:
		return Outcome{
			Kind:       MatchHash,
			ServerID:   entries[0].ServerID,
			Subtype:    entries[0].Subtype,
			Confidence: ConfidenceHash,
		}
	case len(entries) > 1:
		if m.rep != nil {
			m.rep.Add(report.Entry{
				Kind:        report.KindHashCollision,
				RawID:       uint16(rec.OriginalID),
				ServerID:    uint16(entries[0].ServerID),
				Fingerprint: rec.Fingerprint,
				Context:     "paste",
				Outcome:     fmt.Sprintf("picked lowest of %d candidates", len(entries)),
			})
		}
		return Outcome{
			Kind:       MatchCollision,
			ServerID:   entries[0].ServerID,
			Subtype:    entries[0].Subtype,
			Alternates: entries[1:],
			Confidence: ConfidenceCollision,
		}
	}

	return Outcome{Kind: MatchNone, Confidence: ConfidenceNone}
}
