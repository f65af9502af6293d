package match

import (
	"fmt"
	"strings"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
	"github.com/mapforge/crossid/internal/report"
)

// Correction records one id fix determined by sprite matching.
type Correction struct {
	OriginalID  catalog.ServerID
	CorrectedID catalog.ServerID
	Confidence  float64
	Method      string
}

// Corrector finds and fixes wrong server ids when the sprite exists locally
// but is registered under a different id, e.g. after a version migration.
// When several ids share a fingerprint the lowest id wins, for stability.
type Corrector struct {
	index   *fingerprint.Index
	rep     *report.Report
	history []Correction
}

// NewCorrector builds a corrector over a fingerprint index. The report is
// optional; applied corrections are recorded there when present.
func NewCorrector(ix *fingerprint.Index, rep *report.Report) *Corrector {
	return &Corrector{index: ix, rep: rep}
}

// Correct checks a single item id. It returns false when the id has no local
// fingerprint, has no alternatives, or is already the lowest id for its
// sprite. An exact hash match carries confidence 1.0.
func (c *Corrector) Correct(id catalog.ServerID, subtype uint16) (Correction, bool) {
	fp, ok := c.index.FingerprintOf(id, subtype)
	if !ok {
		return Correction{}, false
	}
	entries := c.index.Lookup(fp)
	var corrected catalog.ServerID
	found := false
	for _, e := range entries {
		if e.ServerID != id {
			corrected = e.ServerID
			found = true
			break
		}
	}
	if !found || id < corrected {
		return Correction{}, false
	}

	cor := Correction{
		OriginalID:  id,
		CorrectedID: corrected,
		Confidence:  1.0,
		Method:      "sprite_hash",
	}
	c.history = append(c.history, cor)
	if c.rep != nil {
		c.rep.Add(report.Entry{
			Kind:        report.KindIDCorrection,
			RawID:       uint16(id),
			ServerID:    uint16(corrected),
			Fingerprint: fp,
			Context:     "auto-correction",
			Outcome:     fmt.Sprintf("corrected %d -> %d", id, corrected),
		})
	}
	return cor, true
}

// CorrectBatch checks many ids and returns the corrections keyed by original
// id. Ids that need no correction are omitted.
func (c *Corrector) CorrectBatch(ids []catalog.ServerID, subtype uint16) map[catalog.ServerID]Correction {
	corrections := make(map[catalog.ServerID]Correction)
	for _, id := range ids {
		if cor, ok := c.Correct(id, subtype); ok {
			corrections[id] = cor
		}
	}
	return corrections
}

// History returns a copy of every correction made so far.
func (c *Corrector) History() []Correction {
	out := make([]Correction, len(c.history))
	copy(out, c.history)
	return out
}

// ClearHistory discards the correction history.
func (c *Corrector) ClearHistory() {
	c.history = nil
}

// ReportText renders a human-readable correction report.
func (c *Corrector) ReportText() string {
	if len(c.history) == 0 {
		return "No corrections have been made."
	}
	var b strings.Builder
	b.WriteString("Auto-Correction Report\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for i, cor := range c.history {
		fmt.Fprintf(&b, "%d. ID %d -> %d\n", i+1, cor.OriginalID, cor.CorrectedID)
		fmt.Fprintf(&b, "   Confidence: %.1f%%\n", cor.Confidence*100)
		fmt.Fprintf(&b, "   Method: %s\n\n", cor.Method)
	}
	fmt.Fprintf(&b, "Total corrections: %d\n", len(c.history))
	return b.String()
}
