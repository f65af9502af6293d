package match

import (
	"testing"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
	"github.com/mapforge/crossid/internal/report"
)

// fixedSource returns one RGBA cell per server id so fingerprints are stable
// across builds. Ids aliased to the same byte collide on purpose.
type fixedSource struct {
	alias map[catalog.ServerID]byte
}

func (s fixedSource) SpritePixels(def catalog.ItemDefinition, subtype, _, _, _, _ int) ([]byte, int, int, error) {
	b, ok := s.alias[def.ServerID]
	if !ok {
		b = byte(def.ServerID)
	}
	pixels := make([]byte, 2*2*4)
	for i := range pixels {
		pixels[i] = b + byte(subtype)
	}
	return pixels, 2, 2, nil
}

func buildTables(t *testing.T, defs []catalog.ItemDefinition, alias map[catalog.ServerID]byte) (*catalog.Catalog, *fingerprint.Index) {
	t.Helper()
	c := catalog.New(defs)
	ix, err := fingerprint.BuildIndex(c, fixedSource{alias: alias})
	if err != nil {
		t.Fatal(err)
	}
	return c, ix
}

func TestResolveExact(t *testing.T) {
	c, ix := buildTables(t, []catalog.ItemDefinition{
		{ServerID: 100, ClientID: 500},
		{ServerID: 101, ClientID: 501},
	}, nil)
	m := NewMatcher(c, ix, nil)

	fp, _ := ix.FingerprintOf(100, 0)
	out := m.Resolve(TransferRecord{OriginalID: 100, Fingerprint: fp})
	if out.Kind != MatchExact {
		t.Fatalf("expected exact match, got %s", out.Kind)
	}
	if out.ServerID != 100 || out.Confidence != ConfidenceExact {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestResolveNeverTrustsIDAlone(t *testing.T) {
	// The record's original id exists locally, but the local item looks
	// different. The record's fingerprint belongs to item 101, so resolution
	// must land on 101 via hash, not on 100 via id.
	c, ix := buildTables(t, []catalog.ItemDefinition{
		{ServerID: 100, ClientID: 500},
		{ServerID: 101, ClientID: 501},
	}, nil)
	m := NewMatcher(c, ix, nil)

	fp101, _ := ix.FingerprintOf(101, 0)
	out := m.Resolve(TransferRecord{OriginalID: 100, Fingerprint: fp101})
	if out.Kind != MatchHash {
		t.Fatalf("expected hash match, got %s", out.Kind)
	}
	if out.ServerID != 101 {
		t.Errorf("mismatched id must not win: resolved to %d", out.ServerID)
	}
	if out.Confidence != ConfidenceHash {
		t.Errorf("confidence = %v, want %v", out.Confidence, ConfidenceHash)
	}
}

func TestResolveHashWithAbsentOriginalID(t *testing.T) {
	c, ix := buildTables(t, []catalog.ItemDefinition{
		{ServerID: 100, ClientID: 500},
	}, nil)
	m := NewMatcher(c, ix, nil)

	fp, _ := ix.FingerprintOf(100, 0)
	out := m.Resolve(TransferRecord{OriginalID: 9000, Fingerprint: fp})
	if out.Kind != MatchHash || out.ServerID != 100 {
		t.Errorf("expected hash match on 100, got %+v", out)
	}
}

func TestResolveCollisionPicksLowestAndReports(t *testing.T) {
	rep := report.New("paste", nil)
	c, ix := buildTables(t, []catalog.ItemDefinition{
		{ServerID: 300, ClientID: 700},
		{ServerID: 200, ClientID: 600},
	}, map[catalog.ServerID]byte{300: 0x42, 200: 0x42})
	m := NewMatcher(c, ix, rep)

	fp, _ := ix.FingerprintOf(300, 0)
	out := m.Resolve(TransferRecord{OriginalID: 9000, Fingerprint: fp})
	if out.Kind != MatchCollision {
		t.Fatalf("expected collision, got %s", out.Kind)
	}
	if out.ServerID != 200 {
		t.Errorf("lowest server id must win, got %d", out.ServerID)
	}
	if len(out.Alternates) != 1 || out.Alternates[0].ServerID != 300 {
		t.Errorf("alternates should carry the loser, got %v", out.Alternates)
	}
	if out.Confidence != ConfidenceCollision {
		t.Errorf("confidence = %v, want %v", out.Confidence, ConfidenceCollision)
	}

	entries := rep.Entries()
	if len(entries) != 1 || entries[0].Kind != report.KindHashCollision {
		t.Fatalf("collision must be recorded, got %v", entries)
	}
	if entries[0].Fingerprint != fp {
		t.Errorf("report entry missing the colliding fingerprint")
	}
}

func TestResolveNone(t *testing.T) {
	c, ix := buildTables(t, []catalog.ItemDefinition{
		{ServerID: 100, ClientID: 500},
	}, nil)
	m := NewMatcher(c, ix, nil)

	out := m.Resolve(TransferRecord{OriginalID: 9000, Fingerprint: 0xDEADBEEF})
	if out.Kind != MatchNone {
		t.Fatalf("expected no match, got %s", out.Kind)
	}
	if out.Confidence != ConfidenceNone {
		t.Errorf("confidence = %v, want 0", out.Confidence)
	}
}

func TestPolicyApply(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		outcome Outcome
		wantID  catalog.ServerID
		wantOK  bool
	}{
		{"exact always places", DefaultPolicy(), Outcome{Kind: MatchExact, ServerID: 100}, 100, true},
		{"hash always places", DefaultPolicy(), Outcome{Kind: MatchHash, ServerID: 100}, 100, true},
		{"collision use first", DefaultPolicy(), Outcome{Kind: MatchCollision, ServerID: 200}, 200, true},
		{"collision skip", Policy{OnCollision: CollisionSkip}, Outcome{Kind: MatchCollision, ServerID: 200}, 0, false},
		{"no match skip", DefaultPolicy(), Outcome{Kind: MatchNone}, 0, false},
		{"no match placeholder", Policy{OnNoMatch: NoMatchPlaceholder, PlaceholderID: 460}, Outcome{Kind: MatchNone}, 460, true},
	}
	for _, tc := range cases {
		id, ok := tc.policy.Apply(tc.outcome)
		if id != tc.wantID || ok != tc.wantOK {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tc.name, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestKindString(t *testing.T) {
	if MatchExact.String() != "exact" || MatchNone.String() != "none" {
		t.Error("kind labels drifted")
	}
	if MatchHash.String() != "hash" || MatchCollision.String() != "collision" {
		t.Error("kind labels drifted")
	}
}
