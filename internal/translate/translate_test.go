package translate

import (
	"testing"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/identity"
	"github.com/mapforge/crossid/internal/report"
)

func testIdentityMap() *identity.IdentityMap {
	c := catalog.New([]catalog.ItemDefinition{
		{ServerID: 2160, ClientID: 3043, Name: "crystal coin"},
		{ServerID: 2148, ClientID: 3031, Name: "gold coin"},
	})
	return identity.Build(c)
}

func TestDescribeFormatThreshold(t *testing.T) {
	cases := []struct {
		version int
		native  bool
	}{
		{1, false},
		{4, false},
		{5, true},
		{6, true},
	}
	for _, tc := range cases {
		d := DescribeFormat(tc.version)
		if d.ClientIDNative != tc.native {
			t.Errorf("version %d: ClientIDNative = %v, want %v", tc.version, d.ClientIDNative, tc.native)
		}
		if d.Version != tc.version {
			t.Errorf("version %d: descriptor kept %d", tc.version, d.Version)
		}
	}
}

func TestLoadClientIDNative(t *testing.T) {
	tr := NewTranslator(DescribeFormat(6), testIdentityMap(), nil)

	res := tr.OnLoadIdentifier(3043)
	if !res.Mapped {
		t.Fatal("known client id should map")
	}
	if res.ServerID != 2160 {
		t.Errorf("raw 3043 resolved to %d, want 2160", res.ServerID)
	}
	if res.Raw != 3043 {
		t.Errorf("raw id not preserved: %d", res.Raw)
	}
}

func TestLoadServerIDNativePassthrough(t *testing.T) {
	rep := report.New("load", nil)
	tr := NewTranslator(DescribeFormat(3), testIdentityMap(), rep)

	res := tr.OnLoadIdentifier(9999)
	if !res.Mapped || res.ServerID != 9999 {
		t.Errorf("server-native load must pass through untouched, got %+v", res)
	}
	if rep.Len() != 0 {
		t.Errorf("passthrough must not warn, got %d entries", rep.Len())
	}
}

func TestLoadUnmappedKeepsRawAndWarns(t *testing.T) {
	rep := report.New("load", nil)
	tr := NewTranslator(DescribeFormat(6), testIdentityMap(), rep)

	res := tr.OnLoadIdentifier(5000)
	if res.Mapped {
		t.Fatal("unknown client id must not report as mapped")
	}
	if res.ServerID != UnknownServerID {
		t.Errorf("expected unknown sentinel, got %d", res.ServerID)
	}
	if res.Raw != 5000 {
		t.Errorf("raw id must survive the miss, got %d", res.Raw)
	}
	entries := rep.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].Kind != report.KindUnmappedLoad || entries[0].RawID != 5000 {
		t.Errorf("unexpected warning entry: %+v", entries[0])
	}
}

func TestSaveClientIDNative(t *testing.T) {
	tr := NewTranslator(DescribeFormat(6), testIdentityMap(), nil)

	if got := tr.OnSaveIdentifier(2160); got != 3043 {
		t.Errorf("server 2160 saved as %d, want client 3043", got)
	}
}

func TestSaveServerIDNativePassthrough(t *testing.T) {
	tr := NewTranslator(DescribeFormat(4), testIdentityMap(), nil)

	if got := tr.OnSaveIdentifier(2160); got != 2160 {
		t.Errorf("storage-native save must write server id, got %d", got)
	}
}

func TestSaveUnmappedWritesVerbatimAndWarns(t *testing.T) {
	rep := report.New("save", nil)
	tr := NewTranslator(DescribeFormat(6), testIdentityMap(), rep)

	if got := tr.OnSaveIdentifier(7777); got != 7777 {
		t.Errorf("unmapped save must write the server id verbatim, got %d", got)
	}
	entries := rep.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].Kind != report.KindUnmappedSave || entries[0].ServerID != 7777 {
		t.Errorf("unexpected warning entry: %+v", entries[0])
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ids := testIdentityMap()
	desc := DescribeFormat(6)

	save := NewTranslator(desc, ids, nil)
	load := NewTranslator(desc, ids, nil)
	for _, sid := range []catalog.ServerID{2160, 2148} {
		written := save.OnSaveIdentifier(sid)
		res := load.OnLoadIdentifier(written)
		if !res.Mapped || res.ServerID != sid {
			t.Errorf("round trip of %d came back as %+v", sid, res)
		}
	}
}
