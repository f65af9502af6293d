package fingerprint

import (
	"sort"

	"github.com/mapforge/crossid/internal/domain/catalog"
)

// Entry identifies one catalog occupant of a fingerprint.
type Entry struct {
	ServerID catalog.ServerID `json:"server_id"`
	Subtype  uint16           `json:"subtype"`
}

// Row is one persisted index entry, used by the sqlite fingerprint cache.
type Row struct {
	Fingerprint uint64
	ServerID    catalog.ServerID
	Subtype     uint16
}

type itemKey struct {
	serverID catalog.ServerID
	subtype  uint16
}

// Index maps fingerprints to the local items that carry them, plus the
// reverse item -> fingerprint direction needed for exact-match verification.
// Colliding fingerprints keep every entry; lookups order entries by
// (ServerID, Subtype) so the lowest server id is deterministically first.
// Read-only after build; rebuilt wholesale on asset reload.
type Index struct {
	byFingerprint map[uint64][]Entry
	byItem        map[itemKey]uint64
	collisions    int
	sprites       int
}

// BuildIndex hashes every subtype of every catalog definition through the
// sprite source and fills both directions. A sprite the source cannot
// resolve aborts the build: a half-built index must never be observed.
func BuildIndex(c *catalog.Catalog, src SpriteSource) (*Index, error) {
	ix := &Index{
		byFingerprint: make(map[uint64][]Entry, c.Len()),
		byItem:        make(map[itemKey]uint64, c.Len()),
	}
	for _, def := range c.Definitions() {
		for subtype := 0; subtype < def.Subtypes(); subtype++ {
			fp, err := ItemFingerprint(def, subtype, src)
			if err != nil {
				return nil, err
			}
			ix.insert(fp, Entry{ServerID: def.ServerID, Subtype: uint16(subtype)})
			ix.sprites += def.Layout.SpriteCount()
		}
	}
	return ix, nil
}

// RestoreIndex rebuilds an index from persisted rows, bypassing the sprite
// source entirely. Rows must come from a Snapshot of a fully built index.
func RestoreIndex(rows []Row) *Index {
	ix := &Index{
		byFingerprint: make(map[uint64][]Entry, len(rows)),
		byItem:        make(map[itemKey]uint64, len(rows)),
	}
	for _, row := range rows {
		ix.insert(row.Fingerprint, Entry{ServerID: row.ServerID, Subtype: row.Subtype})
	}
	return ix
}

func (ix *Index) insert(fp uint64, e Entry) {
	entries := ix.byFingerprint[fp]
	for _, existing := range entries {
		if existing == e {
			return
		}
	}
	if len(entries) == 1 {
		// Second distinct occupant: this fingerprint is now a collision.
		ix.collisions++
	}
	ix.byFingerprint[fp] = append(entries, e)
	ix.byItem[itemKey{e.ServerID, e.Subtype}] = fp
}

// Lookup returns every entry registered under a fingerprint, ordered by
// (ServerID, Subtype). The slice is a copy.
func (ix *Index) Lookup(fp uint64) []Entry {
	entries, ok := ix.byFingerprint[fp]
	if !ok {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServerID != out[j].ServerID {
			return out[i].ServerID < out[j].ServerID
		}
		return out[i].Subtype < out[j].Subtype
	})
	return out
}

// FingerprintOf returns the local fingerprint of an item subtype.
func (ix *Index) FingerprintOf(id catalog.ServerID, subtype uint16) (uint64, bool) {
	fp, ok := ix.byItem[itemKey{id, subtype}]
	return fp, ok
}

// Len returns the number of distinct fingerprints.
func (ix *Index) Len() int {
	return len(ix.byFingerprint)
}

// EntryCount returns the total number of (fingerprint, item) entries.
func (ix *Index) EntryCount() int {
	return len(ix.byItem)
}

// Collisions returns how many fingerprints are shared by more than one item.
func (ix *Index) Collisions() int {
	return ix.collisions
}

// SpritesHashed returns how many sprite cells were hashed during the build.
// Zero for an index restored from a snapshot, which hashes nothing.
func (ix *Index) SpritesHashed() int {
	return ix.sprites
}

// Snapshot returns every entry as persistable rows in a deterministic order.
func (ix *Index) Snapshot() []Row {
	rows := make([]Row, 0, len(ix.byItem))
	for fp, entries := range ix.byFingerprint {
		for _, e := range entries {
			rows = append(rows, Row{Fingerprint: fp, ServerID: e.ServerID, Subtype: e.Subtype})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Fingerprint != rows[j].Fingerprint {
			return rows[i].Fingerprint < rows[j].Fingerprint
		}
		if rows[i].ServerID != rows[j].ServerID {
			return rows[i].ServerID < rows[j].ServerID
		}
		return rows[i].Subtype < rows[j].Subtype
	})
	return rows
}
