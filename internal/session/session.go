// Package session owns the long-lived read-only tables of one editor
// instance. A reload builds the whole (catalog, identity map, fingerprint
// index) triple off to the side and publishes it by replacement: matching
// operations never observe a partially built table.
package session

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
	"github.com/mapforge/crossid/internal/domain/identity"
	"github.com/mapforge/crossid/internal/match"
	"github.com/mapforge/crossid/internal/platform/logger"
	"github.com/mapforge/crossid/internal/platform/metrics"
	"github.com/mapforge/crossid/internal/report"
	"github.com/mapforge/crossid/internal/translate"
)

// ErrNotLoaded is returned when tables are requested before the first load.
var ErrNotLoaded = errors.New("session: no asset set loaded")

// Tables is one immutable generation of the shared lookup structures.
type Tables struct {
	Catalog  *catalog.Catalog
	IDs      *identity.IdentityMap
	Index    *fingerprint.Index
	LoadedAt time.Time
}

// Session publishes the current Tables handle. Safe for concurrent readers;
// writers replace the whole handle atomically.
type Session struct {
	current atomic.Pointer[Tables]
	log     *logger.Logger
}

// New creates an empty session.
func New(log *logger.Logger) *Session {
	return &Session{log: log}
}

// Reload builds a fresh generation from the definitions and sprite source
// and swaps it in. On any error the previous generation stays published.
func (s *Session) Reload(defs []catalog.ItemDefinition, src fingerprint.SpriteSource) error {
	start := time.Now()
	cat := catalog.New(defs)
	ids := identity.Build(cat)

	ix, err := fingerprint.BuildIndex(cat, src)
	if err != nil {
		return err
	}

	s.publish(cat, ids, ix, start)
	return nil
}

// ReloadFromSnapshot swaps in a generation whose index was restored from a
// persisted snapshot, skipping sprite hashing entirely.
func (s *Session) ReloadFromSnapshot(defs []catalog.ItemDefinition, rows []fingerprint.Row) {
	start := time.Now()
	cat := catalog.New(defs)
	ids := identity.Build(cat)
	ix := fingerprint.RestoreIndex(rows)
	s.publish(cat, ids, ix, start)
}

func (s *Session) publish(cat *catalog.Catalog, ids *identity.IdentityMap, ix *fingerprint.Index, start time.Time) {
	t := &Tables{Catalog: cat, IDs: ids, Index: ix, LoadedAt: time.Now()}
	s.current.Store(t)

	elapsed := time.Since(start)
	metrics.Get().RecordIndexBuild(ix.SpritesHashed(), ix.EntryCount(), ix.Collisions(), elapsed)
	if s.log != nil {
		s.log.Info("published tables: %s definitions, %s fingerprints, %d collisions in %s",
			humanize.Comma(int64(cat.Len())), humanize.Comma(int64(ix.Len())), ix.Collisions(), elapsed)
	}
}

// Tables returns the current generation.
func (s *Session) Tables() (*Tables, error) {
	t := s.current.Load()
	if t == nil {
		return nil, ErrNotLoaded
	}
	return t, nil
}

// Matcher builds a matcher over the current generation. The report collects
// collision diagnostics for the paste operation at hand.
func (s *Session) Matcher(rep *report.Report) (*match.Matcher, error) {
	t, err := s.Tables()
	if err != nil {
		return nil, err
	}
	return match.NewMatcher(t.Catalog, t.Index, rep), nil
}

// Translator builds a boundary translator over the current generation for
// one file operation with the given format version.
func (s *Session) Translator(formatVersion int, rep *report.Report) (*translate.Translator, error) {
	t, err := s.Tables()
	if err != nil {
		return nil, err
	}
	return translate.NewTranslator(translate.DescribeFormat(formatVersion), t.IDs, rep), nil
}
