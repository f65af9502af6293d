// Package translate rewrites item identifiers at map file load/save
// boundaries. The in-memory editing representation is always server-id
// native; translation happens only at the persistence edge, selected once
// per file by the version ordinal in its header.
package translate

import (
	"fmt"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/identity"
	"github.com/mapforge/crossid/internal/platform/metrics"
	"github.com/mapforge/crossid/internal/report"
)

// ClientIDFormatVersion is the first map format generation whose embedded
// identifiers are client ids rather than server ids.
const ClientIDFormatVersion = 5

// UnknownServerID is the in-memory sentinel for an identifier that could not
// be mapped on load. The item stays visible under its raw id, never dropped.
const UnknownServerID catalog.ServerID = 0

// FormatDescriptor classifies one persisted map file. It is derived purely
// from the version ordinal and holds no per-item state.
type FormatDescriptor struct {
	Version        int  `json:"version"`
	ClientIDNative bool `json:"client_id_native"`
}

// DescribeFormat classifies a map format version.
func DescribeFormat(version int) FormatDescriptor {
	return FormatDescriptor{
		Version:        version,
		ClientIDNative: version >= ClientIDFormatVersion,
	}
}

// Resolution is the tagged result of a load-side identifier lookup. Mapped
// false means ServerID is UnknownServerID and Raw preserves the source id.
type Resolution struct {
	ServerID catalog.ServerID
	Raw      uint16
	Mapped   bool
}

// Translator performs boundary-only identifier rewriting for a single file
// operation. Create one per load or save and discard it afterwards; it keeps
// no state beyond its descriptor, the read-only identity map, and the
// operation report.
type Translator struct {
	desc FormatDescriptor
	ids  *identity.IdentityMap
	rep  *report.Report
}

// NewTranslator binds a translator to one file operation.
func NewTranslator(desc FormatDescriptor, ids *identity.IdentityMap, rep *report.Report) *Translator {
	return &Translator{desc: desc, ids: ids, rep: rep}
}

// Descriptor returns the file classification, readable by the surrounding
// pipeline before any item is processed.
func (t *Translator) Descriptor() FormatDescriptor {
	return t.desc
}

// OnLoadIdentifier resolves one raw identifier read from the file. In
// server-id native files the raw id passes through untouched. In client-id
// native files it is mapped to a server id; a miss yields the unknown
// sentinel, preserves the raw id, and records a warning.
func (t *Translator) OnLoadIdentifier(raw uint16) Resolution {
	if !t.desc.ClientIDNative {
		return Resolution{ServerID: catalog.ServerID(raw), Raw: raw, Mapped: true}
	}
	if sid, ok := t.ids.ServerFor(catalog.ClientID(raw)); ok {
		return Resolution{ServerID: sid, Raw: raw, Mapped: true}
	}
	metrics.Get().RecordUnmapped(true)
	if t.rep != nil {
		t.rep.Add(report.Entry{
			Kind:    report.KindUnmappedLoad,
			RawID:   raw,
			Context: fmt.Sprintf("format v%d load", t.desc.Version),
			Outcome: "kept raw id under unknown sentinel",
		})
	}
	return Resolution{ServerID: UnknownServerID, Raw: raw, Mapped: false}
}

// OnSaveIdentifier maps one in-memory server id to the file's scheme. A miss
// in client-id native mode writes the server id verbatim and records a
// warning; the save never aborts.
func (t *Translator) OnSaveIdentifier(id catalog.ServerID) uint16 {
	if !t.desc.ClientIDNative {
		return uint16(id)
	}
	if cid, ok := t.ids.ClientFor(id); ok {
		return uint16(cid)
	}
	metrics.Get().RecordUnmapped(false)
	if t.rep != nil {
		t.rep.Add(report.Entry{
			Kind:     report.KindUnmappedSave,
			ServerID: uint16(id),
			Context:  fmt.Sprintf("format v%d save", t.desc.Version),
			Outcome:  "wrote server id verbatim",
		})
	}
	return uint16(id)
}
