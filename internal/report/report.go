// Package report aggregates recoverable identity-resolution conditions into
// per-operation structured lists. Unmapped identifiers, hash collisions and
// malformed transfer records are diagnostics for the surrounding UI, never
// fatal errors.
package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Kind categorizes a diagnostic entry.
type Kind string

const (
	KindUnmappedLoad    Kind = "UNMAPPED_LOAD"
	KindUnmappedSave    Kind = "UNMAPPED_SAVE"
	KindHashCollision   Kind = "HASH_COLLISION"
	KindMalformedRecord Kind = "MALFORMED_RECORD"
	KindIDCorrection    Kind = "ID_CORRECTION"
)

// Entry is one immutable diagnostic record.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        Kind      `json:"kind"`
	RawID       uint16    `json:"raw_id,omitempty"`
	ServerID    uint16    `json:"server_id,omitempty"`
	Fingerprint uint64    `json:"fingerprint,omitempty"`
	Context     string    `json:"context,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
}

// Persister defines how an entry is durably stored.
type Persister interface {
	Append(operation string, e Entry) error
}

// Report is the append-only diagnostic list for a single load, save or paste
// operation. It is discarded when the operation's summary has been shown.
type Report struct {
	mu          sync.RWMutex
	operation   string
	entries     []Entry
	persister   Persister
	persistErrs int
}

// New creates a report for one named operation with an optional persister.
func New(operation string, p Persister) *Report {
	return &Report{operation: operation, persister: p}
}

// Operation returns the operation label this report belongs to.
func (r *Report) Operation() string {
	return r.operation
}

// Add appends an entry, assigning its id and timestamp if unset. Persistence
// failures are counted, not raised: diagnostics must never break the
// operation they describe.
func (r *Report) Add(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	if r.persister != nil {
		if err := r.persister.Append(r.operation, e); err != nil {
			r.persistErrs++
		}
	}
	r.mu.Unlock()
}

// Entries returns a copy of all recorded entries in append order.
func (r *Report) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries.
func (r *Report) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CountByKind tallies entries per kind.
func (r *Report) CountByKind() map[Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Kind]int)
	for _, e := range r.entries {
		counts[e.Kind]++
	}
	return counts
}

// PersistFailures returns how many entries could not be durably stored.
func (r *Report) PersistFailures() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persistErrs
}

// Summary renders a one-line digest suitable for a status bar.
func (r *Report) Summary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return fmt.Sprintf("%s: no warnings", r.operation)
	}
	counts := make(map[Kind]int)
	for _, e := range r.entries {
		counts[e.Kind]++
	}
	s := fmt.Sprintf("%s: %s warning(s)", r.operation, humanize.Comma(int64(len(r.entries))))
	for _, k := range []Kind{KindUnmappedLoad, KindUnmappedSave, KindHashCollision, KindMalformedRecord, KindIDCorrection} {
		if n := counts[k]; n > 0 {
			s += fmt.Sprintf(" [%s: %d]", k, n)
		}
	}
	return s
}
