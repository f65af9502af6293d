// Package transfer serializes clipboard payloads moving between editor
// instances. A payload is self-describing: a schema tag, the source catalog
// version, and the item records. The wire frame is zstd-compressed JSON so
// large multi-tile selections stay small on the bridge.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/mapforge/crossid/internal/match"
	"github.com/mapforge/crossid/internal/platform/metrics"
)

// SchemaVersion is the payload schema this build produces and accepts.
const SchemaVersion = 1

// maxDecodedSize caps how far a compressed frame may expand on decode. The
// bridge relays frames from arbitrary peers; without a cap a tiny frame
// could balloon to gigabytes before the JSON parse ever sees it.
const maxDecodedSize = 64 << 20

// ErrSchemaMismatch is returned when a payload was produced under an
// incompatible schema version. The consumer rejects gracefully; it must not
// guess at field meanings.
var ErrSchemaMismatch = errors.New("transfer: payload schema version mismatch")

// Payload is one clipboard transfer between instances. It never depends on
// the producing instance's catalog: fingerprints carry the visual identity.
type Payload struct {
	Schema        int                    `json:"schema" jsonschema:"description=Payload schema version,minimum=1"`
	SourceVersion string                 `json:"source_version,omitempty" jsonschema:"description=Client/assets version of the producing instance"`
	Records       []match.TransferRecord `json:"records" jsonschema:"description=Transferred item records with fingerprints"`
}

// RecordError reports one malformed record inside an otherwise readable
// payload. The record fails alone; the rest of the paste proceeds.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("transfer: record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Encode serializes and compresses a payload. The schema tag is stamped to
// the current version.
func Encode(p Payload) ([]byte, error) {
	p.Schema = SchemaVersion
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("transfer: marshal payload: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("transfer: init compressor: %w", err)
	}
	defer enc.Close()
	metrics.Get().RecordPayloadEncoded()
	return enc.EncodeAll(body, nil), nil
}

// envelope defers record parsing so one bad record cannot poison the rest.
type envelope struct {
	Schema        int               `json:"schema"`
	SourceVersion string            `json:"source_version"`
	Records       []json.RawMessage `json:"records"`
}

// Decode decompresses and parses a payload. A structurally corrupt frame or
// a schema mismatch is a hard failure; malformed individual records are
// returned as RecordErrors alongside the records that did parse.
func Decode(data []byte) (Payload, []RecordError, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return Payload{}, nil, fmt.Errorf("transfer: init decompressor: %w", err)
	}
	defer dec.Close()
	body, err := dec.DecodeAll(data, nil)
	if err != nil {
		return Payload{}, nil, fmt.Errorf("transfer: decompress payload: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Payload{}, nil, fmt.Errorf("transfer: parse payload: %w", err)
	}
	if env.Schema != SchemaVersion {
		return Payload{}, nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.Schema, SchemaVersion)
	}

	p := Payload{
		Schema:        env.Schema,
		SourceVersion: env.SourceVersion,
		Records:       make([]match.TransferRecord, 0, len(env.Records)),
	}
	var bad []RecordError
	for i, raw := range env.Records {
		var rec match.TransferRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			bad = append(bad, RecordError{Index: i, Err: err})
			continue
		}
		p.Records = append(p.Records, rec)
	}
	return p, bad, nil
}
