package transfer

import (
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/mapforge/crossid/internal/match"
)

func compress(t *testing.T, body []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(body, nil)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Payload{
		SourceVersion: "10.98",
		Records: []match.TransferRecord{
			{OriginalID: 2160, Fingerprint: 0xA1B2C3D4E5F60718, Offset: match.Offset{DX: 1, DY: 2}},
			{OriginalID: 2148, Subtype: 3, Fingerprint: 42, Attributes: map[string]any{"count": float64(50)}},
		},
	}

	frame, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}

	out, bad, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if len(bad) != 0 {
		t.Fatalf("clean payload produced record errors: %v", bad)
	}
	if out.Schema != SchemaVersion {
		t.Errorf("schema = %d, want %d", out.Schema, SchemaVersion)
	}
	if out.SourceVersion != "10.98" {
		t.Errorf("source version lost: %q", out.SourceVersion)
	}
	if len(out.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out.Records))
	}
	if out.Records[0].Fingerprint != in.Records[0].Fingerprint {
		t.Errorf("fingerprint mangled: %#x", out.Records[0].Fingerprint)
	}
	if out.Records[0].Offset != in.Records[0].Offset {
		t.Errorf("offset mangled: %+v", out.Records[0].Offset)
	}
	if out.Records[1].Attributes["count"] != float64(50) {
		t.Errorf("attributes mangled: %v", out.Records[1].Attributes)
	}
}

func TestEncodeStampsSchema(t *testing.T) {
	frame, err := Encode(Payload{Schema: 99})
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if out.Schema != SchemaVersion {
		t.Errorf("encode must stamp the current schema, got %d", out.Schema)
	}
}

func TestDecodeSchemaMismatch(t *testing.T) {
	frame := compress(t, []byte(`{"schema":99,"records":[]}`))
	_, _, err := Decode(frame)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestDecodeCorruptFrame(t *testing.T) {
	if _, _, err := Decode([]byte("not a zstd frame")); err == nil {
		t.Error("garbage frame must fail hard")
	}
	if _, _, err := Decode(compress(t, []byte("{broken json"))); err == nil {
		t.Error("corrupt envelope must fail hard")
	}
}

func TestDecodeRejectsOversizedFrame(t *testing.T) {
	// Highly compressible body: a few KB on the wire, past the expansion cap
	// when decoded.
	frame := compress(t, make([]byte, maxDecodedSize+1))
	if _, _, err := Decode(frame); err == nil {
		t.Error("frame expanding past the decode cap must be rejected")
	}
}

func TestDecodeMalformedRecordFailsAlone(t *testing.T) {
	body := `{"schema":1,"records":[` +
		`{"original_id":2160,"fingerprint":1},` +
		`{"original_id":"not-a-number","fingerprint":2},` +
		`{"original_id":2148,"fingerprint":3}]}`

	p, bad, err := Decode(compress(t, []byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Records) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(p.Records))
	}
	if p.Records[0].OriginalID != 2160 || p.Records[1].OriginalID != 2148 {
		t.Errorf("wrong survivors: %+v", p.Records)
	}
	if len(bad) != 1 {
		t.Fatalf("expected 1 record error, got %d", len(bad))
	}
	if bad[0].Index != 1 {
		t.Errorf("record error index = %d, want 1", bad[0].Index)
	}
	if !strings.Contains(bad[0].Error(), "record 1") {
		t.Errorf("record error message drifted: %q", bad[0].Error())
	}
	if bad[0].Unwrap() == nil {
		t.Error("record error must wrap the parse error")
	}
}

func TestPayloadSchemaJSON(t *testing.T) {
	doc, err := PayloadSchemaJSON()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"schema", "records", "source_version"} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("schema document missing %q property", want)
		}
	}
}
