package fingerprint

import (
	"bytes"
	"testing"

	"github.com/mapforge/crossid/internal/domain/catalog"
)

func TestHashBytesEmptyIsOffsetBasis(t *testing.T) {
	if got := HashBytes(nil); got != OffsetBasis64 {
		t.Errorf("HashBytes(nil) = %d, want %d", got, OffsetBasis64)
	}
	if got := HashBytes([]byte{}); got != OffsetBasis64 {
		t.Errorf("HashBytes(empty) = %d, want %d", got, OffsetBasis64)
	}
}

func TestHashBytesKnownVector(t *testing.T) {
	// Published FNV-1a 64 vector.
	if got := HashBytes([]byte("foo")); got != 15902901984413996407 {
		t.Errorf("HashBytes(foo) = %d, want 15902901984413996407", got)
	}
}

func TestHashBytesDeterminism(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB, 0x3C, 0x00, 0xFF}, 256)
	first := HashBytes(data)
	for i := 0; i < 100; i++ {
		if got := HashBytes(data); got != first {
			t.Fatalf("iteration %d: hash %d differs from first %d", i, got, first)
		}
	}
}

func TestHashSpriteSensitivity(t *testing.T) {
	const w, h = 8, 8
	base := bytes.Repeat([]byte{0x10}, w*h*4)

	baseFP, err := HashSprite(base, w, h)
	if err != nil {
		t.Fatal(err)
	}

	// Near-identical corpus: every single-byte flip must land elsewhere.
	seen := map[uint64]int{baseFP: -1}
	for i := 0; i < len(base); i += 7 {
		mutated := append([]byte(nil), base...)
		mutated[i] ^= 0x01
		fp, err := HashSprite(mutated, w, h)
		if err != nil {
			t.Fatal(err)
		}
		if prev, dup := seen[fp]; dup {
			t.Fatalf("byte %d collides with variant %d", i, prev)
		}
		seen[fp] = i
	}
}

func TestHashSpriteDimensionsMatter(t *testing.T) {
	pixels := bytes.Repeat([]byte{0xFF}, 2*8*4)

	wide, err := HashSprite(pixels, 8, 2)
	if err != nil {
		t.Fatal(err)
	}
	tall, err := HashSprite(pixels, 2, 8)
	if err != nil {
		t.Fatal(err)
	}
	if wide == tall {
		t.Error("8x2 and 2x8 sprites with identical pixels should hash differently")
	}
}

func TestHashSpriteSizeMismatch(t *testing.T) {
	if _, err := HashSprite(make([]byte, 10), 2, 2); err == nil {
		t.Error("expected size mismatch error for short pixel buffer")
	}
}

func TestHashCombinedOrderMatters(t *testing.T) {
	a, b := HashBytes([]byte("a")), HashBytes([]byte("b"))

	if HashCombined([]uint64{a, b}) == HashCombined([]uint64{b, a}) {
		t.Error("combined hash should depend on sequence order")
	}
	if HashCombined(nil) != OffsetBasis64 {
		t.Error("combining nothing should yield the offset basis")
	}
}

// stubSource resolves pixels through a test-provided function.
type stubSource struct {
	pixels func(def catalog.ItemDefinition, subtype, frame, layer, cellX, cellY int) ([]byte, int, int, error)
}

func (s stubSource) SpritePixels(def catalog.ItemDefinition, subtype, frame, layer, cellX, cellY int) ([]byte, int, int, error) {
	return s.pixels(def, subtype, frame, layer, cellX, cellY)
}

// solidCell returns a 2x2 RGBA cell filled with b.
func solidCell(b byte) []byte {
	return bytes.Repeat([]byte{b}, 2*2*4)
}

func TestItemFingerprintSingleCellUsesSpriteHash(t *testing.T) {
	def := catalog.ItemDefinition{ServerID: 100}
	src := stubSource{pixels: func(catalog.ItemDefinition, int, int, int, int, int) ([]byte, int, int, error) {
		return solidCell(0x42), 2, 2, nil
	}}

	got, err := ItemFingerprint(def, 0, src)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := HashSprite(solidCell(0x42), 2, 2)
	if got != want {
		t.Errorf("single-cell item fingerprint %d should equal its sprite hash %d", got, want)
	}
}

func TestItemFingerprintMultiCellFoldsEveryCell(t *testing.T) {
	def := catalog.ItemDefinition{
		ServerID: 200,
		Layout:   catalog.SpriteLayout{WidthCells: 2, HeightCells: 2},
	}
	src := stubSource{pixels: func(_ catalog.ItemDefinition, _, _, _, cellX, cellY int) ([]byte, int, int, error) {
		return solidCell(byte(cellY*2 + cellX)), 2, 2, nil
	}}

	got, err := ItemFingerprint(def, 0, src)
	if err != nil {
		t.Fatal(err)
	}

	// Expected fold order: grid position (row-major), then layer, then frame.
	var fps []uint64
	for _, b := range []byte{0, 1, 2, 3} {
		fp, _ := HashSprite(solidCell(b), 2, 2)
		fps = append(fps, fp)
	}
	if want := HashCombined(fps); got != want {
		t.Errorf("multi-cell fingerprint = %d, want %d", got, want)
	}
}

func TestItemFingerprintAnimationFramesContribute(t *testing.T) {
	def := catalog.ItemDefinition{
		ServerID: 300,
		Layout:   catalog.SpriteLayout{AnimationFrames: 2},
	}

	frameA := stubSource{pixels: func(_ catalog.ItemDefinition, _, frame, _, _, _ int) ([]byte, int, int, error) {
		return solidCell(byte(frame)), 2, 2, nil
	}}
	frameB := stubSource{pixels: func(_ catalog.ItemDefinition, _, frame, _, _, _ int) ([]byte, int, int, error) {
		return solidCell(byte(frame + 1)), 2, 2, nil
	}}

	fpA, err := ItemFingerprint(def, 0, frameA)
	if err != nil {
		t.Fatal(err)
	}
	fpB, err := ItemFingerprint(def, 0, frameB)
	if err != nil {
		t.Fatal(err)
	}
	if fpA == fpB {
		t.Error("changing frame pixels should change the item fingerprint")
	}
}
