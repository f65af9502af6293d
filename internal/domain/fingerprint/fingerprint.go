// Package fingerprint computes 64-bit FNV-1a content hashes over sprite pixel
// data and maintains the fingerprint index used to identify "the same visual
// item" across editor instances that share no numbering scheme.
package fingerprint

import (
	"encoding/binary"
	"fmt"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/mapforge/crossid/internal/domain/catalog"
)

// FNV-1a 64-bit constants. OffsetBasis64 equals fnv1a.Init64; Prime64 is
// needed locally because the combining fold multiplies whole fingerprints,
// not individual bytes.
const (
	OffsetBasis64 uint64 = 14695981039346656037
	Prime64       uint64 = 1099511628211
)

// channelCount is bytes per pixel: RGBA, channel-interleaved.
const channelCount = 4

// HashBytes returns the FNV-1a 64-bit hash of data. Hashing no bytes yields
// the offset basis.
func HashBytes(data []byte) uint64 {
	return fnv1a.HashBytes64(data)
}

// HashSprite fingerprints one sprite cell. The hash input is
// width(LE32) + height(LE32) + pixels, so sprites with identical pixel bytes
// but different dimensions hash differently.
func HashSprite(pixels []byte, width, height int) (uint64, error) {
	expected := width * height * channelCount
	if len(pixels) != expected {
		return 0, fmt.Errorf(
			"pixel data size mismatch: expected %d bytes for %dx%d sprite, got %d",
			expected, width, height, len(pixels))
	}
	var dim [8]byte
	binary.LittleEndian.PutUint32(dim[0:4], uint32(width))
	binary.LittleEndian.PutUint32(dim[4:8], uint32(height))
	h := fnv1a.AddBytes64(fnv1a.Init64, dim[:])
	return fnv1a.AddBytes64(h, pixels), nil
}

// HashCombined folds a sequence of cell fingerprints into one. The caller
// supplies fingerprints in grid-position, then layer, then animation-frame
// order; the fold is (h XOR fp) * prime seeded with the offset basis.
func HashCombined(fps []uint64) uint64 {
	h := OffsetBasis64
	for _, fp := range fps {
		h = (h ^ fp) * Prime64
	}
	return h
}

// SpriteSource resolves raw pixel data for one sprite cell of an item. It is
// an external collaborator (the sprite asset reader); the engine treats it as
// an opaque pixel function. Pixels are RGBA, channel-interleaved,
// width*height*4 bytes.
type SpriteSource interface {
	SpritePixels(def catalog.ItemDefinition, subtype int, frame, layer, cellX, cellY int) (pixels []byte, width, height int, err error)
}

// ItemFingerprint computes the fingerprint of one subtype of an item. Items
// composed of a single sprite cell use the cell hash directly; multi-cell,
// layered, or animated items fold every cell hash in grid, layer, frame
// order. Both the index build and copy-time record creation go through this
// function so the two sides always agree.
func ItemFingerprint(def catalog.ItemDefinition, subtype int, src SpriteSource) (uint64, error) {
	layout := def.Layout.Normalized()
	fps := make([]uint64, 0, layout.SpriteCount())
	for cellY := 0; cellY < int(layout.HeightCells); cellY++ {
		for cellX := 0; cellX < int(layout.WidthCells); cellX++ {
			for layer := 0; layer < int(layout.LayerCount); layer++ {
				for frame := 0; frame < int(layout.AnimationFrames); frame++ {
					pixels, w, h, err := src.SpritePixels(def, subtype, frame, layer, cellX, cellY)
					if err != nil {
						return 0, fmt.Errorf("sprite %d subtype %d cell (%d,%d) layer %d frame %d: %w",
							def.ServerID, subtype, cellX, cellY, layer, frame, err)
					}
					fp, err := HashSprite(pixels, w, h)
					if err != nil {
						return 0, fmt.Errorf("sprite %d subtype %d: %w", def.ServerID, subtype, err)
					}
					fps = append(fps, fp)
				}
			}
		}
	}
	if len(fps) == 1 {
		return fps[0], nil
	}
	return HashCombined(fps), nil
}
