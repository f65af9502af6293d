// Package catalog defines the static item definition table loaded from the
// items database. This package is PURE and must NOT import any infrastructure
// packages.
package catalog

// ServerID is the identifier an item is stored under internally and in
// legacy map files.
type ServerID uint16

// ClientID is the identifier used by the client/renderer and by modern map
// file generations.
type ClientID uint16

// ItemFlags is a bitmask of item properties relevant to identity resolution.
type ItemFlags uint32

const (
	FlagStackable ItemFlags = 1 << iota
	FlagFluidContainer
	FlagSplash
	FlagMoveable
	FlagPickupable
)

// Has reports whether all bits of flag are set.
func (f ItemFlags) Has(flag ItemFlags) bool {
	return f&flag == flag
}

// SpriteLayout describes how an item's visual is composed from sprite cells.
// Zero values are treated as 1 (a plain single-cell, single-layer sprite).
type SpriteLayout struct {
	WidthCells      uint8 `json:"width_cells"`
	HeightCells     uint8 `json:"height_cells"`
	LayerCount      uint8 `json:"layer_count"`
	AnimationFrames uint8 `json:"animation_frames"`
}

// Normalized returns the layout with zero dimensions replaced by 1.
func (l SpriteLayout) Normalized() SpriteLayout {
	if l.WidthCells == 0 {
		l.WidthCells = 1
	}
	if l.HeightCells == 0 {
		l.HeightCells = 1
	}
	if l.LayerCount == 0 {
		l.LayerCount = 1
	}
	if l.AnimationFrames == 0 {
		l.AnimationFrames = 1
	}
	return l
}

// SpriteCount returns the total number of sprite cells a single subtype of
// this layout is composed of.
func (l SpriteLayout) SpriteCount() int {
	n := l.Normalized()
	return int(n.WidthCells) * int(n.HeightCells) * int(n.LayerCount) * int(n.AnimationFrames)
}

// ItemDefinition provides the identity and visual metadata of one item type.
// Definitions are immutable once the catalog is built.
type ItemDefinition struct {
	ServerID     ServerID     `json:"server_id"`
	ClientID     ClientID     `json:"client_id"`
	Name         string       `json:"name,omitempty"`
	SubtypeCount uint16       `json:"subtype_count,omitempty"`
	Layout       SpriteLayout `json:"layout"`
	Flags        ItemFlags    `json:"flags,omitempty"`
}

// Subtypes returns the number of independently-sprited subtypes, at least 1.
func (d ItemDefinition) Subtypes() int {
	if d.SubtypeCount == 0 {
		return 1
	}
	return int(d.SubtypeCount)
}

// Catalog is the ordered, immutable table of item definitions for one loaded
// items database. Build it once per load; rebuild wholesale on reload.
type Catalog struct {
	defs     []ItemDefinition
	byServer map[ServerID]int
	skipped  int
}

// New builds a catalog from definitions in source order. Duplicate server ids
// keep the first definition, matching the items database loader rule.
func New(defs []ItemDefinition) *Catalog {
	c := &Catalog{
		defs:     make([]ItemDefinition, 0, len(defs)),
		byServer: make(map[ServerID]int, len(defs)),
	}
	for _, def := range defs {
		if _, exists := c.byServer[def.ServerID]; exists {
			c.skipped++
			continue
		}
		c.byServer[def.ServerID] = len(c.defs)
		c.defs = append(c.defs, def)
	}
	return c
}

// Definition returns the definition for a server id.
func (c *Catalog) Definition(id ServerID) (ItemDefinition, bool) {
	idx, ok := c.byServer[id]
	if !ok {
		return ItemDefinition{}, false
	}
	return c.defs[idx], true
}

// Contains reports whether a server id is present in the catalog.
func (c *Catalog) Contains(id ServerID) bool {
	_, ok := c.byServer[id]
	return ok
}

// Definitions returns the definitions in source order.
func (c *Catalog) Definitions() []ItemDefinition {
	out := make([]ItemDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Skipped returns how many duplicate definitions were dropped during build.
func (c *Catalog) Skipped() int {
	return c.skipped
}
