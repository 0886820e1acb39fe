/*
Package catalog builds the set of block variants an image can be made from.

Each variant is a 16 by 16 texture together with the block that shows it and
a resolution by resolution grid of average colors. The average colors are what
the quantizer matches image regions against. Textures are loaded from an
extracted <Minecraft JAR>/assets/minecraft/textures/block folder and some are
expanded into several variants, such as the four orientations of a stair.
*/
package catalog

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
)

const (
	// TextureSize is the width and height of every block texture.
	TextureSize = 16

	// AirID identifies the built-in empty variant.
	AirID = "air"
	// AirBlock is the block identifier of the empty variant.
	AirBlock = "minecraft:air"
)

var (
	// ErrBadResolution is returned for a chunk resolution that does not
	// evenly divide TextureSize.
	ErrBadResolution = errors.New("catalog: resolution must divide 16")
	errDuplicate     = errors.New("catalog: duplicate variant")
	errColors        = errors.New("catalog: wrong number of colors")
)

// ValidResolution checks that r is usable as a chunk resolution.
func ValidResolution(r int) error {
	if r < 1 || r > TextureSize || TextureSize%r != 0 {
		return fmt.Errorf("%w: %d", ErrBadResolution, r)
	}
	return nil
}

// Variant is one selectable block appearance.
type Variant struct {
	ID         string
	Block      string
	Properties map[string]string
	Texture    image.Image

	// Colors holds the average color of each sub-cell, row by row, so
	// the sub-cell (x, y) is at index y*resolution+x.
	Colors []color.NRGBA
}

// Air returns the built-in empty variant for the given resolution.
func Air(resolution int) *Variant {
	return &Variant{
		ID:      AirID,
		Block:   AirBlock,
		Texture: image.NewNRGBA(image.Rect(0, 0, TextureSize, TextureSize)),
		Colors:  make([]color.NRGBA, resolution*resolution),
	}
}

// Catalog is an immutable set of variants sorted by identifier.
type Catalog struct {
	resolution int
	variants   []*Variant
	index      map[string]*Variant
}

// New returns a catalog of variants plus the air variant. Every variant must
// have resolution*resolution colors and a unique identifier.
func New(resolution int, variants []*Variant) (*Catalog, error) {
	if err := ValidResolution(resolution); err != nil {
		return nil, err
	}

	c := &Catalog{
		resolution: resolution,
		variants:   make([]*Variant, 0, len(variants)+1),
		index:      make(map[string]*Variant, len(variants)+1),
	}

	for _, v := range append([]*Variant{Air(resolution)}, variants...) {
		if _, ok := c.index[v.ID]; ok {
			return nil, fmt.Errorf("%w: %q", errDuplicate, v.ID)
		}
		if len(v.Colors) != resolution*resolution {
			return nil, fmt.Errorf("%w: %q has %d, want %d", errColors, v.ID, len(v.Colors), resolution*resolution)
		}
		c.index[v.ID] = v
		c.variants = append(c.variants, v)
	}

	sort.Slice(c.variants, func(i, j int) bool { return c.variants[i].ID < c.variants[j].ID })

	return c, nil
}

// Resolution returns the chunk resolution of every variant.
func (c *Catalog) Resolution() int { return c.resolution }

// Len returns the number of variants including air.
func (c *Catalog) Len() int { return len(c.variants) }

// Variants returns the variants in identifier order. The slice must not be
// modified.
func (c *Catalog) Variants() []*Variant { return c.variants }

// Lookup returns the variant with the given identifier.
func (c *Catalog) Lookup(id string) (*Variant, bool) {
	v, ok := c.index[id]
	return v, ok
}
