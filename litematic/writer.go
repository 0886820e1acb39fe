package litematic

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/bodgit/img2mc/catalog"
	"github.com/bodgit/img2mc/grid"
	"github.com/klauspost/compress/gzip"
)

// Catalog looks up the block of a variant.
type Catalog interface {
	Lookup(id string) (*catalog.Variant, bool)
}

// Options are optional arguments to Encode and Marshal. The zero value is
// valid.
type Options struct {
	// Name of the schematic, DefaultName if empty.
	Name string
	// Uncompressed writes raw NBT rather than gzip.
	Uncompressed bool
	// Now returns the current time, time.Now if nil.
	Now func() time.Time
}

type palette struct {
	ids   []string
	index map[string]int
}

// newPalette lists air followed by every variant in g in order of first
// appearance, scanning each column top to bottom, left to right.
func newPalette(g *grid.Grid) *palette {
	p := &palette{
		ids:   []string{catalog.AirID},
		index: map[string]int{catalog.AirID: 0},
	}
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			id := g.At(x, y)
			if _, ok := p.index[id]; !ok {
				p.index[id] = len(p.ids)
				p.ids = append(p.ids, id)
			}
		}
	}
	return p
}

// indices returns the palette index of every cell in schematic order
func (p *palette) indices(g *grid.Grid) []int {
	values := make([]int, 0, g.Len())
	for y := g.Height() - 1; y >= 0; y-- {
		for x := 0; x < g.Width(); x++ {
			values = append(values, p.index[g.At(x, y)])
		}
	}
	return values
}

func (p *palette) blockStates(c Catalog) ([]BlockState, error) {
	states := make([]BlockState, len(p.ids))
	for i, id := range p.ids {
		v, ok := c.Lookup(id)
		if !ok {
			if id != catalog.AirID {
				return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, id)
			}
			v = catalog.Air(1)
		}
		states[i] = BlockState{
			Name:       v.Block,
			Properties: v.Properties,
		}
	}
	return states, nil
}

func timestamp(now func() time.Time) (int64, error) {
	if now == nil {
		now = time.Now
	}
	t := now()
	if t.Before(time.Unix(0, 0)) {
		return 0, fmt.Errorf("%w: %s", ErrClock, t)
	}
	return t.UnixMilli(), nil
}

// Marshal builds the schematic for g.
func Marshal(g *grid.Grid, c Catalog, opts *Options) (*Schematic, error) {
	if opts == nil {
		opts = new(Options)
	}

	ms, err := timestamp(opts.Now)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	p := newPalette(g)
	states, err := p.blockStates(c)
	if err != nil {
		return nil, err
	}

	size := Vec3{X: int32(g.Width()), Y: int32(g.Height()), Z: 1}

	return &Schematic{
		MinecraftDataVersion: DataVersion,
		SubVersion:           SubVersion,
		Version:              Version,
		Metadata: Metadata{
			EnclosingSize: size,
			RegionCount:   1,
			TotalBlocks:   int32(g.Len() - g.Count(catalog.AirID)),
			TotalVolume:   int32(g.Len()),
			TimeCreated:   ms,
			TimeModified:  ms,
			Author:        Author,
			Description:   Description,
			Name:          name,
		},
		Regions: map[string]Region{
			RegionName: {
				Size:              size,
				BlockStatePalette: states,
				Entities:          []Compound{},
				PendingBlockTicks: []Compound{},
				PendingFluidTicks: []Compound{},
				TileEntities:      []Compound{},
				BlockStates:       Pack(p.indices(g), BitsPerEntry(len(p.ids))),
			},
		},
	}, nil
}

// Encode writes g to w as a schematic. Nothing is written if the schematic
// cannot be built.
func Encode(w io.Writer, g *grid.Grid, c Catalog, opts *Options) error {
	s, err := Marshal(g, c, opts)
	if err != nil {
		return err
	}

	b, err := nbt.Marshal(s)
	if err != nil {
		return err
	}

	if opts != nil && opts.Uncompressed {
		_, err = w.Write(b)
		return err
	}

	buf := new(bytes.Buffer)
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write(b); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	_, err = io.Copy(w, buf)
	return err
}
