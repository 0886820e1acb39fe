package litematic

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/bodgit/img2mc/catalog"
	"github.com/bodgit/img2mc/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func now() time.Time { return clock }

func testCatalog(t *testing.T) *catalog.Catalog {
	var variants []*catalog.Variant
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		variants = append(variants, &catalog.Variant{
			ID:     id,
			Block:  "minecraft:" + id,
			Colors: []color.NRGBA{{0x00, 0x00, 0x00, 0xff}},
		})
	}
	variants = append(variants, &catalog.Variant{
		ID:         "stone_stair_90",
		Block:      "minecraft:stone_stairs",
		Properties: map[string]string{"facing": "west", "half": "bottom"},
		Colors:     []color.NRGBA{{0x7f, 0x7f, 0x7f, 0xff}},
	})
	c, err := catalog.New(1, variants)
	require.NoError(t, err)
	return c
}

func newGrid(t *testing.T, rows [][]string) *grid.Grid {
	g, err := grid.New(len(rows[0]), len(rows))
	require.NoError(t, err)
	for y, row := range rows {
		for x, id := range row {
			g.Set(x, y, id)
		}
	}
	return g
}

// eightGrid uses air and the seven single letter variants
func eightGrid(t *testing.T) *grid.Grid {
	return newGrid(t, [][]string{
		{"a", "b", "c", "d"},
		{"e", "f", "g", "air"},
		{"air", "b", "c", "d"},
		{"g", "g", "a", "e"},
	})
}

func TestBitsPerEntry(t *testing.T) {
	tables := []struct {
		n, bits int
	}{
		{1, 2},
		{2, 2},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{16, 4},
		{17, 5},
		{256, 8},
		{257, 9},
	}

	for _, table := range tables {
		assert.Equal(t, table.bits, BitsPerEntry(table.n), "n=%d", table.n)
	}
}

func TestPalette(t *testing.T) {
	p := newPalette(eightGrid(t))

	assert.Equal(t, []string{"air", "a", "e", "g", "b", "f", "c", "d"}, p.ids)
	for i, id := range p.ids {
		assert.Equal(t, i, p.index[id])
	}
}

func TestPackEightEntryPalette(t *testing.T) {
	g := eightGrid(t)
	p := newPalette(g)

	values := p.indices(g)
	// bottom row first
	assert.Equal(t, []int{3, 3, 1, 2, 0, 4, 6, 7, 2, 5, 3, 0, 1, 4, 6, 7}, values)

	bits := BitsPerEntry(len(p.ids))
	require.Equal(t, 3, bits)

	packed := Pack(values, bits)
	assert.Equal(t, []int64{0xfa10eafa045b, 0}, packed)
	assert.Equal(t, values, Unpack(packed, bits, len(values)))
}

func TestPackStraddle(t *testing.T) {
	values := make([]int, 13)
	for i := range values {
		values[i] = 0x1f
	}

	// 65 bits, the last value starts at bit 60
	packed := Pack(values, 5)
	assert.Equal(t, []int64{-1, 1, 0}, packed)
	assert.Equal(t, values, Unpack(packed, 5, len(values)))
}

func TestPackRoundTrip(t *testing.T) {
	for bits := 2; bits <= 12; bits++ {
		values := make([]int, 200)
		for i := range values {
			values[i] = (i * 7919) % (1 << uint(bits))
		}
		packed := Pack(values, bits)
		assert.Len(t, packed, (len(values)*bits+63)/64+1)
		assert.Equal(t, values, Unpack(packed, bits, len(values)), "bits=%d", bits)
	}
}

func TestMarshal(t *testing.T) {
	g := eightGrid(t)

	s, err := Marshal(g, testCatalog(t), &Options{Now: now})
	require.NoError(t, err)

	assert.Equal(t, int32(3465), s.MinecraftDataVersion)
	assert.Equal(t, int32(1), s.SubVersion)
	assert.Equal(t, int32(6), s.Version)

	m := s.Metadata
	assert.Equal(t, Vec3{4, 4, 1}, m.EnclosingSize)
	assert.Equal(t, int32(1), m.RegionCount)
	assert.Equal(t, int32(14), m.TotalBlocks)
	assert.Equal(t, int32(16), m.TotalVolume)
	assert.Equal(t, clock.UnixMilli(), m.TimeCreated)
	assert.Equal(t, clock.UnixMilli(), m.TimeModified)
	assert.Equal(t, "img2mc", m.Author)
	assert.Equal(t, "Generated by img2mc", m.Description)
	assert.Equal(t, "image", m.Name)

	require.Len(t, s.Regions, 1)
	r, ok := s.Regions["Unnamed"]
	require.True(t, ok)
	assert.Equal(t, Vec3{}, r.Position)
	assert.Equal(t, Vec3{4, 4, 1}, r.Size)
	assert.Equal(t, []int64{0xfa10eafa045b, 0}, r.BlockStates)
	require.Len(t, r.BlockStatePalette, 8)
	assert.Equal(t, BlockState{Name: "minecraft:air"}, r.BlockStatePalette[0])
	assert.Equal(t, BlockState{Name: "minecraft:d"}, r.BlockStatePalette[7])
}

func TestMarshalErrors(t *testing.T) {
	_, err := Marshal(eightGrid(t), testCatalog(t), &Options{
		Now: func() time.Time { return time.Unix(-1, 0) },
	})
	assert.True(t, errors.Is(err, ErrClock))

	_, err = Marshal(newGrid(t, [][]string{{"a", "gravel"}}), testCatalog(t), nil)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
}

func TestEncodeDecode(t *testing.T) {
	c := testCatalog(t)
	g := newGrid(t, [][]string{
		{"a", "stone_stair_90", "air"},
		{"stone_stair_90", "b", "c"},
	})

	for _, uncompressed := range []bool{false, true} {
		buf := new(bytes.Buffer)
		require.NoError(t, Encode(buf, g, c, &Options{Name: "castle", Uncompressed: uncompressed, Now: now}))

		if uncompressed {
			// unnamed root compound
			assert.Equal(t, []byte{0x0a, 0x00, 0x00}, buf.Bytes()[:3])
		} else {
			assert.Equal(t, []byte{0x1f, 0x8b}, buf.Bytes()[:2])
		}

		s, err := Decode(buf)
		require.NoError(t, err)

		assert.Equal(t, int32(Version), s.Version)
		assert.Equal(t, "castle", s.Metadata.Name)
		assert.Equal(t, int32(5), s.Metadata.TotalBlocks)
		assert.Equal(t, clock.UnixMilli(), s.Metadata.TimeCreated)

		blocks, err := s.Blocks()
		require.NoError(t, err)
		require.Len(t, blocks, g.Height())

		for y := 0; y < g.Height(); y++ {
			require.Len(t, blocks[y], g.Width())
			for x := 0; x < g.Width(); x++ {
				v, ok := c.Lookup(g.At(x, y))
				require.True(t, ok)
				assert.Equal(t, v.Block, blocks[y][x].Name)
				if v.Properties == nil {
					assert.Empty(t, blocks[y][x].Properties)
				} else {
					assert.Equal(t, v.Properties, blocks[y][x].Properties)
				}
			}
		}
	}
}

func TestBlocksShortArray(t *testing.T) {
	s := &Schematic{
		Regions: map[string]Region{
			RegionName: {
				Size:              Vec3{8, 8, 1},
				BlockStatePalette: []BlockState{{Name: "minecraft:air"}},
				BlockStates:       []int64{0},
			},
		},
	}
	_, err := s.Blocks()
	assert.True(t, errors.Is(err, errBlockStates))

	s.Regions["Other"] = Region{}
	_, err = s.Blocks()
	assert.True(t, errors.Is(err, ErrRegion))
}
