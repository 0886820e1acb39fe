package catalog

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	blue = color.NRGBA{0x00, 0x00, 0xff, 0xff}
)

func solid(c color.NRGBA, w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, c)
		}
	}
	return m
}

func split(left, right color.NRGBA) *image.NRGBA {
	m := solid(left, TextureSize, TextureSize)
	for y := 0; y < TextureSize; y++ {
		for x := TextureSize / 2; x < TextureSize; x++ {
			m.SetNRGBA(x, y, right)
		}
	}
	return m
}

func writePNG(t *testing.T, dir, name string, m image.Image) {
	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func assertColor(t *testing.T, want, got color.NRGBA) {
	assert.InDelta(t, want.R, got.R, 1)
	assert.InDelta(t, want.G, got.G, 1)
	assert.InDelta(t, want.B, got.B, 1)
	assert.InDelta(t, want.A, got.A, 1)
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func textureDir(t *testing.T) string {
	dir := t.TempDir()
	writePNG(t, dir, "stone", solid(red, TextureSize, TextureSize*2))
	writePNG(t, dir, "oak_planks", solid(blue, TextureSize, TextureSize))
	writePNG(t, dir, "white_glazed_terracotta", split(red, blue))
	return dir
}

func TestValidResolution(t *testing.T) {
	for _, r := range []int{1, 2, 4, 8, 16} {
		assert.NoError(t, ValidResolution(r))
	}
	for _, r := range []int{0, 3, 5, 32, -4} {
		assert.True(t, errors.Is(ValidResolution(r), ErrBadResolution))
	}
}

func TestNew(t *testing.T) {
	c, err := New(1, []*Variant{
		{ID: "stone", Block: "minecraft:stone", Colors: []color.NRGBA{red}},
		{ID: "dirt", Block: "minecraft:dirt", Colors: []color.NRGBA{blue}},
	})
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	assert.Equal(t, "air", c.Variants()[0].ID)
	assert.Equal(t, "dirt", c.Variants()[1].ID)
	assert.Equal(t, "stone", c.Variants()[2].ID)

	air, ok := c.Lookup(AirID)
	require.True(t, ok)
	assert.Equal(t, AirBlock, air.Block)
	assert.Equal(t, uint8(0), air.Colors[0].A)

	_, ok = c.Lookup("gravel")
	assert.False(t, ok)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(2, []*Variant{{ID: "stone", Colors: []color.NRGBA{red}}})
	assert.True(t, errors.Is(err, errColors))

	_, err = New(1, []*Variant{{ID: "air", Colors: []color.NRGBA{red}}})
	assert.True(t, errors.Is(err, errDuplicate))

	_, err = New(3, nil)
	assert.True(t, errors.Is(err, ErrBadResolution))
}

func TestFilter(t *testing.T) {
	var all Filter
	assert.True(t, all.Allows("stone"))

	allow := AllowList("stone")
	assert.True(t, allow.Allows("stone"))
	assert.False(t, allow.Allows("dirt"))

	deny := DenyList(NonSurvival()...)
	assert.False(t, deny.Allows("bedrock"))
	assert.True(t, deny.Allows("dirt"))
}

func TestParseDefinition(t *testing.T) {
	d, err := parseDefinition(shapeNormal, "oak_log|minecraft:oak_log|axis=y")
	require.NoError(t, err)
	assert.Equal(t, "oak_log", d.texture)
	assert.Equal(t, "minecraft:oak_log", d.block)
	assert.Equal(t, map[string]string{"axis": "y"}, d.properties)

	d, err = parseDefinition(shapeNormal, "stone|minecraft:stone")
	require.NoError(t, err)
	assert.Nil(t, d.properties)

	for _, line := range []string{"stone", "stone|", "a|b|c", "a|b|c=d|e"} {
		_, err := parseDefinition(shapeNormal, line)
		assert.True(t, errors.Is(err, errDefinition), line)
	}
}

func TestDefinitions(t *testing.T) {
	defs, err := definitions()
	require.NoError(t, err)
	assert.NotEmpty(t, defs)
	assert.Equal(t, shapeNormal, defs[0].shape)
	assert.Equal(t, shapeRotate, defs[len(defs)-1].shape)
}

func TestAverageColors(t *testing.T) {
	colors := averageColors(split(red, blue), 2)
	require.Len(t, colors, 4)
	assertColor(t, red, colors[0])
	assertColor(t, blue, colors[1])
	assertColor(t, red, colors[2])
	assertColor(t, blue, colors[3])
}

func TestLoad(t *testing.T) {
	l := NewLoader(textureDir(t), Options{Resolution: 2, Workers: 3}, discard())

	c, err := l.Load(context.Background())
	require.NoError(t, err)

	// air, stone and oak_planks with 4 stairs and 2 slabs each, 4 rotations
	assert.Equal(t, 19, c.Len())

	stone, ok := c.Lookup("stone")
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", stone.Block)
	assert.Equal(t, image.Rect(0, 0, TextureSize, TextureSize), stone.Texture.Bounds())
	for _, col := range stone.Colors {
		assertColor(t, red, col)
	}

	stair, ok := c.Lookup("oak_planks_stair_0")
	require.True(t, ok)
	assert.Equal(t, "minecraft:oak_stairs", stair.Block)
	assert.Equal(t, map[string]string{"facing": "east", "half": "bottom"}, stair.Properties)
	assert.Equal(t, uint8(0), stair.Colors[0].A)
	assertColor(t, blue, stair.Colors[1])
	assertColor(t, blue, stair.Colors[3])

	slab, ok := c.Lookup("oak_planks_slab_180")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"type": "top"}, slab.Properties)
	assertColor(t, blue, slab.Colors[0])
	assert.Equal(t, uint8(0), slab.Colors[2].A)

	turned, ok := c.Lookup("white_glazed_terracotta_90")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"facing": "north"}, turned.Properties)
	assertColor(t, red, turned.Colors[0])
	assertColor(t, red, turned.Colors[1])
	assertColor(t, blue, turned.Colors[2])
	assertColor(t, blue, turned.Colors[3])
}

func TestLoadFiltered(t *testing.T) {
	l := NewLoader(textureDir(t), Options{Resolution: 4, Filter: AllowList("stone")}, discard())

	c, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, c.Len())
	_, ok := c.Lookup("stone_slab_0")
	assert.True(t, ok)
	_, ok = c.Lookup("oak_planks")
	assert.False(t, ok)
}

func TestLoadBadTexture(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "stone", solid(red, 8, 8))

	_, err := NewLoader(dir, Options{Resolution: 4}, discard()).Load(context.Background())
	assert.True(t, errors.Is(err, errTextureSize))
}

func TestCache(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	texture := split(red, blue)

	first, err := c.Colors(texture, 2)
	require.NoError(t, err)

	second, err := c.Colors(texture, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var n int
	require.NoError(t, c.db.QueryRow("SELECT COUNT(*) FROM chunk").Scan(&n))
	assert.Equal(t, 1, n)

	_, err = c.Colors(texture, 4)
	require.NoError(t, err)
	require.NoError(t, c.db.QueryRow("SELECT COUNT(*) FROM chunk").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestLoadCached(t *testing.T) {
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	l := NewLoader(textureDir(t), Options{Resolution: 2, Cache: c}, discard())
	cat, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, cat.Len())
}
