package catalog

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/gift"
)

type shape int

const (
	shapeNormal shape = iota + 1
	shapeStair
	shapeSlab
	shapeRotate
)

var shapeFiles = map[shape]string{
	shapeNormal: "blocks/normal.txt",
	shapeStair:  "blocks/stair.txt",
	shapeSlab:   "blocks/slab.txt",
	shapeRotate: "blocks/rotate.txt",
}

var (
	stairFacing  = [4]string{"east", "west", "east", "west"}
	stairHalf    = [4]string{"bottom", "bottom", "top", "top"}
	slabType     = [2]string{"bottom", "top"}
	rotateFacing = [4]string{"east", "north", "west", "south"}
)

// clockwise rotates by i quarter turns
var clockwise = [4]gift.Filter{
	nil,
	gift.Rotate270(),
	gift.Rotate180(),
	gift.Rotate90(),
}

func erase(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
	return dst
}

func rotate(src *image.NRGBA, quarters int) *image.NRGBA {
	if clockwise[quarters] == nil {
		return src
	}
	g := gift.New(clockwise[quarters])
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// expand derives the variants of a block from its base texture. Colors are
// filled in later.
func (s shape) expand(d definition, texture *image.NRGBA) []*Variant {
	half := TextureSize / 2

	switch s {
	case shapeStair:
		variants := make([]*Variant, 4)
		for i := range variants {
			x, y := (i%2)*half, (i/2)*half
			variants[i] = &Variant{
				ID:    fmt.Sprintf("%s_stair_%d", d.texture, i*90),
				Block: d.block,
				Properties: map[string]string{
					"facing": stairFacing[i],
					"half":   stairHalf[i],
				},
				Texture: erase(texture, image.Rect(x, y, x+half, y+half)),
			}
		}
		return variants
	case shapeSlab:
		variants := make([]*Variant, 2)
		for i := range variants {
			variants[i] = &Variant{
				ID:         fmt.Sprintf("%s_slab_%d", d.texture, i*180),
				Block:      d.block,
				Properties: map[string]string{"type": slabType[i]},
				Texture:    erase(texture, image.Rect(0, i*half, TextureSize, (i+1)*half)),
			}
		}
		return variants
	case shapeRotate:
		variants := make([]*Variant, 4)
		for i := range variants {
			variants[i] = &Variant{
				ID:         fmt.Sprintf("%s_%d", d.texture, i*90),
				Block:      d.block,
				Properties: map[string]string{"facing": rotateFacing[i]},
				Texture:    rotate(texture, i),
			}
		}
		return variants
	default:
		return []*Variant{{
			ID:         d.texture,
			Block:      d.block,
			Properties: d.properties,
			Texture:    texture,
		}}
	}
}
