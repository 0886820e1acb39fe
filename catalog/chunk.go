package catalog

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
)

// averageColors splits texture into resolution by resolution sub-cells and
// resamples each one down to a single pixel.
func averageColors(texture image.Image, resolution int) []color.NRGBA {
	size := TextureSize / resolution
	origin := texture.Bounds().Min

	colors := make([]color.NRGBA, resolution*resolution)
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			r := image.Rect(x*size, y*size, (x+1)*size, (y+1)*size).Add(origin)
			g := gift.New(
				gift.Crop(r),
				gift.Resize(1, 1, gift.LinearResampling),
			)
			dst := image.NewNRGBA(g.Bounds(texture.Bounds()))
			g.Draw(dst, texture)
			colors[y*resolution+x] = dst.NRGBAAt(dst.Rect.Min.X, dst.Rect.Min.Y)
		}
	}
	return colors
}
