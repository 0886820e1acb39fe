/*
Package render composites a grid of block variants into a flat image and
encodes it.

Every cell is drawn as the full 16 by 16 texture of its variant so the image
is always 16 times the size of the grid regardless of the chunk resolution
used to pick the variants.
*/
package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/bodgit/img2mc/catalog"
	"github.com/bodgit/img2mc/grid"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	jpegQuality = 90
	gifColors   = 256
)

var (
	// ErrUnknownVariant is returned when a grid cell names a variant
	// missing from the catalog.
	ErrUnknownVariant = errors.New("render: unknown variant")
	// ErrUnknownFormat is returned for an output extension that has no
	// image encoder.
	ErrUnknownFormat = errors.New("render: unknown image format")
)

// Catalog looks up the texture of a variant.
type Catalog interface {
	Lookup(id string) (*catalog.Variant, bool)
}

// Composite draws the texture of every cell of g.
func Composite(g *grid.Grid, c Catalog) (*image.NRGBA, error) {
	m := image.NewNRGBA(image.Rect(0, 0, g.Width()*catalog.TextureSize, g.Height()*catalog.TextureSize))

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			id := g.At(x, y)
			v, ok := c.Lookup(id)
			if !ok {
				return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrUnknownVariant, id, x, y)
			}

			r := image.Rect(0, 0, catalog.TextureSize, catalog.TextureSize).Add(image.Pt(x*catalog.TextureSize, y*catalog.TextureSize))
			if v.Texture == nil {
				// Leave it transparent
				continue
			}
			draw.Draw(m, r, v.Texture, v.Texture.Bounds().Min, draw.Src)
		}
	}

	return m, nil
}

// Formats lists the recognised image extensions.
func Formats() []string {
	return []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff"}
}

// Supported reports whether ext, including the leading dot, is an image
// extension Encode understands.
func Supported(ext string) bool {
	for _, f := range Formats() {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// Encode writes m to w in the format chosen by ext, including the leading
// dot. Case is ignored.
func Encode(w io.Writer, m image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, m)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
	case ".gif":
		return gif.Encode(w, m, &gif.Options{
			NumColors: gifColors,
			Quantizer: quantize.MedianCutQuantizer{},
			Drawer:    draw.FloydSteinberg,
		})
	case ".bmp":
		return bmp.Encode(w, m)
	case ".tif", ".tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}
