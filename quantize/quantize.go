/*
Package quantize picks a block variant for every cell of an image.

Cells are visited row by row, left to right. For each cell every variant is
scored against the matching source region with the quantization error
diffused from earlier cells added in. Opaque regions are scored with the
CIEDE2000 color difference, regions where either side has any transparency
with the squared RGBA distance. The variant with the lowest score wins, ties
going to the lowest identifier, and the remaining error is diffused to later
cells through the dithering kernel.
*/
package quantize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync/atomic"

	"github.com/bodgit/img2mc/catalog"
	"github.com/bodgit/img2mc/dither"
	"github.com/bodgit/img2mc/grid"
	"github.com/bodgit/img2mc/internal/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrBadSource is returned when the source image does not have the size the
// engine was configured for.
var ErrBadSource = errors.New("quantize: source size does not match grid")

// Options configures an Engine.
type Options struct {
	// Width and Height are the size of the output grid in cells.
	Width, Height int
	// Kernel is the error diffusion weight matrix.
	Kernel [][]int
	// Workers is the size of the pool scoring variants. If zero,
	// GOMAXPROCS is used.
	Workers int
}

// Engine quantizes images against a catalog. It is not safe for concurrent
// use.
type Engine struct {
	catalog  *catalog.Catalog
	variants []variant
	width    int
	height   int
	kernel   *dither.Kernel
	pool     *parallel.Pool
	logger   *log.Logger
	done     atomic.Int64
}

type variant struct {
	*catalog.Variant
	// precomputed for the CIEDE2000 comparison
	rgb []colorful.Color
}

// delta is a per-channel RGBA error
type delta [4]int

// New validates the options and returns an Engine. Close must be called to
// release the worker pool.
func New(c *catalog.Catalog, opts Options, logger *log.Logger) (*Engine, error) {
	kernel, err := dither.NewKernel(opts.Kernel)
	if err != nil {
		return nil, err
	}

	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("quantize: invalid grid size %dx%d", opts.Width, opts.Height)
	}

	variants := make([]variant, 0, c.Len())
	for _, v := range c.Variants() {
		rgb := make([]colorful.Color, len(v.Colors))
		for i, col := range v.Colors {
			rgb[i] = toColorful(col.R, col.G, col.B)
		}
		variants = append(variants, variant{v, rgb})
	}

	return &Engine{
		catalog:  c,
		variants: variants,
		width:    opts.Width,
		height:   opts.Height,
		kernel:   kernel,
		pool:     parallel.NewPool(opts.Workers),
		logger:   logger,
	}, nil
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Close()
}

// Progress returns how many cells have been processed out of the total. It
// is safe to call from another goroutine while Quantize runs.
func (e *Engine) Progress() (int, int) {
	return int(e.done.Load()), e.width * e.height
}

// Quantize returns the variant chosen for every cell of src. src must be
// exactly Width*resolution by Height*resolution pixels.
func (e *Engine) Quantize(src image.Image) (*grid.Grid, error) {
	r := e.catalog.Resolution()
	b := src.Bounds()
	if b.Dx() != e.width*r || b.Dy() != e.height*r {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBadSource, b.Dx(), b.Dy(), e.width*r, e.height*r)
	}

	e.logger.Printf("Processing %d chunks...\n", e.width*e.height)

	return e.quantize(toNRGBA(src), make([]delta, e.width*e.height))
}

// quantize fills errs, one per cell, with the error diffused into each cell
func (e *Engine) quantize(m *image.NRGBA, errs []delta) (*grid.Grid, error) {
	g, err := grid.New(e.width, e.height)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(e.variants))

	e.done.Store(0)

	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			c := e.chunk(m, x, y, errs[y*e.width+x])
			best := e.best(c, scores)
			g.Set(x, y, best.ID)
			e.diffuse(errs, x, y, residual(c, best.Variant))
			e.done.Add(1)
		}
	}

	return g, nil
}

// chunk is the source region of one cell with its diffused error added
type chunk struct {
	pixels []delta
	rgb    []colorful.Color
	opaque bool
}

func (e *Engine) chunk(m *image.NRGBA, cx, cy int, err delta) *chunk {
	r := e.catalog.Resolution()
	c := &chunk{
		pixels: make([]delta, r*r),
		rgb:    make([]colorful.Color, r*r),
		opaque: true,
	}
	for y := 0; y < r; y++ {
		for x := 0; x < r; x++ {
			p := m.NRGBAAt(cx*r+x, cy*r+y)
			d := delta{
				int(p.R) + err[0],
				int(p.G) + err[1],
				int(p.B) + err[2],
				int(p.A) + err[3],
			}
			i := y*r + x
			c.pixels[i] = d
			c.rgb[i] = toColorful(clamp(d[0]), clamp(d[1]), clamp(d[2]))
			if clamp(d[3]) != 0xff {
				c.opaque = false
			}
		}
	}
	return c
}

// best scores every variant on the pool and returns the lowest scoring one
func (e *Engine) best(c *chunk, scores []float64) *variant {
	n := len(e.variants)
	size := (n + e.pool.Workers() - 1) / e.pool.Workers()

	work := make([]func(), 0, e.pool.Workers())
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, lo+size
		if hi > n {
			hi = n
		}
		work = append(work, func() {
			for i := lo; i < hi; i++ {
				scores[i] = score(c, &e.variants[i])
			}
		})
	}
	e.pool.ExecuteAll(work)

	// Variants are sorted by identifier so the first minimum wins ties
	best := 0
	for i := 1; i < n; i++ {
		if scores[i] < scores[best] {
			best = i
		}
	}
	return &e.variants[best]
}

func opaque(c *chunk, v *variant) bool {
	if !c.opaque {
		return false
	}
	for _, col := range v.Colors {
		if col.A != 0xff {
			return false
		}
	}
	return true
}

// deltaEScale moves go-colorful's CIEDE2000, computed with L in [0, 1], onto
// the usual L in [0, 100] scale so it is comparable with sqDistance
const deltaEScale = 100

func score(c *chunk, v *variant) float64 {
	var sum float64
	if opaque(c, v) {
		for i := range c.rgb {
			sum += deltaEScale * v.rgb[i].DistanceCIEDE2000(c.rgb[i])
		}
		return sum
	}
	for i, p := range c.pixels {
		sum += float64(sqDistance(v.Colors[i], p))
	}
	return sum
}

func sqDistance(c color.NRGBA, p delta) int {
	dr := int(c.R) - int(clamp(p[0]))
	dg := int(c.G) - int(clamp(p[1]))
	db := int(c.B) - int(clamp(p[2]))
	da := int(c.A) - int(clamp(p[3]))
	return dr*dr + dg*dg + db*db + da*da
}

// residual is the mean difference between the adjusted source region and
// the chosen variant, per channel
func residual(c *chunk, v *catalog.Variant) delta {
	var sum delta
	for i, p := range c.pixels {
		col := v.Colors[i]
		sum[0] += p[0] - int(col.R)
		sum[1] += p[1] - int(col.G)
		sum[2] += p[2] - int(col.B)
		sum[3] += p[3] - int(col.A)
	}
	n := len(c.pixels)
	for i := range sum {
		sum[i] /= n
	}
	return sum
}

func (e *Engine) diffuse(errs []delta, x, y int, r delta) {
	e.kernel.Each(func(dx, dy, w int) {
		tx, ty := x+dx, y+dy
		if tx < 0 || tx >= e.width || ty < 0 || ty >= e.height {
			return
		}
		d := &errs[ty*e.width+tx]
		for i := range d {
			d[i] += e.kernel.Share(r[i], w)
		}
	})
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}

func toColorful(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

func toNRGBA(src image.Image) *image.NRGBA {
	if m, ok := src.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := src.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), src, b.Min, draw.Src)
	return m
}
