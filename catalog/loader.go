package catalog

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/disintegration/gift"
)

var errTextureSize = errors.New("catalog: texture smaller than 16x16")

// Options configures a Loader.
type Options struct {
	// Resolution is the chunk resolution, it must divide 16.
	Resolution int
	// Filter restricts which textures are used.
	Filter Filter
	// Cache is optional.
	Cache *Cache
	// Workers is the number of textures decoded at once. If zero,
	// GOMAXPROCS is used.
	Workers int
}

// Loader builds a Catalog from a folder of block textures.
type Loader struct {
	dir        string
	resolution int
	filter     Filter
	cache      *Cache
	workers    int
	logger     *log.Logger
}

// NewLoader returns a Loader reading textures from dir.
func NewLoader(dir string, opts Options, logger *log.Logger) *Loader {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Loader{
		dir:        dir,
		resolution: opts.Resolution,
		filter:     opts.Filter,
		cache:      opts.Cache,
		workers:    workers,
		logger:     logger,
	}
}

// Load reads every allowed texture, derives its variants and returns the
// resulting catalog. Textures that are missing from the folder are skipped.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if err := ValidResolution(l.resolution); err != nil {
		return nil, err
	}

	var errcList []<-chan error
	var outList []<-chan *Variant

	defs, errc := l.findDefinitions(ctx)
	errcList = append(errcList, errc)

	for i := 0; i < l.workers; i++ {
		out, errc := l.textureWorker(defs)
		outList = append(outList, out)
		errcList = append(errcList, errc)
	}

	var variants []*Variant
	for v := range merge(outList...) {
		variants = append(variants, v)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}

	c, err := New(l.resolution, variants)
	if err != nil {
		return nil, err
	}

	l.logger.Printf("Loaded %d texture(s) into %d chunks\n", c.Len(), c.Len()*l.resolution*l.resolution)

	return c, nil
}

func readTexture(file string) (*image.NRGBA, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	// Animated textures are vertical strips, only the first frame is used
	g := gift.New(gift.Crop(image.Rect(0, 0, TextureSize, TextureSize).Add(m.Bounds().Min)))
	b := g.Bounds(m.Bounds())
	if b.Dx() != TextureSize || b.Dy() != TextureSize {
		return nil, fmt.Errorf("%w: %s", errTextureSize, file)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, TextureSize, TextureSize))
	g.Draw(dst, m)
	return dst, nil
}

func (l *Loader) colors(texture image.Image) ([]color.NRGBA, error) {
	if l.cache == nil {
		return averageColors(texture, l.resolution), nil
	}
	m, ok := texture.(*image.NRGBA)
	if !ok {
		m = image.NewNRGBA(texture.Bounds())
		draw.Draw(m, m.Bounds(), texture, texture.Bounds().Min, draw.Src)
	}
	return l.cache.Colors(m, l.resolution)
}

func (l *Loader) variants(d definition) ([]*Variant, error) {
	file := filepath.Join(l.dir, d.texture+".png")

	texture, err := readTexture(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Printf("Unable to find texture \"%s\"\n", file)
			return nil, nil
		}
		return nil, err
	}

	variants := d.shape.expand(d, texture)
	for _, v := range variants {
		if v.Colors, err = l.colors(v.Texture); err != nil {
			return nil, err
		}
	}

	return variants, nil
}
