/*
Package img2mc converts images into block art for Minecraft.

An image is split into cells and each cell is matched against the average
colors of the block textures from a Minecraft JAR, with the leftover error
dithered into the cells that follow. The result is written either as a
Litematica schematic that can be pasted into a world or as an image made
from the chosen textures.
*/
package img2mc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/img2mc/catalog"
	"github.com/bodgit/img2mc/dither"
	"github.com/bodgit/img2mc/grid"
	"github.com/bodgit/img2mc/litematic"
	"github.com/bodgit/img2mc/quantize"
	"github.com/bodgit/img2mc/render"
)

const (
	// DefaultHeight is the default grid height in blocks.
	DefaultHeight = 32
	// DefaultResolution is the default chunk resolution.
	DefaultResolution = 4
)

// ErrUnknownFormat is returned for an output path whose extension is neither
// a schematic nor a supported image format.
var ErrUnknownFormat = errors.New("img2mc: unknown output format")

var errSize = errors.New("img2mc: invalid grid size")

// Options configures a Converter.
type Options struct {
	// Textures is the folder of extracted block textures.
	Textures string
	// Input is a local path or an http(s) URL.
	Input string
	// Output is the file written. The extension picks the format.
	Output string

	// Width in blocks. If zero it is derived from Height and the aspect
	// ratio of the input.
	Width int
	// Height in blocks.
	Height int
	// Resolution is the number of sub-cells along each side of a block
	// that are compared. It must divide 16.
	Resolution int
	// Dither selects the error diffusion kernel.
	Dither dither.Algorithm

	// Palette restricts the textures used to those listed. It takes
	// precedence over Survival.
	Palette []string
	// Survival excludes blocks that cannot be obtained in survival mode.
	Survival bool

	// Cache is an optional sqlite database of chunk colors.
	Cache string
	// Workers is the size of the worker pools. If zero, GOMAXPROCS is
	// used.
	Workers int
	// Uncompressed writes a schematic without gzip compression.
	Uncompressed bool

	// Progress receives a progress bar while quantizing, nil disables it.
	Progress io.Writer
}

// DefaultOptions returns the options used when nothing is overridden.
func DefaultOptions() *Options {
	return &Options{
		Height:     DefaultHeight,
		Resolution: DefaultResolution,
		Dither:     dither.JarvisJudiceNinke,
	}
}

// Converter runs a single conversion.
type Converter struct {
	opts   Options
	cache  *catalog.Cache
	client *http.Client
	logger *log.Logger
}

// New validates opts and returns a Converter. Close must be called to release
// the chunk cache.
func New(opts *Options, logger *log.Logger) (*Converter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := outputFormat(opts.Output); err != nil {
		return nil, err
	}

	if err := catalog.ValidResolution(opts.Resolution); err != nil {
		return nil, err
	}

	if opts.Height < 1 || opts.Width < 0 {
		return nil, fmt.Errorf("%w: %dx%d", errSize, opts.Width, opts.Height)
	}

	c := &Converter{
		opts:   *opts,
		client: http.DefaultClient,
		logger: logger,
	}

	if opts.Cache != "" {
		cache, err := catalog.OpenCache(opts.Cache)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// Close releases the chunk cache, if any.
func (c *Converter) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

type format int

const (
	formatSchematic format = iota
	formatImage
)

func outputFormat(file string) (format, error) {
	ext := strings.ToLower(filepath.Ext(file))
	switch {
	case ext == ".litematic", ext == ".schematic":
		return formatSchematic, nil
	case render.Supported(ext):
		return formatImage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, file)
	}
}

func (c *Converter) filter() catalog.Filter {
	switch {
	case len(c.opts.Palette) > 0:
		return catalog.AllowList(c.opts.Palette...)
	case c.opts.Survival:
		return catalog.DenyList(catalog.NonSurvival()...)
	default:
		return catalog.Filter{}
	}
}

// Run loads the catalog and the input, quantizes it and writes the output.
// The output file is only created once it has been fully encoded.
func (c *Converter) Run(ctx context.Context) error {
	loader := catalog.NewLoader(c.opts.Textures, catalog.Options{
		Resolution: c.opts.Resolution,
		Filter:     c.filter(),
		Cache:      c.cache,
		Workers:    c.opts.Workers,
	}, c.logger)

	cat, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	src, width, err := c.source(ctx)
	if err != nil {
		return err
	}

	e, err := quantize.New(cat, quantize.Options{
		Width:   width,
		Height:  c.opts.Height,
		Kernel:  c.opts.Dither.Weights(),
		Workers: c.opts.Workers,
	}, c.logger)
	if err != nil {
		return err
	}
	defer e.Close()

	stop := startProgress(c.opts.Progress, e.Progress, progressInterval)
	g, err := e.Quantize(src)
	stop()
	if err != nil {
		return err
	}

	b, err := c.encode(g, cat)
	if err != nil {
		return err
	}

	if err := writeFile(c.opts.Output, b); err != nil {
		return err
	}

	c.logger.Println("Wrote", c.opts.Output)

	return nil
}

// writeFile writes b to a temporary file alongside name and renames it into
// place so name is either complete or untouched.
func writeFile(name string, b []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(b); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), name)
}

func (c *Converter) encode(g *grid.Grid, cat *catalog.Catalog) ([]byte, error) {
	f, err := outputFormat(c.opts.Output)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)

	switch f {
	case formatSchematic:
		name := strings.TrimSuffix(filepath.Base(c.opts.Output), filepath.Ext(c.opts.Output))
		if err := litematic.Encode(buf, g, cat, &litematic.Options{
			Name:         name,
			Uncompressed: c.opts.Uncompressed,
		}); err != nil {
			return nil, err
		}
	case formatImage:
		m, err := render.Composite(g, cat)
		if err != nil {
			return nil, err
		}
		if err := render.Encode(buf, m, filepath.Ext(c.opts.Output)); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
