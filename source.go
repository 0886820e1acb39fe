package img2mc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

var errStatus = errors.New("img2mc: unexpected HTTP status")

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (c *Converter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", errStatus, url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *Converter) readInput(ctx context.Context) ([]byte, error) {
	if isURL(c.opts.Input) {
		c.logger.Println("Downloading", c.opts.Input)
		return c.fetch(ctx, c.opts.Input)
	}
	c.logger.Println("Reading", c.opts.Input)
	return os.ReadFile(c.opts.Input)
}

// gridWidth returns width if set, otherwise the width that keeps the aspect
// ratio of b at height blocks
func gridWidth(width, height int, b image.Rectangle) (int, error) {
	if width == 0 && b.Dy() > 0 {
		width = int(float64(height) / float64(b.Dy()) * float64(b.Dx()))
	}
	if width < 1 || height < 1 {
		return 0, fmt.Errorf("%w: %dx%d", errSize, width, height)
	}
	return width, nil
}

// source returns the input resized to exactly one pixel per sub-cell along
// with the grid width
func (c *Converter) source(ctx context.Context) (*image.NRGBA, int, error) {
	b, err := c.readInput(ctx)
	if err != nil {
		return nil, 0, err
	}

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, 0, fmt.Errorf("img2mc: %s: %w", c.opts.Input, err)
	}

	width, err := gridWidth(c.opts.Width, c.opts.Height, m.Bounds())
	if err != nil {
		return nil, 0, err
	}

	r := c.opts.Resolution
	resized := resize.Resize(uint(width*r), uint(c.opts.Height*r), m, resize.Lanczos3)

	dst := image.NewNRGBA(image.Rect(0, 0, width*r, c.opts.Height*r))
	draw.Draw(dst, dst.Bounds(), resized, resized.Bounds().Min, draw.Src)

	c.logger.Printf("Resized %dx%d source to %dx%d\n", m.Bounds().Dx(), m.Bounds().Dy(), dst.Bounds().Dx(), dst.Bounds().Dy())

	return dst, width, nil
}
