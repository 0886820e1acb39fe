package catalog

import (
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"

	_ "github.com/mattn/go-sqlite3"
)

var errCacheEntry = errors.New("catalog: corrupt cache entry")

// Cache stores computed average colors in a SQLite database keyed by the
// SHA1 of the texture pixels and the resolution, so repeated runs over the
// same texture folder skip the resampling.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database in file.
func OpenCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	// Writers would otherwise contend for the database lock
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS chunk (sha1 TEXT NOT NULL, resolution INTEGER NOT NULL, colors BLOB NOT NULL, PRIMARY KEY (sha1, resolution))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func textureHash(m *image.NRGBA) string {
	h := sha1.New()
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		h.Write(m.Pix[i : i+b.Dx()*4])
	}
	return fmt.Sprintf("%X", h.Sum(nil))
}

func packColors(colors []color.NRGBA) []byte {
	b := make([]byte, 0, len(colors)*4)
	for _, c := range colors {
		b = append(b, c.R, c.G, c.B, c.A)
	}
	return b
}

func unpackColors(b []byte, n int) ([]color.NRGBA, error) {
	if len(b) != n*4 {
		return nil, errCacheEntry
	}
	colors := make([]color.NRGBA, n)
	for i := range colors {
		colors[i] = color.NRGBA{b[i*4], b[i*4+1], b[i*4+2], b[i*4+3]}
	}
	return colors, nil
}

// Colors returns the cached average colors of texture at resolution,
// computing and storing them on a miss.
func (c *Cache) Colors(texture *image.NRGBA, resolution int) ([]color.NRGBA, error) {
	sha := textureHash(texture)

	var blob []byte
	switch err := c.db.QueryRow("SELECT colors FROM chunk WHERE sha1 = ? AND resolution = ?", sha, resolution).Scan(&blob); err {
	case sql.ErrNoRows:
		colors := averageColors(texture, resolution)
		if _, err := c.db.Exec("INSERT OR REPLACE INTO chunk (sha1, resolution, colors) VALUES (?, ?, ?)", sha, resolution, packColors(colors)); err != nil {
			return nil, err
		}
		return colors, nil
	case nil:
		return unpackColors(blob, resolution*resolution)
	default:
		return nil, err
	}
}
