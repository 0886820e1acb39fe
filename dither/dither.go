/*
Package dither implements the error diffusion kernels used when matching
image regions against block textures.

A kernel is a small weight matrix. Row 0 covers the row currently being
processed and must be zero up to and including the current cell, every later
row covers the rows beneath it. The current cell sits in the column
immediately before the first non-zero weight of row 0.
*/
package dither

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKernel is returned when a weight matrix cannot be used for error
// diffusion.
var ErrInvalidKernel = errors.New("dither: invalid kernel")

// Algorithm selects one of the built-in kernels.
type Algorithm int

const (
	// JarvisJudiceNinke spreads the error over three rows.
	JarvisJudiceNinke Algorithm = iota
	// FloydSteinberg spreads the error over two rows.
	FloydSteinberg
)

var algorithmNames = map[Algorithm]string{
	JarvisJudiceNinke: "JarvisJudiceNinke",
	FloydSteinberg:    "FloydSteinberg",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Set implements the flag.Value interface so an Algorithm can be used
// directly as a command line flag.
func (a *Algorithm) Set(s string) error {
	v, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAlgorithm returns the Algorithm with the given name. Matching is case
// insensitive.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("dither: unknown algorithm %q", s)
}

// Weights returns a fresh copy of the weight matrix for the algorithm.
func (a Algorithm) Weights() [][]int {
	switch a {
	case JarvisJudiceNinke:
		return [][]int{
			{0, 0, 0, 7, 5},
			{3, 5, 7, 5, 3},
			{1, 3, 5, 3, 1},
		}
	case FloydSteinberg:
		return [][]int{
			{0, 0, 7},
			{3, 5, 1},
		}
	}
	return nil
}

// Kernel returns the validated kernel for the algorithm.
func (a Algorithm) Kernel() (*Kernel, error) {
	w := a.Weights()
	if w == nil {
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidKernel, int(a))
	}
	return NewKernel(w)
}

// Kernel is a weight matrix together with the constants derived from it.
type Kernel struct {
	weights [][]int
	center  int
	total   int
}

// NewKernel validates weights and derives the center column and the total
// weight. The matrix must be rectangular with no negative weights, and row 0
// must start with at least one zero followed by a non-zero weight.
func NewKernel(weights [][]int) (*Kernel, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidKernel)
	}

	k := &Kernel{
		weights: make([][]int, len(weights)),
		center:  -1,
	}

	for i, row := range weights {
		if len(row) != len(weights[0]) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidKernel, i, len(row), len(weights[0]))
		}
		k.weights[i] = append([]int(nil), row...)
		for _, w := range row {
			if w < 0 {
				return nil, fmt.Errorf("%w: negative weight %d", ErrInvalidKernel, w)
			}
			k.total += w
		}
	}

	first := -1
	for i, w := range weights[0] {
		if w != 0 {
			first = i
			break
		}
	}
	switch first {
	case -1:
		return nil, fmt.Errorf("%w: row 0 has no non-zero weight", ErrInvalidKernel)
	case 0:
		return nil, fmt.Errorf("%w: row 0 has no room for the current cell", ErrInvalidKernel)
	}
	k.center = first - 1

	return k, nil
}

// Rows returns the number of rows in the kernel.
func (k *Kernel) Rows() int { return len(k.weights) }

// Columns returns the number of columns in the kernel.
func (k *Kernel) Columns() int { return len(k.weights[0]) }

// Center returns the column of the current cell.
func (k *Kernel) Center() int { return k.center }

// Total returns the sum of all weights.
func (k *Kernel) Total() int { return k.total }

// Weight returns the weight at the given kernel row and column.
func (k *Kernel) Weight(row, col int) int { return k.weights[row][col] }

// Each calls fn for every non-zero weight with the cell offset relative to
// the current cell.
func (k *Kernel) Each(fn func(dx, dy, weight int)) {
	for dy, row := range k.weights {
		for col, w := range row {
			if w != 0 {
				fn(col-k.center, dy, w)
			}
		}
	}
}

// Share returns the part of v carried by weight, truncated towards zero.
func (k *Kernel) Share(v, weight int) int {
	return v * weight / k.total
}
