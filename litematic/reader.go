package litematic

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

var errBlockStates = errors.New("litematic: block state array too short")

// readers use their own types as the writer omits empty properties

type blockState struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties"`
}

type region struct {
	Position          Vec3         `nbt:"Position"`
	Size              Vec3         `nbt:"Size"`
	BlockStatePalette []blockState `nbt:"BlockStatePalette"`
	BlockStates       []int64      `nbt:"BlockStates"`
}

type schematic struct {
	MinecraftDataVersion int32             `nbt:"MinecraftDataVersion"`
	SubVersion           int32             `nbt:"SubVersion"`
	Version              int32             `nbt:"Version"`
	Metadata             Metadata          `nbt:"Metadata"`
	Regions              map[string]region `nbt:"Regions"`
}

func readAll(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, err
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return io.ReadAll(br)
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

// Decode reads a schematic from r, compressed or not. Entities and ticks
// are discarded.
func Decode(r io.Reader) (*Schematic, error) {
	b, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var s schematic
	if err := nbt.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	out := &Schematic{
		MinecraftDataVersion: s.MinecraftDataVersion,
		SubVersion:           s.SubVersion,
		Version:              s.Version,
		Metadata:             s.Metadata,
		Regions:              make(map[string]Region, len(s.Regions)),
	}
	for name, rg := range s.Regions {
		states := make([]BlockState, len(rg.BlockStatePalette))
		for i, bs := range rg.BlockStatePalette {
			states[i] = BlockState(bs)
		}
		out.Regions[name] = Region{
			Position:          rg.Position,
			Size:              rg.Size,
			BlockStatePalette: states,
			BlockStates:       rg.BlockStates,
		}
	}

	return out, nil
}

// Blocks returns the block state of every position in the single region of
// a one block deep schematic, indexed [y][x] with y = 0 the top row.
func (s *Schematic) Blocks() ([][]BlockState, error) {
	if len(s.Regions) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrRegion, len(s.Regions))
	}

	var rg Region
	for _, r := range s.Regions {
		rg = r
	}

	w, h := int(rg.Size.X), int(rg.Size.Y)
	n := w * h
	bits := BitsPerEntry(len(rg.BlockStatePalette))
	if len(rg.BlockStates)*64 < n*bits {
		return nil, errBlockStates
	}

	values := Unpack(rg.BlockStates, bits, n)

	blocks := make([][]BlockState, h)
	for y := range blocks {
		blocks[y] = make([]BlockState, w)
	}
	for i, v := range values {
		if v >= len(rg.BlockStatePalette) {
			return nil, fmt.Errorf("litematic: palette index %d out of range", v)
		}
		x, y := i%w, h-1-i/w
		blocks[y][x] = rg.BlockStatePalette[v]
	}

	return blocks, nil
}
