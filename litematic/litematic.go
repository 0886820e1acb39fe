/*
Package litematic implements an encoder and decoder for Litematica schematic
files.

A schematic is a gzip compressed NBT compound holding some metadata and one
or more named regions. Each region has a palette of block states, with air
always at index 0, and a packed array of palette indices, one per block.
Indices are a fixed number of bits wide, at least 2, and are packed into
64-bit words starting from the least significant bit. An index that does not
fit in the remainder of a word continues in the low bits of the next word.

Blocks are stored in x, then z, then y order. The images handled here are a
single block deep so a grid row y becomes schematic layer height-1-y.
*/
package litematic

import (
	"errors"
	"math/bits"
)

const (
	// DataVersion is the Minecraft data version of the written blocks.
	DataVersion = 3465
	// SubVersion is the Litematica sub version.
	SubVersion = 1
	// Version is the Litematica format version.
	Version = 6

	// Author is written to every schematic.
	Author = "img2mc"
	// Description is written to every schematic.
	Description = "Generated by img2mc"
	// DefaultName is used when no name is given.
	DefaultName = "image"
	// RegionName is the name of the single region.
	RegionName = "Unnamed"

	minBits = 2
)

var (
	// ErrUnknownVariant is returned when a grid cell names a variant
	// missing from the catalog.
	ErrUnknownVariant = errors.New("litematic: unknown variant")
	// ErrClock is returned when the system clock is before the epoch.
	ErrClock = errors.New("litematic: system clock before epoch")
	// ErrRegion is returned when decoding a schematic without exactly one
	// region.
	ErrRegion = errors.New("litematic: expected a single region")
)

// Vec3 is an integer position or size.
type Vec3 struct {
	X int32 `nbt:"x"`
	Y int32 `nbt:"y"`
	Z int32 `nbt:"z"`
}

// Schematic is the root compound.
type Schematic struct {
	MinecraftDataVersion int32             `nbt:"MinecraftDataVersion"`
	SubVersion           int32             `nbt:"SubVersion"`
	Version              int32             `nbt:"Version"`
	Metadata             Metadata          `nbt:"Metadata"`
	Regions              map[string]Region `nbt:"Regions"`
}

// Metadata describes the whole schematic.
type Metadata struct {
	EnclosingSize Vec3   `nbt:"EnclosingSize"`
	RegionCount   int32  `nbt:"RegionCount"`
	TotalBlocks   int32  `nbt:"TotalBlocks"`
	TotalVolume   int32  `nbt:"TotalVolume"`
	TimeCreated   int64  `nbt:"TimeCreated"`
	TimeModified  int64  `nbt:"TimeModified"`
	Author        string `nbt:"Author"`
	Description   string `nbt:"Description"`
	Name          string `nbt:"Name"`
}

// Region is a box of blocks.
type Region struct {
	Position          Vec3         `nbt:"Position"`
	Size              Vec3         `nbt:"Size"`
	BlockStatePalette []BlockState `nbt:"BlockStatePalette"`
	Entities          []Compound   `nbt:"Entities"`
	PendingBlockTicks []Compound   `nbt:"PendingBlockTicks"`
	PendingFluidTicks []Compound   `nbt:"PendingFluidTicks"`
	TileEntities      []Compound   `nbt:"TileEntities"`
	BlockStates       []int64      `nbt:"BlockStates"`
}

// BlockState is a palette entry.
type BlockState struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties,omitempty"`
}

// Compound is an empty compound, the schematics written here never contain
// entities or ticks.
type Compound struct{}

// BitsPerEntry returns the width of each packed index for a palette of n
// entries.
func BitsPerEntry(n int) int {
	if n < 1 {
		return minBits
	}
	b := bits.Len(uint(n - 1))
	if b < minBits {
		return minBits
	}
	return b
}
