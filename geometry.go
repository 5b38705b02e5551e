package heatmap

import (
	"fmt"
	"math"
)

// TileSpec describes one tile of the lattice: the edge length of its square
// and the spacing to its neighbours. Both are ≥ 0; only Edge > 0 produces
// visible tiles.
type TileSpec struct {
	Edge float64 `yaml:"edge"`
	Gap  float64 `yaml:"gap"`
}

// Pitch returns Edge + Gap, the distance between neighbouring tile origins.
func (s TileSpec) Pitch() float64 {
	return s.Edge + s.Gap
}

// Validate reports whether both lengths are finite and non-negative.
func (s TileSpec) Validate() error {
	if !finiteNonNeg(s.Edge) {
		return fmt.Errorf("%w: edge %v", ErrInvalidTileSpec, s.Edge)
	}
	if !finiteNonNeg(s.Gap) {
		return fmt.Errorf("%w: gap %v", ErrInvalidTileSpec, s.Gap)
	}
	return nil
}

func finiteNonNeg(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

// Count is the number of tiles along each axis.
type Count struct {
	X, Y int
}

// MaxAxisTiles caps the tile count on one axis, so that Count stays
// non-negative and Count.Tiles does not overflow.
const MaxAxisTiles = math.MaxInt32

// Tiles returns X*Y, the number of tiles in the lattice.
func (c Count) Tiles() int {
	return c.X * c.Y
}

// FitResult is the tile lattice computed for one surface size.
type FitResult struct {
	Count Count
	// Scale stretches the lattice so it exactly covers the surface.
	// It is {1, 1} unless fill was requested.
	Scale Vec
}

// Cell returns the grid coordinate of tile i. The column varies fastest.
func (f FitResult) Cell(i int) (col, row int) {
	return i % f.Count.X, i / f.Count.X
}

// Extent returns the size of the lattice in tile units before Scale is
// applied: Count * pitch per axis.
func (f FitResult) Extent(spec TileSpec) Size {
	p := spec.Pitch()
	return Size{X: float64(f.Count.X) * p, Y: float64(f.Count.Y) * p}
}

// Resolve computes how many tiles of the given edge and gap fit into size.
//
// The count on each axis is floor(size/pitch), never negative and at most
// MaxAxisTiles. A pitch ≤ 0 yields an empty lattice. With fill set, Scale
// is (size/pitch)/count on every axis that holds at least one tile, so
// Scale*Count*pitch == size; an axis without tiles, or capped at
// MaxAxisTiles, keeps a scale of 1.
//
// Resolve is pure and safe for concurrent use.
func Resolve(size Size, edge, gap float64, fill bool) FitResult {
	res := FitResult{Scale: Vec{X: 1, Y: 1}}

	pitch := edge + gap
	if !(pitch > 0) || math.IsInf(pitch, 0) {
		return res
	}

	fx := math.Min(sanitize(size.X)/pitch, MaxAxisTiles)
	fy := math.Min(sanitize(size.Y)/pitch, MaxAxisTiles)
	res.Count = Count{X: int(math.Floor(fx)), Y: int(math.Floor(fy))}

	if fill {
		if res.Count.X > 0 {
			res.Scale.X = fx / float64(res.Count.X)
		}
		if res.Count.Y > 0 {
			res.Scale.Y = fy / float64(res.Count.Y)
		}
	}
	return res
}

// Origin returns the top-left corner of the tile at (col, row) in tile
// units.
func Origin(col, row int, spec TileSpec) Vec {
	p := spec.Pitch()
	return Vec{X: float64(col) * p, Y: float64(row) * p}
}
