package heatmap

import (
	"fmt"
	"math"
	"slices"
)

// Mapper colors the tile at (col, row) of a lattice with the given count.
// The boolean result is false for "no color"; such tiles are left
// transparent by every backend.
//
// A Mapper must be pure: backends may call it any number of times and from
// any goroutine.
type Mapper func(col, row int, count Count) (RGBA, bool)

// Color calls m. A nil Mapper colors nothing.
func (m Mapper) Color(col, row int, count Count) (RGBA, bool) {
	if m == nil {
		return RGBA{}, false
	}
	return m(col, row, count)
}

// Rank returns the normalized position of tile (col, row) in [0, 1):
// (col*count.Y + row) / (count.X*count.Y). Tiles are ranked column by column.
// An empty lattice ranks every tile 0.
func Rank(col, row int, count Count) float64 {
	n := count.Tiles()
	if n <= 0 {
		return 0
	}
	return float64(col*count.Y+row) / float64(n)
}

// ColorStop pairs an upper rank threshold with the color of the band below it.
type ColorStop struct {
	Threshold float64
	Color     RGBA
}

// Stops is a color scale made of rank bands, ordered by ascending threshold.
type Stops []ColorStop

// Lookup returns the color of the first stop whose threshold is strictly
// greater than rank. A rank equal to a threshold belongs to the next band.
// It reports false when no stop matches.
func (s Stops) Lookup(rank float64) (RGBA, bool) {
	for _, stop := range s {
		if stop.Threshold > rank {
			return stop.Color, true
		}
	}
	return RGBA{}, false
}

// Mapper returns a Mapper that colors tiles by rank band. The stops are
// copied, so later changes to s do not affect the mapper.
func (s Stops) Mapper() Mapper {
	stops := slices.Clone(s)
	return func(col, row int, count Count) (RGBA, bool) {
		return stops.Lookup(Rank(col, row, count))
	}
}

// Sorted returns a copy of s ordered by ascending threshold. Stops with
// equal thresholds keep their relative order.
func (s Stops) Sorted() Stops {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b ColorStop) int {
		switch {
		case a.Threshold < b.Threshold:
			return -1
		case a.Threshold > b.Threshold:
			return 1
		}
		return 0
	})
	return out
}

// Validate reports stops that are out of order or whose threshold lies
// outside (0, 1]. An empty list is valid and colors nothing.
func (s Stops) Validate() error {
	for i, stop := range s {
		if math.IsNaN(stop.Threshold) || stop.Threshold <= 0 || stop.Threshold > 1 {
			return fmt.Errorf("%w: stop %d threshold %v outside (0, 1]", ErrInvalidStops, i, stop.Threshold)
		}
		if i > 0 && stop.Threshold < s[i-1].Threshold {
			return fmt.Errorf("%w: stop %d threshold %v below previous %v",
				ErrInvalidStops, i, stop.Threshold, s[i-1].Threshold)
		}
	}
	return nil
}
