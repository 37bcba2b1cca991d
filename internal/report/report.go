// Package report converts a finished placement run into the transport-facing
// result: placed records with final position and realized dimensions,
// unplaced records with a fit diagnosis, and aggregate metrics.
package report

import (
	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/packing"
)

// Triple is an ordered (x, y, z) value serialized as a three-element array.
type Triple [3]float64

func tripleOf(v geometry.Vec) Triple {
	return Triple{v.X, v.Y, v.Z}
}

// PlacedItem is one successfully placed item in the caller's original axis
// convention. Dims are the realized dimensions after rotation.
type PlacedItem struct {
	Name     string `json:"name"`
	Position Triple `json:"position"`
	Dims     Triple `json:"dims"`
}

// UnplacedItem is one item that could not be placed, with its diagnosis.
type UnplacedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Metrics aggregates the outcome of a run. Exhaustive reports whether the
// optimizer proved the layout best over its full enumeration space or fell
// back to sampled orderings; single-pass placements are trivially exhaustive.
type Metrics struct {
	PlacedCount            int     `json:"placedCount"`
	TotalCount             int     `json:"totalCount"`
	OccupiedVolumeFraction float64 `json:"occupiedVolumeFraction"`
	BoundingBox            Triple  `json:"boundingBox"`
	Exhaustive             bool    `json:"exhaustive"`
	Attempts               int     `json:"attempts"`
}

// PlacementResult is the full outcome of a placement or optimization run.
type PlacementResult struct {
	Placed   []PlacedItem   `json:"placed"`
	Unplaced []UnplacedItem `json:"unplaced"`
	Metrics  Metrics        `json:"metrics"`
}

// Build assembles a PlacementResult from a finished run against a container
// of the given dimensions. Attempts and Exhaustive default to a single
// proven pass; the optimizer overwrites them.
func Build(containerDims geometry.Vec, placed, unplaced []*packing.Item) PlacementResult {
	result := PlacementResult{
		Placed:   make([]PlacedItem, 0, len(placed)),
		Unplaced: make([]UnplacedItem, 0, len(unplaced)),
		Metrics: Metrics{
			TotalCount: len(placed) + len(unplaced),
			Exhaustive: true,
			Attempts:   1,
		},
	}

	var occupied float64
	var bound geometry.Vec
	for _, it := range placed {
		result.Placed = append(result.Placed, PlacedItem{
			Name:     it.Name,
			Position: tripleOf(it.Position),
			Dims:     tripleOf(it.Oriented),
		})
		occupied += it.Oriented.Volume()
		max := it.Box().Max()
		if max.X > bound.X {
			bound.X = max.X
		}
		if max.Y > bound.Y {
			bound.Y = max.Y
		}
		if max.Z > bound.Z {
			bound.Z = max.Z
		}
	}
	for _, it := range unplaced {
		result.Unplaced = append(result.Unplaced, UnplacedItem{
			Name:   it.Name,
			Reason: string(it.Reason),
		})
	}

	result.Metrics.PlacedCount = len(placed)
	result.Metrics.BoundingBox = tripleOf(bound)
	if v := containerDims.Volume(); v > 0 {
		result.Metrics.OccupiedVolumeFraction = occupied / v
	}
	return result
}
