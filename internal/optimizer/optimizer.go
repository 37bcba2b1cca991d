// Package optimizer searches item orderings and container axis mappings for
// the layout that places the most items, running the placement engine once
// per attempt across a bounded worker pool.
package optimizer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/report"
)

const (
	defaultMaxOrderings = 32
	defaultSeed         = 1
)

// Weights configures the tie-break between attempts that place the same
// number of items. FloorContact rewards items resting at the container base
// (counted per item); Compactness penalizes the bounding volume of the placed
// set (normalized by container volume). With the defaults the tie-break is
// effectively lexicographic: floor contact first, bounding volume second,
// because the normalized volume term stays below one.
type Weights struct {
	FloorContact float64 `yaml:"floor_contact" json:"floorContact"`
	Compactness  float64 `yaml:"compactness" json:"compactness"`
}

// DefaultWeights returns the standard tie-break weighting.
func DefaultWeights() Weights {
	return Weights{FloorContact: 1, Compactness: 1}
}

// Options tunes one optimization run.
type Options struct {
	// AllowContainerRotation searches every distinct permutation of the
	// container's own dimensions in addition to the caller's orientation.
	AllowContainerRotation bool
	// MaxOrderings caps the number of item orderings tried when the item
	// count is too large for exhaustive permutation. Default 32.
	MaxOrderings int
	// Workers bounds the attempt worker pool. Default runtime.NumCPU().
	Workers int
	// Seed drives the random shuffles so sampled runs stay reproducible.
	// Default 1.
	Seed int64
	// Weights configures the scoring tie-break. Zero value means defaults.
	Weights Weights
	// FloorThreshold is the height at or below which an item counts as
	// resting on the container floor. Default geometry.DefaultTolerance.
	FloorThreshold float64
}

func (o Options) withDefaults() Options {
	if o.MaxOrderings <= 0 {
		o.MaxOrderings = defaultMaxOrderings
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Seed == 0 {
		o.Seed = defaultSeed
	}
	if o.Weights == (Weights{}) {
		o.Weights = DefaultWeights()
	}
	if o.FloorThreshold <= 0 {
		o.FloorThreshold = geometry.DefaultTolerance
	}
	return o
}

// score is the lexicographic objective of one attempt.
type score struct {
	placed        int
	floorContact  int
	boundFraction float64
}

// better reports whether a strictly beats b: most items placed first, then
// the weighted floor-contact/compactness value. Equal scores keep the
// incumbent (first-improvement semantics).
func (w Weights) better(a, b score) bool {
	if a.placed != b.placed {
		return a.placed > b.placed
	}
	return w.value(a) > w.value(b)
}

func (w Weights) value(s score) float64 {
	return w.FloorContact*float64(s.floorContact) - w.Compactness*s.boundFraction
}

// outcome is the retained state of the best attempt so far.
type outcome struct {
	placed   []*packing.Item
	unplaced []*packing.Item
	axes     axisMapping
	score    score
}

// Optimize runs the strategy search for a single container and returns the
// best layout found, expressed in the caller's original axis convention.
// Degenerate input is rejected before any attempt runs. The context is
// checked between attempts, never mid-attempt; a cancelled search returns
// the best layout found so far with Exhaustive reporting false.
func Optimize(ctx context.Context, dims geometry.Vec, maxWeight float64, items []*packing.Item, opts Options) (report.PlacementResult, error) {
	if !dims.Positive() {
		return report.PlacementResult{}, packing.ErrInvalidContainer
	}
	if len(items) == 0 {
		return report.PlacementResult{}, packing.ErrNoItems
	}
	for _, it := range items {
		if !it.Dims.Positive() || it.Weight < 0 {
			return report.PlacementResult{}, packing.ErrInvalidItem
		}
	}
	opts = opts.withDefaults()

	rng := rand.New(rand.NewSource(opts.Seed))
	orders, fullEnumeration := orderings(items, opts.MaxOrderings, rng)
	mappings := axisMappings(dims, opts.AllowContainerRotation)

	var (
		mu          sync.Mutex
		best        *outcome
		attemptsRun int
		perfect     atomic.Bool
		cancelled   atomic.Bool
	)

	runAttempt := func(a attempt) {
		ordered := make([]*packing.Item, len(a.order))
		for i, idx := range a.order {
			ordered[i] = items[idx].Clone()
		}
		container, err := packing.NewContainer(a.axes.apply(dims), maxWeight)
		if err != nil {
			return
		}
		placed, unplaced, err := container.PlaceAll(ordered)
		if err != nil {
			return
		}

		s := score{placed: len(placed)}
		var bound geometry.Vec
		for _, it := range placed {
			if it.Position.Z <= opts.FloorThreshold {
				s.floorContact++
			}
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
		s.boundFraction = bound.Volume() / dims.Volume()

		mu.Lock()
		attemptsRun++
		if best == nil || opts.Weights.better(s, best.score) {
			best = &outcome{placed: placed, unplaced: unplaced, axes: a.axes, score: s}
		}
		mu.Unlock()

		if s.placed == len(items) {
			perfect.Store(true)
		}
	}

	attempts := make(chan attempt)
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range attempts {
				if perfect.Load() || cancelled.Load() {
					continue
				}
				select {
				case <-ctx.Done():
					cancelled.Store(true)
					continue
				default:
				}
				runAttempt(a)
			}
		}()
	}

	for _, m := range mappings {
		for _, o := range orders {
			attempts <- attempt{order: o, axes: m}
		}
	}
	close(attempts)
	wg.Wait()

	if best == nil {
		// Context was already done before any attempt ran. Still produce the
		// single-pass baseline so the caller gets a usable layout.
		runAttempt(attempt{order: identityOrder(len(items)), axes: identityMapping})
	}
	for _, it := range best.placed {
		it.Position = best.axes.invert(it.Position)
		it.Oriented = best.axes.invert(it.Oriented)
	}
	result := report.Build(dims, best.placed, best.unplaced)
	result.Metrics.Attempts = attemptsRun
	result.Metrics.Exhaustive = (fullEnumeration && !cancelled.Load()) || perfect.Load()
	return result, nil
}
