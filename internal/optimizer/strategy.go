package optimizer

import (
	"math/rand"
	"sort"

	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/packing"
)

// exhaustivePermutationLimit bounds the item count for which every ordering
// is enumerated (7! = 5040 orderings). Above it the search falls back to
// heuristic orders plus seeded random shuffles.
const exhaustivePermutationLimit = 7

// ordering is a permutation of item indices defining the placement order.
type ordering []int

// axisMapping assigns, for each internal axis i, the original container axis
// it draws its dimension from. The identity mapping is {0, 1, 2}.
type axisMapping [3]int

var identityMapping = axisMapping{0, 1, 2}

// attempt is one (ordering, axis mapping) pair fed to the placement engine.
type attempt struct {
	order ordering
	axes  axisMapping
}

// apply returns v permuted into the internal axis convention.
func (m axisMapping) apply(v geometry.Vec) geometry.Vec {
	src := [3]float64{v.X, v.Y, v.Z}
	return geometry.Vec{X: src[m[0]], Y: src[m[1]], Z: src[m[2]]}
}

// invert returns v expressed back in the caller's original axis convention.
func (m axisMapping) invert(v geometry.Vec) geometry.Vec {
	src := [3]float64{v.X, v.Y, v.Z}
	var dst [3]float64
	for i, axis := range m {
		dst[axis] = src[i]
	}
	return geometry.Vec{X: dst[0], Y: dst[1], Z: dst[2]}
}

// axisMappings returns the distinct container orientations: the identity
// first, then every permutation of the dimensions that yields a different
// triple. With rotation disabled only the identity is searched.
func axisMappings(dims geometry.Vec, allowRotation bool) []axisMapping {
	if !allowRotation {
		return []axisMapping{identityMapping}
	}

	all := []axisMapping{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	out := make([]axisMapping, 0, 6)
	seen := make(map[geometry.Vec]struct{}, 6)
	for _, m := range all {
		d := m.apply(dims)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, m)
	}
	return out
}

// orderings enumerates the placement orders for one optimizer run. The input
// order always comes first so the search is never worse than the single-pass
// baseline. Returns the orders and whether they cover the full permutation
// space.
func orderings(items []*packing.Item, maxOrderings int, rng *rand.Rand) ([]ordering, bool) {
	n := len(items)
	if n <= exhaustivePermutationLimit {
		return permutations(n), true
	}

	orders := []ordering{
		identityOrder(n),
		sortedOrder(items, func(a, b *packing.Item) bool { return a.Dims.Volume() > b.Dims.Volume() }),
		sortedOrder(items, func(a, b *packing.Item) bool { return a.Dims.MaxComponent() > b.Dims.MaxComponent() }),
		sortedOrder(items, func(a, b *packing.Item) bool { return a.Dims.Footprint() > b.Dims.Footprint() }),
	}
	for len(orders) < maxOrderings {
		shuffled := identityOrder(n)
		rng.Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		orders = append(orders, shuffled)
	}
	return orders, false
}

func identityOrder(n int) ordering {
	order := make(ordering, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// sortedOrder returns item indices sorted by the given less function, using
// a stable sort so equal items keep their input order.
func sortedOrder(items []*packing.Item, less func(a, b *packing.Item) bool) ordering {
	order := identityOrder(len(items))
	sort.SliceStable(order, func(i, j int) bool {
		return less(items[order[i]], items[order[j]])
	})
	return order
}

// permutations generates every ordering of n indices, identity first.
func permutations(n int) []ordering {
	var out []ordering
	current := identityOrder(n)

	var generate func(k int)
	generate = func(k int) {
		if k == 1 {
			out = append(out, append(ordering(nil), current...))
			return
		}
		generate(k - 1)
		for i := 0; i < k-1; i++ {
			if k%2 == 0 {
				current[i], current[k-1] = current[k-1], current[i]
			} else {
				current[0], current[k-1] = current[k-1], current[0]
			}
			generate(k - 1)
		}
	}
	generate(n)
	return out
}
