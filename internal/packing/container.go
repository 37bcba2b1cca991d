package packing

import "github.com/eugenenazirov/box-packer/internal/geometry"

// Container is a single bin with immutable dimensions, an optional weight
// limit (MaxWeight <= 0 means unbounded), and the mutable set of items placed
// so far. It also carries the growing candidate anchor list: the origin plus,
// for every placed item, the projections of its far corner along each axis.
type Container struct {
	Dims      geometry.Vec
	MaxWeight float64

	placed      []*Item
	totalWeight float64
	points      []geometry.Vec
}

// NewContainer creates an empty container seeded with the origin anchor.
func NewContainer(dims geometry.Vec, maxWeight float64) (*Container, error) {
	if !dims.Positive() {
		return nil, ErrInvalidContainer
	}
	return &Container{
		Dims:      dims,
		MaxWeight: maxWeight,
		points:    []geometry.Vec{{}},
	}, nil
}

// Placed returns the items placed so far, in placement order.
func (c *Container) Placed() []*Item {
	return c.placed
}

// TotalWeight returns the accumulated weight of placed items.
func (c *Container) TotalWeight() float64 {
	return c.totalWeight
}

// weightAllows reports whether w more units of weight fit under the limit.
func (c *Container) weightAllows(w float64) bool {
	if c.MaxWeight <= 0 {
		return true
	}
	return c.totalWeight+w <= c.MaxWeight+geometry.DefaultTolerance
}

// PlaceAll attempts to place every item in input order. Placement is greedy
// and never backtracks: the first anchor/rotation combination that passes the
// bounds, collision, and weight checks wins. An item that cannot be placed is
// recorded with a reason and the run continues; it is a normal outcome, not
// an error. Items must be freshly cloned per run.
func (c *Container) PlaceAll(items []*Item) (placed, unplaced []*Item, err error) {
	if len(items) == 0 {
		return nil, nil, ErrNoItems
	}
	for _, it := range items {
		if !it.Dims.Positive() || it.Weight < 0 {
			return nil, nil, ErrInvalidItem
		}
	}

	for _, it := range items {
		switch {
		case !geometry.FitsAnyRotation(it.Dims, c.Dims):
			it.Reason = ReasonTooLarge
		case !c.weightAllows(it.EffectiveWeight()):
			// Weight is independent of anchor and rotation, so a single
			// check up front is equivalent to rejecting every candidate.
			it.Reason = ReasonOverWeight
		case c.tryPlace(it):
			placed = append(placed, it)
			continue
		default:
			it.Reason = ReasonNoSpace
		}
		unplaced = append(unplaced, it)
	}
	return placed, unplaced, nil
}

// tryPlace scans candidate anchors in insertion order and rotations in
// canonical order, accepting the first combination that stays in bounds and
// clear of every placed item. Anchors swallowed by later placements are not
// removed; they simply fail the collision check (lazy pruning).
func (c *Container) tryPlace(it *Item) bool {
	rotations := geometry.Rotations(it.Dims)
	for _, anchor := range c.points {
		for _, oriented := range rotations {
			box := geometry.Box{Origin: anchor, Size: oriented}
			if !geometry.FitsWithin(box, c.Dims) {
				continue
			}
			if c.collides(box) {
				continue
			}
			c.accept(it, box)
			return true
		}
	}
	return false
}

func (c *Container) collides(box geometry.Box) bool {
	for _, other := range c.placed {
		if geometry.Intersects(box, other.Box()) {
			return true
		}
	}
	return false
}

// accept records the placement and emits the three new candidate anchors:
// the placed box's far corner projected along each axis ("push right",
// "push back", "push up").
func (c *Container) accept(it *Item, box geometry.Box) {
	it.Placed = true
	it.Position = box.Origin
	it.Oriented = box.Size
	c.placed = append(c.placed, it)
	c.totalWeight += it.EffectiveWeight()

	o, s := box.Origin, box.Size
	c.points = append(c.points,
		geometry.Vec{X: o.X + s.X, Y: o.Y, Z: o.Z},
		geometry.Vec{X: o.X, Y: o.Y + s.Y, Z: o.Z},
		geometry.Vec{X: o.X, Y: o.Y, Z: o.Z + s.Z},
	)
}
