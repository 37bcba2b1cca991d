package packing

import "github.com/eugenenazirov/box-packer/internal/geometry"

// Reason classifies why an item could not be placed.
type Reason string

const (
	// ReasonTooLarge means no rotation of the item fits an empty container.
	ReasonTooLarge Reason = "exceeds container in at least one axis"
	// ReasonOverWeight means the item's weight exceeds the remaining capacity.
	ReasonOverWeight Reason = "exceeds weight capacity"
	// ReasonNoSpace means the item fits the container but no collision-free
	// anchor remained.
	ReasonNoSpace Reason = "no remaining free space"
)

// Item is one rectangular object to pack. Dims is the native dimension
// triple; Position and Oriented are assigned by the engine on success.
// A zero Weight is treated as the default weight of 1.
type Item struct {
	Name   string
	Dims   geometry.Vec
	Weight float64

	Placed   bool
	Position geometry.Vec
	Oriented geometry.Vec
	Reason   Reason
}

// EffectiveWeight returns the item's weight, defaulting to 1 when unset.
func (it *Item) EffectiveWeight() float64 {
	if it.Weight <= 0 {
		return 1
	}
	return it.Weight
}

// Box returns the item's placed bounding box.
func (it *Item) Box() geometry.Box {
	return geometry.Box{Origin: it.Position, Size: it.Oriented}
}

// Clone returns a fresh unplaced copy of the item, so one optimizer attempt
// never leaks placement state into another.
func (it *Item) Clone() *Item {
	return &Item{Name: it.Name, Dims: it.Dims, Weight: it.Weight}
}

// CloneItems deep-copies an item list in order.
func CloneItems(items []*Item) []*Item {
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
