package packing

import "errors"

var (
	// ErrInvalidContainer is returned when a container dimension is zero or negative.
	ErrInvalidContainer = errors.New("container dimensions must be positive")
	// ErrNoItems is returned when placement is requested with an empty item list.
	ErrNoItems = errors.New("item list must contain at least one item")
	// ErrInvalidItem is returned when an item has a non-positive dimension or a negative weight.
	ErrInvalidItem = errors.New("item dimensions must be positive and weight non-negative")
)
