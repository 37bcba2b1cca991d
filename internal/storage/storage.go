// Package storage holds the session item list the packing endpoints operate
// on. The list is externally owned mutable state: the engine itself never
// retains items between calls.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/packing"
)

// maxItems caps the expanded item count so a single request cannot blow up
// the optimizer's search space.
const maxItems = 500

var (
	// ErrInvalidItemSpec indicates an item spec with non-positive dimensions,
	// a negative weight, or a negative quantity.
	ErrInvalidItemSpec = errors.New("item dimensions and quantity must be positive and weight non-negative")
	// ErrTooManyItems indicates the expanded list would exceed the item cap.
	ErrTooManyItems = fmt.Errorf("item list may hold at most %d items", maxItems)
)

// ItemSpec describes one kind of item to pack. Quantity expands into that
// many identical instances; zero means one. Weight zero means the default
// weight of 1 per instance.
type ItemSpec struct {
	Name     string  `json:"name" yaml:"name"`
	Length   float64 `json:"length" yaml:"length"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Weight   float64 `json:"weight,omitempty" yaml:"weight"`
	Quantity int     `json:"quantity,omitempty" yaml:"quantity"`
}

func (s ItemSpec) normalized() (ItemSpec, error) {
	if s.Quantity == 0 {
		s.Quantity = 1
	}
	if s.Length <= 0 || s.Width <= 0 || s.Height <= 0 || s.Weight < 0 || s.Quantity < 0 {
		return ItemSpec{}, ErrInvalidItemSpec
	}
	return s, nil
}

// ValidateSpec checks a single spec and returns it with the quantity default
// applied. Used by callers that accept inline item lists.
func ValidateSpec(s ItemSpec) (ItemSpec, error) {
	return s.normalized()
}

// Storage provides access to the session item list.
type Storage interface {
	GetItems() ([]ItemSpec, error)
	AddItems(specs []ItemSpec) error
	SetItems(specs []ItemSpec) error
	Clear() error
}

// MemoryStorage keeps item specs in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	items []ItemSpec
}

// NewMemoryStorage initialises an empty item list.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// GetItems returns a defensive copy of the current item specs.
func (s *MemoryStorage) GetItems() ([]ItemSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ItemSpec, len(s.items))
	copy(out, s.items)
	return out, nil
}

// AddItems validates and appends specs to the list.
func (s *MemoryStorage) AddItems(specs []ItemSpec) error {
	normalized, err := normalizeSpecs(specs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if countInstances(s.items)+countInstances(normalized) > maxItems {
		return ErrTooManyItems
	}
	s.items = append(s.items, normalized...)
	return nil
}

// SetItems validates and replaces the whole list.
func (s *MemoryStorage) SetItems(specs []ItemSpec) error {
	normalized, err := normalizeSpecs(specs)
	if err != nil {
		return err
	}
	if countInstances(normalized) > maxItems {
		return ErrTooManyItems
	}

	s.mu.Lock()
	s.items = normalized
	s.mu.Unlock()
	return nil
}

// Clear empties the list.
func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	return nil
}

func normalizeSpecs(specs []ItemSpec) ([]ItemSpec, error) {
	out := make([]ItemSpec, 0, len(specs))
	for _, spec := range specs {
		n, err := spec.normalized()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func countInstances(specs []ItemSpec) int {
	total := 0
	for _, spec := range specs {
		total += spec.Quantity
	}
	return total
}

// Expand turns specs into per-instance engine items. Repeated names are
// disambiguated with a running ordinal, so every instance reports its own
// placement outcome.
func Expand(specs []ItemSpec) []*packing.Item {
	items := make([]*packing.Item, 0, countInstances(specs))
	ordinal := 0
	for _, spec := range specs {
		qty := spec.Quantity
		if qty == 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			items = append(items, &packing.Item{
				Name:   fmt.Sprintf("%s-%d", spec.Name, ordinal),
				Dims:   geometry.Vec{X: spec.Length, Y: spec.Width, Z: spec.Height},
				Weight: spec.Weight,
			})
			ordinal++
		}
	}
	return items
}
