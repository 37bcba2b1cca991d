package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/eugenenazirov/box-packer/internal/geometry"
)

func spec(name string, l, w, h float64) ItemSpec {
	return ItemSpec{Name: name, Length: l, Width: w, Height: h}
}

func TestNewMemoryStorageStartsEmpty(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	got, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestAddItemsAppendsAndDefendsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	if err := store.AddItems([]ItemSpec{spec("a", 1, 2, 3)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddItems([]ItemSpec{spec("b", 4, 5, 6)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("unexpected list %v", got)
	}

	// ensure mutation safety
	got[0].Name = "mutated"
	again, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0].Name != "a" {
		t.Fatalf("expected defensive copy, got %v", again)
	}
}

func TestSetItemsReplacesAndClearEmpties(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	if err := store.AddItems([]ItemSpec{spec("old", 1, 1, 1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetItems([]ItemSpec{spec("new", 2, 2, 2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.GetItems()
	if len(got) != 1 || got[0].Name != "new" {
		t.Fatalf("expected replacement, got %v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = store.GetItems()
	if len(got) != 0 {
		t.Fatalf("expected cleared list, got %v", got)
	}
}

func TestAddItemsRejectsInvalidSpecs(t *testing.T) {
	t.Parallel()

	invalid := []ItemSpec{
		{Name: "flat", Length: 0, Width: 1, Height: 1},
		{Name: "negative", Length: 1, Width: -2, Height: 1},
		{Name: "antigravity", Length: 1, Width: 1, Height: 1, Weight: -1},
		{Name: "antiquantity", Length: 1, Width: 1, Height: 1, Quantity: -3},
	}

	for _, s := range invalid {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.AddItems([]ItemSpec{s}); !errors.Is(err, ErrInvalidItemSpec) {
				t.Fatalf("expected ErrInvalidItemSpec, got %v", err)
			}
		})
	}
}

func TestAddItemsEnforcesInstanceCap(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	big := spec("bulk", 1, 1, 1)
	big.Quantity = maxItems

	if err := store.AddItems([]ItemSpec{big}); err != nil {
		t.Fatalf("unexpected error at the cap: %v", err)
	}
	if err := store.AddItems([]ItemSpec{spec("one-more", 1, 1, 1)}); !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems, got %v", err)
	}

	over := spec("too-much", 1, 1, 1)
	over.Quantity = maxItems + 1
	if err := store.SetItems([]ItemSpec{over}); !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems from SetItems, got %v", err)
	}
}

func TestExpandAppliesQuantityAndOrdinals(t *testing.T) {
	t.Parallel()

	box := spec("box", 2, 3, 4)
	box.Quantity = 2
	box.Weight = 1.5
	single := spec("box", 1, 1, 1)

	items := Expand([]ItemSpec{box, single})
	if len(items) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(items))
	}

	wantNames := []string{"box-0", "box-1", "box-2"}
	for i, it := range items {
		if it.Name != wantNames[i] {
			t.Fatalf("expected name %s, got %s", wantNames[i], it.Name)
		}
	}
	if items[0].Dims != (geometry.Vec{X: 2, Y: 3, Z: 4}) || items[0].Weight != 1.5 {
		t.Fatalf("expansion lost spec fields: %+v", items[0])
	}
	if items[2].Dims != (geometry.Vec{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("unexpected dims for last instance: %+v", items[2])
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.AddItems([]ItemSpec{spec(fmt.Sprintf("w-%d", i), 1, 1, 1)})
			_, _ = store.GetItems()
		}(i)
	}
	wg.Wait()

	got, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 items after concurrent adds, got %d", len(got))
	}
}
