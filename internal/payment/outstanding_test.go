package payment

import (
	"errors"
	"testing"

	"github.com/tableserve/api/internal/cart"
	"github.com/tableserve/api/internal/order"
)

func activeOrder(total int64) order.Order {
	return order.Order{
		Status: order.StatusAccepted,
		Items:  []order.Item{{Qty: 1, UnitPrice: total}},
	}
}

func TestOutstandingUsesActiveOrders(t *testing.T) {
	t.Parallel()

	b := Basis{
		Active: []order.Order{activeOrder(50000), activeOrder(30000)},
		Cart:   []cart.Item{{Qty: 1, UnitPrice: 99999}}, // ignored while orders exist
	}
	if got := Outstanding(ModeFull, b); got != 80000 {
		t.Fatalf("outstanding=%d, want 80000", got)
	}
}

func TestOutstandingFallsBackToCart(t *testing.T) {
	t.Parallel()

	b := Basis{Cart: []cart.Item{{Qty: 2, UnitPrice: 12000}}}
	if got := Outstanding(ModeFull, b); got != 24000 {
		t.Fatalf("outstanding=%d, want 24000", got)
	}
}

func TestOutstandingTargetedOrder(t *testing.T) {
	t.Parallel()

	o := activeOrder(42000)
	b := Basis{
		Order:  &o,
		Active: []order.Order{activeOrder(99999)},
		Paid:   2000,
	}
	if got := Outstanding(ModeFull, b); got != 40000 {
		t.Fatalf("outstanding=%d, want 40000", got)
	}
}

func TestOutstandingNeverNegative(t *testing.T) {
	t.Parallel()

	b := Basis{Active: []order.Order{activeOrder(10000)}, Paid: 15000}
	if got := Outstanding(ModeFull, b); got != 0 {
		t.Fatalf("outstanding=%d, want 0", got)
	}
}

func TestOutstandingItemsModeCapped(t *testing.T) {
	t.Parallel()

	b := Basis{
		Cart: []cart.Item{
			{ID: "a", Qty: 1, UnitPrice: 30000},
			{ID: "b", Qty: 1, UnitPrice: 50000},
		},
		SelectedIDs: []string{"a"},
	}
	if got := Outstanding(ModeItems, b); got != 30000 {
		t.Fatalf("outstanding=%d, want 30000 (selected only)", got)
	}
}

func TestEvenShareRoundsUp(t *testing.T) {
	t.Parallel()

	if got := EvenShare(1000, 3); got != 334 {
		t.Fatalf("share=%d, want 334", got)
	}
	if got := EvenShare(1000, 0); got != 1000 {
		t.Fatalf("share with splitCount 0 = %d, want 1000", got)
	}
	if got := EvenShare(900, 3); got != 300 {
		t.Fatalf("share=%d, want 300", got)
	}
}

func TestResolveAmountFullDefaults(t *testing.T) {
	t.Parallel()

	b := Basis{Active: []order.Order{activeOrder(80000)}}
	got, err := ResolveAmount(ModeFull, 0, b, 80000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 80000 {
		t.Fatalf("amount=%d, want 80000", got)
	}
}

func TestResolveAmountNothingToPay(t *testing.T) {
	t.Parallel()

	if _, err := ResolveAmount(ModeFull, 0, Basis{}, 0, 0); !errors.Is(err, ErrNothingToPay) {
		t.Fatalf("err=%v, want ErrNothingToPay", err)
	}
}

func TestResolveAmountExceedsOutstanding(t *testing.T) {
	t.Parallel()

	b := Basis{Active: []order.Order{activeOrder(50000)}}
	if _, err := ResolveAmount(ModeFull, 60000, b, 50000, 0); !errors.Is(err, ErrAmountExceeds) {
		t.Fatalf("err=%v, want ErrAmountExceeds", err)
	}
}

func TestResolveAmountEvenDefaultsToShare(t *testing.T) {
	t.Parallel()

	b := Basis{Active: []order.Order{activeOrder(1000)}}
	got, err := ResolveAmount(ModeEven, 0, b, 1000, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 334 {
		t.Fatalf("amount=%d, want 334", got)
	}
}

func TestResolveAmountItems(t *testing.T) {
	t.Parallel()

	b := Basis{
		Cart: []cart.Item{
			{ID: "a", Qty: 1, UnitPrice: 800},
			{ID: "b", Qty: 1, UnitPrice: 500},
		},
		SelectedIDs: []string{"a"},
	}
	outstanding := Outstanding(ModeItems, b)

	// over the selected total
	if _, err := ResolveAmount(ModeItems, 900, b, outstanding, 0); !errors.Is(err, ErrAmountExceeds) {
		t.Fatalf("err=%v, want ErrAmountExceeds", err)
	}
	// partial payment of the selection is fine
	got, err := ResolveAmount(ModeItems, 500, b, outstanding, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Fatalf("amount=%d, want 500", got)
	}
	// default charges the selection in full
	got, err = ResolveAmount(ModeItems, 0, b, outstanding, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 800 {
		t.Fatalf("amount=%d, want 800", got)
	}
}

func TestResolveAmountItemsEmptySelection(t *testing.T) {
	t.Parallel()

	b := Basis{
		Cart:        []cart.Item{{ID: "a", Qty: 1, UnitPrice: 800}},
		SelectedIDs: []string{"nope"},
	}
	if _, err := ResolveAmount(ModeItems, 0, b, 800, 0); !errors.Is(err, ErrInvalidItems) {
		t.Fatalf("err=%v, want ErrInvalidItems", err)
	}
}
