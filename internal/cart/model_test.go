package cart

import "testing"

func TestItemTotalIncludesModifiers(t *testing.T) {
	t.Parallel()

	it := Item{
		Qty:       3,
		UnitPrice: 38000,
		Modifiers: []Modifier{
			{OptionID: "opt-sourcream", PriceDelta: 5000},
		},
	}
	if got := it.Total(); got != (38000+5000)*3 {
		t.Fatalf("total=%d, want %d", got, (38000+5000)*3)
	}
}

func TestCalcTotals(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "a", Qty: 2, UnitPrice: 12000},
		{ID: "b", Qty: 1, UnitPrice: 35000, Modifiers: []Modifier{{PriceDelta: 5000}}},
	}
	totals := CalcTotals(items)
	if totals.Subtotal != 2*12000+40000 {
		t.Fatalf("subtotal=%d", totals.Subtotal)
	}
	if totals.Total != totals.Subtotal {
		t.Fatalf("total=%d subtotal=%d", totals.Total, totals.Subtotal)
	}
	if totals.ItemCount != 3 {
		t.Fatalf("itemCount=%d, want 3", totals.ItemCount)
	}
}

func TestCalcTotalsEmpty(t *testing.T) {
	t.Parallel()

	totals := CalcTotals(nil)
	if totals.Subtotal != 0 || totals.Total != 0 || totals.ItemCount != 0 {
		t.Fatalf("empty cart totals=%+v", totals)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	items := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	sel := Select(items, []string{"c", "a", "missing"})
	if len(sel) != 2 {
		t.Fatalf("selected %d items, want 2", len(sel))
	}
	// order of the cart, not of the selection
	if sel[0].ID != "a" || sel[1].ID != "c" {
		t.Fatalf("selection order: %s, %s", sel[0].ID, sel[1].ID)
	}
}

func TestItemsTotal(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Qty: 1, UnitPrice: 500},
		{Qty: 2, UnitPrice: 300},
	}
	if got := ItemsTotal(items); got != 1100 {
		t.Fatalf("itemsTotal=%d, want 1100", got)
	}
}
