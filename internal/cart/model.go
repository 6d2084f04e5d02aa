package cart

type Modifier struct {
	OptionID   string `json:"optionId"`
	OptionName string `json:"optionName"`
	PriceDelta int64  `json:"priceDelta"`
}

type Item struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"sessionId"`
	MenuItemID string     `json:"menuItemId"`
	Qty        int        `json:"qty"`
	Note       string     `json:"note,omitempty"`
	UnitPrice  int64      `json:"unitPrice"` // price snapshot taken at add time
	ItemName   string     `json:"itemName"`  // name snapshot taken at add time
	Modifiers  []Modifier `json:"modifiers"`
}

// Total is the line total: (unit price + modifier deltas) x qty.
func (i Item) Total() int64 {
	var mods int64
	for _, m := range i.Modifiers {
		mods += m.PriceDelta
	}
	return (i.UnitPrice + mods) * int64(i.Qty)
}

type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"itemCount"`
}

func CalcTotals(items []Item) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Total()
		t.ItemCount += it.Qty
	}
	t.Total = t.Subtotal
	return t
}

// ItemsTotal sums line totals for a subset, used by ITEMS-mode payments.
func ItemsTotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Total()
	}
	return sum
}

// Select returns the cart items whose ids are in the selection.
func Select(items []Item, ids []string) []Item {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out []Item
	for _, it := range items {
		if _, ok := set[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}
