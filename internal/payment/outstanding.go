package payment

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tableserve/api/internal/cart"
	"github.com/tableserve/api/internal/order"
)

var (
	ErrNothingToPay  = errors.New("nothing to pay")
	ErrInvalidItems  = errors.New("no matching items selected")
	ErrAmountExceeds = errors.New("amount exceeds outstanding")
)

// Basis is the state snapshot an outstanding amount is computed from. All
// of it must come from one consistent read of the session.
type Basis struct {
	Order       *order.Order // set when the payment targets one order
	Active      []order.Order
	Cart        []cart.Item
	SelectedIDs []string // ITEMS mode: cart item ids being paid for
	Paid        int64    // sum of already PAID intents (order-scoped if Order is set)
}

// Outstanding computes the remaining payable amount. The base is the
// targeted order's total, else the total of all active orders, else the
// current cart. ITEMS mode caps the result at the selected items' total.
func Outstanding(mode Mode, b Basis) int64 {
	var base int64
	switch {
	case b.Order != nil:
		base = b.Order.Total()
	case len(b.Active) > 0:
		base = order.TotalAll(b.Active)
	default:
		base = cart.CalcTotals(b.Cart).Total
	}
	remaining := base - b.Paid
	if remaining < 0 {
		remaining = 0
	}
	if mode == ModeItems && len(b.SelectedIDs) > 0 && b.Order == nil {
		selected := cart.ItemsTotal(cart.Select(b.Cart, b.SelectedIDs))
		if selected < remaining {
			return selected
		}
	}
	return remaining
}

// EvenShare is one guest's share of the remaining amount, rounded up so
// the last payer never overpays but the split always covers the bill.
func EvenShare(remaining int64, splitCount int) int64 {
	if splitCount < 1 {
		splitCount = 1
	}
	return decimal.NewFromInt(remaining).
		Div(decimal.NewFromInt(int64(splitCount))).
		Ceil().
		IntPart()
}

// ResolveAmount turns a payment request into the final charge amount. It is
// the single computation path shared by every payment entry point; requested
// may be zero, meaning "charge the mode's default".
func ResolveAmount(mode Mode, requested int64, b Basis, outstanding int64, splitCount int) (int64, error) {
	if outstanding <= 0 {
		return 0, ErrNothingToPay
	}
	amount := requested
	switch mode {
	case ModeItems:
		selected := cart.Select(b.Cart, b.SelectedIDs)
		if len(selected) == 0 {
			return 0, ErrInvalidItems
		}
		selectedTotal := cart.ItemsTotal(selected)
		if amount == 0 {
			amount = selectedTotal
		}
		if amount > selectedTotal {
			return 0, ErrAmountExceeds
		}
	case ModeEven:
		if amount == 0 {
			amount = EvenShare(outstanding, splitCount)
		}
	default:
		if amount == 0 {
			amount = outstanding
		}
	}
	if amount <= 0 || amount > outstanding {
		return 0, ErrAmountExceeds
	}
	return amount, nil
}
