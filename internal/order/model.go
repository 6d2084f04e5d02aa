package order

import "time"

type Status string

const (
	StatusNew        Status = "NEW"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusServed     Status = "SERVED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusInProgress, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the order still counts toward the session's
// outstanding amount.
func (s Status) Active() bool {
	return s != StatusServed && s != StatusCancelled
}

type Modifier struct {
	ID          string `json:"id"`
	OrderItemID string `json:"orderItemId"`
	OptionID    string `json:"optionId"`
	OptionName  string `json:"optionName"`
	PriceDelta  int64  `json:"priceDelta"`
}

// Item is a frozen snapshot of a cart item at submit time. Later menu
// edits never touch it.
type Item struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"orderId"`
	MenuItemID string     `json:"menuItemId"`
	Qty        int        `json:"qty"`
	Note       string     `json:"note,omitempty"`
	UnitPrice  int64      `json:"unitPrice"`
	ItemName   string     `json:"itemName"`
	Modifiers  []Modifier `json:"modifiers"`
}

func (i Item) Total() int64 {
	var mods int64
	for _, m := range i.Modifiers {
		mods += m.PriceDelta
	}
	return (i.UnitPrice + mods) * int64(i.Qty)
}

type Order struct {
	ID         string     `json:"id"`
	VenueID    string     `json:"venueId"`
	SessionID  string     `json:"sessionId"`
	TableID    string     `json:"tableId"`
	Status     Status     `json:"status"`
	Number     int        `json:"number"`
	Comment    string     `json:"comment,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	ReadyAt    *time.Time `json:"readyAt,omitempty"`
	ServedAt   *time.Time `json:"servedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Items      []Item     `json:"items"`
}

func (o *Order) Total() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Total()
	}
	return sum
}

func TotalAll(orders []Order) int64 {
	var sum int64
	for i := range orders {
		sum += orders[i].Total()
	}
	return sum
}
