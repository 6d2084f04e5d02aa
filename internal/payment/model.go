package payment

import "time"

type Mode string

const (
	ModeFull  Mode = "FULL"
	ModeEven  Mode = "EVEN"
	ModeItems Mode = "ITEMS"
)

func (m Mode) Valid() bool { return m == ModeFull || m == ModeEven || m == ModeItems }

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Payload records how the amount was derived, for audit and receipts.
type Payload struct {
	Mode             Mode     `json:"mode,omitempty"`
	Items            []string `json:"items,omitempty"`
	SplitCount       *int     `json:"splitCount,omitempty"`
	PaidByDeviceHash string   `json:"paidByDeviceHash,omitempty"`
}

type Intent struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venueId"`
	SessionID string    `json:"sessionId"`
	OrderID   string    `json:"orderId,omitempty"`
	Amount    int64     `json:"amount"` // minor currency units
	Status    Status    `json:"status"`
	Provider  string    `json:"provider"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
