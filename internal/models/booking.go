package models

import "time"

// Booking statuses. WAITING is the only status a booking can be created with.
const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Booking is the central entity. ItemName and OwnerID are view fields filled
// from the items table on reads; the item row stays the source of truth for
// ownership.
type Booking struct {
	ID       int64     `json:"id"`
	ItemID   int64     `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	OwnerID  int64     `json:"owner_id,omitempty"`
	RenterID int64     `json:"renter_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Status   string    `json:"status"`
	Version  int64     `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
