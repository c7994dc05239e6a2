package models

import "time"

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   int64  `json:"request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemView is the item representation returned to callers. Last/next booking
// is attached only when the caller owns the item.
type ItemView struct {
	Item
	LastBooking *BookingRef `json:"last_booking,omitempty"`
	NextBooking *BookingRef `json:"next_booking,omitempty"`
	Comments    []*Comment  `json:"comments"`
}

// BookingRef is a short booking reference embedded in item views.
type BookingRef struct {
	ID       int64     `json:"id"`
	RenterID int64     `json:"renter_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ItemUpdate carries a partial item update; nil fields are left untouched.
type ItemUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}
