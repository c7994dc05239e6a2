package models

import "time"

// ItemRequest is a wish posted by a user; items may be created in answer to it.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequestorID int64     `json:"requestor_id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

// ItemRequestView attaches the items offered in answer to a request.
type ItemRequestView struct {
	ItemRequest
	Items []*Item `json:"items"`
}
