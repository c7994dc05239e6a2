package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Clock supplies the current time for temporal comparisons. Injected so
// tests can pin "now".
type Clock interface {
	Now() time.Time
}

// UserDirectory is the user lookup surface the booking engine needs.
type UserDirectory interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// ItemDirectory resolves items; ownership is always derived through it.
type ItemDirectory interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
}

// BookingStore persists bookings. Page methods return one page already
// ordered at the storage layer: by id descending for the renter set, by id
// ascending for the owner set.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
	PageBookingsByRenter(ctx context.Context, renterID int64, page, size int) ([]*models.Booking, error)
	PageBookingsByOwner(ctx context.Context, ownerID int64, page, size int) ([]*models.Booking, error)
	GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error)
}

type UserStore interface {
	UserDirectory
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemStore interface {
	ItemDirectory
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	PageRequestsByOthers(ctx context.Context, requestorID int64, page, size int) ([]*models.ItemRequest, error)
}

// EventPublisher decouples services from the in-process event bus.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ItemCache is a read-through cache for item records.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*models.Item, bool, error)
	Set(ctx context.Context, item *models.Item) error
	Invalidate(ctx context.Context, id int64) error
}
