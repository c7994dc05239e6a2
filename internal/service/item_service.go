package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService handles item CRUD, search, and the enriched item views that
// attach comments and, for the owner, the surrounding bookings.
type ItemService struct {
	items    domain.ItemStore
	users    domain.UserDirectory
	bookings domain.BookingStore
	comments domain.CommentStore
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewItemService(
	items domain.ItemStore,
	users domain.UserDirectory,
	bookings domain.BookingStore,
	comments domain.CommentStore,
	clock domain.Clock,
	logger *zerolog.Logger,
) *ItemService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		clock:    clock,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if ownerID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, validationf("item name must not be blank")
	}
	if strings.TrimSpace(item.Description) == "" {
		return nil, validationf("item description must not be blank")
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// UpdateItem applies a partial update. Only the owner may edit; anyone else
// gets not-found, same policy as the booking operations.
func (s *ItemService) UpdateItem(ctx context.Context, callerID, itemID int64, upd models.ItemUpdate) (*models.Item, error) {
	if callerID <= 0 || itemID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, notFoundf("user is not the owner of the item")
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, validationf("item name must not be blank")
		}
		item.Name = *upd.Name
	}
	if upd.Description != nil {
		if strings.TrimSpace(*upd.Description) == "" {
			return nil, validationf("item description must not be blank")
		}
		item.Description = *upd.Description
	}
	if upd.Available != nil {
		item.Available = *upd.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item %d: %w", itemID, err)
	}

	s.logger.Info().Int64("item_id", itemID).Msg("item updated")
	return item, nil
}

// GetItemView returns the item with its comments. Last/next booking fields
// are filled only when the caller owns the item.
func (s *ItemService) GetItemView(ctx context.Context, callerID, itemID int64) (*models.ItemView, error) {
	if callerID <= 0 || itemID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, item, callerID == item.OwnerID)
}

// GetItemsByOwner returns the owner's items as full views, bookings included.
func (s *ItemService) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	if ownerID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get items by owner %d: %w", ownerID, err)
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.buildView(ctx, item, true)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// SearchItems matches available items by name or description. A blank query
// returns an empty result rather than everything.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	items, err := s.items.SearchItems(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, callerID, itemID int64) error {
	if callerID <= 0 || itemID <= 0 {
		return validationf("id must be positive")
	}
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != callerID {
		return notFoundf("user is not the owner of the item")
	}

	if err := s.items.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete item %d: %w", itemID, err)
	}
	s.logger.Info().Int64("item_id", itemID).Msg("item deleted")
	return nil
}

func (s *ItemService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return notFoundf("user %d does not exist", userID)
	}
	return nil
}

func (s *ItemService) getItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("item %d not found", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *ItemService) buildView(ctx context.Context, item *models.Item, asOwner bool) (*models.ItemView, error) {
	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("get comments for item %d: %w", item.ID, err)
	}

	view := &models.ItemView{Item: *item, Comments: comments}
	if !asOwner {
		return view, nil
	}

	bookings, err := s.bookings.GetBookingsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("get bookings for item %d: %w", item.ID, err)
	}
	now := s.clock.Now().Truncate(time.Second)
	view.LastBooking, view.NextBooking = surroundingBookings(bookings, now)
	return view, nil
}

// surroundingBookings picks the latest approved booking started by now and
// the earliest approved booking still ahead of it.
func surroundingBookings(bookings []*models.Booking, now time.Time) (last, next *models.BookingRef) {
	var lastB, nextB *models.Booking
	for _, b := range bookings {
		if b.Status != models.StatusApproved {
			continue
		}
		if !b.Start.After(now) {
			if lastB == nil || b.Start.After(lastB.Start) {
				lastB = b
			}
		} else {
			if nextB == nil || b.Start.Before(nextB.Start) {
				nextB = b
			}
		}
	}
	return bookingRef(lastB), bookingRef(nextB)
}

func bookingRef(b *models.Booking) *models.BookingRef {
	if b == nil {
		return nil
	}
	return &models.BookingRef{ID: b.ID, RenterID: b.RenterID, Start: b.Start, End: b.End}
}
