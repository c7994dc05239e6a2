package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// CommentService lets renters leave a comment on an item they have rented.
type CommentService struct {
	comments domain.CommentStore
	bookings domain.BookingStore
	items    domain.ItemDirectory
	users    domain.UserDirectory
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewCommentService(
	comments domain.CommentStore,
	bookings domain.BookingStore,
	items domain.ItemDirectory,
	users domain.UserDirectory,
	eventBus domain.EventPublisher,
	clock domain.Clock,
	logger *zerolog.Logger,
) *CommentService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CommentService{
		comments: comments,
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// CreateComment stores a comment after checking the author actually rented
// the item: the author must have at least one booking of it, and their
// earliest booking must have started already.
func (s *CommentService) CreateComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if authorID <= 0 || itemID <= 0 {
		return nil, validationf("id must be positive")
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationf("comment text must not be blank")
	}

	author, err := s.users.GetUser(ctx, authorID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("user %d does not exist", authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", authorID, err)
	}

	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundf("item %d not found", itemID)
		}
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}

	bookings, err := s.bookings.GetBookingsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get bookings for item %d: %w", itemID, err)
	}

	own := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.RenterID == authorID {
			own = append(own, b)
		}
	}
	if len(own) == 0 {
		return nil, notFoundf("user %d has no bookings of item %d", authorID, itemID)
	}
	sort.Slice(own, func(i, j int) bool { return own[i].Start.Before(own[j].Start) })

	now := s.clock.Now().Truncate(time.Second)
	if own[0].Start.After(now) {
		return nil, validationf("user %d has not rented item %d yet", authorID, itemID)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info().
		Int64("comment_id", comment.ID).
		Int64("item_id", itemID).
		Int64("author_id", authorID).
		Msg("comment created")
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventCommentCreated, comment); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}

	return comment, nil
}

// GetCommentsByItem returns the comments of an item, oldest first.
func (s *CommentService) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	if itemID <= 0 {
		return nil, validationf("id must be positive")
	}
	return s.comments.GetCommentsByItem(ctx, itemID)
}
