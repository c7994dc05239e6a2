package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// CreateBookingInput carries the caller-supplied fields of a new booking.
type CreateBookingInput struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingService decides whether a booking may be created, who may change
// its status, and how bookings are filtered for the renter's and the owner's
// point of view. Collaborators are injected; the service itself is stateless.
type BookingService struct {
	bookings domain.BookingStore
	items    domain.ItemDirectory
	users    domain.UserDirectory
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	items domain.ItemDirectory,
	users domain.UserDirectory,
	eventBus domain.EventPublisher,
	clock domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// CreateBooking validates the request and persists a new WAITING booking.
//
// Booking one's own item is reported as not-found rather than forbidden:
// clients historically rely on a 404 here, and it avoids confirming item
// ownership to the caller.
func (s *BookingService) CreateBooking(ctx context.Context, renterID int64, in CreateBookingInput) (*models.Booking, error) {
	if renterID <= 0 {
		return nil, validationf("id must be positive")
	}
	if in.ItemID <= 0 {
		return nil, validationf("id must be positive")
	}
	if in.Start.IsZero() || in.End.IsZero() || !in.Start.Before(in.End) {
		return nil, validationf("booking start must be before its end")
	}

	if err := s.requireUser(ctx, renterID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, in.ItemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("item %d not found", in.ItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve item %d: %w", in.ItemID, err)
	}

	// Only the calendar date is compared; a start earlier today is fine.
	if startOfDay(in.Start).Before(startOfDay(s.clock.Now())) {
		return nil, validationf("booking cannot start before today")
	}
	if !item.Available {
		return nil, validationf("item %d is not available for booking", item.ID)
	}
	if item.OwnerID == renterID {
		return nil, notFoundf("owner cannot book their own item")
	}

	booking := &models.Booking{
		ItemID:   item.ID,
		ItemName: item.Name,
		OwnerID:  item.OwnerID,
		RenterID: renterID,
		Start:    in.Start,
		End:      in.End,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("renter_id", renterID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, renterID)

	return booking, nil
}

// SetApproval applies the owner's decision. Approve moves the booking to
// APPROVED unless it already is; reject moves it to REJECTED with no guard
// against repeating the rejection.
func (s *BookingService) SetApproval(ctx context.Context, callerID, bookingID int64, approve bool) (*models.Booking, error) {
	booking, err := s.stakeholderBooking(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, booking)
	if err != nil {
		return nil, err
	}
	if callerID != ownerID {
		return nil, notFoundf("user is not the owner of the item")
	}

	if approve && booking.Status == models.StatusApproved {
		return nil, validationf("status %s already set", models.StatusApproved)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approve {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	// Conditional on the version read above: a concurrent decision loses.
	if err := s.bookings.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status); err != nil {
		return nil, fmt.Errorf("update booking %d status: %w", booking.ID, err)
	}
	booking.Status = status
	booking.Version++

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("owner_id", ownerID).
		Str("status", status).
		Msg("booking decided")
	s.publishEvent(eventType, booking, callerID)

	return booking, nil
}

// GetVisibleBooking returns the booking when the caller is its renter or the
// owner of the booked item, and not-found otherwise.
func (s *BookingService) GetVisibleBooking(ctx context.Context, callerID, bookingID int64) (*models.Booking, error) {
	booking, err := s.stakeholderBooking(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(ctx, booking)
	if err != nil {
		return nil, err
	}
	if callerID != booking.RenterID && callerID != ownerID {
		return nil, notFoundf("caller is not a stakeholder of the booking")
	}
	return booking, nil
}

// ListForRenter returns one state-filtered page of the caller's own bookings.
func (s *BookingService) ListForRenter(ctx context.Context, renterID int64, rawState string, from, size int) ([]*models.Booking, error) {
	state, err := s.validateListing(ctx, renterID, rawState, from, size)
	if err != nil {
		return nil, err
	}

	// Pages are 1-based here: from=0 and from=1 both mean the first page.
	page := from
	if page > 0 {
		page--
	}
	bookings, err := s.bookings.PageBookingsByRenter(ctx, renterID, page, size)
	if err != nil {
		return nil, fmt.Errorf("page bookings by renter %d: %w", renterID, err)
	}

	now := s.clock.Now().Truncate(time.Second)
	out := filterBookings(bookings, state, now, renterView)
	if state != StateAll {
		sortByIDDesc(out)
	}
	return out, nil
}

// ListForOwner returns one state-filtered page of the bookings on the
// caller's items.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, rawState string, from, size int) ([]*models.Booking, error) {
	state, err := s.validateListing(ctx, ownerID, rawState, from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.PageBookingsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, fmt.Errorf("page bookings by owner %d: %w", ownerID, err)
	}

	now := s.clock.Now().Truncate(time.Second)
	out := filterBookings(bookings, state, now, ownerView)
	sortByIDDesc(out)
	return out, nil
}

// GetBookingsByItem returns every booking of the item, unpaged. Comment
// eligibility and the item views build on it.
func (s *BookingService) GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	return s.bookings.GetBookingsByItem(ctx, itemID)
}

// DeleteBooking removes a booking by id. No existence or ownership check is
// performed; the operation is administrative.
func (s *BookingService) DeleteBooking(ctx context.Context, callerID, bookingID int64) error {
	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking %d: %w", bookingID, err)
	}
	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("caller_id", callerID).
		Msg("booking deleted")
	s.publishEvent(events.EventBookingDeleted, &models.Booking{ID: bookingID}, callerID)
	return nil
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return notFoundf("user %d does not exist", userID)
	}
	return nil
}

// stakeholderBooking runs the shared id/user/booking resolution of the
// single-booking operations.
func (s *BookingService) stakeholderBooking(ctx context.Context, callerID, bookingID int64) (*models.Booking, error) {
	if callerID <= 0 || bookingID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("booking %d does not exist", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}
	return booking, nil
}

// resolveOwner derives the owner through the item, never from a cached
// column, so a reassigned item cannot diverge from its bookings.
func (s *BookingService) resolveOwner(ctx context.Context, booking *models.Booking) (int64, error) {
	item, err := s.items.GetItem(ctx, booking.ItemID)
	if errors.Is(err, database.ErrNotFound) {
		return 0, notFoundf("item %d not found", booking.ItemID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve item %d: %w", booking.ItemID, err)
	}
	return item.OwnerID, nil
}

func (s *BookingService) validateListing(ctx context.Context, userID int64, rawState string, from, size int) (State, error) {
	if userID <= 0 {
		return "", validationf("id must be positive")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return "", err
	}
	if from < 0 {
		return "", validationf("from must not be negative")
	}
	if size <= 0 {
		return "", validationf("size must be positive")
	}
	return ParseState(rawState)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		OwnerID:   booking.OwnerID,
		RenterID:  booking.RenterID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
		ChangedBy: changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
