package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCommentService(comments *mockCommentStore, bookings *mockBookingStore, items *mockItemStore, users *mockUserStore, bus *mockEventPublisher, now time.Time) *CommentService {
	svc := NewCommentService(comments, bookings, items, users, nil, fixedClock{now: now}, nopLogger())
	if bus != nil {
		svc.eventBus = bus
	}
	return svc
}

func TestCreateComment_Success(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 123456789, time.UTC)
	comments := new(mockCommentStore)
	bookings := new(mockBookingStore)
	items := new(mockItemStore)
	users := new(mockUserStore)
	bus := new(mockEventPublisher)

	users.On("GetUser", mock.Anything, int64(2)).Return(&models.User{ID: 2, Name: "Ann"}, nil)
	items.On("GetItem", mock.Anything, int64(7)).Return(&models.Item{ID: 7, OwnerID: 1}, nil)
	bookings.On("GetBookingsByItem", mock.Anything, int64(7)).Return([]*models.Booking{
		{ID: 1, RenterID: 2, Start: now.Add(-48 * time.Hour), End: now.Add(-47 * time.Hour)},
		{ID: 2, RenterID: 3, Start: now.Add(-time.Hour), End: now.Add(time.Hour)},
	}, nil)
	comments.On("CreateComment", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
		return c.AuthorName == "Ann" && c.Created.Equal(now.Truncate(time.Second))
	})).Return(nil)
	bus.On("PublishJSON", events.EventCommentCreated, mock.Anything).Return(nil)

	svc := newTestCommentService(comments, bookings, items, users, bus, now)
	comment, err := svc.CreateComment(context.Background(), 2, 7, "worked great")
	require.NoError(t, err)
	assert.Equal(t, "worked great", comment.Text)
	assert.Equal(t, now.Truncate(time.Second), comment.Created)
	comments.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCreateComment_NoBookingsIsNotFound(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	comments := new(mockCommentStore)
	bookings := new(mockBookingStore)
	items := new(mockItemStore)
	users := new(mockUserStore)

	users.On("GetUser", mock.Anything, int64(2)).Return(&models.User{ID: 2, Name: "Ann"}, nil)
	items.On("GetItem", mock.Anything, int64(7)).Return(&models.Item{ID: 7}, nil)
	bookings.On("GetBookingsByItem", mock.Anything, int64(7)).Return([]*models.Booking{
		{ID: 2, RenterID: 3, Start: now.Add(-time.Hour), End: now.Add(time.Hour)},
	}, nil)

	svc := newTestCommentService(comments, bookings, items, users, nil, now)
	_, err := svc.CreateComment(context.Background(), 2, 7, "text")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateComment_FutureBookingOnlyIsValidation(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	comments := new(mockCommentStore)
	bookings := new(mockBookingStore)
	items := new(mockItemStore)
	users := new(mockUserStore)

	users.On("GetUser", mock.Anything, int64(2)).Return(&models.User{ID: 2, Name: "Ann"}, nil)
	items.On("GetItem", mock.Anything, int64(7)).Return(&models.Item{ID: 7}, nil)
	bookings.On("GetBookingsByItem", mock.Anything, int64(7)).Return([]*models.Booking{
		{ID: 1, RenterID: 2, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
	}, nil)

	svc := newTestCommentService(comments, bookings, items, users, nil, now)
	_, err := svc.CreateComment(context.Background(), 2, 7, "text")
	assert.ErrorIs(t, err, ErrValidation)
	comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
}

func TestCreateComment_BlankText(t *testing.T) {
	svc := newTestCommentService(new(mockCommentStore), new(mockBookingStore), new(mockItemStore), new(mockUserStore), nil, time.Now())
	_, err := svc.CreateComment(context.Background(), 2, 7, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}
