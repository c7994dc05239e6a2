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

// RequestService handles item requests: wishes posted by users that owners
// can answer by listing a matching item.
type RequestService struct {
	requests domain.RequestStore
	items    domain.ItemStore
	users    domain.UserDirectory
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestStore,
	items domain.ItemStore,
	users domain.UserDirectory,
	clock domain.Clock,
	logger *zerolog.Logger,
) *RequestService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		clock:    clock,
		logger:   logger,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	if requestorID <= 0 {
		return nil, validationf("id must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, validationf("request description must not be blank")
	}
	if err := s.requireUser(ctx, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		RequestorID: requestorID,
		Description: description,
		Created:     s.clock.Now().Truncate(time.Second),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("item request created")
	return request, nil
}

// GetRequest returns one request with its answering items attached.
func (s *RequestService) GetRequest(ctx context.Context, callerID, requestID int64) (*models.ItemRequestView, error) {
	if callerID <= 0 || requestID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("request %d does not exist", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", requestID, err)
	}
	return s.buildView(ctx, request)
}

// GetOwnRequests returns the caller's requests, newest first.
func (s *RequestService) GetOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequestView, error) {
	if requestorID <= 0 {
		return nil, validationf("id must be positive")
	}
	if err := s.requireUser(ctx, requestorID); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, fmt.Errorf("get requests by requestor %d: %w", requestorID, err)
	}
	return s.buildViews(ctx, requests)
}

// ListOtherRequests pages through requests posted by everyone but the caller.
func (s *RequestService) ListOtherRequests(ctx context.Context, callerID int64, from, size int) ([]*models.ItemRequestView, error) {
	if callerID <= 0 {
		return nil, validationf("id must be positive")
	}
	if from < 0 {
		return nil, validationf("from must not be negative")
	}
	if size <= 0 {
		return nil, validationf("size must be positive")
	}
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}

	requests, err := s.requests.PageRequestsByOthers(ctx, callerID, from, size)
	if err != nil {
		return nil, fmt.Errorf("page requests: %w", err)
	}
	return s.buildViews(ctx, requests)
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return notFoundf("user %d does not exist", userID)
	}
	return nil
}

func (s *RequestService) buildView(ctx context.Context, request *models.ItemRequest) (*models.ItemRequestView, error) {
	items, err := s.items.GetItemsByRequest(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("get items for request %d: %w", request.ID, err)
	}
	return &models.ItemRequestView{ItemRequest: *request, Items: items}, nil
}

func (s *RequestService) buildViews(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		view, err := s.buildView(ctx, r)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
