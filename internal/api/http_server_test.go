package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := service.SystemClock{}
	services := Services{
		Bookings: service.NewBookingService(db, db, db, nil, clock, &logger),
		Users:    service.NewUserService(db, &logger),
		Items:    service.NewItemService(db, db, db, db, clock, &logger),
		Comments: service.NewCommentService(db, db, db, db, nil, clock, &logger),
		Requests: service.NewRequestService(db, db, db, clock, &logger),
		Exporter: export.NewExporter(db, config.ExportConfig{Path: t.TempDir()}, &logger),
	}

	cfg := config.HTTPConfig{Port: 0, RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000}}
	srv := NewHTTPServer(cfg, config.PaginationConfig{DefaultSize: 20}, services, &logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, caller int64, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if caller > 0 {
		req.Header.Set(callerHeader, strconv.FormatInt(caller, 10))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func createUser(t *testing.T, ts *httptest.Server, name, email string) int64 {
	t.Helper()
	resp, raw := doJSON(t, ts, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	return user.ID
}

func createItem(t *testing.T, ts *httptest.Server, ownerID int64, name string, available bool) int64 {
	t.Helper()
	resp, raw := doJSON(t, ts, http.MethodPost, "/items", ownerID, map[string]any{
		"name":        name,
		"description": name + " description",
		"available":   available,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var item models.Item
	require.NoError(t, json.Unmarshal(raw, &item))
	return item.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUsers_CreateAndDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	createUser(t, ts, "Ann", "ann@example.com")

	resp, raw := doJSON(t, ts, http.MethodPost, "/users", 0, map[string]string{"name": "Other", "email": "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
}

func TestItems_RequireCallerHeader(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/items", 0, map[string]any{
		"name": "Drill", "description": "d", "available": true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingLifecycle(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createUser(t, ts, "Owner", "owner@example.com")
	renterID := createUser(t, ts, "Renter", "renter@example.com")
	thirdID := createUser(t, ts, "Third", "third@example.com")
	itemID := createItem(t, ts, ownerID, "Drill", true)

	start := time.Now().Add(time.Hour).UTC()
	resp, raw := doJSON(t, ts, http.MethodPost, "/bookings", renterID, map[string]any{
		"item_id": itemID,
		"start":   start,
		"end":     start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var booking models.Booking
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.Equal(t, models.StatusWaiting, booking.Status)

	bookingPath := fmt.Sprintf("/bookings/%d", booking.ID)

	// Renter may not decide.
	resp, _ = doJSON(t, ts, http.MethodPatch, bookingPath+"?approved=true", renterID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Owner approves.
	resp, raw = doJSON(t, ts, http.MethodPatch, bookingPath+"?approved=true", ownerID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &booking))
	assert.Equal(t, models.StatusApproved, booking.Status)

	// Re-approving fails.
	resp, raw = doJSON(t, ts, http.MethodPatch, bookingPath+"?approved=true", ownerID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "already set")

	// Visibility: renter and owner see it, a third user gets 404.
	resp, _ = doJSON(t, ts, http.MethodGet, bookingPath, renterID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, ts, http.MethodGet, bookingPath, ownerID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, ts, http.MethodGet, bookingPath, thirdID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unconditional delete.
	resp, _ = doJSON(t, ts, http.MethodDelete, bookingPath, thirdID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBookings_OwnItemIs404(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createUser(t, ts, "Owner", "owner@example.com")
	itemID := createItem(t, ts, ownerID, "Drill", true)

	start := time.Now().Add(time.Hour).UTC()
	resp, _ := doJSON(t, ts, http.MethodPost, "/bookings", ownerID, map[string]any{
		"item_id": itemID,
		"start":   start,
		"end":     start.Add(time.Hour),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookings_UnknownState(t *testing.T) {
	ts := newTestServer(t)
	renterID := createUser(t, ts, "Renter", "renter@example.com")

	resp, raw := doJSON(t, ts, http.MethodGet, "/bookings?state=UNKNOWN", renterID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "Unknown state: UNSUPPORTED_STATUS")
}

func TestBookings_OwnerListing(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createUser(t, ts, "Owner", "owner@example.com")
	renterID := createUser(t, ts, "Renter", "renter@example.com")
	itemID := createItem(t, ts, ownerID, "Drill", true)

	start := time.Now().Add(time.Hour).UTC()
	resp, raw := doJSON(t, ts, http.MethodPost, "/bookings", renterID, map[string]any{
		"item_id": itemID,
		"start":   start,
		"end":     start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	for _, state := range []string{"WAITING", "ALL"} {
		resp, raw := doJSON(t, ts, http.MethodGet, "/bookings/owner?state="+state, ownerID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var bookings []*models.Booking
		require.NoError(t, json.Unmarshal(raw, &bookings))
		assert.Len(t, bookings, 1, state)
	}
}

func TestComments_EligibilityFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createUser(t, ts, "Owner", "owner@example.com")
	renterID := createUser(t, ts, "Renter", "renter@example.com")
	itemID := createItem(t, ts, ownerID, "Drill", true)
	commentPath := fmt.Sprintf("/items/%d/comment", itemID)

	// No bookings yet: 404.
	resp, _ := doJSON(t, ts, http.MethodPost, commentPath, renterID, map[string]string{"text": "nice"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Future booking only: 400.
	start := time.Now().Add(time.Hour).UTC()
	resp, raw := doJSON(t, ts, http.MethodPost, "/bookings", renterID, map[string]any{
		"item_id": itemID, "start": start, "end": start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, _ = doJSON(t, ts, http.MethodPost, commentPath, renterID, map[string]string{"text": "nice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A booking started earlier today makes the renter eligible.
	started := time.Now().UTC().Add(-time.Minute)
	resp, raw = doJSON(t, ts, http.MethodPost, "/bookings", renterID, map[string]any{
		"item_id": itemID, "start": started, "end": started.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, ts, http.MethodPost, commentPath, renterID, map[string]string{"text": "worked great"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var comment models.Comment
	require.NoError(t, json.Unmarshal(raw, &comment))
	assert.Equal(t, "Renter", comment.AuthorName)
}

func TestItems_SearchAndViews(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createUser(t, ts, "Owner", "owner@example.com")
	otherID := createUser(t, ts, "Other", "other@example.com")
	itemID := createItem(t, ts, ownerID, "Cordless drill", true)
	createItem(t, ts, ownerID, "Saw", false)

	resp, raw := doJSON(t, ts, http.MethodGet, "/items/search?text=drill", otherID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []*models.Item
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Len(t, items, 1)

	// Blank query returns an empty list.
	resp, raw = doJSON(t, ts, http.MethodGet, "/items/search?text=", otherID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Empty(t, items)

	resp, raw = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/items/%d", itemID), ownerID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var view models.ItemView
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, "Cordless drill", view.Name)
}

func TestRequestsFlow(t *testing.T) {
	ts := newTestServer(t)

	annID := createUser(t, ts, "Ann", "ann@example.com")
	bobID := createUser(t, ts, "Bob", "bob@example.com")

	resp, raw := doJSON(t, ts, http.MethodPost, "/requests", annID, map[string]string{"description": "need a ladder"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var request models.ItemRequest
	require.NoError(t, json.Unmarshal(raw, &request))

	// Bob answers the request with an item.
	resp, raw = doJSON(t, ts, http.MethodPost, "/items", bobID, map[string]any{
		"name": "Ladder", "description": "3m", "available": true, "request_id": request.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/requests/%d", request.ID), annID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var view models.ItemRequestView
	require.NoError(t, json.Unmarshal(raw, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Ladder", view.Items[0].Name)

	// Own listing for Ann, the "others" listing for Bob.
	resp, raw = doJSON(t, ts, http.MethodGet, "/requests", annID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var own []*models.ItemRequestView
	require.NoError(t, json.Unmarshal(raw, &own))
	assert.Len(t, own, 1)

	resp, raw = doJSON(t, ts, http.MethodGet, "/requests/all", bobID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var others []*models.ItemRequestView
	require.NoError(t, json.Unmarshal(raw, &others))
	assert.Len(t, others, 1)
}

func TestRateLimiter(t *testing.T) {
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.HTTPConfig{RateLimit: config.RateLimitConfig{RPS: 1, Burst: 1}}
	srv := NewHTTPServer(cfg, config.PaginationConfig{DefaultSize: 20}, Services{
		Users: service.NewUserService(db, &logger),
	}, &logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, _ := doJSON(t, ts, http.MethodGet, "/healthz", 7, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// A different caller has its own bucket.
	resp, _ = doJSON(t, ts, http.MethodGet, "/healthz", 8, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
