package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservio/internal/reservations/repository"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockBookingService struct {
	createFn  func(ctx context.Context, booking *model.Booking) error
	getByIDFn func(ctx context.Context, id string) (*model.Booking, error)
	listFn    func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	updateFn  func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFn(ctx, booking)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockBookingService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listFn(ctx, filter, limit, offset)
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	return m.updateFn(ctx, id, updates)
}

func (m *mockBookingService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func sampleBooking() *model.Booking {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:         "64f1c2a9e4b0f1a2b3c4d5e6",
		ResourceID: "room-1",
		UserID:     "user-1",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     model.StatusPending,
	}
}

func TestCreate_Success(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "64f1c2a9e4b0f1a2b3c4d5e6"
			return nil
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(sampleBooking())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "64f1c2a9e4b0f1a2b3c4d5e6" {
		t.Errorf("expected assigned id in response, got %q", resp.Data.ID)
	}
}

func TestCreate_IgnoresClientSuppliedID(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			if booking.ID != "" {
				t.Errorf("expected client-supplied id to be discarded, got %q", booking.ID)
			}
			booking.ID = "64f1c2a9e4b0f1a2b3c4d5e7"
			return nil
		},
	}
	router := newTestRouter(svc)

	payload := sampleBooking()
	payload.ID = "64f1c2a9e4b0f1a2b3c4d5e6"
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "64f1c2a9e4b0f1a2b3c4d5e7" {
		t.Errorf("expected system-generated id in response, got %q", resp.Data.ID)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("service should not be called for malformed JSON")
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreate_ConflictPassthrough(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			return apperrors.ConflictWithIDs("Booking overlaps an existing booking for this resource", []string{"abc123"})
		},
	}
	router := newTestRouter(svc)

	body, _ := json.Marshal(sampleBooking())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var resp struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := resp.Details["conflicting_ids"]; !ok {
		t.Error("expected conflicting_ids in error details")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/64f1c2a9e4b0f1a2b3c4d5e6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetByID_Success(t *testing.T) {
	booking := sampleBooking()
	svc := &mockBookingService{
		getByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			if id != booking.ID {
				t.Errorf("expected id %q, got %q", booking.ID, id)
			}
			return booking, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/"+booking.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestList_PassesFilterAndPagination(t *testing.T) {
	var gotFilter repository.ListFilter
	var gotLimit int
	var gotOffset int64

	svc := &mockBookingService{
		listFn: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotFilter = filter
			gotLimit = limit
			gotOffset = offset
			return []*model.Booking{sampleBooking()}, 1, nil
		},
	}
	router := newTestRouter(svc)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	url := fmt.Sprintf("/api/v1/bookings?resource_id=room-1&user_id=user-1&status=pending&from_time=%s&limit=25&from=50",
		from.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotFilter.ResourceID != "room-1" || gotFilter.UserID != "user-1" || gotFilter.Status != "pending" {
		t.Errorf("unexpected filter: %+v", gotFilter)
	}
	if gotFilter.FromTime == nil || !gotFilter.FromTime.Equal(from) {
		t.Errorf("expected from_time %v, got %v", from, gotFilter.FromTime)
	}
	if gotLimit != 25 || gotOffset != 50 {
		t.Errorf("expected limit=25 offset=50, got limit=%d offset=%d", gotLimit, gotOffset)
	}

	var resp struct {
		Data  []model.Booking `json:"data"`
		Count int64           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Data) != 1 {
		t.Errorf("expected 1 booking with count 1, got %d/%d", len(resp.Data), resp.Count)
	}
}

func TestList_InvalidTimeFilter(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			t.Fatal("service should not be called for a malformed time filter")
			return nil, 0, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?from_time=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestList_EmptyResultIsArray(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			return nil, 0, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"data":[]`)) {
		t.Errorf("expected empty data array, got: %s", w.Body.String())
	}
}

func TestUpdate_ReturnsMergedRecord(t *testing.T) {
	booking := sampleBooking()
	booking.Status = model.StatusConfirmed

	svc := &mockBookingService{
		updateFn: func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
			if updates.Status == nil || *updates.Status != model.StatusConfirmed {
				t.Errorf("expected status patch, got %+v", updates)
			}
			return booking, nil
		},
	}
	router := newTestRouter(svc)

	body := []byte(`{"status":"confirmed"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/id/"+booking.ID, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed status in response, got %q", resp.Data.Status)
	}
}

func TestDelete_Success(t *testing.T) {
	svc := &mockBookingService{
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/64f1c2a9e4b0f1a2b3c4d5e6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := &mockBookingService{
		deleteFn: func(ctx context.Context, id string) error {
			return apperrors.NotFoundWithID("Booking", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/64f1c2a9e4b0f1a2b3c4d5e6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
