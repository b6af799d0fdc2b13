package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateBooking(ctx context.Context, customerID, workshopID, timeSlotID int) (*Booking, error) {
	args := m.Called(ctx, customerID, workshopID, timeSlotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CancelBooking(ctx context.Context, bookingID, requestingUserID int, requestingRole string) (*Booking, error) {
	args := m.Called(ctx, bookingID, requestingUserID, requestingRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) UpdateBookingStatus(ctx context.Context, bookingID int, newStatus Status) (*Booking, error) {
	args := m.Called(ctx, bookingID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) GetCustomerBookings(ctx context.Context, customerID int) ([]BookingWithDetails, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockService) ListBookings(ctx context.Context, filter ListFilter) ([]BookingWithDetails, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func setupRouter(svc Service, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Stand-in for the auth middleware.
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
			c.Set("user_role", role)
		}
		c.Next()
	})

	h := NewHandler(svc)
	r.POST("/bookings", h.CreateBooking)
	r.PATCH("/bookings/:bookingID/cancel", h.CancelBooking)
	r.GET("/bookings/my", h.ListMyBookings)
	r.GET("/admin/bookings", h.ListBookings)
	r.PATCH("/admin/bookings/:bookingID", h.UpdateBookingStatus)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingHandler(t *testing.T) {
	tests := []struct {
		name       string
		userID     int
		body       interface{}
		serviceErr error
		wantStatus int
	}{
		{
			name:       "created",
			userID:     5,
			body:       CreateBookingRequest{WorkshopID: 2, TimeSlotID: 3},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			userID:     0,
			body:       CreateBookingRequest{WorkshopID: 2, TimeSlotID: 3},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing fields",
			userID:     5,
			body:       map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "slot full",
			userID:     5,
			body:       CreateBookingRequest{WorkshopID: 2, TimeSlotID: 3},
			serviceErr: ErrCapacityExceeded,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "duplicate booking",
			userID:     5,
			body:       CreateBookingRequest{WorkshopID: 2, TimeSlotID: 3},
			serviceErr: ErrDuplicateBooking,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "slot not found",
			userID:     5,
			body:       CreateBookingRequest{WorkshopID: 2, TimeSlotID: 99},
			serviceErr: ErrSlotNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.serviceErr != nil {
				svc.On("CreateBooking", mock.Anything, tt.userID, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			} else {
				svc.On("CreateBooking", mock.Anything, tt.userID, mock.Anything, mock.Anything).
					Return(&Booking{ID: 1, CustomerID: tt.userID, Status: StatusConfirmed}, nil)
			}

			r := setupRouter(svc, tt.userID, "customer")
			w := doJSON(t, r, http.MethodPost, "/bookings", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCancelBookingHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		serviceErr error
		wantStatus int
	}{
		{name: "cancelled", path: "/bookings/7/cancel", wantStatus: http.StatusOK},
		{name: "bad id", path: "/bookings/abc/cancel", wantStatus: http.StatusBadRequest},
		{name: "not found", path: "/bookings/7/cancel", serviceErr: ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "forbidden", path: "/bookings/7/cancel", serviceErr: ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.serviceErr != nil {
				svc.On("CancelBooking", mock.Anything, 7, 5, "customer").Return(nil, tt.serviceErr)
			} else {
				svc.On("CancelBooking", mock.Anything, 7, 5, "customer").
					Return(&Booking{ID: 7, CustomerID: 5, Status: StatusCancelled}, nil)
			}

			r := setupRouter(svc, 5, "customer")
			w := doJSON(t, r, http.MethodPatch, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListMyBookingsHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("GetCustomerBookings", mock.Anything, 5).
		Return([]BookingWithDetails{{Booking: Booking{ID: 1, CustomerID: 5}}}, nil)

	r := setupRouter(svc, 5, "customer")
	w := doJSON(t, r, http.MethodGet, "/bookings/my", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var got []BookingWithDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
}

func TestListBookingsHandlerFilters(t *testing.T) {
	svc := new(MockService)
	svc.On("ListBookings", mock.Anything, ListFilter{Status: StatusConfirmed, WorkshopID: 2}).
		Return([]BookingWithDetails{}, nil)

	r := setupRouter(svc, 9, "admin")
	w := doJSON(t, r, http.MethodGet, "/admin/bookings?status=confirmed&workshop_id=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = doJSON(t, r, http.MethodGet, "/admin/bookings?workshop_id=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateBookingStatusHandler(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		serviceErr error
		wantStatus int
	}{
		{name: "updated", status: StatusCancelled, wantStatus: http.StatusOK},
		{name: "unknown status", status: Status("shipped"), serviceErr: ErrInvalidStatus, wantStatus: http.StatusBadRequest},
		{name: "illegal transition", status: StatusConfirmed, serviceErr: ErrInvalidTransition, wantStatus: http.StatusUnprocessableEntity},
		{name: "not found", status: StatusCancelled, serviceErr: ErrBookingNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.serviceErr != nil {
				svc.On("UpdateBookingStatus", mock.Anything, 7, tt.status).Return(nil, tt.serviceErr)
			} else {
				svc.On("UpdateBookingStatus", mock.Anything, 7, tt.status).
					Return(&Booking{ID: 7, Status: tt.status}, nil)
			}

			r := setupRouter(svc, 9, "admin")
			w := doJSON(t, r, http.MethodPatch, "/admin/bookings/7", UpdateStatusRequest{Status: tt.status})
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
