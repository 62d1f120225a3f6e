package review

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mawid/internal/auth"
	"mawid/internal/booking"
)

type MockReviewRepo struct{ mock.Mock }

func (m *MockReviewRepo) Create(ctx context.Context, r *Review) (*Review, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockReviewRepo) GetByBookingID(ctx context.Context, bookingID int) (*Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockReviewRepo) ListByProvider(ctx context.Context, providerID int) ([]ReviewWithClient, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReviewWithClient), args.Error(1)
}

func (m *MockReviewRepo) ProviderSummary(ctx context.Context, providerID int) (*ProviderSummary, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderSummary), args.Error(1)
}

// stubBookingRepo serves only GetByID; the handler touches nothing else.
type stubBookingRepo struct {
	booking.Repository
	b   *booking.Booking
	err error
}

func (s stubBookingRepo) GetByID(ctx context.Context, id int) (*booking.Booking, error) {
	return s.b, s.err
}

func reviewRouter(repo Repository, bookings booking.Repository, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandler(repo, bookings)

	router := gin.New()
	router.POST("/bookings/:bookingID/review", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", auth.RoleClient)
		h.Create(c)
	})
	return router
}

func postReview(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/bookings/5/review", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReviewRequiresCompletedBooking(t *testing.T) {
	repo := new(MockReviewRepo)
	bookings := stubBookingRepo{b: &booking.Booking{ID: 5, ClientID: 7, ProviderID: 2, Status: booking.StatusAccepted}}

	w := postReview(reviewRouter(repo, bookings, 7), CreateRequest{Rating: 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReviewOnlyByClient(t *testing.T) {
	repo := new(MockReviewRepo)
	bookings := stubBookingRepo{b: &booking.Booking{ID: 5, ClientID: 7, ProviderID: 2, Status: booking.StatusCompleted}}

	w := postReview(reviewRouter(repo, bookings, 99), CreateRequest{Rating: 5})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateReviewHappyPathAndDuplicate(t *testing.T) {
	repo := new(MockReviewRepo)
	bookings := stubBookingRepo{b: &booking.Booking{ID: 5, ClientID: 7, ProviderID: 2, Status: booking.StatusCompleted}}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
		return r.BookingID == 5 && r.ClientID == 7 && r.ProviderID == 2 && r.Rating == 4
	})).Return(&Review{ID: 1, BookingID: 5, Rating: 4}, nil).Once()

	router := reviewRouter(repo, bookings, 7)

	w := postReview(router, CreateRequest{Rating: 4, Comment: "Great service"})
	require.Equal(t, http.StatusCreated, w.Code)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil, ErrAlreadyReviewed)
	w = postReview(router, CreateRequest{Rating: 4})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	repo := new(MockReviewRepo)
	bookings := stubBookingRepo{b: &booking.Booking{ID: 5, ClientID: 7, ProviderID: 2, Status: booking.StatusCompleted}}

	w := postReview(reviewRouter(repo, bookings, 7), map[string]interface{}{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postReview(reviewRouter(repo, bookings, 7), map[string]interface{}{"rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
