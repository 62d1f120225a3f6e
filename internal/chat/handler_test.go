package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mawid/internal/auth"
)

type MockChatRepo struct{ mock.Mock }

func (m *MockChatRepo) GetOrCreateThread(ctx context.Context, bookingID int) (*Thread, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Thread), args.Error(1)
}

func (m *MockChatRepo) GetThread(ctx context.Context, id int) (*Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Thread), args.Error(1)
}

func (m *MockChatRepo) ListThreadsForUser(ctx context.Context, userID int) ([]ThreadWithBooking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ThreadWithBooking), args.Error(1)
}

func (m *MockChatRepo) IsParticipant(ctx context.Context, threadID, userID int) (bool, error) {
	args := m.Called(ctx, threadID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepo) IsBookingParticipant(ctx context.Context, bookingID, userID int) (bool, error) {
	args := m.Called(ctx, bookingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepo) CreateMessage(ctx context.Context, threadID, senderID int, body string) (*Message, error) {
	args := m.Called(ctx, threadID, senderID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Message), args.Error(1)
}

func (m *MockChatRepo) ListMessages(ctx context.Context, threadID int) ([]MessageWithSender, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MessageWithSender), args.Error(1)
}

func openThread(repo Repository, userID int, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(repo, nil)
	router.POST("/bookings/:bookingID/chat", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", auth.RoleClient)
	}, handler.OpenThread)

	req := httptest.NewRequest("POST", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOpenThreadStrangerCannotMaterializeThread(t *testing.T) {
	repo := new(MockChatRepo)
	repo.On("IsBookingParticipant", mock.Anything, 5, 99).Return(false, nil)

	w := openThread(repo, 99, "/bookings/5/chat")

	assert.Equal(t, http.StatusForbidden, w.Code)
	// No thread row may exist for a booking the caller has no part in.
	repo.AssertNotCalled(t, "GetOrCreateThread", mock.Anything, mock.Anything)
}

func TestOpenThreadParticipantGetsThread(t *testing.T) {
	repo := new(MockChatRepo)
	repo.On("IsBookingParticipant", mock.Anything, 5, 7).Return(true, nil)
	repo.On("GetOrCreateThread", mock.Anything, 5).
		Return(&Thread{ID: 1, BookingID: 5, CreatedAt: time.Now()}, nil)

	w := openThread(repo, 7, "/bookings/5/chat")

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
