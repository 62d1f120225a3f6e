package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func TestGetOrCreateThreadIsUpsert(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "booking_id", "created_at"}).AddRow(1, 5, now)

	mock.ExpectQuery("INSERT INTO chat_threads(.|\n)+ON CONFLICT \\(booking_id\\)").
		WithArgs(5).
		WillReturnRows(rows)

	thread, err := repo.GetOrCreateThread(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, thread.ID)
	require.Equal(t, 5, thread.BookingID)
}

func TestGetThreadNotFound(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT id, booking_id, created_at FROM chat_threads").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "created_at"}))

	_, err := repo.GetThread(context.Background(), 42)
	require.ErrorIs(t, err, ErrThreadNotFound)
}

func TestIsParticipant(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsParticipant(context.Background(), 1, 7)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1, 50).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err = repo.IsParticipant(context.Background(), 1, 50)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsBookingParticipant(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT EXISTS(.|\n)+FROM bookings b").
		WithArgs(5, 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsBookingParticipant(context.Background(), 5, 7)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery("SELECT EXISTS(.|\n)+FROM bookings b").
		WithArgs(5, 99).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err = repo.IsBookingParticipant(context.Background(), 5, 99)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCreateAndListMessages(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	now := time.Now()

	mock.ExpectQuery("INSERT INTO chat_messages").
		WithArgs(1, 7, "See you at 10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "thread_id", "sender_id", "body", "created_at"}).
			AddRow(3, 1, 7, "See you at 10", now))

	m, err := repo.CreateMessage(context.Background(), 1, 7, "See you at 10")
	require.NoError(t, err)
	require.Equal(t, "See you at 10", m.Body)

	mock.ExpectQuery("SELECT m.id, m.thread_id, m.sender_id(.|\n)+ORDER BY m.created_at ASC").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "thread_id", "sender_id", "body", "created_at", "sender_name"}).
			AddRow(3, 1, 7, "See you at 10", now, "Omar"))

	messages, err := repo.ListMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "Omar", messages[0].SenderName)
}
