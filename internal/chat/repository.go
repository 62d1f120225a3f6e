package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrThreadNotFound = errors.New("chat thread not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateThread(ctx context.Context, bookingID int) (*Thread, error) {
	query := `
		INSERT INTO chat_threads (booking_id)
		VALUES ($1)
		ON CONFLICT (booking_id) DO UPDATE SET booking_id = EXCLUDED.booking_id
		RETURNING id, booking_id, created_at
	`

	var t Thread
	err := r.db.GetContext(ctx, &t, query, bookingID)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) GetThread(ctx context.Context, id int) (*Thread, error) {
	query := `SELECT id, booking_id, created_at FROM chat_threads WHERE id = $1`

	var t Thread
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) ListThreadsForUser(ctx context.Context, userID int) ([]ThreadWithBooking, error) {
	query := `
		SELECT t.id, t.booking_id, t.created_at,
		       b.status AS booking_status,
		       s.name AS service_name,
		       cu.name AS client_name,
		       pu.name AS provider_name
		FROM chat_threads t
		JOIN bookings b ON t.booking_id = b.id
		JOIN services s ON b.service_id = s.id
		JOIN users cu ON b.client_id = cu.id
		JOIN providers p ON b.provider_id = p.id
		JOIN users pu ON p.user_id = pu.id
		WHERE b.client_id = $1 OR p.user_id = $1
		ORDER BY t.created_at DESC
	`

	var threads []ThreadWithBooking
	err := r.db.SelectContext(ctx, &threads, query, userID)
	if err != nil {
		return nil, err
	}

	return threads, nil
}

func (r *repository) IsParticipant(ctx context.Context, threadID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM chat_threads t
			JOIN bookings b ON t.booking_id = b.id
			JOIN providers p ON b.provider_id = p.id
			WHERE t.id = $1 AND (b.client_id = $2 OR p.user_id = $2)
		)
	`

	var ok bool
	err := r.db.GetContext(ctx, &ok, query, threadID, userID)
	return ok, err
}

func (r *repository) IsBookingParticipant(ctx context.Context, bookingID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings b
			JOIN providers p ON b.provider_id = p.id
			WHERE b.id = $1 AND (b.client_id = $2 OR p.user_id = $2)
		)
	`

	var ok bool
	err := r.db.GetContext(ctx, &ok, query, bookingID, userID)
	return ok, err
}

func (r *repository) CreateMessage(ctx context.Context, threadID, senderID int, body string) (*Message, error) {
	query := `
		INSERT INTO chat_messages (thread_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, thread_id, sender_id, body, created_at
	`

	var m Message
	err := r.db.GetContext(ctx, &m, query, threadID, senderID, body)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) ListMessages(ctx context.Context, threadID int) ([]MessageWithSender, error) {
	query := `
		SELECT m.id, m.thread_id, m.sender_id, m.body, m.created_at,
		       u.name AS sender_name
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.thread_id = $1
		ORDER BY m.created_at ASC
	`

	var messages []MessageWithSender
	err := r.db.SelectContext(ctx, &messages, query, threadID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
