package review

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("booking already has a review")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *Review) (*Review, error) {
	query := `
		INSERT INTO reviews (booking_id, client_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, client_id, provider_id, rating, comment, created_at
	`

	var created Review
	err := r.db.GetContext(ctx, &created, query,
		review.BookingID, review.ClientID, review.ProviderID, review.Rating, review.Comment)
	if err != nil {
		// reviews.booking_id is unique: one review per booking.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID int) (*Review, error) {
	query := `
		SELECT id, booking_id, client_id, provider_id, rating, comment, created_at
		FROM reviews
		WHERE booking_id = $1
	`

	var review Review
	err := r.db.GetContext(ctx, &review, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int) ([]ReviewWithClient, error) {
	query := `
		SELECT r.id, r.booking_id, r.client_id, r.provider_id, r.rating, r.comment, r.created_at,
		       u.name AS client_name
		FROM reviews r
		JOIN users u ON r.client_id = u.id
		WHERE r.provider_id = $1
		ORDER BY r.created_at DESC
	`

	var reviews []ReviewWithClient
	err := r.db.SelectContext(ctx, &reviews, query, providerID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *repository) ProviderSummary(ctx context.Context, providerID int) (*ProviderSummary, error) {
	query := `
		SELECT $1::int AS provider_id,
		       COUNT(*) AS review_count,
		       COALESCE(AVG(rating), 0) AS average_rating
		FROM reviews
		WHERE provider_id = $1
	`

	var summary ProviderSummary
	err := r.db.GetContext(ctx, &summary, query, providerID)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}
