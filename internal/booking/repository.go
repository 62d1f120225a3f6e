package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrBookingNotFound = errors.New("booking not found")

const partiesSelect = `
	SELECT
		b.id,
		b.client_id,
		b.provider_id,
		b.service_id,
		b.start_at,
		b.end_at,
		b.booking_date,
		b.status,
		b.price_cents,
		b.deposit_cents,
		b.city,
		b.address,
		b.created_at,
		b.updated_at,
		s.name AS service_name,
		cu.name AS client_name,
		cu.email AS client_email,
		pu.name AS provider_name,
		pu.email AS provider_email
	FROM bookings b
	JOIN services s ON b.service_id = s.id
	JOIN users cu ON b.client_id = cu.id
	JOIN providers p ON b.provider_id = p.id
	JOIN users pu ON p.user_id = pu.id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (client_id, provider_id, service_id, start_at, end_at, booking_date, status, price_cents, deposit_cents, city, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, client_id, provider_id, service_id, start_at, end_at, booking_date, status, price_cents, deposit_cents, city, address, created_at, updated_at
	`

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.ClientID, b.ProviderID, b.ServiceID, b.StartAt, b.EndAt,
		BookingDateFor(b.StartAt), StatusPending, b.PriceCents, b.DepositCents, b.City, b.Address)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `
		SELECT id, client_id, provider_id, service_id, start_at, end_at, booking_date, status, price_cents, deposit_cents, city, address, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) GetByIDWithParties(ctx context.Context, id int) (*BookingWithParties, error) {
	query := partiesSelect + ` WHERE b.id = $1`

	var b BookingWithParties
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

const updateStatusQuery = `
	UPDATE bookings
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
`

func (r *repository) UpdateStatus(ctx context.Context, id int, from, to Status) (bool, error) {
	result, err := r.db.ExecContext(ctx, updateStatusQuery, to, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int, from, to Status) (bool, error) {
	result, err := tx.ExecContext(ctx, updateStatusQuery, to, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int) ([]BookingWithParties, error) {
	query := partiesSelect + ` WHERE b.client_id = $1 ORDER BY b.start_at DESC`

	var bookings []BookingWithParties
	err := r.db.SelectContext(ctx, &bookings, query, clientID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByProvider(ctx context.Context, providerID int) ([]BookingWithParties, error) {
	query := partiesSelect + ` WHERE b.provider_id = $1 ORDER BY b.start_at DESC`

	var bookings []BookingWithParties
	err := r.db.SelectContext(ctx, &bookings, query, providerID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time) ([]BookingWithParties, error) {
	query := partiesSelect + ` WHERE b.status = $1 AND b.created_at < $2 ORDER BY b.created_at ASC`

	var bookings []BookingWithParties
	err := r.db.SelectContext(ctx, &bookings, query, StatusPending, cutoff)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
