package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `id, booking_id, gateway, status, amount_cents, currency, order_id, gateway_ref,
	authorization_id, capture_id, refund_id, idempotency_key, refunded_cents,
	platform_fee_cents, gateway_fee_cents, provider_amount_cents, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (booking_id, gateway, status, amount_cents, currency, order_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + paymentColumns

	var created Payment
	err := r.db.GetContext(ctx, &created, query,
		p.BookingID, p.Gateway, StatusCreated, p.AmountCents, p.Currency, p.OrderID, p.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) get(ctx context.Context, where string, args ...interface{}) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	return r.get(ctx, `order_id = $1`, orderID)
}

func (r *repository) GetByGatewayRef(ctx context.Context, gateway, ref string) (*Payment, error) {
	return r.get(ctx, `gateway = $1 AND gateway_ref = $2`, gateway, ref)
}

func (r *repository) ListByBooking(ctx context.Context, bookingID int) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`

	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, query, bookingID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *repository) SetGatewayRef(ctx context.Context, id int, ref string) error {
	query := `UPDATE payments SET gateway_ref = $1, updated_at = NOW() WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, ref, id)
	return err
}

func (r *repository) HasCapturedForBooking(ctx context.Context, bookingID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = $2)`

	err := r.db.GetContext(ctx, &exists, query, bookingID, StatusCaptured)
	return exists, err
}

func (r *repository) MarkAuthorized(ctx context.Context, id int, authorizationID string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, authorization_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, StatusAuthorized, authorizationID, id, StatusCreated)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	return rowsAffected > 0, err
}

func (r *repository) MarkFailed(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
	`

	result, err := r.db.ExecContext(ctx, query, StatusFailed, id, StatusCreated, StatusAuthorized)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	return rowsAffected > 0, err
}

func (r *repository) CaptureTx(ctx context.Context, tx *sqlx.Tx, id int, authorizationID, captureID string, platformFee, gatewayFee, providerAmount int64) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1,
		    authorization_id = COALESCE(NULLIF($2, ''), authorization_id),
		    capture_id = $3,
		    platform_fee_cents = $4,
		    gateway_fee_cents = $5,
		    provider_amount_cents = $6,
		    updated_at = NOW()
		WHERE id = $7 AND status IN ($8, $9)
	`

	result, err := tx.ExecContext(ctx, query, StatusCaptured, authorizationID, captureID,
		platformFee, gatewayFee, providerAmount, id, StatusCreated, StatusAuthorized)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	return rowsAffected > 0, err
}

func (r *repository) RefundTx(ctx context.Context, tx *sqlx.Tx, id int, refundID string, amountCents int64) (bool, error) {
	query := `
		UPDATE payments
		SET refunded_cents = refunded_cents + $1,
		    refund_id = $2,
		    status = CASE WHEN refunded_cents + $1 >= amount_cents THEN $3 ELSE status END,
		    updated_at = NOW()
		WHERE id = $4 AND status = $5 AND refunded_cents + $1 <= amount_cents
	`

	result, err := tx.ExecContext(ctx, query, amountCents, refundID, StatusRefunded, id, StatusCaptured)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	return rowsAffected > 0, err
}
