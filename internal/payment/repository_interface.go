package payment

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	GetByGatewayRef(ctx context.Context, gateway, ref string) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID int) ([]Payment, error)

	SetGatewayRef(ctx context.Context, id int, ref string) error
	HasCapturedForBooking(ctx context.Context, bookingID int) (bool, error)

	// MarkAuthorized and MarkFailed are conditional flips from CREATED (or
	// CREATED/AUTHORIZED for failures); false means the row had already
	// moved on.
	MarkAuthorized(ctx context.Context, id int, authorizationID string) (bool, error)
	MarkFailed(ctx context.Context, id int) (bool, error)

	// CaptureTx flips CREATED/AUTHORIZED to CAPTURED and writes the fee
	// split in the same statement, inside the caller's transaction. A
	// replayed webhook matches zero rows and returns false.
	CaptureTx(ctx context.Context, tx *sqlx.Tx, id int, authorizationID, captureID string, platformFee, gatewayFee, providerAmount int64) (bool, error)

	// RefundTx adds amountCents to the refunded total inside the caller's
	// transaction, flipping the row to REFUNDED once the capture is fully
	// returned. False means the row was not CAPTURED or the amount would
	// exceed what is left.
	RefundTx(ctx context.Context, tx *sqlx.Tx, id int, refundID string, amountCents int64) (bool, error)
}
