package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	GetByIDWithParties(ctx context.Context, id int) (*BookingWithParties, error)

	// UpdateStatus flips a booking from one exact status to another. It
	// reports false when the row was not in the expected status, which is
	// how every caller detects a lost race without locking.
	UpdateStatus(ctx context.Context, id int, from, to Status) (bool, error)

	// UpdateStatusTx is the same flip inside a caller-owned transaction,
	// for writers that must move a booking together with other rows.
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id int, from, to Status) (bool, error)

	ListByClient(ctx context.Context, clientID int) ([]BookingWithParties, error)
	ListByProvider(ctx context.Context, providerID int) ([]BookingWithParties, error)
	ListStalePending(ctx context.Context, cutoff time.Time) ([]BookingWithParties, error)
}
