package payout

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Credit and Debit run against the caller's transaction so a ledger
	// move commits or rolls back together with the payment row it belongs
	// to. The account row is locked for the duration.
	Credit(ctx context.Context, tx *sqlx.Tx, providerID int, amountCents int64, reference string) error
	Debit(ctx context.Context, tx *sqlx.Tx, providerID int, amountCents int64, reference string) error

	GetAccount(ctx context.Context, providerID int) (*Account, error)
	ListTransactions(ctx context.Context, providerID int) ([]Transaction, error)
}
