package payout

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrAccountNotFound = errors.New("payout account not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// lockAccount upserts the provider's account and takes a row lock inside the
// caller's transaction.
func (r *repository) lockAccount(ctx context.Context, tx *sqlx.Tx, providerID int) (*Account, error) {
	insert := `
		INSERT INTO payout_accounts (provider_id, balance_cents)
		VALUES ($1, 0)
		ON CONFLICT (provider_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insert, providerID); err != nil {
		return nil, err
	}

	var account Account
	query := `
		SELECT id, provider_id, balance_cents, created_at, updated_at
		FROM payout_accounts
		WHERE provider_id = $1
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &account, query, providerID); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *repository) move(ctx context.Context, tx *sqlx.Tx, providerID int, txType string, amountCents int64, reference string) error {
	account, err := r.lockAccount(ctx, tx, providerID)
	if err != nil {
		return err
	}

	delta := amountCents
	if txType == TxDebit {
		delta = -amountCents
	}

	update := `
		UPDATE payout_accounts
		SET balance_cents = balance_cents + $1, updated_at = NOW()
		WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, update, delta, account.ID); err != nil {
		return err
	}

	insert := `
		INSERT INTO payout_transactions (account_id, type, amount_cents, reference)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, insert, account.ID, txType, amountCents, reference)
	return err
}

func (r *repository) Credit(ctx context.Context, tx *sqlx.Tx, providerID int, amountCents int64, reference string) error {
	return r.move(ctx, tx, providerID, TxCredit, amountCents, reference)
}

func (r *repository) Debit(ctx context.Context, tx *sqlx.Tx, providerID int, amountCents int64, reference string) error {
	return r.move(ctx, tx, providerID, TxDebit, amountCents, reference)
}

func (r *repository) GetAccount(ctx context.Context, providerID int) (*Account, error) {
	query := `
		SELECT id, provider_id, balance_cents, created_at, updated_at
		FROM payout_accounts
		WHERE provider_id = $1
	`

	var account Account
	err := r.db.GetContext(ctx, &account, query, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *repository) ListTransactions(ctx context.Context, providerID int) ([]Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.type, t.amount_cents, t.reference, t.created_at
		FROM payout_transactions t
		JOIN payout_accounts a ON t.account_id = a.id
		WHERE a.provider_id = $1
		ORDER BY t.created_at DESC
	`

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, query, providerID)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
