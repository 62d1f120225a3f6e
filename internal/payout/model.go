package payout

import "time"

const (
	TxCredit = "CREDIT"
	TxDebit  = "DEBIT"
)

// Account is a provider's running balance. The balance column is derived
// state; the transactions table is the source of truth and is append-only.
type Account struct {
	ID           int       `db:"id" json:"id"`
	ProviderID   int       `db:"provider_id" json:"provider_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID          int       `db:"id" json:"id"`
	AccountID   int       `db:"account_id" json:"account_id"`
	Type        string    `db:"type" json:"type"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Reference   string    `db:"reference" json:"reference"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
