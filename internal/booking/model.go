package booking

import "time"

type Status string

const (
	StatusPending             Status = "PENDING"
	StatusAccepted            Status = "ACCEPTED"
	StatusInProgress          Status = "IN_PROGRESS"
	StatusCompleted           Status = "COMPLETED"
	StatusRejected            Status = "REJECTED"
	StatusCancelledByClient   Status = "CANCELLED_BY_CLIENT"
	StatusCancelledByProvider Status = "CANCELLED_BY_PROVIDER"
	StatusNoShow              Status = "NO_SHOW"
	StatusDisputed            Status = "DISPUTED"
	StatusRefunded            Status = "REFUNDED"
)

// transitions is the full lifecycle graph. REFUNDED is reachable from every
// non-terminal state because a payment reversal can land at any point before
// the booking settles.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelledByClient, StatusRefunded},
	StatusAccepted:   {StatusInProgress, StatusCancelledByClient, StatusCancelledByProvider, StatusRefunded},
	StatusInProgress: {StatusCompleted, StatusNoShow, StatusDisputed, StatusRefunded},
	StatusDisputed:   {StatusRefunded},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusRejected,
		StatusCancelledByClient, StatusCancelledByProvider, StatusNoShow, StatusDisputed, StatusRefunded:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Statuses returns every declared status, in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusRejected,
		StatusCancelledByClient, StatusCancelledByProvider, StatusNoShow, StatusDisputed, StatusRefunded,
	}
}

type Booking struct {
	ID           int       `db:"id" json:"id"`
	ClientID     int       `db:"client_id" json:"client_id"`
	ProviderID   int       `db:"provider_id" json:"provider_id"`
	ServiceID    int       `db:"service_id" json:"service_id"`
	StartAt      time.Time `db:"start_at" json:"start_at"`
	EndAt        time.Time `db:"end_at" json:"end_at"`
	BookingDate  string    `db:"booking_date" json:"booking_date"`
	Status       Status    `db:"status" json:"status"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	DepositCents int64     `db:"deposit_cents" json:"deposit_cents"`
	City         string    `db:"city" json:"city,omitempty"`
	Address      string    `db:"address" json:"address,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BookingWithParties carries the joined names and emails both notification
// paths need, so the sweep can notify without extra lookups per row.
type BookingWithParties struct {
	Booking
	ServiceName   string `db:"service_name" json:"service_name"`
	ClientName    string `db:"client_name" json:"client_name"`
	ClientEmail   string `db:"client_email" json:"client_email"`
	ProviderName  string `db:"provider_name" json:"provider_name"`
	ProviderEmail string `db:"provider_email" json:"provider_email"`
}

type CreateRequest struct {
	ServiceID int       `json:"service_id" binding:"required"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
}

const bookingDateLayout = "2006-01-02"

// BookingDateFor derives the denormalized booking_date string from the start
// time. It must never be set any other way.
func BookingDateFor(startAt time.Time) string {
	return startAt.Format(bookingDateLayout)
}
