package review

import "context"

type Repository interface {
	Create(ctx context.Context, r *Review) (*Review, error)
	GetByBookingID(ctx context.Context, bookingID int) (*Review, error)
	ListByProvider(ctx context.Context, providerID int) ([]ReviewWithClient, error)
	ProviderSummary(ctx context.Context, providerID int) (*ProviderSummary, error)
}
