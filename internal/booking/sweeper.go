package booking

import (
	"context"
	"time"

	"mawid/internal/logger"
	"mawid/internal/metrics"
)

// ExpiryEmailService is the slice of the email package the sweep uses.
type ExpiryEmailService interface {
	SendBookingExpired(ctx context.Context, to, name, serviceName string, startAt time.Time) error
}

// Sweeper rejects booking requests that sat in PENDING for longer than
// maxAge. It holds no lease: any number of replicas can run it concurrently
// because the conditional status update makes each rejection happen at most
// once.
type Sweeper struct {
	repo     Repository
	email    ExpiryEmailService
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewSweeper(repo Repository, email ExpiryEmailService, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		email:    email,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("Pending sweep started", "interval", s.interval.String(), "max_age", s.maxAge.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Pending sweep stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logger.Errorf("Pending sweep pass failed: %v", err)
			}
		}
	}
}

// Sweep runs a single pass and returns how many bookings it rejected. A
// failure on one booking never stops the rest of the pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	metrics.SweepRunsTotal.Inc()

	cutoff := s.now().Add(-s.maxAge)
	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	rejected := 0
	for _, b := range stale {
		ok, err := s.repo.UpdateStatus(ctx, b.ID, StatusPending, StatusRejected)
		if err != nil {
			logger.Errorf("Failed to auto-reject booking %d: %v", b.ID, err)
			continue
		}
		if !ok {
			// Answered (or swept by another replica) between the list
			// and the update. Nothing to do.
			continue
		}

		rejected++
		metrics.BookingsAutoRejectedTotal.Inc()
		metrics.RecordTransition(string(StatusPending), string(StatusRejected))
		logger.Info("Booking auto-rejected", "booking_id", b.ID, "created_at", b.CreatedAt.Format(time.RFC3339))

		if err := s.email.SendBookingExpired(ctx, b.ClientEmail, b.ClientName, b.ServiceName, b.StartAt); err != nil {
			logger.Errorf("Failed to notify client for expired booking %d: %v", b.ID, err)
		}
		if err := s.email.SendBookingExpired(ctx, b.ProviderEmail, b.ProviderName, b.ServiceName, b.StartAt); err != nil {
			logger.Errorf("Failed to notify provider for expired booking %d: %v", b.ID, err)
		}
	}

	if rejected > 0 {
		logger.Info("Pending sweep pass finished", "rejected", rejected, "candidates", len(stale))
	}

	return rejected, nil
}
