package booking

import (
	"context"
	"errors"
	"time"

	"mawid/internal/auth"
	"mawid/internal/logger"
	"mawid/internal/metrics"
	"mawid/internal/provider"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not allowed to perform this transition")
	ErrNotParticipant    = errors.New("not a participant of this booking")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
	ErrPastBooking       = errors.New("cannot book a slot in the past")
	ErrOfferingInactive  = errors.New("service offering is not active")
)

// transitionRoles maps each reachable target status to the role that may
// request it through the API. REFUNDED is absent on purpose: it is only ever
// set by the payment flow or an admin.
var transitionRoles = map[Status]string{
	StatusAccepted:            auth.RoleProvider,
	StatusRejected:            auth.RoleProvider,
	StatusInProgress:          auth.RoleProvider,
	StatusCompleted:           auth.RoleProvider,
	StatusNoShow:              auth.RoleProvider,
	StatusCancelledByProvider: auth.RoleProvider,
	StatusCancelledByClient:   auth.RoleClient,
	StatusDisputed:            auth.RoleClient,
}

type Service interface {
	Create(ctx context.Context, clientID int, req CreateRequest) (*Booking, error)
	Transition(ctx context.Context, bookingID int, target Status, actorID int, actorRole string) (*Booking, error)
	Get(ctx context.Context, bookingID, actorID int, actorRole string) (*BookingWithParties, error)
	ListForClient(ctx context.Context, clientID int) ([]BookingWithParties, error)
	ListForProviderUser(ctx context.Context, userID int) ([]BookingWithParties, error)
}

type service struct {
	repo      Repository
	providers provider.Repository
	email     EmailService
	now       func() time.Time
}

// EmailService narrows the email package to what bookings send, so tests can
// swap it without Redis.
type EmailService interface {
	SendBookingRequested(ctx context.Context, to, providerName, clientName, serviceName string, startAt time.Time) error
	SendBookingReceived(ctx context.Context, to, clientName, serviceName string, startAt time.Time) error
	SendBookingAccepted(ctx context.Context, to, clientName, serviceName string, startAt time.Time) error
	SendBookingRejected(ctx context.Context, to, clientName, serviceName string) error
	SendBookingCancelled(ctx context.Context, to, name, serviceName, cancelledBy string) error
}

func NewService(repo Repository, providers provider.Repository, emails EmailService) Service {
	return &service{
		repo:      repo,
		providers: providers,
		email:     emails,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, clientID int, req CreateRequest) (*Booking, error) {
	if !req.EndAt.After(req.StartAt) {
		return nil, ErrInvalidTimeRange
	}
	if req.StartAt.Before(s.now()) {
		return nil, ErrPastBooking
	}

	offering, err := s.providers.GetOfferingByID(ctx, req.ServiceID)
	if err != nil {
		return nil, provider.ErrOfferingNotFound
	}
	if !offering.Active {
		return nil, ErrOfferingInactive
	}

	created, err := s.repo.Create(ctx, &Booking{
		ClientID:     clientID,
		ProviderID:   offering.ProviderID,
		ServiceID:    offering.ID,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		PriceCents:   offering.PriceCents,
		DepositCents: offering.DepositCents,
		City:         req.City,
		Address:      req.Address,
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreatedTotal.Inc()
	logger.Info("Booking created", "booking_id", created.ID, "client_id", clientID, "service_id", offering.ID)

	// Notifications never block or fail the request.
	go s.notifyCreated(created.ID)

	return created, nil
}

func (s *service) notifyCreated(bookingID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := s.repo.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		logger.Errorf("Failed to load booking %d for notifications: %v", bookingID, err)
		return
	}

	if err := s.email.SendBookingRequested(ctx, b.ProviderEmail, b.ProviderName, b.ClientName, b.ServiceName, b.StartAt); err != nil {
		logger.Errorf("Failed to notify provider for booking %d: %v", bookingID, err)
	}
	if err := s.email.SendBookingReceived(ctx, b.ClientEmail, b.ClientName, b.ServiceName, b.StartAt); err != nil {
		logger.Errorf("Failed to notify client for booking %d: %v", bookingID, err)
	}
}

func (s *service) Transition(ctx context.Context, bookingID int, target Status, actorID int, actorRole string) (*Booking, error) {
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	if err := s.authorize(ctx, b, target, actorID, actorRole); err != nil {
		return nil, err
	}

	if !b.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.repo.UpdateStatus(ctx, bookingID, b.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: the booking moved under us. Report against the
		// fresh status so the caller sees the real conflict.
		return nil, ErrInvalidTransition
	}

	metrics.RecordTransition(string(b.Status), string(target))
	logger.Info("Booking transition", "booking_id", bookingID, "from", string(b.Status), "to", string(target))

	go s.notifyTransition(bookingID, target)

	b.Status = target
	b.UpdatedAt = s.now()
	return b, nil
}

func (s *service) authorize(ctx context.Context, b *Booking, target Status, actorID int, actorRole string) error {
	if actorRole == auth.RoleAdmin {
		return nil
	}

	requiredRole, ok := transitionRoles[target]
	if !ok || actorRole != requiredRole {
		return ErrForbidden
	}

	switch requiredRole {
	case auth.RoleClient:
		if b.ClientID != actorID {
			return ErrForbidden
		}
	case auth.RoleProvider:
		profile, err := s.providers.GetProfileByUserID(ctx, actorID)
		if err != nil || profile.ID != b.ProviderID {
			return ErrForbidden
		}
	}

	return nil
}

func (s *service) notifyTransition(bookingID int, target Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := s.repo.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		logger.Errorf("Failed to load booking %d for notifications: %v", bookingID, err)
		return
	}

	var sendErr error
	switch target {
	case StatusAccepted:
		sendErr = s.email.SendBookingAccepted(ctx, b.ClientEmail, b.ClientName, b.ServiceName, b.StartAt)
	case StatusRejected:
		sendErr = s.email.SendBookingRejected(ctx, b.ClientEmail, b.ClientName, b.ServiceName)
	case StatusCancelledByClient:
		sendErr = s.email.SendBookingCancelled(ctx, b.ProviderEmail, b.ProviderName, b.ServiceName, "client")
	case StatusCancelledByProvider:
		sendErr = s.email.SendBookingCancelled(ctx, b.ClientEmail, b.ClientName, b.ServiceName, "provider")
	}
	if sendErr != nil {
		logger.Errorf("Failed to send notification for booking %d: %v", bookingID, sendErr)
	}
}

func (s *service) Get(ctx context.Context, bookingID, actorID int, actorRole string) (*BookingWithParties, error) {
	b, err := s.repo.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	if actorRole == auth.RoleAdmin || b.ClientID == actorID {
		return b, nil
	}

	if profile, err := s.providers.GetProfileByUserID(ctx, actorID); err == nil && profile.ID == b.ProviderID {
		return b, nil
	}

	return nil, ErrNotParticipant
}

func (s *service) ListForClient(ctx context.Context, clientID int) ([]BookingWithParties, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *service) ListForProviderUser(ctx context.Context, userID int) ([]BookingWithParties, error) {
	profile, err := s.providers.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, provider.ErrProfileNotFound
	}

	return s.repo.ListByProvider(ctx, profile.ID)
}
