package chat

import "context"

type Repository interface {
	GetOrCreateThread(ctx context.Context, bookingID int) (*Thread, error)
	GetThread(ctx context.Context, id int) (*Thread, error)
	ListThreadsForUser(ctx context.Context, userID int) ([]ThreadWithBooking, error)

	// IsParticipant reports whether the user is the booking's client or
	// the user behind its provider profile.
	IsParticipant(ctx context.Context, threadID, userID int) (bool, error)

	// IsBookingParticipant is the same check keyed by booking, for callers
	// that must authorize before any thread row exists.
	IsBookingParticipant(ctx context.Context, bookingID, userID int) (bool, error)

	CreateMessage(ctx context.Context, threadID, senderID int, body string) (*Message, error)
	ListMessages(ctx context.Context, threadID int) ([]MessageWithSender, error)
}
