package chat

import "time"

// Thread is the single conversation attached to a booking.
type Thread struct {
	ID        int       `db:"id" json:"id"`
	BookingID int       `db:"booking_id" json:"booking_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ThreadWithBooking struct {
	Thread
	BookingStatus string `db:"booking_status" json:"booking_status"`
	ServiceName   string `db:"service_name" json:"service_name"`
	ClientName    string `db:"client_name" json:"client_name"`
	ProviderName  string `db:"provider_name" json:"provider_name"`
}

type Message struct {
	ID        int       `db:"id" json:"id"`
	ThreadID  int       `db:"thread_id" json:"thread_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type MessageWithSender struct {
	Message
	SenderName string `db:"sender_name" json:"sender_name"`
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}
