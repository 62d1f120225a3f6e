package review

import "time"

type Review struct {
	ID         int       `db:"id" json:"id"`
	BookingID  int       `db:"booking_id" json:"booking_id"`
	ClientID   int       `db:"client_id" json:"client_id"`
	ProviderID int       `db:"provider_id" json:"provider_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ReviewWithClient struct {
	Review
	ClientName string `db:"client_name" json:"client_name"`
}

type CreateRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type ProviderSummary struct {
	ProviderID    int     `db:"provider_id" json:"provider_id"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}
