package provider

import "time"

// Profile is a provider's public listing. One per provider user.
type Profile struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Bio         string    `db:"bio" json:"bio"`
	City        string    `db:"city" json:"city"`
	Address     string    `db:"address" json:"address,omitempty"`
	CategoryID  *int      `db:"category_id" json:"category_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Category struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Offering is a bookable service in a provider's catalog.
type Offering struct {
	ID              int       `db:"id" json:"id"`
	ProviderID      int       `db:"provider_id" json:"provider_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	DepositCents    int64     `db:"deposit_cents" json:"deposit_cents"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type ProfileWithCategory struct {
	Profile
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
}

type CreateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=2,max=100"`
	Bio         string `json:"bio"`
	City        string `json:"city" binding:"required"`
	Address     string `json:"address"`
	CategoryID  *int   `json:"category_id"`
}

type CreateOfferingRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=150"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"required,gt=0"`
	DepositCents    int64  `json:"deposit_cents" binding:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=5"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}
