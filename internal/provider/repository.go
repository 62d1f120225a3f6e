package provider

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrProfileNotFound  = errors.New("provider profile not found")
	ErrOfferingNotFound = errors.New("service offering not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateProfile(ctx context.Context, userID int, req CreateProfileRequest) (*Profile, error) {
	query := `
		INSERT INTO providers (user_id, display_name, bio, city, address, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, display_name, bio, city, address, category_id, created_at
	`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID, req.DisplayName, req.Bio, req.City, req.Address, req.CategoryID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetProfileByID(ctx context.Context, id int) (*Profile, error) {
	query := `
		SELECT id, user_id, display_name, bio, city, address, category_id, created_at
		FROM providers
		WHERE id = $1
	`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetProfileByUserID(ctx context.Context, userID int) (*Profile, error) {
	query := `
		SELECT id, user_id, display_name, bio, city, address, category_id, created_at
		FROM providers
		WHERE user_id = $1
	`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListProfiles(ctx context.Context, city string, categoryID int) ([]ProfileWithCategory, error) {
	query := `
		SELECT
			p.id,
			p.user_id,
			p.display_name,
			p.bio,
			p.city,
			p.address,
			p.category_id,
			p.created_at,
			c.name AS category_name
		FROM providers p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE ($1 = '' OR p.city = $1)
		  AND ($2 = 0 OR p.category_id = $2)
		ORDER BY p.created_at DESC
	`

	var profiles []ProfileWithCategory
	err := r.db.SelectContext(ctx, &profiles, query, city, categoryID)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *repository) CreateOffering(ctx context.Context, providerID int, req CreateOfferingRequest) (*Offering, error) {
	query := `
		INSERT INTO services (provider_id, name, description, price_cents, deposit_cents, duration_minutes, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, provider_id, name, description, price_cents, deposit_cents, duration_minutes, active, created_at
	`

	var o Offering
	err := r.db.GetContext(ctx, &o, query, providerID, req.Name, req.Description, req.PriceCents, req.DepositCents, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) GetOfferingByID(ctx context.Context, id int) (*Offering, error) {
	query := `
		SELECT id, provider_id, name, description, price_cents, deposit_cents, duration_minutes, active, created_at
		FROM services
		WHERE id = $1
	`

	var o Offering
	err := r.db.GetContext(ctx, &o, query, id)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) ListOfferingsByProvider(ctx context.Context, providerID int, activeOnly bool) ([]Offering, error) {
	query := `
		SELECT id, provider_id, name, description, price_cents, deposit_cents, duration_minutes, active, created_at
		FROM services
		WHERE provider_id = $1 AND ($2 = FALSE OR active = TRUE)
		ORDER BY created_at DESC
	`

	var offerings []Offering
	err := r.db.SelectContext(ctx, &offerings, query, providerID, activeOnly)
	if err != nil {
		return nil, err
	}

	return offerings, nil
}

func (r *repository) DeactivateOffering(ctx context.Context, providerID, offeringID int) error {
	query := `
		UPDATE services
		SET active = FALSE
		WHERE id = $1 AND provider_id = $2 AND active = TRUE
	`

	result, err := r.db.ExecContext(ctx, query, offeringID, providerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

func (r *repository) CreateCategory(ctx context.Context, name, slug string) (*Category, error) {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug
	`

	var c Category
	err := r.db.GetContext(ctx, &c, query, name, slug)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		ORDER BY name ASC
	`

	var categories []Category
	err := r.db.SelectContext(ctx, &categories, query)
	if err != nil {
		return nil, err
	}

	return categories, nil
}
