package provider

import "context"

type Repository interface {
	CreateProfile(ctx context.Context, userID int, req CreateProfileRequest) (*Profile, error)
	GetProfileByID(ctx context.Context, id int) (*Profile, error)
	GetProfileByUserID(ctx context.Context, userID int) (*Profile, error)
	ListProfiles(ctx context.Context, city string, categoryID int) ([]ProfileWithCategory, error)

	CreateOffering(ctx context.Context, providerID int, req CreateOfferingRequest) (*Offering, error)
	GetOfferingByID(ctx context.Context, id int) (*Offering, error)
	ListOfferingsByProvider(ctx context.Context, providerID int, activeOnly bool) ([]Offering, error)
	DeactivateOffering(ctx context.Context, providerID, offeringID int) error

	CreateCategory(ctx context.Context, name, slug string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
