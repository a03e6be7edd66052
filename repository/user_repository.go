package repository

import (
	"context"

	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeAccountID(ctx context.Context, accountID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetStripeAccountID(ctx context.Context, userID uuid.UUID, accountID string) error
	SetStripeVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	// LatestBillingAddress returns the user's most recent billing address for
	// checkout prefill, or gorm.ErrRecordNotFound.
	LatestBillingAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error)
}

type gormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) UserRepository {
	return &gormUserRepo{db: db}
}

func (r *gormUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepo) GetByStripeAccountID(ctx context.Context, accountID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("stripe_account_id = ?", accountID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepo) SetStripeAccountID(ctx context.Context, userID uuid.UUID, accountID string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("stripe_account_id", accountID).Error
}

func (r *gormUserRepo) SetStripeVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_stripe_verified", verified).Error
}

func (r *gormUserRepo) LatestBillingAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND address_type = ?", userID, models.AddressTypeBilling).
		Order("created_at DESC").
		First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}
