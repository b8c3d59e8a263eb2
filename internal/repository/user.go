package repository

import (
	"context"

	"sensive/internal/models"
	"sensive/internal/validation"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	IsStaff(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	base
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB, opts ...Option) UserRepository {
	return &userRepository{base: newBase(db, opts...)}
}

// Create stores a user. Password must already be hashed.
func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := r.observe(ctx, "User.Create", "users")
	defer func() { done(err) }()

	if err = validation.ValidateUsername(user.Username); err != nil {
		return models.NewValidationError(err.Error())
	}
	if user.Email != "" {
		if err = validation.ValidateEmail(user.Email); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if user.Password == "" {
		return models.NewValidationError("password hash is required")
	}

	if err = r.writer(ctx).Create(user).Error; err != nil {
		return translateError(err, "User", user.Username)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, done := r.observe(ctx, "User.GetByID", "users")
	defer func() { done(err) }()

	user = &models.User{}
	if err = r.reader(ctx).First(user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return user, nil
}

func (r *userRepository) IsStaff(ctx context.Context, id uint) (staff bool, err error) {
	ctx, done := r.observe(ctx, "User.IsStaff", "users")
	defer func() { done(err) }()

	var users []models.User
	if err = r.reader(ctx).Select("id", "is_staff").Where("id = ?", id).Limit(1).Find(&users).Error; err != nil {
		return false, translateError(err, "User", id)
	}
	if len(users) == 0 {
		return false, models.NewNotFoundError("User", id)
	}
	return users[0].IsStaff, nil
}
