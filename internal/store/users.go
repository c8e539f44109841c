package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
)

// Users is the gorm-backed user table.
type Users struct {
	DB *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{DB: db}
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// EmailExists checks case-insensitively whether an account uses email.
func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", normalizeEmail(email))
}

func (s *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

// Save writes every column of u, including zeroed login counters.
func (s *Users) Save(ctx context.Context, u *models.User) error {
	if err := s.DB.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Users) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation covers both the translated gorm error and the raw
// driver message.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
