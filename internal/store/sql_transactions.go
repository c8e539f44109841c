package store

import (
	"context"
	"errors"
	"fmt"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SQLTransactions keeps transactions in the relational database. It is used
// for local runs without MongoDB and in tests.
type SQLTransactions struct {
	DB *gorm.DB
}

func NewSQLTransactions(db *gorm.DB) *SQLTransactions {
	return &SQLTransactions{DB: db}
}

func (s *SQLTransactions) Insert(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLTransactions) FindByOwner(ctx context.Context, owner string) ([]models.Transaction, error) {
	var items []models.Transaction
	if err := s.DB.WithContext(ctx).
		Where("owner = ?", owner).
		Order("date DESC, created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	return items, nil
}

func (s *SQLTransactions) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

func (s *SQLTransactions) UpdateByID(ctx context.Context, id string, f models.TransactionFields) (*models.Transaction, error) {
	// a map, not a struct, so that a zero amount is written too
	res := s.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"description": f.Description,
			"amount":      f.Amount,
			"type":        f.Type,
			"category":    f.Category,
			"date":        f.Date,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *SQLTransactions) DeleteByID(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLTransactions) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
