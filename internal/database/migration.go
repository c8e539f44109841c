package database

import (
	"fmt"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs schema migrations for the relational tables. The
// transactions table is only created when SQLite is the transaction backend;
// otherwise transactions live in MongoDB.
func AutoMigrate(db *gorm.DB, withTransactions bool) error {
	tables := []interface{}{&models.User{}}
	if withTransactions {
		tables = append(tables, &models.Transaction{})
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
