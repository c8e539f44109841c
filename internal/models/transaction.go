package models

import "time"

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is a single ledger record owned by one user.
// Amount is signed: negative for expenses, non-negative for income.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36" json:"_id"`
	Description string          `gorm:"size:100;not null" json:"description"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Type        TransactionType `gorm:"size:16;not null" json:"type"`
	Category    string          `gorm:"size:64;not null" json:"category"`
	Date        time.Time       `gorm:"index:idx_transactions_owner_date,priority:2;not null" json:"date"`
	Owner       string          `gorm:"size:36;index:idx_transactions_owner_date,priority:1;not null" json:"user"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionFields are the mutable parts of a transaction, replaced as a
// whole on update.
type TransactionFields struct {
	Description string
	Amount      float64
	Type        TransactionType
	Category    string
	Date        time.Time
}

// Apply copies f onto t, leaving ID, Owner and CreatedAt alone.
func (f TransactionFields) Apply(t *Transaction) {
	t.Description = f.Description
	t.Amount = f.Amount
	t.Type = f.Type
	t.Category = f.Category
	t.Date = f.Date
}
