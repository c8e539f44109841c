package service

import (
	"context"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpenses    float64 `json:"totalExpenses"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transactionCount"`
}

// Summarize totals the caller's full transaction set. Nothing is cached.
func (l *Ledger) Summarize(ctx context.Context, callerID string) (Summary, error) {
	items, err := l.store.FindByOwner(ctx, callerID)
	if err != nil {
		return Summary{}, &StorageError{Op: opSummarize, Err: err}
	}
	return summarize(items), nil
}

func summarize(items []models.Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for i := range items {
		amount := decimal.NewFromFloat(items[i].Amount).Abs()
		switch items[i].Type {
		case models.Income:
			income = income.Add(amount)
		case models.Expense:
			expenses = expenses.Add(amount)
		}
	}

	return Summary{
		TotalIncome:      income.InexactFloat64(),
		TotalExpenses:    expenses.InexactFloat64(),
		Balance:          income.Sub(expenses).InexactFloat64(),
		TransactionCount: len(items),
	}
}
