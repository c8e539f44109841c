package service

import (
	"context"
	"sort"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// Bucket totals one day or one category.
type Bucket struct {
	Key      string  `json:"key"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
	Count    int     `json:"count"`
}

// MonthlyStats breaks one calendar month (UTC) down by day and by category.
type MonthlyStats struct {
	Month      string   `json:"month"` // YYYY-MM
	Daily      []Bucket `json:"daily"`
	ByCategory []Bucket `json:"byCategory"`
	Summary    Summary  `json:"summary"`
}

type bucketSum struct {
	income, expenses decimal.Decimal
	count            int
}

func (b *bucketSum) add(t *models.Transaction) {
	amount := decimal.NewFromFloat(t.Amount).Abs()
	if t.Type == models.Income {
		b.income = b.income.Add(amount)
	} else {
		b.expenses = b.expenses.Add(amount)
	}
	b.count++
}

// ParseMonth reads a YYYY-MM string. An empty string means the current month.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		n := now.UTC()
		return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, &ValidationError{Message: "Month must be in YYYY-MM format"}
	}
	return t, nil
}

// MonthlyStats aggregates the caller's transactions dated within month.
// Days and categories without transactions are omitted.
func (l *Ledger) MonthlyStats(ctx context.Context, callerID, month string) (MonthlyStats, error) {
	start, err := ParseMonth(month, l.now())
	if err != nil {
		return MonthlyStats{}, err
	}
	end := start.AddDate(0, 1, 0)

	items, err := l.store.FindByOwner(ctx, callerID)
	if err != nil {
		return MonthlyStats{}, &StorageError{Op: opStats, Err: err}
	}

	var inMonth []models.Transaction
	days := make(map[string]*bucketSum)
	cats := make(map[string]*bucketSum)
	for i := range items {
		t := &items[i]
		d := t.Date.UTC()
		if d.Before(start) || !d.Before(end) {
			continue
		}
		inMonth = append(inMonth, *t)

		day := d.Format("2006-01-02")
		if days[day] == nil {
			days[day] = &bucketSum{}
		}
		days[day].add(t)

		if cats[t.Category] == nil {
			cats[t.Category] = &bucketSum{}
		}
		cats[t.Category].add(t)
	}

	return MonthlyStats{
		Month:      start.Format("2006-01"),
		Daily:      buckets(days),
		ByCategory: buckets(cats),
		Summary:    summarize(inMonth),
	}, nil
}

// buckets flattens m sorted by key.
func buckets(m map[string]*bucketSum) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, b := range m {
		out = append(out, Bucket{
			Key:      k,
			Income:   b.income.InexactFloat64(),
			Expenses: b.expenses.InexactFloat64(),
			Balance:  b.income.Sub(b.expenses).InexactFloat64(),
			Count:    b.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
