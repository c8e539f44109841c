// Package service implements the transaction ledger: input validation, sign
// normalisation of amounts, ownership checks and the per-user summary.
// Callers pass the authenticated user's ID explicitly on every call.
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/store"
	"finance-tracker/internal/util"
)

const (
	maxDescriptionLen = 100
	maxCategoryLen    = 64

	msgMissingFields       = "Please provide all required fields: description, amount, type, category, date"
	msgMissingUpdateFields = "Please provide all required fields"
)

const (
	opList      = "fetching transactions"
	opCreate    = "creating transaction"
	opUpdate    = "updating transaction"
	opDelete    = "deleting transaction"
	opSummarize = "fetching summary"
	opStats     = "fetching statistics"
)

// TransactionInput is the create/update command. A nil field is absent;
// blank strings count as absent too, but a zero Amount is a real value.
type TransactionInput struct {
	Description *string
	Amount      *float64
	Type        *string
	Category    *string
	Date        *string
}

type Ledger struct {
	store store.TransactionStore
	now   func() time.Time
}

func NewLedger(s store.TransactionStore) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// List returns the caller's transactions, most recent date first.
func (l *Ledger) List(ctx context.Context, callerID string) ([]models.Transaction, error) {
	items, err := l.store.FindByOwner(ctx, callerID)
	if err != nil {
		return nil, &StorageError{Op: opList, Err: err}
	}
	return items, nil
}

func (l *Ledger) Create(ctx context.Context, callerID string, in TransactionInput) (*models.Transaction, error) {
	fields, err := in.validate(msgMissingFields)
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Owner:     callerID,
		CreatedAt: l.now().UTC().Truncate(time.Millisecond),
	}
	fields.Apply(t)

	if err := l.store.Insert(ctx, t); err != nil {
		return nil, &StorageError{Op: opCreate, Err: err}
	}
	return t, nil
}

// Update replaces every mutable field of a transaction owned by callerID.
func (l *Ledger) Update(ctx context.Context, callerID, id string, in TransactionInput) (*models.Transaction, error) {
	fields, err := in.validate(msgMissingUpdateFields)
	if err != nil {
		return nil, err
	}

	if _, err := l.owned(ctx, callerID, id, opUpdate); err != nil {
		return nil, err
	}

	t, err := l.store.UpdateByID(ctx, id, fields)
	if err != nil {
		// deleted between the ownership check and the write
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: opUpdate, Err: err}
	}
	return t, nil
}

// Delete removes a transaction owned by callerID and returns its ID.
func (l *Ledger) Delete(ctx context.Context, callerID, id string) (string, error) {
	t, err := l.owned(ctx, callerID, id, opDelete)
	if err != nil {
		return "", err
	}

	if err := l.store.DeleteByID(ctx, t.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", &StorageError{Op: opDelete, Err: err}
	}
	return t.ID, nil
}

// owned loads a transaction and checks that callerID owns it.
func (l *Ledger) owned(ctx context.Context, callerID, id, op string) (*models.Transaction, error) {
	t, err := l.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: op, Err: err}
	}
	if t.Owner != callerID {
		return nil, ErrNotAuthorized
	}
	return t, nil
}

// validate checks presence first, then shape, and derives the stored sign
// of the amount from the type. missing is the message for absent fields.
func (in TransactionInput) validate(missing string) (models.TransactionFields, error) {
	description := trimmed(in.Description)
	typ := trimmed(in.Type)
	category := trimmed(in.Category)
	date := trimmed(in.Date)

	if description == "" || in.Amount == nil || typ == "" || category == "" || date == "" {
		return models.TransactionFields{}, &ValidationError{Message: missing}
	}

	t := models.TransactionType(typ)
	if !t.Valid() {
		return models.TransactionFields{}, &ValidationError{Message: "Type must be either income or expense"}
	}
	if err := util.ValidateLength("Description", description, 1, maxDescriptionLen); err != nil {
		return models.TransactionFields{}, &ValidationError{Message: err.Error()}
	}
	if err := util.ValidateLength("Category", category, 1, maxCategoryLen); err != nil {
		return models.TransactionFields{}, &ValidationError{Message: err.Error()}
	}
	amount := *in.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return models.TransactionFields{}, &ValidationError{Message: "Amount must be a finite number"}
	}
	parsed, err := util.ParseDate(date)
	if err != nil {
		return models.TransactionFields{}, &ValidationError{Message: "Date must be a valid date (YYYY-MM-DD)"}
	}

	return models.TransactionFields{
		Description: description,
		Amount:      signedAmount(t, amount),
		Type:        t,
		Category:    category,
		Date:        parsed.Truncate(time.Millisecond),
	}, nil
}

// signedAmount stores expenses as negative and income as non-negative,
// whatever sign the caller sent.
func signedAmount(t models.TransactionType, amount float64) float64 {
	if t == models.Expense {
		if amount == 0 {
			return 0
		}
		return -math.Abs(amount)
	}
	return math.Abs(amount)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
