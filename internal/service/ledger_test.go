package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/store"

	"github.com/brianvoe/gofakeit/v6"
)

// memStore is an in-memory store.TransactionStore with optional failure
// injection.
type memStore struct {
	mu     sync.Mutex
	seq    int
	items  map[string]models.Transaction
	fail   error
	writes int
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]models.Transaction)}
}

func (m *memStore) Insert(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.seq++
	t.ID = strconv.Itoa(m.seq)
	m.items[t.ID] = *t
	m.writes++
	return nil
}

func (m *memStore) FindByOwner(_ context.Context, owner string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []models.Transaction
	for _, t := range m.items {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	t, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) UpdateByID(_ context.Context, id string, f models.TransactionFields) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	t, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	f.Apply(&t)
	m.items[id] = t
	m.writes++
	return &t, nil
}

func (m *memStore) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.items, id)
	m.writes++
	return nil
}

func (m *memStore) Ping(context.Context) error { return m.fail }

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

func input(description string, amount float64, typ, category, date string) TransactionInput {
	return TransactionInput{
		Description: str(description),
		Amount:      num(amount),
		Type:        str(typ),
		Category:    str(category),
		Date:        str(date),
	}
}

func mustCreate(t *testing.T, l *Ledger, caller string, in TransactionInput) *models.Transaction {
	t.Helper()
	tx, err := l.Create(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return tx
}

func TestCreate_NormalisesSign(t *testing.T) {
	testCases := []struct {
		typ    string
		amount float64
		want   float64
	}{
		{"expense", 5, -5},
		{"expense", -5, -5},
		{"expense", 0, 0},
		{"income", 100, 100},
		{"income", -100, 100},
		{"income", 0, 0},
		{"expense", 12.34, -12.34},
	}

	l := NewLedger(newMemStore())
	for _, tc := range testCases {
		tx := mustCreate(t, l, "alice", input("Coffee", tc.amount, tc.typ, "Food", "2024-01-01"))
		if tx.Amount != tc.want {
			t.Errorf("Create(%s, %v) amount = %v, want %v", tc.typ, tc.amount, tx.Amount, tc.want)
		}
		if math.Signbit(tx.Amount) && tc.typ == "income" {
			t.Errorf("Create(income, %v) stored a negative amount", tc.amount)
		}
	}
}

func TestCreate_RandomAmountsKeepSignInvariant(t *testing.T) {
	l := NewLedger(newMemStore())
	for i := 0; i < 200; i++ {
		amount := gofakeit.Float64Range(-1e6, 1e6)
		typ := gofakeit.RandomString([]string{"income", "expense"})

		tx := mustCreate(t, l, "alice", input(gofakeit.Word(), amount, typ, gofakeit.Word(), gofakeit.Date().Format("2006-01-02")))
		if typ == "expense" && tx.Amount > 0 {
			t.Fatalf("expense %v stored as %v", amount, tx.Amount)
		}
		if typ == "income" && tx.Amount < 0 {
			t.Fatalf("income %v stored as %v", amount, tx.Amount)
		}
		if math.Abs(tx.Amount) != math.Abs(amount) {
			t.Fatalf("magnitude changed: %v -> %v", amount, tx.Amount)
		}
	}
}

func TestCreate_StoresRecord(t *testing.T) {
	s := newMemStore()
	l := NewLedger(s)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	tx := mustCreate(t, l, "alice", input("  Coffee  ", 5, "expense", " Food ", "2024-01-01"))

	if tx.ID == "" {
		t.Error("ID not assigned")
	}
	if tx.Owner != "alice" {
		t.Errorf("Owner = %q, want alice", tx.Owner)
	}
	if tx.Description != "Coffee" || tx.Category != "Food" {
		t.Errorf("fields not trimmed: %+v", tx)
	}
	if !tx.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", tx.Date)
	}
	if !tx.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", tx.CreatedAt, fixed)
	}
	if stored := s.items[tx.ID]; stored.Amount != -5 {
		t.Errorf("stored amount = %v, want -5", stored.Amount)
	}
}

func TestCreate_Validation(t *testing.T) {
	valid := input("Coffee", 5, "expense", "Food", "2024-01-01")

	without := func(mutate func(*TransactionInput)) TransactionInput {
		in := valid
		mutate(&in)
		return in
	}

	testCases := []struct {
		name string
		in   TransactionInput
	}{
		{"no description", without(func(in *TransactionInput) { in.Description = nil })},
		{"blank description", without(func(in *TransactionInput) { in.Description = str("   ") })},
		{"no amount", without(func(in *TransactionInput) { in.Amount = nil })},
		{"no type", without(func(in *TransactionInput) { in.Type = nil })},
		{"no category", without(func(in *TransactionInput) { in.Category = str("") })},
		{"no date", without(func(in *TransactionInput) { in.Date = nil })},
		{"bad type", without(func(in *TransactionInput) { in.Type = str("transfer") })},
		{"upper-case type", without(func(in *TransactionInput) { in.Type = str("Expense") })},
		{"long description", without(func(in *TransactionInput) { in.Description = str(strings.Repeat("x", 101)) })},
		{"bad date", without(func(in *TransactionInput) { in.Date = str("yesterday") })},
		{"nan amount", without(func(in *TransactionInput) { in.Amount = num(math.NaN()) })},
		{"inf amount", without(func(in *TransactionInput) { in.Amount = num(math.Inf(1)) })},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			l := NewLedger(s)

			_, err := l.Create(context.Background(), "alice", tc.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if s.writes != 0 {
				t.Errorf("store written %d times, want 0", s.writes)
			}
		})
	}
}

func TestCreate_ZeroAmountIsPresent(t *testing.T) {
	l := NewLedger(newMemStore())
	if _, err := l.Create(context.Background(), "alice", input("Gift", 0, "income", "Other", "2024-01-01")); err != nil {
		t.Errorf("Create() with zero amount error = %v, want nil", err)
	}
}

func TestCreate_MissingFieldsMessage(t *testing.T) {
	l := NewLedger(newMemStore())
	_, err := l.Create(context.Background(), "alice", TransactionInput{})
	if err == nil || err.Error() != msgMissingFields {
		t.Errorf("Create() error = %v, want %q", err, msgMissingFields)
	}
}

func TestList_ScopedAndOrdered(t *testing.T) {
	l := NewLedger(newMemStore())
	first := mustCreate(t, l, "alice", input("Salary", 100, "income", "Work", "2024-01-01"))
	second := mustCreate(t, l, "alice", input("Coffee", 40, "expense", "Food", "2024-02-01"))
	mustCreate(t, l, "bob", input("Other", 1, "income", "Misc", "2024-03-01"))

	items, err := l.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() len = %d, want 2", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want [%s %s]", items[0].ID, items[1].ID, second.ID, first.ID)
	}
	for _, tx := range items {
		if tx.Owner != "alice" {
			t.Errorf("List() leaked %+v", tx)
		}
	}
}

func TestUpdate_ReplacesFields(t *testing.T) {
	l := NewLedger(newMemStore())
	orig := mustCreate(t, l, "alice", input("Salary", 100, "income", "Work", "2024-01-01"))

	got, err := l.Update(context.Background(), "alice", orig.ID, input("Rent", 800, "expense", "Housing", "2024-02-01"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Description != "Rent" || got.Amount != -800 || got.Type != models.Expense || got.Category != "Housing" {
		t.Errorf("Update() = %+v", got)
	}
	if got.Owner != "alice" || !got.CreatedAt.Equal(orig.CreatedAt) || got.ID != orig.ID {
		t.Errorf("Update() changed immutable fields: %+v", got)
	}
}

func TestUpdate_OtherOwnerIsRejected(t *testing.T) {
	s := newMemStore()
	l := NewLedger(s)
	orig := mustCreate(t, l, "alice", input("Salary", 100, "income", "Work", "2024-01-01"))
	writes := s.writes

	_, err := l.Update(context.Background(), "bob", orig.ID, input("Hacked", 1, "expense", "X", "2024-01-01"))
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("Update() error = %v, want ErrNotAuthorized", err)
	}
	if s.writes != writes {
		t.Error("store was written")
	}
	if stored := s.items[orig.ID]; stored.Description != "Salary" || stored.Amount != 100 {
		t.Errorf("record changed: %+v", stored)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	l := NewLedger(newMemStore())
	_, err := l.Update(context.Background(), "alice", "missing", input("Rent", 1, "expense", "Housing", "2024-01-01"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ValidatesBeforeLookup(t *testing.T) {
	l := NewLedger(newMemStore())
	_, err := l.Update(context.Background(), "alice", "missing", TransactionInput{Description: str("only")})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}
	if ve.Message != msgMissingUpdateFields {
		t.Errorf("Update() message = %q, want %q", ve.Message, msgMissingUpdateFields)
	}
}

func TestCreate_DateKeepsMillisecondPrecision(t *testing.T) {
	s := newMemStore()
	l := NewLedger(s)
	tx := mustCreate(t, l, "alice", input("Coffee", 3, "expense", "Food", "2024-01-01T10:00:00.123456789Z"))

	want := time.Date(2024, 1, 1, 10, 0, 0, 123000000, time.UTC)
	if !tx.Date.Equal(want) {
		t.Errorf("Create() Date = %v, want %v", tx.Date, want)
	}

	stored, err := s.FindByID(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !stored.Date.Equal(tx.Date) {
		t.Errorf("stored Date = %v, returned %v", stored.Date, tx.Date)
	}

	updated, err := l.Update(context.Background(), "alice", tx.ID, input("Tea", 3, "expense", "Food", "2024-01-02T08:00:00.987654321Z"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Date.Nanosecond() != 987000000 {
		t.Errorf("Update() Date = %v, want millisecond precision", updated.Date)
	}
}

func TestDelete(t *testing.T) {
	s := newMemStore()
	l := NewLedger(s)
	tx := mustCreate(t, l, "alice", input("Coffee", 5, "expense", "Food", "2024-01-01"))

	if _, err := l.Delete(context.Background(), "bob", tx.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Delete() by other user error = %v, want ErrNotAuthorized", err)
	}
	if _, ok := s.items[tx.ID]; !ok {
		t.Fatal("record removed by non-owner")
	}

	id, err := l.Delete(context.Background(), "alice", tx.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if id != tx.ID {
		t.Errorf("Delete() id = %q, want %q", id, tx.ID)
	}

	if _, err := l.Delete(context.Background(), "alice", tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStorageFailures(t *testing.T) {
	boom := errors.New("connection reset")
	s := newMemStore()
	l := NewLedger(s)
	tx := mustCreate(t, l, "alice", input("Coffee", 5, "expense", "Food", "2024-01-01"))
	s.fail = boom

	ctx := context.Background()
	_, listErr := l.List(ctx, "alice")
	_, createErr := l.Create(ctx, "alice", input("Tea", 3, "expense", "Food", "2024-01-01"))
	_, updateErr := l.Update(ctx, "alice", tx.ID, input("Tea", 3, "expense", "Food", "2024-01-01"))
	_, deleteErr := l.Delete(ctx, "alice", tx.ID)
	_, summaryErr := l.Summarize(ctx, "alice")

	testCases := []struct {
		err error
		op  string
	}{
		{listErr, opList},
		{createErr, opCreate},
		{updateErr, opUpdate},
		{deleteErr, opDelete},
		{summaryErr, opSummarize},
	}
	for _, tc := range testCases {
		var se *StorageError
		if !errors.As(tc.err, &se) {
			t.Errorf("error = %v, want StorageError", tc.err)
			continue
		}
		if se.Op != tc.op {
			t.Errorf("Op = %q, want %q", se.Op, tc.op)
		}
		if !errors.Is(tc.err, boom) {
			t.Errorf("error %v does not wrap cause", tc.err)
		}
	}
}

func TestSummarize_Scenario(t *testing.T) {
	l := NewLedger(newMemStore())
	mustCreate(t, l, "alice", input("Salary", 100, "income", "Work", "2024-01-01"))
	mustCreate(t, l, "alice", input("Groceries", 40, "expense", "Food", "2024-01-02"))
	mustCreate(t, l, "bob", input("Salary", 999, "income", "Work", "2024-01-01"))

	got, err := l.Summarize(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	want := Summary{TotalIncome: 100, TotalExpenses: 40, Balance: 60, TransactionCount: 2}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	l := NewLedger(newMemStore())
	got, err := l.Summarize(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != (Summary{}) {
		t.Errorf("Summarize() = %+v, want zero", got)
	}
}

func TestSummarize_Consistent(t *testing.T) {
	l := NewLedger(newMemStore())
	incomes, expenses := 0, 0
	for i := 0; i < 100; i++ {
		typ := gofakeit.RandomString([]string{"income", "expense"})
		if typ == "income" {
			incomes++
		} else {
			expenses++
		}
		amount := float64(gofakeit.IntRange(0, 100000)) / 100
		mustCreate(t, l, "alice", input(gofakeit.Word(), amount, typ, gofakeit.Word(), "2024-01-01"))
	}

	got, err := l.Summarize(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if math.Abs(got.Balance-(got.TotalIncome-got.TotalExpenses)) > 1e-6 {
		t.Errorf("balance %v != %v - %v", got.Balance, got.TotalIncome, got.TotalExpenses)
	}
	if got.TransactionCount != incomes+expenses {
		t.Errorf("TransactionCount = %d, want %d", got.TransactionCount, incomes+expenses)
	}
}

func TestSummarize_DecimalSums(t *testing.T) {
	items := []models.Transaction{
		{Type: models.Income, Amount: 0.1},
		{Type: models.Income, Amount: 0.2},
		{Type: models.Expense, Amount: -0.3},
	}
	got := summarize(items)
	if got.TotalIncome != 0.3 {
		t.Errorf("TotalIncome = %v, want 0.3", got.TotalIncome)
	}
	if got.Balance != 0 {
		t.Errorf("Balance = %v, want 0", got.Balance)
	}
}
