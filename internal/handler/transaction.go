package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LedgerService is the ledger as seen by HTTP handlers; *service.Ledger
// satisfies it.
type LedgerService interface {
	List(ctx context.Context, callerID string) ([]models.Transaction, error)
	Create(ctx context.Context, callerID string, in service.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, callerID, id string, in service.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, callerID, id string) (string, error)
	Summarize(ctx context.Context, callerID string) (service.Summary, error)
	MonthlyStats(ctx context.Context, callerID, month string) (service.MonthlyStats, error)
}

// TransactionHandler serves /transactions.
type TransactionHandler struct {
	Ledger LedgerService
	Log    zerolog.Logger
}

func NewTransactionHandler(ledger LedgerService, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{Ledger: ledger, Log: log}
}

// ---------- request ----------

// flexAmount accepts a JSON number or a numeric string.
type flexAmount float64

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("amount %q is not a number", s)
		}
		*a = flexAmount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("amount must be a number")
	}
	*a = flexAmount(f)
	return nil
}

// transactionReq is the create/update body. Pointers tell an absent field
// apart from a zero one.
type transactionReq struct {
	Description *string     `json:"description"`
	Amount      *flexAmount `json:"amount"`
	Type        *string     `json:"type"`
	Category    *string     `json:"category"`
	Date        *string     `json:"date"`
}

func (r transactionReq) input() service.TransactionInput {
	in := service.TransactionInput{
		Description: r.Description,
		Type:        r.Type,
		Category:    r.Category,
		Date:        r.Date,
	}
	if r.Amount != nil {
		amount := float64(*r.Amount)
		in.Amount = &amount
	}
	return in
}

// bindInput decodes the body, writing a 400 when it is not a JSON object of
// the expected shape.
func bindInput(c *gin.Context) (service.TransactionInput, bool) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body")
		return service.TransactionInput{}, false
	}
	return req.input(), true
}

func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "No token, authorization denied")
	}
	return id, ok
}

// ---------- endpoints ----------

// List handles GET /transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}

	items, err := h.Ledger.List(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, uid, err)
		return
	}
	if items == nil {
		items = []models.Transaction{}
	}

	util.OK(c, util.Response{
		"count":        len(items),
		"transactions": items,
	})
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	tx, err := h.Ledger.Create(c.Request.Context(), uid, in)
	if err != nil {
		h.fail(c, uid, err)
		return
	}

	h.Log.Info().Str("user_id", uid).Str("transaction_id", tx.ID).Msg("transaction created")
	util.Success(c, http.StatusCreated, util.Response{
		"message":     "Transaction created successfully",
		"transaction": tx,
	})
}

// Summary handles GET /transactions/summary.
func (h *TransactionHandler) Summary(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}

	s, err := h.Ledger.Summarize(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, uid, err)
		return
	}
	util.OK(c, util.Response{"summary": s})
}

// MonthlyStats handles GET /transactions/stats/monthly?month=YYYY-MM.
func (h *TransactionHandler) MonthlyStats(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}

	stats, err := h.Ledger.MonthlyStats(c.Request.Context(), uid, c.Query("month"))
	if err != nil {
		h.fail(c, uid, err)
		return
	}
	util.OK(c, util.Response{"stats": stats})
}

// Update handles PUT /transactions/:id.
func (h *TransactionHandler) Update(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	tx, err := h.Ledger.Update(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		h.fail(c, uid, err)
		return
	}

	h.Log.Info().Str("user_id", uid).Str("transaction_id", tx.ID).Msg("transaction updated")
	util.OK(c, util.Response{
		"message":     "Transaction updated successfully",
		"transaction": tx,
	})
}

// Delete handles DELETE /transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}

	id, err := h.Ledger.Delete(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.fail(c, uid, err)
		return
	}

	h.Log.Info().Str("user_id", uid).Str("transaction_id", id).Msg("transaction deleted")
	util.OK(c, util.Response{
		"message":       "Transaction deleted successfully",
		"transactionId": id,
	})
}

// fail maps ledger errors onto the response envelope. Storage causes are
// logged, never returned to the client.
func (h *TransactionHandler) fail(c *gin.Context, uid string, err error) {
	var ve *service.ValidationError
	var se *service.StorageError
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, service.ErrNotAuthorized):
		util.Error(c, http.StatusUnauthorized, "Not authorized")
	case errors.As(err, &se):
		h.Log.Error().Err(se.Err).Str("user_id", uid).Str("op", se.Op).Msg("ledger storage failure")
		util.Error(c, http.StatusInternalServerError, "Server error "+se.Op)
	default:
		h.Log.Error().Err(err).Str("user_id", uid).Msg("unexpected ledger error")
		util.Error(c, http.StatusInternalServerError, "Server error")
	}
	_ = c.Error(err)
}
