package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeaders = []string{"Date", "Description", "Category", "Type", "Amount"}

func exportRow(t models.Transaction) []string {
	return []string{
		t.Date.UTC().Format("2006-01-02"),
		t.Description,
		t.Category,
		string(t.Type),
		strconv.FormatFloat(t.Amount, 'f', 2, 64),
	}
}

func exportFilename(ext string) string {
	return fmt.Sprintf("attachment; filename=\"transactions_%s.%s\"", time.Now().Format("20060102"), ext)
}

// loadForExport fetches the caller's transactions, newest first.
func (h *TransactionHandler) loadForExport(c *gin.Context) (string, []models.Transaction, bool) {
	uid, ok := callerID(c)
	if !ok {
		return "", nil, false
	}
	items, err := h.Ledger.List(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, uid, err)
		return "", nil, false
	}
	return uid, items, true
}

// ExportCSV streams the caller's transactions as CSV.
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	uid, items, ok := h.loadForExport(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportFilename("csv"))
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for _, t := range items {
		_ = w.Write(exportRow(t))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.Log.Warn().Err(err).Str("user_id", uid).Msg("csv export interrupted")
	}
}

// ExportXLSX returns the caller's transactions as a single-sheet workbook.
func (h *TransactionHandler) ExportXLSX(c *gin.Context) {
	uid, items, ok := h.loadForExport(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(items)
	if err != nil {
		h.Log.Error().Err(err).Str("user_id", uid).Msg("build xlsx")
		util.Error(c, http.StatusInternalServerError, "Server error exporting transactions")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportFilename("xlsx"))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn().Err(err).Str("user_id", uid).Msg("xlsx export interrupted")
	}
}

func buildWorkbook(items []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for idx, t := range items {
		row := idx + 2
		values := []interface{}{
			t.Date.UTC().Format("2006-01-02"),
			t.Description,
			t.Category,
			string(t.Type),
			t.Amount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "B", 30)
	_ = f.SetColWidth(exportSheet, "C", "C", 15)
	_ = f.SetColWidth(exportSheet, "D", "D", 10)
	_ = f.SetColWidth(exportSheet, "E", "E", 12)
	return f, nil
}
