package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/services"
)

// AuditController serves read-only views over the trade audit trail
type AuditController struct {
	services *services.Services
}

// NewAuditController creates a new audit controller
func NewAuditController(srvs *services.Services) *AuditController {
	return &AuditController{services: srvs}
}

func rangeFromQuery(r *http.Request) models.DateRange {
	return models.DateRange{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
}

// GetForEntry handles GET /api/trade-logs/entry/{entryId}
func (c *AuditController) GetForEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "entryId"), 10, 64)
	if err != nil || entryID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid trade entry ID")
		return
	}

	logs, err := c.services.Audit.GetLogsForEntry(r.Context(), entryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []models.TradeEntryLog{}
	}

	respondJSON(w, http.StatusOK, logs)
}

// GetInRange handles GET /api/trade-logs?from=YYYY-MM-DD&to=YYYY-MM-DD
func (c *AuditController) GetInRange(w http.ResponseWriter, r *http.Request) {
	logs, err := c.services.Audit.GetLogsInRange(r.Context(), rangeFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []models.TradeEntryLog{}
	}

	respondJSON(w, http.StatusOK, logs)
}

// Count handles GET /api/trade-logs/count?from=YYYY-MM-DD&to=YYYY-MM-DD
func (c *AuditController) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.services.Audit.CountInRange(r.Context(), rangeFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Download handles GET /api/trade-logs/download?from=YYYY-MM-DD&to=YYYY-MM-DD
// and streams the matching rows as CSV for compliance review.
func (c *AuditController) Download(w http.ResponseWriter, r *http.Request) {
	dateRange := rangeFromQuery(r)
	if errs := dateRange.Validate(); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, errs[0])
		return
	}

	filename := fmt.Sprintf("trade_logs_%s_%s.csv", dateRange.From, dateRange.To)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := c.services.Audit.WriteCSV(r.Context(), w, dateRange); err != nil {
		// The CSV response has already started; a JSON error body can no
		// longer be sent. Log and abort the connection so the client sees
		// a truncated download instead of a corrupt file.
		log.Printf("failed to stream audit CSV export: %v", err)
		panic(http.ErrAbortHandler)
	}
}
