package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"saldo/internal/core"
	applog "saldo/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK    bool  `json:"ok"`
	Count int64 `json:"count,omitempty"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type transactionResponse struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Amount            string `json:"amount"`
	Date              string `json:"date"`
	Description       string `json:"description,omitempty"`
	CategoryID        string `json:"categoryId,omitempty"`
	IsCreditCard      bool   `json:"isCreditCard"`
	CardLabel         string `json:"cardLabel,omitempty"`
	RecurrenceGroupID string `json:"recurrenceGroupId,omitempty"`
	RecurrenceCount   int    `json:"recurrenceCount,omitempty"`
}

type totalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type monthTotalsResponse struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type categoryAmountResponse struct {
	CategoryID string `json:"categoryId,omitempty"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
}

type monthAmountResponse struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

type summaryResponse struct {
	Month         string                   `json:"month"`
	CategoryID    string                   `json:"categoryId,omitempty"`
	Totals        totalsResponse           `json:"totals"`
	Trend         []monthTotalsResponse    `json:"trend"`
	Breakdown     []categoryAmountResponse `json:"breakdown"`
	CategoryTrend []monthAmountResponse    `json:"categoryTrend"`
}

func toCategories(cats []core.Category) []categoryResponse {
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	return out
}

func toTransactions(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = transactionResponse{
			ID:                t.ID,
			Type:              t.Kind.String(),
			Amount:            core.FormatAmount(t.Amount),
			Date:              t.Date.String(),
			Description:       t.Description,
			CategoryID:        t.CategoryID,
			IsCreditCard:      t.IsCreditCard,
			CardLabel:         t.CardLabel,
			RecurrenceGroupID: t.RecurrenceGroupID,
			RecurrenceCount:   t.RecurrenceCount,
		}
	}
	return out
}

func toSummary(s core.Summary) summaryResponse {
	out := summaryResponse{
		Month:      s.Month,
		CategoryID: s.CategoryID,
		Totals: totalsResponse{
			Income:  core.FormatAmount(s.Totals.Income),
			Expense: core.FormatAmount(s.Totals.Expense),
			Balance: core.FormatAmount(s.Totals.Balance),
		},
		Trend:         make([]monthTotalsResponse, len(s.Trend)),
		Breakdown:     make([]categoryAmountResponse, len(s.Breakdown)),
		CategoryTrend: make([]monthAmountResponse, len(s.CategoryTrend)),
	}
	for i, m := range s.Trend {
		out.Trend[i] = monthTotalsResponse{
			Month:   m.Month,
			Income:  core.FormatAmount(m.Income),
			Expense: core.FormatAmount(m.Expense),
		}
	}
	for i, c := range s.Breakdown {
		out.Breakdown[i] = categoryAmountResponse{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Amount:     core.FormatAmount(c.Amount),
		}
	}
	for i, m := range s.CategoryTrend {
		out.CategoryTrend[i] = monthAmountResponse{Month: m.Month, Amount: core.FormatAmount(m.Amount)}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": msg}. Server errors are logged and their
// detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
