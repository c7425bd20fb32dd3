package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"saldo/internal/core"
)

const maxBodyBytes = 1 << 16

// flexString accepts a JSON string or a bare JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createTransactionRequest struct {
	Type            string     `json:"type"`
	Amount          flexString `json:"amount"`
	Date            string     `json:"date"`
	Description     string     `json:"description"`
	CategoryID      string     `json:"categoryId"`
	IsCreditCard    bool       `json:"isCreditCard"`
	CardLabel       string     `json:"cardLabel"`
	IsRecurring     bool       `json:"isRecurring"`
	RecurrenceCount flexString `json:"recurrenceCount"`
}

func (req createTransactionRequest) toNewTransaction() (core.NewTransaction, error) {
	count := 0
	if s := strings.TrimSpace(string(req.RecurrenceCount)); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return core.NewTransaction{}, fmt.Errorf("%w: recurrenceCount %q is not an integer", core.ErrInvalidInput, s)
		}
		count = n
	}
	return core.NewTransaction{
		Kind:            req.Type,
		Amount:          string(req.Amount),
		Date:            req.Date,
		Description:     sanitizeInput(req.Description),
		CategoryID:      strings.TrimSpace(req.CategoryID),
		IsCreditCard:    req.IsCreditCard,
		CardLabel:       sanitizeInput(req.CardLabel),
		IsRecurring:     req.IsRecurring,
		RecurrenceCount: count,
	}, nil
}

// decodeJSON reads a bounded JSON body into dst. Malformed bodies are
// reported as invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body too large", core.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// monthParam returns the month query parameter, defaulting to the month of now.
func monthParam(r *http.Request, now time.Time) string {
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		return v
	}
	return core.CurrentMonth(now)
}

func boolParam(r *http.Request, key string) bool {
	return strings.TrimSpace(r.URL.Query().Get(key)) == "true"
}

// transactionFilter builds the list filter from the query string.
func transactionFilter(r *http.Request, now time.Time) (core.TransactionFilter, error) {
	w, err := core.MonthWindow(monthParam(r, now))
	if err != nil {
		return core.TransactionFilter{}, err
	}
	return core.TransactionFilter{
		Window:        w,
		CategoryID:    strings.TrimSpace(r.URL.Query().Get("categoryId")),
		CreditOnly:    boolParam(r, "isCreditCard"),
		RecurringOnly: boolParam(r, "isRecurring"),
	}, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
