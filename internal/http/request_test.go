package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"35,90"`, "35,90"},
		{`35.9`, "35.9"},
		{`1800`, "1800"},
		{`null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f flexString
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, string(f))
		})
	}

	var f flexString
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestToNewTransaction(t *testing.T) {
	req := createTransactionRequest{
		Type:            "income",
		Amount:          "10",
		Date:            "2026-03-01",
		Description:     "  salário\x00 ",
		IsRecurring:     true,
		RecurrenceCount: " 12 ",
	}
	in, err := req.toNewTransaction()
	require.NoError(t, err)
	assert.Equal(t, 12, in.RecurrenceCount)
	assert.Equal(t, "salário", in.Description)
	assert.Equal(t, "income", in.Kind)

	req.RecurrenceCount = "1.5"
	_, err = req.toNewTransaction()
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestTransactionFilter(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	r := httptest.NewRequest(http.MethodGet, "/api/transactions?categoryId=c1&isCreditCard=true&isRecurring=1", nil)
	f, err := transactionFilter(r, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", f.Window.Month())
	assert.Equal(t, "c1", f.CategoryID)
	assert.True(t, f.CreditOnly)
	assert.False(t, f.RecurringOnly)

	r = httptest.NewRequest(http.MethodGet, "/api/transactions?month=2025-12", nil)
	f, err = transactionFilter(r, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-12", f.Window.Month())

	r = httptest.NewRequest(http.MethodGet, "/api/transactions?month=2025-13", nil)
	_, err = transactionFilter(r, now)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(core.ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, statusFor(core.ErrDuplicateName))
	assert.Equal(t, http.StatusNotFound, statusFor(core.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.stop()
	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"))

	clock = clock.Add(61 * time.Second)
	assert.True(t, rl.allow("1.2.3.4"))

	clock = clock.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.9:1234", "", "203.0.113.9"},
		{"untrusted proxy ignored", "203.0.113.9:1234", "198.51.100.1", "203.0.113.9"},
		{"trusted proxy", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "198.51.100.1"},
		{"trusted proxy bad header", "10.0.0.2:80", "garbage", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}
