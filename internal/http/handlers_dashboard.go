package http

import (
	"net/http"
	"strings"

	applog "saldo/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r, s.now())
	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))

	summary, err := s.ledger.Dashboard.Build(r.Context(), ownerFrom(r.Context()).ID, month, categoryID)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(summary))
}
