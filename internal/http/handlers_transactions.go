package http

import (
	"net/http"
	"strings"

	applog "saldo/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := transactionFilter(r, s.now())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	txs, err := s.ledger.Transactions.List(r.Context(), ownerFrom(r.Context()).ID, f)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactions(txs))
}

// handleCreateTransactions always answers with the list of stored rows: one
// row for a plain entry, one per month for a recurring one.
func (s *Server) handleCreateTransactions(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.toNewTransaction()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	rows, err := s.ledger.Transactions.Create(r.Context(), ownerFrom(r.Context()).ID, in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactions(rows))
}

// handleDeleteTransactions removes a whole recurrence group when groupId is
// given, otherwise the single row named by id.
func (s *Server) handleDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r.Context()).ID
	q := r.URL.Query()

	if groupID := strings.TrimSpace(q.Get("groupId")); groupID != "" {
		n, err := s.ledger.Transactions.DeleteGroup(r.Context(), ownerID, groupID)
		if err != nil {
			writeError(w, r, applog.OpDelete, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true, Count: n})
		return
	}

	if err := s.ledger.Transactions.Delete(r.Context(), ownerID, q.Get("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
