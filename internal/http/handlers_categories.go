package http

import (
	"net/http"

	applog "saldo/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories.List(r.Context(), ownerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategories(cats))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	c, err := s.ledger.Categories.Create(r.Context(), ownerFrom(r.Context()).ID, sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := s.ledger.Categories.Delete(r.Context(), ownerFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
