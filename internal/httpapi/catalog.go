package httpapi

import (
	"net/http"

	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		products []catalog.Product
		err      error
	)
	if q.Get("featured") == "true" {
		products, err = s.catalog.Featured(r.Context())
	} else {
		products, err = s.catalog.Filter(r.Context(), catalog.Category(q.Get("category")))
	}
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
