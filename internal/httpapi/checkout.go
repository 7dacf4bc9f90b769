package httpapi

import (
	"errors"
	"net/http"

	checkout "github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
)

func (s *Server) handleBeginCheckout(w http.ResponseWriter, r *http.Request) {
	v, err := s.checkout.Begin(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleCheckoutState(w http.ResponseWriter, r *http.Request) {
	v, err := s.checkout.State(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handlePreview answers 422 with the per-field messages when the form is rejected.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var form checkout.FormData
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, s.log, err)
		return
	}

	v, err := s.checkout.Preview(r.Context(), sessionID(r.Context()), form)
	var verr checkout.ValidationErrors
	if err != nil && !errors.As(err, &verr) {
		writeError(w, r, s.log, err)
		return
	}
	if verr != nil {
		writeError(w, r, s.log, verr)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	v, err := s.checkout.Back(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.checkout.Confirm(r.Context(), sessionID(r.Context()))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
