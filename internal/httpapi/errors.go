package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	adminapp "github.com/dwikikusuma/boutique-storefront/internal/admin/app"
	"github.com/dwikikusuma/boutique-storefront/internal/admin/infra/cloudinary"
	cartapp "github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/boutique-storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
	checkout "github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// httpStatusFromErr maps service errors onto a status, a stable code and a client-safe
// message. Unknown errors are reported as internal without detail.
func httpStatusFromErr(err error) (int, string, string) {
	var verr checkout.ValidationErrors
	var upErr *cloudinary.UploadError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed"
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, adminapp.ErrInvalidInput),
		errors.Is(err, cartapp.ErrInvalidSession):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, catalogapp.ErrNotFound),
		errors.Is(err, adminapp.ErrNotFound),
		errors.Is(err, checkoutapp.ErrNoCheckout):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, checkoutapp.ErrInvalidStep),
		errors.Is(err, checkoutapp.ErrSubmitInProgress):
		return http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, adminapp.ErrInvalidCredentials):
		return http.StatusUnauthorized, "UNAUTHENTICATED", "invalid credentials"
	case errors.Is(err, adminapp.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized"
	case errors.Is(err, adminapp.ErrNotConfigured):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "image upload is not configured"
	case errors.As(err, &upErr):
		return http.StatusBadGateway, "UPSTREAM", upErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code, msg := httpStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("err", err),
		)
	}

	body := errorBody{Error: msg, Code: code}
	var verr checkout.ValidationErrors
	if errors.As(err, &verr) {
		body.Fields = verr
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
