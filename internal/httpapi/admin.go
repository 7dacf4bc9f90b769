package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/admin/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

const maxUploadBody = 10 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}

	sess, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    sess.Token,
		Path:     "/api/admin",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if tok := adminToken(r); tok != "" {
		s.auth.Logout(tok)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    "",
		Path:     "/api/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.Check(adminToken(r)); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		next(w, r)
	})
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	products, err := s.admin.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.admin.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	s.saveProduct(w, r, "", http.StatusCreated)
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.admin.Get(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	s.saveProduct(w, r, id, http.StatusOK)
}

func (s *Server) saveProduct(w http.ResponseWriter, r *http.Request, id string, status int) {
	in, img, cleanup, err := parseProductRequest(w, r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	defer cleanup()

	if id != "" {
		in.ID = id
	}

	p, err := s.admin.Save(r.Context(), in, img)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, status, p)
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.admin.Stats(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"orders": s.admin.Orders(r.Context())})
}

func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.admin.Overview(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

type productPayload struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	Tags        []string        `json:"tags"`
}

func (p productPayload) input() domain.ProductInput {
	return domain.ProductInput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    catalog.Category(strings.ToLower(strings.TrimSpace(p.Category))),
		Subcategory: p.Subcategory,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Featured:    p.Featured,
		Tags:        p.Tags,
	}
}

// parseProductRequest accepts a JSON body or a multipart form whose optional "image" file
// is uploaded on save.
func parseProductRequest(w http.ResponseWriter, r *http.Request) (domain.ProductInput, *domain.Image, func(), error) {
	noop := func() {}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		var p productPayload
		if err := decodeJSON(w, r, &p); err != nil {
			return domain.ProductInput{}, nil, noop, err
		}
		return p.input(), nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return domain.ProductInput{}, nil, noop, errors.Join(errBadRequest, err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	p := productPayload{
		ID:          r.FormValue("id"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Subcategory: r.FormValue("subcategory"),
		ImageURL:    r.FormValue("imageUrl"),
	}

	var err error
	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		if p.Price, err = decimal.NewFromString(v); err != nil {
			cleanup()
			return domain.ProductInput{}, nil, noop, fmt.Errorf("%w: price %q", errBadRequest, v)
		}
	}
	if v := strings.TrimSpace(r.FormValue("stock")); v != "" {
		if p.Stock, err = strconv.Atoi(v); err != nil {
			cleanup()
			return domain.ProductInput{}, nil, noop, fmt.Errorf("%w: stock %q", errBadRequest, v)
		}
	}
	if v := strings.TrimSpace(r.FormValue("featured")); v != "" {
		if p.Featured, err = strconv.ParseBool(v); err != nil {
			cleanup()
			return domain.ProductInput{}, nil, noop, fmt.Errorf("%w: featured %q", errBadRequest, v)
		}
	}
	if v := strings.TrimSpace(r.FormValue("tags")); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				p.Tags = append(p.Tags, t)
			}
		}
	}

	f, hdr, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return p.input(), nil, cleanup, nil
	case err != nil:
		cleanup()
		return domain.ProductInput{}, nil, noop, errors.Join(errBadRequest, err)
	}

	return p.input(), &domain.Image{Filename: hdr.Filename, Content: f}, func() {
		_ = f.Close()
		cleanup()
	}, nil
}
