package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/admin/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	order "github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const overviewFeatured = 3

var whitespace = regexp.MustCompile(`\s+`)

// Service is the admin's editable copy of the catalog. Edits live in process memory only
// and never reach the catalog source.
type Service struct {
	source   CatalogSource
	uploader ImageUploader
	orders   OrderLister
	log      *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	seeded   bool
	products []catalog.Product
}

func NewService(source CatalogSource, uploader ImageUploader, orders OrderLister, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		source:   source,
		uploader: uploader,
		orders:   orders,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) ensureSeeded(ctx context.Context) error {
	s.mu.RLock()
	seeded := s.seeded
	s.mu.RUnlock()
	if seeded {
		return nil
	}

	products, err := s.source.Products(ctx)
	if err != nil {
		return fmt.Errorf("seed product mirror: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		s.products = products
		s.seeded = true
	}
	return nil
}

// List returns products whose name or category contains query, case-insensitively.
// An empty query matches everything.
func (s *Service) List(ctx context.Context, query string) ([]catalog.Product, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(string(p.Category)), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (catalog.Product, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return catalog.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.products[i], nil
	}
	return catalog.Product{}, ErrNotFound
}

// Save creates or updates a product. An image, when given, is uploaded first and its URL
// replaces in.ImageURL; an upload failure leaves the mirror untouched. New products go to
// the front of the list.
func (s *Service) Save(ctx context.Context, in domain.ProductInput, img *domain.Image) (catalog.Product, error) {
	if err := validateInput(in); err != nil {
		return catalog.Product{}, err
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return catalog.Product{}, err
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	if img != nil {
		if s.uploader == nil {
			return catalog.Product{}, ErrNotConfigured
		}
		url, err := s.uploader.Upload(ctx, img.Filename, img.Content)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("upload image: %w", err)
		}
		imageURL = url
	}

	p := catalog.Product{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Images:      []string{},
		Stock:       in.Stock,
		Featured:    in.Featured,
		Tags:        in.Tags,
	}
	if imageURL != "" {
		p.Images = []string{imageURL}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID != "" {
		if i := s.indexOf(p.ID); i >= 0 {
			s.products[i] = p
			s.log.Info("admin product updated", slog.String("product_id", p.ID))
			return p, nil
		}
	} else {
		p.ID = s.generateID(p.Name)
	}

	s.products = append([]catalog.Product{p}, s.products...)
	s.log.Info("admin product created", slog.String("product_id", p.ID))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.products = append(s.products[:i:i], s.products[i+1:]...)
	s.log.Info("admin product deleted", slog.String("product_id", id))
	return nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	products, err := s.List(ctx, "")
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(products), nil
}

// Orders is a manual refresh of the order log. It is empty when the log is unavailable.
func (s *Service) Orders(ctx context.Context) []order.Order {
	if s.orders == nil {
		return []order.Order{}
	}
	return s.orders.ListOrders(ctx)
}

// Overview loads the stats and the order list concurrently.
func (s *Service) Overview(ctx context.Context) (domain.Overview, error) {
	var (
		ov       domain.Overview
		products []catalog.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.List(gctx, "")
		return err
	})
	g.Go(func() error {
		ov.Orders = s.Orders(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Overview{}, err
	}

	ov.Stats = domain.ComputeStats(products)
	ov.Featured = make([]catalog.Product, 0, overviewFeatured)
	for _, p := range products {
		if len(ov.Featured) == overviewFeatured {
			break
		}
		if p.Featured {
			ov.Featured = append(ov.Featured, p)
		}
	}
	return ov, nil
}

func (s *Service) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) generateID(name string) string {
	base := strings.ToUpper(whitespace.ReplaceAllString(name, "-"))
	id := base + "-" + strconv.FormatInt(s.now().UnixMilli(), 10)
	for n := 2; s.indexOf(id) >= 0; n++ {
		id = base + "-" + strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + strconv.Itoa(n)
	}
	return id
}

func validateInput(in domain.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case !in.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return nil
}
