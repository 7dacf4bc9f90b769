package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// Filter returns the products of one category, or all of them for domain.CategoryAll,
// in catalog order.
func (s *Service) Filter(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	category = domain.Category(strings.ToLower(strings.TrimSpace(string(category))))
	if category == "" {
		category = domain.CategoryAll
	}
	if category != domain.CategoryAll && !category.Valid() {
		return nil, ErrInvalidInput
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if category == domain.CategoryAll {
		return products, nil
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrNotFound
}

func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Product
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.CategoryInfo, error) {
	return s.repo.Categories(ctx)
}

// Products returns the full catalog. The admin mirror is seeded from it.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}
