package static

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Categories []categoryRow `yaml:"categories"`
	Products   []productRow  `yaml:"products"`
}

type categoryRow struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type productRow struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Images      []string `yaml:"images"`
	Stock       int      `yaml:"stock"`
	Featured    bool     `yaml:"featured"`
	Tags        []string `yaml:"tags"`
}

// ProductRepo serves a catalog that is parsed once and never mutated.
type ProductRepo struct {
	products   []domain.Product
	categories []domain.CategoryInfo
}

// Load reads the catalog at path, or the embedded default catalog when path is empty.
func Load(path string) (*ProductRepo, error) {
	raw := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*ProductRepo, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	repo := &ProductRepo{
		products:   make([]domain.Product, 0, len(file.Products)),
		categories: make([]domain.CategoryInfo, 0, len(file.Categories)),
	}

	for _, c := range file.Categories {
		cat := domain.Category(strings.ToLower(c.ID))
		if !cat.Valid() {
			return nil, fmt.Errorf("category %q: unknown id", c.ID)
		}
		repo.categories = append(repo.categories, domain.CategoryInfo{
			ID:          cat,
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
		})
	}

	seen := make(map[string]struct{}, len(file.Products))
	for i, row := range file.Products {
		p, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, row.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		repo.products = append(repo.products, p)
	}

	return repo, nil
}

func (r productRow) toDomain() (domain.Product, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return domain.Product{}, fmt.Errorf("id is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return domain.Product{}, fmt.Errorf("price %q: %w", r.Price, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("price must not be negative")
	}
	if r.Stock < 0 {
		return domain.Product{}, fmt.Errorf("stock must not be negative")
	}

	cat := domain.Category(strings.ToLower(r.Category))
	if !cat.Valid() {
		return domain.Product{}, fmt.Errorf("unknown category %q", r.Category)
	}

	return domain.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		Category:    cat,
		Subcategory: r.Subcategory,
		Images:      r.Images,
		Stock:       r.Stock,
		Featured:    r.Featured,
		Tags:        r.Tags,
	}, nil
}

// List returns a copy so callers cannot reorder the shared catalog.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *ProductRepo) Categories(ctx context.Context) ([]domain.CategoryInfo, error) {
	out := make([]domain.CategoryInfo, len(r.categories))
	copy(out, r.categories)
	return out, nil
}
