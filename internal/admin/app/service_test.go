package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/admin/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	order "github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"github.com/dwikikusuma/boutique-storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products []catalog.Product
	err      error
	calls    int
}

func (f *fakeSource) Products(context.Context) ([]catalog.Product, error) {
	f.calls++
	out := make([]catalog.Product, len(f.products))
	copy(out, f.products)
	return out, f.err
}

type fakeUploader struct {
	url  string
	err  error
	body string
}

func (f *fakeUploader) Upload(_ context.Context, _ string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.body = string(b)
	return f.url, f.err
}

type fakeOrders struct{ orders []order.Order }

func (f fakeOrders) ListOrders(context.Context) []order.Order { return f.orders }

func seed() *fakeSource {
	return &fakeSource{products: []catalog.Product{
		{ID: "JW-001", Name: "Gold Hoop Earrings", Category: catalog.CategoryJewelry, Price: decimal.NewFromInt(1500), Stock: 10, Featured: true},
		{ID: "BG-003", Name: "Satin Scarf", Category: catalog.CategoryBags, Price: decimal.NewFromInt(2500), Stock: 3},
		{ID: "MK-001", Name: "Matte Lipstick", Category: catalog.CategoryMakeup, Price: decimal.NewFromInt(800), Stock: 0, Featured: true},
	}}
}

func newMirror(src *fakeSource, up ImageUploader, orders OrderLister) *Service {
	svc := NewService(src, up, orders, logger.Discard())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestListSearch(t *testing.T) {
	ctx := context.Background()
	src := seed()
	svc := newMirror(src, nil, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"JW-001", "BG-003", "MK-001"}},
		{"SCARF", []string{"BG-003"}},
		{"jewel", []string{"JW-001"}},
		{"make", []string{"MK-001"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := svc.List(ctx, tt.query)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Equal(t, 1, src.calls)
}

func TestSeedError(t *testing.T) {
	svc := newMirror(&fakeSource{err: errors.New("catalog missing")}, nil, nil)

	_, err := svc.List(context.Background(), "")
	assert.Error(t, err)
}

func TestSaveCreatesAtFront(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, nil)

	p, err := svc.Save(ctx, domain.ProductInput{
		Name:     "Silk  Head Wrap",
		Price:    decimal.NewFromInt(1200),
		Category: catalog.CategoryBags,
		ImageURL: "https://img.example/wrap.jpg",
		Stock:    5,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "SILK-HEAD-WRAP-1700000000000", p.ID)
	assert.Equal(t, []string{"https://img.example/wrap.jpg"}, p.Images)
	assert.NotNil(t, p.Tags)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, p.ID, all[0].ID)
}

func TestSaveGeneratesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, nil)
	in := domain.ProductInput{Name: "Tote", Category: catalog.CategoryBags}

	a, err := svc.Save(ctx, in, nil)
	require.NoError(t, err)
	b, err := svc.Save(ctx, in, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSaveUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, nil)

	_, err := svc.Save(ctx, domain.ProductInput{
		ID:       "BG-003",
		Name:     "Satin Scarf",
		Price:    decimal.NewFromInt(2700),
		Category: catalog.CategoryBags,
		Stock:    7,
	}, nil)
	require.NoError(t, err)

	all, _ := svc.List(ctx, "")
	require.Len(t, all, 3)
	assert.Equal(t, "BG-003", all[1].ID)
	assert.True(t, all[1].Price.Equal(decimal.NewFromInt(2700)))
	assert.Equal(t, 7, all[1].Stock)
	assert.Empty(t, all[1].Images)
}

func TestSaveWithImage(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{url: "https://res.example/new.jpg"}
	svc := newMirror(seed(), up, nil)

	p, err := svc.Save(ctx, domain.ProductInput{
		Name:     "Clutch",
		Category: catalog.CategoryBags,
		ImageURL: "https://old.example/x.jpg",
	}, &domain.Image{Filename: "new.jpg", Content: strings.NewReader("pixels")})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://res.example/new.jpg"}, p.Images)
	assert.Equal(t, "pixels", up.body)
}

func TestSaveUploadFailureLeavesMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("upload error", func(t *testing.T) {
		svc := newMirror(seed(), &fakeUploader{err: ErrNotConfigured}, nil)
		_, err := svc.Save(ctx, domain.ProductInput{Name: "Clutch", Category: catalog.CategoryBags},
			&domain.Image{Filename: "a.jpg", Content: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrNotConfigured)

		all, _ := svc.List(ctx, "")
		assert.Len(t, all, 3)
	})

	t.Run("no uploader", func(t *testing.T) {
		svc := newMirror(seed(), nil, nil)
		_, err := svc.Save(ctx, domain.ProductInput{Name: "Clutch", Category: catalog.CategoryBags},
			&domain.Image{Filename: "a.jpg", Content: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestSaveValidation(t *testing.T) {
	svc := newMirror(seed(), nil, nil)

	tests := []struct {
		name string
		in   domain.ProductInput
	}{
		{"blank name", domain.ProductInput{Name: "  ", Category: catalog.CategoryBags}},
		{"negative price", domain.ProductInput{Name: "x", Category: catalog.CategoryBags, Price: decimal.NewFromInt(-1)}},
		{"bad category", domain.ProductInput{Name: "x", Category: "shoes"}},
		{"negative stock", domain.ProductInput{Name: "x", Category: catalog.CategoryBags, Stock: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tt.in, nil)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, nil)

	p, err := svc.Get(ctx, "BG-003")
	require.NoError(t, err)
	assert.Equal(t, "Satin Scarf", p.Name)

	require.NoError(t, svc.Delete(ctx, "BG-003"))
	_, err = svc.Get(ctx, "BG-003")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "BG-003"), ErrNotFound)

	all, _ := svc.List(ctx, "")
	assert.Len(t, all, 2)
}

func TestStatsOverMirror(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, nil)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalProducts)
	assert.Equal(t, 2, st.LowStock)
	assert.Equal(t, 2, st.Featured)
	assert.True(t, st.TotalValue.Equal(decimal.NewFromInt(15000+7500)))

	require.NoError(t, svc.Delete(ctx, "JW-001"))
	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalProducts)
	assert.Equal(t, 1, st.Featured)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	svc := newMirror(seed(), nil, fakeOrders{orders: []order.Order{{OrderID: "1"}}})

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ov.Stats.TotalProducts)
	require.Len(t, ov.Orders, 1)
	require.Len(t, ov.Featured, 2)
	assert.Equal(t, "JW-001", ov.Featured[0].ID)
}

func TestOrdersWithoutLog(t *testing.T) {
	svc := newMirror(seed(), nil, nil)
	got := svc.Orders(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
