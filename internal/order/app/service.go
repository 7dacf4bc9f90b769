package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

type Service struct {
	log    OrderLog
	logger *slog.Logger
	now    func() time.Time
}

func NewService(log OrderLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{log: log, logger: logger, now: time.Now}
}

// NewOrder builds the record for a confirmed checkout. The id is the creation time in Unix
// milliseconds; totals are derived from the item snapshots plus the given delivery fee.
func (s *Service) NewOrder(req domain.CreateOrderRequest) (domain.Order, error) {
	if req.DeliveryFee.IsNegative() {
		return domain.Order{}, fmt.Errorf("delivery fee cannot be negative, got %s", req.DeliveryFee)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("item %d: quantity must be positive, got %d", i, item.Quantity)
		}
		if item.Price.IsNegative() {
			return domain.Order{}, fmt.Errorf("item %d: price cannot be negative, got %s", i, item.Price)
		}

		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}

	now := s.now().UTC()

	return domain.Order{
		OrderID:     strconv.FormatInt(now.UnixMilli(), 10),
		Name:        req.Name,
		Phone:       req.Phone,
		Location:    req.Location,
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: req.DeliveryFee,
		Total:       subtotal.Add(req.DeliveryFee),
		Status:      domain.StatusNew,
		Notes:       req.Notes,
		CreatedAt:   now,
	}, nil
}

// ListOrders never fails: an unreachable or unconfigured log reads as an empty list.
func (s *Service) ListOrders(ctx context.Context) []domain.Order {
	if s.log == nil {
		return []domain.Order{}
	}

	orders, err := s.log.Fetch(ctx)
	if err != nil {
		s.logger.Warn("fetch orders failed", slog.Any("err", err))
		return []domain.Order{}
	}
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
