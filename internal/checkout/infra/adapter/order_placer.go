package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
	"github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/boutique-storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/boutique-storefront/internal/order/domain"
)

// OrderDispatcher builds the order record and hands it to the background dispatcher.
type OrderDispatcher struct {
	orders     *orderapp.Service
	dispatcher *orderapp.Dispatcher
}

var _ checkoutapp.OrderPlacer = (*OrderDispatcher)(nil)

func NewOrderDispatcher(orders *orderapp.Service, dispatcher *orderapp.Dispatcher) *OrderDispatcher {
	return &OrderDispatcher{orders: orders, dispatcher: dispatcher}
}

func (d *OrderDispatcher) PlaceOrder(_ context.Context, form domain.FormData, quote domain.Quote) (string, error) {
	items := make([]orderdomain.OrderItem, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		items = append(items, orderdomain.OrderItem{
			ID:       l.ProductID,
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.UnitPrice,
		})
	}

	order, err := d.orders.NewOrder(orderdomain.CreateOrderRequest{
		Name:        form.Name,
		Phone:       form.Phone,
		Location:    form.Location,
		DeliveryFee: quote.DeliveryFee,
		Items:       items,
	})
	if err != nil {
		return "", err
	}

	d.dispatcher.Dispatch(order)
	return order.OrderID, nil
}
