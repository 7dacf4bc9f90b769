package httpapi

import (
	"fmt"
	"net/http"

	cart "github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	checkout "github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
	"github.com/shopspring/decimal"
)

type cartLine struct {
	cart.CartItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartView struct {
	Items       []cartLine      `json:"items"`
	IsOpen      bool            `json:"isOpen"`
	TotalItems  int             `json:"totalItems"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

func toCartView(c cart.Cart) cartView {
	lines := make([]cartLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, cartLine{CartItem: it, LineTotal: it.LineTotal()})
	}

	total := c.TotalPrice()
	fee := checkout.DeliveryFee(total)
	return cartView{
		Items:       lines,
		IsOpen:      c.IsOpen,
		TotalItems:  c.TotalItems(),
		TotalPrice:  total,
		DeliveryFee: fee,
		GrandTotal:  total.Add(fee),
	}
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, c cart.Cart, err error) {
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.GetCart(r.Context(), sessionID(r.Context()))
	s.writeCart(w, r, c, err)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.ClearCart(r.Context(), sessionID(r.Context()))
	s.writeCart(w, r, c, err)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

// handleAddItem resolves the product from the catalog so the cart stores its current
// price and details.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, r, s.log, fmt.Errorf("%w: productId is required", errBadRequest))
		return
	}

	p, err := s.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	c, err := s.carts.AddItem(r.Context(), sessionID(r.Context()), p)
	s.writeCart(w, r, c, err)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, s.log, fmt.Errorf("%w: quantity is required", errBadRequest))
		return
	}

	c, err := s.carts.UpdateQuantity(r.Context(), sessionID(r.Context()), r.PathValue("id"), *req.Quantity)
	s.writeCart(w, r, c, err)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.RemoveItem(r.Context(), sessionID(r.Context()), r.PathValue("id"))
	s.writeCart(w, r, c, err)
}

func (s *Server) handleOpenCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.OpenCart(r.Context(), sessionID(r.Context()))
	s.writeCart(w, r, c, err)
}

func (s *Server) handleCloseCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.CloseCart(r.Context(), sessionID(r.Context()))
	s.writeCart(w, r, c, err)
}
