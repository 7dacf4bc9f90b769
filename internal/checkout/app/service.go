package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
)

var (
	ErrNoCheckout       = errors.New("no checkout in progress")
	ErrInvalidStep      = errors.New("operation not allowed in current checkout step")
	ErrSubmitInProgress = errors.New("checkout submission already in progress")
)

// View is what the buyer sees of a checkout. Quote and Message are derived from the live
// cart on every call.
type View struct {
	Step    domain.Step             `json:"step"`
	Form    domain.FormData         `json:"form"`
	Errors  domain.ValidationErrors `json:"errors,omitempty"`
	Quote   domain.Quote            `json:"quote"`
	Message string                  `json:"message,omitempty"`
}

type Receipt struct {
	OrderID string       `json:"orderId"`
	ChatURL string       `json:"chatUrl"`
	Message string       `json:"message"`
	Quote   domain.Quote `json:"quote"`
}

// sideEffectTimeout bounds the work done after the chat link is produced. That work is detached
// from the caller's context: once the hand-off exists the order and cart clear must happen.
const sideEffectTimeout = 10 * time.Second

type flow struct {
	mu         sync.Mutex
	state      domain.Flow
	submitting bool
}

type Service struct {
	cart   CartPort
	orders OrderPlacer
	opener Opener
	store  StoreInfo
	log    *slog.Logger

	mu    sync.Mutex
	flows map[string]*flow
}

func NewService(cart CartPort, orders OrderPlacer, opener Opener, store StoreInfo, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cart:   cart,
		orders: orders,
		opener: opener,
		store:  store,
		log:    log,
		flows:  make(map[string]*flow),
	}
}

func (s *Service) prefill() domain.FormData {
	return domain.FormData{Phone: s.store.Phone, Location: s.store.Location}
}

func (s *Service) lookup(sessionID string) (*flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flows[sessionID]
	if !ok {
		return nil, ErrNoCheckout
	}
	return f, nil
}

func (s *Service) drop(sessionID string, f *flow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flows[sessionID] == f {
		delete(s.flows, sessionID)
	}
}

// Begin starts a fresh checkout at the form step, replacing any unfinished one.
func (s *Service) Begin(ctx context.Context, sessionID string) (View, error) {
	s.mu.Lock()
	if cur, ok := s.flows[sessionID]; ok {
		cur.mu.Lock()
		busy := cur.submitting
		cur.mu.Unlock()
		if busy {
			s.mu.Unlock()
			return View{}, ErrSubmitInProgress
		}
	}
	f := &flow{state: domain.NewFlow(s.prefill())}
	s.flows[sessionID] = f
	s.mu.Unlock()

	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	return s.view(ctx, sessionID, state)
}

func (s *Service) State(ctx context.Context, sessionID string) (View, error) {
	f, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}

	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	return s.view(ctx, sessionID, state)
}

// Preview validates the form and moves to the preview step. On validation failure the
// flow stays at the form step with the entered values and the returned error is a
// domain.ValidationErrors.
func (s *Service) Preview(ctx context.Context, sessionID string, form domain.FormData) (View, error) {
	f, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return View{}, ErrSubmitInProgress
	}
	if f.state.Step != domain.StepForm {
		f.mu.Unlock()
		return View{}, fmt.Errorf("preview from %s: %w", f.state.Step, ErrInvalidStep)
	}

	verr := domain.Validate(form)
	if verr != nil {
		f.state.Form = form
		f.state.Errors, _ = verr.(domain.ValidationErrors)
	} else {
		f.state.Form = form.Trimmed()
		f.state.Errors = nil
		f.state.Step = domain.StepPreview
	}
	state := f.state
	f.mu.Unlock()

	v, err := s.view(ctx, sessionID, state)
	if err != nil {
		return View{}, err
	}
	return v, verr
}

// Back returns from preview to form keeping the values, or closes the checkout from the
// form step.
func (s *Service) Back(ctx context.Context, sessionID string) (View, error) {
	f, err := s.lookup(sessionID)
	if err != nil {
		return View{}, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return View{}, ErrSubmitInProgress
	}

	switch f.state.Step {
	case domain.StepPreview:
		f.state.Step = domain.StepForm
		state := f.state
		f.mu.Unlock()
		return s.view(ctx, sessionID, state)
	case domain.StepForm:
		f.state.Step = domain.StepClosed
		state := f.state
		f.mu.Unlock()
		s.drop(sessionID, f)
		return View{Step: state.Step, Form: state.Form}, nil
	default:
		step := f.state.Step
		f.mu.Unlock()
		return View{}, fmt.Errorf("back from %s: %w", step, ErrInvalidStep)
	}
}

// Confirm submits the previewed order. Only one submission per checkout runs at a time.
// Once the deep link is built the checkout counts as sent: order logging, opening the
// link and clearing the cart only log their failures.
func (s *Service) Confirm(ctx context.Context, sessionID string) (Receipt, error) {
	f, err := s.lookup(sessionID)
	if err != nil {
		return Receipt{}, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Receipt{}, ErrSubmitInProgress
	}
	if f.state.Step != domain.StepPreview {
		step := f.state.Step
		f.mu.Unlock()
		return Receipt{}, fmt.Errorf("confirm from %s: %w", step, ErrInvalidStep)
	}
	f.submitting = true
	form := f.state.Form
	f.mu.Unlock()

	receipt, err := s.submit(ctx, sessionID, form)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.state.Step = domain.StepSent
	}
	f.mu.Unlock()

	if err != nil {
		return Receipt{}, err
	}
	s.drop(sessionID, f)
	return receipt, nil
}

func (s *Service) submit(ctx context.Context, sessionID string, form domain.FormData) (Receipt, error) {
	quote, err := s.quote(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}

	msg := domain.RenderMessage(s.store.Name, form, quote)
	link := domain.DeepLink(s.store.ChatBase, s.store.PhonePlain, msg)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	var orderID string
	if s.orders != nil {
		orderID, err = s.orders.PlaceOrder(ctx, form, quote)
		if err != nil {
			s.log.Error("place order failed", slog.String("session_id", sessionID), slog.Any("err", err))
		}
	}

	if s.opener != nil {
		if err := s.opener.Open(ctx, sessionID, link); err != nil {
			s.log.Error("open chat link failed", slog.String("session_id", sessionID), slog.Any("err", err))
		}
	}

	if err := s.cart.ClearAndClose(ctx, sessionID); err != nil {
		s.log.Error("clear cart after checkout failed", slog.String("session_id", sessionID), slog.Any("err", err))
	}

	s.log.Info("checkout sent",
		slog.String("session_id", sessionID),
		slog.String("order_id", orderID),
		slog.Int("lines", len(quote.Lines)),
		slog.String("total", quote.Total.String()),
	)

	return Receipt{OrderID: orderID, ChatURL: link, Message: msg, Quote: quote}, nil
}

func (s *Service) quote(ctx context.Context, sessionID string) (domain.Quote, error) {
	lines, err := s.cart.Lines(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("read cart: %w", err)
	}

	ql := make([]domain.QuoteLine, 0, len(lines))
	for _, l := range lines {
		ql = append(ql, domain.QuoteLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return domain.NewQuote(ql), nil
}

func (s *Service) view(ctx context.Context, sessionID string, state domain.Flow) (View, error) {
	quote, err := s.quote(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	v := View{Step: state.Step, Form: state.Form, Errors: state.Errors, Quote: quote}
	if state.Step == domain.StepPreview {
		v.Message = domain.RenderMessage(s.store.Name, state.Form, quote)
	}
	return v, nil
}
