package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
	"github.com/ecstudy/shopctl/internal/session"
)

// CheckoutState is everything the submit gate needs: the cart lines, the
// wallet balance, and the shipping fields (pre-filled from the cached user).
type CheckoutState struct {
	Lines           []model.CartLine
	Wallet          model.Wallet
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   string
}

// Total recomputes the order total from the lines on every call.
func (st *CheckoutState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range st.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CanSubmit gates the submit control: non-empty address, non-empty phone,
// and balance covering the total. The server remains the authority.
func (st *CheckoutState) CanSubmit() bool {
	return strings.TrimSpace(st.ShippingAddress) != "" &&
		strings.TrimSpace(st.PhoneNumber) != "" &&
		st.Wallet.Balance.GreaterThanOrEqual(st.Total())
}

// CheckoutService assembles and submits orders.
type CheckoutService struct {
	api      Doer
	sessions *session.Store
	log      *zap.Logger
}

func NewCheckoutService(client Doer, sessions *session.Store, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{api: client, sessions: sessions, log: log}
}

// Prepare loads the cart and wallet and pre-fills the shipping fields from
// the cached profile. An empty cart cannot reach checkout.
func (s *CheckoutService) Prepare(ctx context.Context) (*CheckoutState, error) {
	var cart model.Cart
	if err := s.api.Get(ctx, api.EPCart, &cart); err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, errs.ErrEmptyCart
	}
	var wallet model.Wallet
	if err := s.api.Get(ctx, api.EPWallet, &wallet); err != nil {
		return nil, err
	}
	st := &CheckoutState{Lines: cart.Items, Wallet: wallet, PaymentMethod: "wallet"}
	if u := s.sessions.StoredUser(); u != nil {
		st.ShippingAddress = u.Address
		st.PhoneNumber = u.Phone
	}
	return st, nil
}

// Submit posts the order exactly once and returns the new order ID. The
// gate conditions are re-checked here so a category (c) failure never
// reaches the network; a server rejection (e.g. a balance race) surfaces
// as the normalized failure message.
func (s *CheckoutService) Submit(ctx context.Context, st *CheckoutState) (string, error) {
	if strings.TrimSpace(st.ShippingAddress) == "" || strings.TrimSpace(st.PhoneNumber) == "" {
		return "", fmt.Errorf("%w: shipping address and phone number are required", errs.ErrValidation)
	}
	if st.Wallet.Balance.LessThan(st.Total()) {
		return "", fmt.Errorf("%w: balance %s below total %s",
			errs.ErrInsufficientFunds, st.Wallet.Balance, st.Total())
	}
	body := map[string]string{
		"payment_method":   st.PaymentMethod,
		"shipping_address": st.ShippingAddress,
		"phone_number":     st.PhoneNumber,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := s.api.Post(ctx, api.EPOrders, body, &out); err != nil {
		return "", err
	}
	s.log.Info("order placed", zap.String("order_id", out.ID))
	return out.ID, nil
}

// Confirmation re-fetches fresh order data by id for the confirmation view.
// The cart is presumed emptied server-side; nothing is cleared locally.
func (s *CheckoutService) Confirmation(ctx context.Context, orderID string) (*model.Order, error) {
	var out model.Order
	if err := s.api.Get(ctx, api.EPOrder(orderID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
