package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
)

// OrderService covers order history, detail, and the post-delivery review
// flow (per-order rating plus per-product comments).
type OrderService struct {
	api Doer
	log *zap.Logger
}

func NewOrderService(client Doer, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{api: client, log: log}
}

// MyOrders lists the authenticated user's order history.
func (s *OrderService) MyOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := s.api.Get(ctx, api.EPMyOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Order fetches one order by id.
func (s *OrderService) Order(ctx context.Context, id string) (*model.Order, error) {
	var out model.Order
	if err := s.api.Get(ctx, api.EPOrder(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RateOrder submits a 1..5 star rating for a delivered order.
func (s *OrderService) RateOrder(ctx context.Context, orderID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating %d outside [1, 5]", errs.ErrValidation, rating)
	}
	return s.api.Post(ctx, api.EPOrderRating(orderID), map[string]int{"rating": rating}, nil)
}

// Review is one product comment within an order review.
type Review struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
}

// SubmitReviews posts one comment per reviewed product. Each post is
// independent; the first failure stops the loop and is returned.
func (s *OrderService) SubmitReviews(ctx context.Context, reviews []Review) error {
	for _, r := range reviews {
		if r.Content == "" {
			return fmt.Errorf("%w: empty review for product %s", errs.ErrValidation, r.ProductID)
		}
		if r.Rating < 1 || r.Rating > 5 {
			return fmt.Errorf("%w: rating %d outside [1, 5]", errs.ErrValidation, r.Rating)
		}
	}
	for _, r := range reviews {
		if err := s.api.Post(ctx, api.EPComments, r, nil); err != nil {
			return err
		}
	}
	return nil
}
