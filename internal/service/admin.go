package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
)

// ProductInput carries the create/update payload for a product. ImageURL
// references an already-uploaded image.
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

func (in *ProductInput) validate() error {
	if in.Name == "" || in.Category == "" {
		return fmt.Errorf("%w: name and category are required", errs.ErrValidation)
	}
	if in.Price.LessThan(decimal.Zero) || in.Stock < 0 {
		return fmt.Errorf("%w: price and stock must be non-negative", errs.ErrValidation)
	}
	return nil
}

// AdminService drives the management surfaces. Legality of status and role
// transitions is left entirely to the server; the client forwards the
// target value and renders whatever comes back.
type AdminService struct {
	api Doer
	log *zap.Logger
}

func NewAdminService(client Doer, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{api: client, log: log}
}

// UploadProductImage pushes image bytes and returns the hosted URL for use
// in a subsequent create/update payload.
func (s *AdminService) UploadProductImage(ctx context.Context, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty image", errs.ErrValidation)
	}
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := s.api.UploadFile(ctx, api.EPProductUploadImage, "image", filename, content, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// CreateProduct creates a product. When image content is given it is
// uploaded first and the returned URL replaces in.ImageURL.
func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput, imageName string, image []byte) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if len(image) > 0 {
		url, err := s.UploadProductImage(ctx, imageName, image)
		if err != nil {
			return nil, err
		}
		in.ImageURL = url
	}
	var out model.Product
	if err := s.api.Post(ctx, api.EPProducts, in, &out); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("id", out.ID), zap.String("name", out.Name))
	return &out, nil
}

// UpdateProduct updates a product, with the same optional upload-first step.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput, imageName string, image []byte) error {
	if err := in.validate(); err != nil {
		return err
	}
	if len(image) > 0 {
		url, err := s.UploadProductImage(ctx, imageName, image)
		if err != nil {
			return err
		}
		in.ImageURL = url
	}
	return s.api.Put(ctx, api.EPProduct(id), in, nil)
}

// DeleteProduct removes a product. Confirmation is the caller's concern.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	return s.api.Delete(ctx, api.EPProduct(id))
}

// Orders lists all orders for the management table.
func (s *AdminService) Orders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := s.api.Get(ctx, api.EPOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus requests a transition to the target status. The client
// never computes the next status itself.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	body := map[string]model.OrderStatus{"status": status}
	return s.api.Put(ctx, api.EPOrderStatus(orderID), body, nil)
}

// Users lists accounts for the user management table.
func (s *AdminService) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := s.api.Get(ctx, api.EPUsers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserOrders lists one user's orders.
func (s *AdminService) UserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	var out []model.Order
	if err := s.api.Get(ctx, api.EPOrdersOfUser(userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PromoteUser grants the admin role.
func (s *AdminService) PromoteUser(ctx context.Context, userID string) error {
	return s.api.Post(ctx, api.EPUserPromote(userID), nil, nil)
}

// RevokeUser revokes the admin role.
func (s *AdminService) RevokeUser(ctx context.Context, userID string) error {
	return s.api.Post(ctx, api.EPUserRevoke(userID), nil, nil)
}
