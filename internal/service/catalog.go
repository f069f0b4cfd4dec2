package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/model"
)

// ItemsPerPage is the client-side page size on listing surfaces.
const ItemsPerPage = 10

// CategoryAll is the pseudo-category that disables the client-side filter.
const CategoryAll = "all"

// CatalogService is the pure read path: fetch, filter, paginate, render.
type CatalogService struct {
	api Doer
	log *zap.Logger
}

func NewCatalogService(client Doer, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{api: client, log: log}
}

// Products lists the catalog, server-side filtered when search is non-empty.
func (s *CatalogService) Products(ctx context.Context, search string) ([]model.Product, error) {
	path := api.EPProducts
	if search != "" {
		path = fmt.Sprintf("%s?q=%s", api.EPProductSearch, url.QueryEscape(search))
	}
	var out []model.Product
	if err := s.api.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches one product for the detail or quick view.
func (s *CatalogService) Product(ctx context.Context, id string) (*model.Product, error) {
	var out model.Product
	if err := s.api.Get(ctx, api.EPProduct(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists category names for the filter bar.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.api.Get(ctx, api.EPProductCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterByCategory applies the client-side category filter over an
// already-fetched list.
func FilterByCategory(products []model.Product, category string) []model.Product {
	if category == "" || category == CategoryAll {
		return products
	}
	var out []model.Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Paginate slices page (1-based) out of items and reports the page count.
// An out-of-range page yields an empty slice, not an error.
func Paginate[T any](items []T, page, perPage int) (pageItems []T, totalPages int) {
	if perPage <= 0 {
		perPage = ItemsPerPage
	}
	totalPages = (len(items) + perPage - 1) / perPage
	if page < 1 || len(items) == 0 {
		return nil, totalPages
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil, totalPages
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}
