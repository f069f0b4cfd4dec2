// Package service contains the client-side application services: auth,
// catalog, the optimistic cart view-model, checkout, orders, wallet, and
// the admin surface.
package service

import (
	"context"

	"github.com/ecstudy/shopctl/internal/api"
)

// Doer is the subset of the HTTP client the services consume. Tests
// substitute fakes.
type Doer interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	UploadFile(ctx context.Context, path, field, filename string, content []byte, out any) error
}

var _ Doer = (*api.Client)(nil)
