package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
)

// CartState tracks the aggregate relative to the server.
//
//	Confirmed -> Pending(op) -> Confirmed        server accepted
//	                         -> Reconciling -> Confirmed   server rejected, full reload
type CartState int

const (
	CartConfirmed CartState = iota
	CartPending
	CartReconciling
)

func (s CartState) String() string {
	switch s {
	case CartPending:
		return "pending"
	case CartReconciling:
		return "reconciling"
	default:
		return "confirmed"
	}
}

// OpKind enumerates the mutating cart operations.
type OpKind int

const (
	OpSetQuantity OpKind = iota
	OpRemoveLine
	OpClear
	OpBulkRemoveSelected
)

// Op is one mutation applied through CartView.Apply.
type Op struct {
	Kind      OpKind
	ProductID string
	Quantity  int
}

func SetQuantity(productID string, qty int) Op {
	return Op{Kind: OpSetQuantity, ProductID: productID, Quantity: qty}
}
func RemoveLine(productID string) Op { return Op{Kind: OpRemoveLine, ProductID: productID} }
func ClearCart() Op                  { return Op{Kind: OpClear} }
func BulkRemoveSelected() Op         { return Op{Kind: OpBulkRemoveSelected} }

// Outcome reports how an Apply ended. When Reconciled is true a server call
// failed and the local state was replaced by a full authoritative reload;
// Failure carries the error that triggered it.
type Outcome struct {
	Reconciled bool
	Failure    error
}

// CartView is the cart view-model. It is the only place local state may
// diverge from the server, and only between an optimistic edit and the
// completion of its server call. Every failed call ends in a full reload;
// there is no targeted rollback.
type CartView struct {
	mu    sync.Mutex
	api   Doer
	log   *zap.Logger
	lines []model.CartLine
	state CartState
}

// NewCartView constructs an empty view-model; call Load before editing.
func NewCartView(client Doer, log *zap.Logger) *CartView {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartView{api: client, log: log}
}

// Load fetches the authoritative cart and replaces local state wholesale.
// Every line starts selected.
func (c *CartView) Load(ctx context.Context) error {
	var cart model.Cart
	if err := c.api.Get(ctx, api.EPCart, &cart); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = cart.Items
	for i := range c.lines {
		c.lines[i].Selected = true
	}
	c.state = CartConfirmed
	return nil
}

// AddItem puts a product into the server cart and reloads. Adding is not
// optimistic: the server computes the resulting line.
func (c *CartView) AddItem(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", errs.ErrValidation)
	}
	body := map[string]any{"product_id": productID, "quantity": qty}
	if err := c.api.Post(ctx, api.EPCartItems, body, nil); err != nil {
		return err
	}
	return c.Load(ctx)
}

// State returns the aggregate state.
func (c *CartView) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lines returns a copy of the rendered lines.
func (c *CartView) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.CartLine(nil), c.lines...)
}

// Line returns the rendered line for a product, if present.
func (c *CartView) Line(productID string) (model.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return model.CartLine{}, false
}

// ToggleSelect flips one line's selection. Pure local state.
func (c *CartView) ToggleSelect(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Selected = !c.lines[i].Selected
		}
	}
}

// ToggleSelectAll sets every line to the inverse of the current derived
// all-selected flag. Pure local state.
func (c *CartView) ToggleSelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := !c.allSelectedLocked()
	for i := range c.lines {
		c.lines[i].Selected = target
	}
}

// AllSelected is derived by recomputation, never stored.
func (c *CartView) AllSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allSelectedLocked()
}

func (c *CartView) allSelectedLocked() bool {
	if len(c.lines) == 0 {
		return false
	}
	for _, l := range c.lines {
		if !l.Selected {
			return false
		}
	}
	return true
}

// SelectedCount returns how many lines are selected.
func (c *CartView) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if l.Selected {
			n++
		}
	}
	return n
}

// SelectedTotal recomputes the subtotal over selected lines on every call.
func (c *CartView) SelectedTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lines {
		if l.Selected {
			total = total.Add(l.Subtotal())
		}
	}
	return total
}

// Apply is the single entry point for mutations: validate, mutate locally,
// issue the server call, and on any failure reload the authoritative cart.
// A validation failure changes nothing and issues no network call. When the
// server call fails but the reload succeeds, Apply reports Reconciled with
// the original failure and returns no error; only a failed reload is an
// error to the caller.
func (c *CartView) Apply(ctx context.Context, op Op) (Outcome, error) {
	calls, err := c.stage(op)
	if err != nil {
		return Outcome{}, err
	}
	for _, call := range calls {
		if err := call(ctx); err != nil {
			return c.reconcile(ctx, err)
		}
	}
	c.mu.Lock()
	c.state = CartConfirmed
	c.mu.Unlock()
	return Outcome{}, nil
}

// stage validates op, applies the optimistic mutation, and returns the
// server calls to issue. The aggregate is Pending once stage returns.
func (c *CartView) stage(op Op) ([]func(context.Context) error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var calls []func(context.Context) error
	switch op.Kind {
	case OpSetQuantity:
		i := c.indexLocked(op.ProductID)
		if i < 0 {
			return nil, fmt.Errorf("%w: no cart line for product %s", errs.ErrNotFound, op.ProductID)
		}
		if op.Quantity < 1 || op.Quantity > c.lines[i].StockAvailable {
			return nil, fmt.Errorf("%w: quantity %d outside [1, %d]",
				errs.ErrValidation, op.Quantity, c.lines[i].StockAvailable)
		}
		c.lines[i].Quantity = op.Quantity
		pid, qty := op.ProductID, op.Quantity
		calls = append(calls, func(ctx context.Context) error {
			return c.api.Put(ctx, api.EPCartItem(pid), map[string]int{"quantity": qty}, nil)
		})

	case OpRemoveLine:
		i := c.indexLocked(op.ProductID)
		if i < 0 {
			return nil, fmt.Errorf("%w: no cart line for product %s", errs.ErrNotFound, op.ProductID)
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		pid := op.ProductID
		calls = append(calls, func(ctx context.Context) error {
			return c.api.Delete(ctx, api.EPCartItem(pid))
		})

	case OpClear:
		c.lines = nil
		calls = append(calls, func(ctx context.Context) error {
			return c.api.Delete(ctx, api.EPCart)
		})

	case OpBulkRemoveSelected:
		var kept []model.CartLine
		var removed []string
		for _, l := range c.lines {
			if l.Selected {
				removed = append(removed, l.ProductID)
			} else {
				kept = append(kept, l)
			}
		}
		if len(removed) == 0 {
			return nil, fmt.Errorf("%w: no lines selected", errs.ErrValidation)
		}
		c.lines = kept
		// one delete per removed line; each can fail independently
		for _, pid := range removed {
			pid := pid
			calls = append(calls, func(ctx context.Context) error {
				return c.api.Delete(ctx, api.EPCartItem(pid))
			})
		}

	default:
		return nil, fmt.Errorf("%w: unknown cart operation", errs.ErrValidation)
	}

	c.state = CartPending
	return calls, nil
}

// reconcile replaces local state with the server's after a failed call.
// Staleness never persists silently: either the reload lands or the caller
// gets the reload error.
func (c *CartView) reconcile(ctx context.Context, cause error) (Outcome, error) {
	c.mu.Lock()
	c.state = CartReconciling
	c.mu.Unlock()
	c.log.Warn("cart update rejected, reloading", zap.Error(cause))

	if err := c.Load(ctx); err != nil {
		return Outcome{Reconciled: true, Failure: cause}, fmt.Errorf("reload after failed update: %w", err)
	}
	return Outcome{Reconciled: true, Failure: cause}, nil
}

func (c *CartView) indexLocked(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
