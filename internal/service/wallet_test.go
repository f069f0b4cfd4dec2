package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ecstudy/shopctl/internal/errs"
)

func TestDeposit_RejectsNonPositiveAmounts(t *testing.T) {
	doer := &fakeDoer{}
	svc := NewWalletService(doer, nil)
	ctx := context.Background()

	for _, bad := range []int64{0, -500} {
		err := svc.Deposit(ctx, decimal.NewFromInt(bad))
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("amount %d: err = %v", bad, err)
		}
	}
	if len(doer.calls) != 0 {
		t.Fatalf("calls = %v", doer.calls)
	}

	if err := svc.Deposit(ctx, decimal.NewFromInt(50000)); err != nil {
		t.Fatal(err)
	}
	if doer.calls[0] != "POST /api/wallet/deposit" {
		t.Fatalf("calls = %v", doer.calls)
	}
}

func TestWalletReadPaths(t *testing.T) {
	doer := &fakeDoer{}
	svc := NewWalletService(doer, nil)
	ctx := context.Background()

	if _, err := svc.Balance(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Transactions(ctx); err != nil {
		t.Fatal(err)
	}
	if doer.calls[0] != "GET /api/wallet" || doer.calls[1] != "GET /api/wallet/transactions" {
		t.Fatalf("calls = %v", doer.calls)
	}
}
