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

// WalletService reads the wallet and requests deposits. The authoritative
// debit at checkout happens server-side; this client only ever reads.
type WalletService struct {
	api Doer
	log *zap.Logger
}

func NewWalletService(client Doer, log *zap.Logger) *WalletService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletService{api: client, log: log}
}

// Balance fetches the current wallet.
func (s *WalletService) Balance(ctx context.Context) (*model.Wallet, error) {
	var out model.Wallet
	if err := s.api.Get(ctx, api.EPWallet, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deposit requests a top-up of a positive amount.
func (s *WalletService) Deposit(ctx context.Context, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: deposit amount must be positive", errs.ErrValidation)
	}
	return s.api.Post(ctx, api.EPWalletDeposit, map[string]decimal.Decimal{"amount": amount}, nil)
}

// Transactions lists the wallet history.
func (s *WalletService) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := s.api.Get(ctx, api.EPWalletTransactions, &out); err != nil {
		return nil, err
	}
	return out, nil
}
