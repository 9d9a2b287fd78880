package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
	"yield_dashboard/internal/pkg/numeric"
)

// transactionServiceImpl implements port.TransactionService.
type transactionServiceImpl struct {
	client port.FundAPIClient
	cfg    *config.Config
	logger *zap.Logger
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(client port.FundAPIClient, cfg *config.Config, logger *zap.Logger) port.TransactionService {
	return &transactionServiceImpl{
		client: client,
		cfg:    cfg,
		logger: logger.Named("TransactionService"),
	}
}

// CreateDeposit implements port.TransactionService.
func (s *transactionServiceImpl) CreateDeposit(ctx context.Context, in port.TransactionInput) (*entity.TransactionResult, error) {
	return s.create(ctx, in, "deposit", s.client.CreateDepositTransaction)
}

// CreateWithdraw implements port.TransactionService.
func (s *transactionServiceImpl) CreateWithdraw(ctx context.Context, in port.TransactionInput) (*entity.TransactionResult, error) {
	return s.create(ctx, in, "withdraw", s.client.CreateWithdrawTransaction)
}

func (s *transactionServiceImpl) create(
	ctx context.Context,
	in port.TransactionInput,
	action string,
	submit func(context.Context, entity.TransactionRequest) (string, error),
) (*entity.TransactionResult, error) {
	amount, err := s.validateAmount(in, action)
	if err != nil {
		return nil, err
	}

	fundID := strings.TrimSpace(in.FundID)
	if fundID == "" {
		fundID = s.cfg.Fund.ID
	}
	userKey := strings.TrimSpace(in.UserKey)
	if userKey == "" {
		userKey = s.cfg.Fund.UserKey
	}
	payerKey := strings.TrimSpace(in.PayerKey)
	if payerKey == "" {
		payerKey = s.cfg.Fund.PayerKey
	}

	if fundID == "" {
		return nil, &entity.ValidationError{Field: "fundId", Message: "fundId is required; provide it in the request or configure DASHBOARD_FUND_ID"}
	}
	if userKey == "" {
		return nil, &entity.ValidationError{Field: "userKey", Message: "userKey is required; provide it in the request or configure DASHBOARD_USER_KEY"}
	}

	req := entity.TransactionRequest{
		FundID:       fundID,
		UserKey:      userKey,
		PayerKey:     payerKey,
		Amount:       amount,
		AtomicAmount: numeric.ToAtomicUnits(amount, s.cfg.BaseAsset.Decimals),
		All:          in.All,
	}

	txn, err := submit(ctx, req)
	if err != nil {
		s.logger.Warn("Upstream transaction creation failed",
			zap.String("action", action),
			zap.String("fundId", fundID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Unsigned transaction created",
		zap.String("action", action),
		zap.String("fundId", fundID),
		zap.String("amount", amount.String()),
		zap.Bool("all", in.All))

	return &entity.TransactionResult{
		Transaction: txn,
		Metadata: entity.TransactionMetadata{
			FundID:   fundID,
			UserKey:  userKey,
			PayerKey: payerKey,
			Amount:   amount,
			All:      in.All,
		},
	}, nil
}

// validateAmount parses and validates the user-entered amount string. The
// withdraw-all flag bypasses amount semantics entirely; the upstream API
// redeems the full position.
func (s *transactionServiceImpl) validateAmount(in port.TransactionInput, action string) (decimal.Decimal, error) {
	if in.All {
		if amount, err := ParseAmount(in.Amount); err == nil {
			return amount, nil
		}
		return decimal.Zero, nil
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return decimal.Zero, &entity.ValidationError{
			Field:   "amount",
			Message: fmt.Sprintf("enter a positive %s amount", action),
		}
	}

	if in.AvailableBalance != nil && amount.GreaterThan(*in.AvailableBalance) {
		asset := in.BaseAsset
		if asset == "" {
			asset = s.cfg.BaseAsset.Symbol
		}
		return decimal.Zero, &entity.ValidationError{
			Field: "amount",
			Message: fmt.Sprintf("amount exceeds available balance (%s %s)",
				numeric.FormatNumber(in.AvailableBalance.InexactFloat64()), asset),
		}
	}
	return amount, nil
}

// ParseAmount turns a user-entered amount string into a strictly positive
// decimal. Commas are stripped; an empty string or a lone "." is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if normalized == "" || normalized == "." {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", raw)
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number: %w", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %q is not positive", raw)
	}
	return amount, nil
}
