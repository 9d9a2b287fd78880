package port

import (
	"context"

	"github.com/shopspring/decimal"

	"yield_dashboard/internal/domain/entity"
)

// TransactionInput is a user-entered deposit or withdraw request before
// validation. Amount is the raw input string; AvailableBalance, when set,
// is the ceiling the amount must not exceed (withdraw flow).
type TransactionInput struct {
	Amount           string
	FundID           string
	UserKey          string
	PayerKey         string
	All              bool
	AvailableBalance *decimal.Decimal
	BaseAsset        string
}

// TransactionService validates requests and delegates to the upstream
// transaction-creation endpoints.
type TransactionService interface {
	CreateDeposit(ctx context.Context, in TransactionInput) (*entity.TransactionResult, error)
	CreateWithdraw(ctx context.Context, in TransactionInput) (*entity.TransactionResult, error)
}
