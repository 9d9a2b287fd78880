package port

import (
	"context"

	"yield_dashboard/internal/domain/entity"
)

// YieldQuery selects the yield history to fetch for a user. FundID narrows
// the result to one fund; Limit caps the number of history entries.
type YieldQuery struct {
	UserID string
	FundID string
	Limit  int
}

// BalanceQuery selects token balances for a user, optionally filtered to a
// single asset mint address.
type BalanceQuery struct {
	UserID string
	Asset  string
}

// FundAPIClient is the upstream fund-management API, consumed as a black box
// returning loosely-typed JSON. Transaction creation returns an unsigned,
// base64-encoded transaction for the wallet to sign.
type FundAPIClient interface {
	GetUserYield(ctx context.Context, q YieldQuery) (*entity.UserYield, error)
	GetUserBalances(ctx context.Context, q BalanceQuery) (*entity.UserBalances, error)
	CreateDepositTransaction(ctx context.Context, req entity.TransactionRequest) (string, error)
	CreateWithdrawTransaction(ctx context.Context, req entity.TransactionRequest) (string, error)
}
