package entity

import "github.com/shopspring/decimal"

// TokenBalanceEntry represents a wallet's holding of one token, normalized
// from the upstream balances payload.
type TokenBalanceEntry struct {
	TokenAddress      string          `json:"tokenAddress"`
	TokenSymbol       string          `json:"tokenSymbol"`
	TokenName         string          `json:"tokenName"`
	Decimals          int32           `json:"decimals"`
	TotalBalance      int64           `json:"totalBalance"`
	NormalizedBalance decimal.Decimal `json:"normalizedBalance"`
	YieldBalance      *YieldBalance   `json:"yieldBalance"`
}

// YieldBalance is the portion of a token balance deployed into a fund.
// Funds and AmountOfYield are atomic units.
type YieldBalance struct {
	FundID        string          `json:"fundId"`
	Funds         int64           `json:"funds"`
	AmountOfYield int64           `json:"amountOfYield"`
	FundApy       decimal.Decimal `json:"fundApy"`
}
