package entity

// Raw upstream records. The fund API's field sets vary release to release
// and mix strings with numbers, so every ambiguous field is decoded as `any`
// and coerced exactly once in the metrics service. These types never leave
// the mapping layer.

// RawYieldEntry is one entry of the upstream getUserYield response.
type RawYieldEntry struct {
	FundID        any `json:"fund_id"`
	FundName      any `json:"fund_name"`
	Apy           any `json:"apy"`
	PositionValue any `json:"position_value"`
	YieldEarned   any `json:"yield_earned"`
	LastUpdated   any `json:"last_updated"`
	EntryDate     any `json:"entry_date"`
	BaseAsset     any `json:"base_asset"`
}

// RawBalanceEntry is one entry of the upstream getUserBalances response.
type RawBalanceEntry struct {
	TokenAddress any              `json:"token_address"`
	TokenSymbol  any              `json:"token_symbol"`
	TokenName    any              `json:"token_name"`
	Decimals     any              `json:"decimals"`
	TotalBalance any              `json:"total_balance"`
	YieldBalance *RawYieldRecord  `json:"yield_balance"`
}

// RawYieldRecord is the yield_balance sub-object of a balance entry.
type RawYieldRecord struct {
	FundID        any `json:"fund_id"`
	Funds         any `json:"funds"`
	AmountOfYield any `json:"amount_of_yield"`
	FundApy       any `json:"fund_apy"`
}

// UserYield is the upstream getUserYield envelope.
type UserYield struct {
	Success bool            `json:"success"`
	Data    []RawYieldEntry `json:"data"`
}

// UserBalances is the upstream getUserBalances envelope.
type UserBalances struct {
	Success bool              `json:"success"`
	Data    []RawBalanceEntry `json:"data"`
}
