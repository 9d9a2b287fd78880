package entity

import "github.com/shopspring/decimal"

func init() {
	// Dashboard clients consume amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MetricsSummary is the headline view of a user's position in the fund.
// CurrentApy is a pointer so an absent upstream APY serializes as null
// instead of a misleading zero.
type MetricsSummary struct {
	CurrentApy          *float64 `json:"currentApy"`
	TotalYieldEarned    float64  `json:"totalYieldEarned"`
	TotalPositionValue  float64  `json:"totalPositionValue"`
	TotalPortfolioValue float64  `json:"totalPortfolioValue"`
	LastUpdated         string   `json:"lastUpdated,omitempty"`
	BaseAsset           string   `json:"baseAsset,omitempty"`
	FundName            string   `json:"fundName,omitempty"`
	EntryDate           string   `json:"entryDate,omitempty"`
	DaysInFund          int      `json:"daysInFund"`
}

// MetricsHistoryPoint is one point of the position-over-time series. The
// timestamp is kept as the upstream string; ordering is resolved at build
// time, not by the consumer.
type MetricsHistoryPoint struct {
	Timestamp     string  `json:"timestamp"`
	Apy           float64 `json:"apy"`
	PositionValue float64 `json:"positionValue"`
	YieldEarned   float64 `json:"yieldEarned"`
}
