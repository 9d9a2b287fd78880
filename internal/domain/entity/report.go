package entity

// MetricsReport is the full normalized answer for one user: headline summary,
// position history, token balances and the raw upstream snapshots they were
// derived from.
type MetricsReport struct {
	UserID   string                `json:"userId"`
	FundID   string                `json:"fundId,omitempty"`
	Summary  MetricsSummary        `json:"summary"`
	History  []MetricsHistoryPoint `json:"history,omitempty"`
	Balances []TokenBalanceEntry   `json:"balances,omitempty"`
	Raw      RawSnapshots          `json:"raw"`
}

// RawSnapshots keeps the untouched upstream envelopes for diagnostics.
type RawSnapshots struct {
	UserYield    *UserYield      `json:"userYield,omitempty"`
	UserBalances []*UserBalances `json:"userBalances,omitempty"`
}

// ResourceState tracks a cached dashboard resource through its lifecycle.
type ResourceState string

const (
	StateIdle    ResourceState = "idle"
	StateLoading ResourceState = "loading"
	StateSuccess ResourceState = "success"
	StateError   ResourceState = "error"
)
