package entity

import "github.com/shopspring/decimal"

// CapitalBreakdown splits a user's base-asset capital into the portion that
// is earning inside a fund and the portion sitting idle in the wallet.
// Amounts are exact decimals at the asset's native precision.
type CapitalBreakdown struct {
	BaseAsset      string          `json:"baseAsset"`
	Principal      decimal.Decimal `json:"principal"`
	Earned         decimal.Decimal `json:"earned"`
	EarningTotal   decimal.Decimal `json:"earningTotal"`
	Idle           decimal.Decimal `json:"idle"`
	EarningPercent float64         `json:"earningPercent"`
	IdlePercent    float64         `json:"idlePercent"`
}
