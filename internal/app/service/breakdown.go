package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"yield_dashboard/internal/domain/entity"
	"yield_dashboard/internal/pkg/numeric"
)

const defaultBaseAssetCode = "USDC"

var hundred = decimal.NewFromInt(100)

// ResolveBaseAssetCode returns the fund's base asset code from a summary,
// falling back to USDC when upstream did not report one.
func ResolveBaseAssetCode(summary *entity.MetricsSummary) string {
	if summary != nil {
		if code := strings.TrimSpace(summary.BaseAsset); code != "" {
			return strings.ToUpper(code)
		}
	}
	return defaultBaseAssetCode
}

// FindBaseAssetTokenBalance locates the wallet's base-asset holding by mint
// address, symbol or name.
func FindBaseAssetTokenBalance(balances []entity.TokenBalanceEntry, baseAssetCode, baseAssetMint string) *entity.TokenBalanceEntry {
	target := strings.ToUpper(baseAssetCode)
	for i := range balances {
		entry := &balances[i]
		if entry.TokenAddress == baseAssetMint ||
			strings.ToUpper(entry.TokenSymbol) == target ||
			strings.ToUpper(entry.TokenName) == target {
			return entry
		}
	}
	return nil
}

// BreakdownInput is everything the capital split is derived from.
type BreakdownInput struct {
	Summary          *entity.MetricsSummary
	BaseAssetBalance *entity.TokenBalanceEntry
	// HeldBalanceOverride replaces the wallet's normalized balance as the
	// held-capital figure when set.
	HeldBalanceOverride *decimal.Decimal
	DefaultDecimals     int32
}

// BuildCapitalBreakdown derives the principal/earned/idle split of a user's
// base-asset capital.
//
// The wallet's total balance already includes funds deployed to the position,
// so idle capital is held balance minus the earning total. Every subtraction
// runs on exact decimals at the asset's precision: binary floating point here
// used to produce spurious negative idle values near equality.
func BuildCapitalBreakdown(in BreakdownInput) entity.CapitalBreakdown {
	baseAsset := ResolveBaseAssetCode(in.Summary)

	decimals := in.DefaultDecimals
	var yieldBalance *entity.YieldBalance
	heldBalance := decimal.Zero
	if in.BaseAssetBalance != nil {
		decimals = in.BaseAssetBalance.Decimals
		yieldBalance = in.BaseAssetBalance.YieldBalance
		heldBalance = in.BaseAssetBalance.NormalizedBalance
	}
	if in.HeldBalanceOverride != nil {
		heldBalance = *in.HeldBalanceOverride
	}

	var principal, earned decimal.Decimal
	if yieldBalance != nil {
		principal = numeric.NormaliseWithDecimals(decimal.NewFromInt(yieldBalance.Funds), decimals)
		earned = numeric.NormaliseWithDecimals(decimal.NewFromInt(yieldBalance.AmountOfYield), decimals)
	} else if in.Summary != nil {
		// No position sub-object: fall back to the metrics-derived figures.
		principal = decimal.NewFromFloat(in.Summary.TotalPositionValue)
		earned = decimal.NewFromFloat(in.Summary.TotalYieldEarned)
	}

	earningTotal := clampNonNegative(principal.Add(earned))
	idle := clampNonNegative(heldBalance.Sub(earningTotal))
	combined := clampNonNegative(earningTotal.Add(idle))

	var earningPercent, idlePercent float64
	if combined.IsPositive() {
		earningPercent = earningTotal.Div(combined).Mul(hundred).InexactFloat64()
		idlePercent = idle.Div(combined).Mul(hundred).InexactFloat64()
	}

	return entity.CapitalBreakdown{
		BaseAsset:      baseAsset,
		Principal:      principal,
		Earned:         earned,
		EarningTotal:   earningTotal,
		Idle:           idle,
		EarningPercent: earningPercent,
		IdlePercent:    idlePercent,
	}
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
