package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
	"yield_dashboard/internal/pkg/numeric"
)

// metricsServiceImpl implements port.MetricsService. It is the single place
// where loosely-typed upstream payloads are coerced into the internal
// shapes; nothing downstream touches a raw record.
type metricsServiceImpl struct {
	client port.FundAPIClient
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewMetricsService creates a new instance of MetricsService.
func NewMetricsService(client port.FundAPIClient, cfg *config.Config, logger *zap.Logger) port.MetricsService {
	return &metricsServiceImpl{
		client: client,
		cfg:    cfg,
		logger: logger.Named("MetricsService"),
		now:    time.Now,
	}
}

// GetMetrics aggregates yield and balances for every tracked asset into one
// report. The yield fetch and the per-asset balance fetches run concurrently.
func (s *metricsServiceImpl) GetMetrics(ctx context.Context, userID string) (*entity.MetricsReport, error) {
	fundID := s.cfg.Fund.ID

	var userYield *entity.UserYield
	balancesByAsset := make([]*entity.UserBalances, len(s.cfg.Assets))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.client.GetUserYield(gctx, port.YieldQuery{UserID: userID, FundID: fundID})
		if err != nil {
			return err
		}
		userYield = result
		return nil
	})
	for i, asset := range s.cfg.Assets {
		g.Go(func() error {
			result, err := s.client.GetUserBalances(gctx, port.BalanceQuery{UserID: userID, Asset: asset.Mint})
			if err != nil {
				return err
			}
			balancesByAsset[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Metrics fetch failed", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}

	yieldEntries := userYield.Data

	var rawBalanceEntries []entity.RawBalanceEntry
	for _, ub := range balancesByAsset {
		if ub != nil {
			rawBalanceEntries = append(rawBalanceEntries, ub.Data...)
		}
	}
	balances := mapBalanceEntries(rawBalanceEntries)

	totalPortfolioValue := decimal.Zero
	for _, b := range balances {
		totalPortfolioValue = totalPortfolioValue.Add(b.NormalizedBalance)
	}

	summary := s.buildAggregateSummary(yieldEntries, fundID)
	summary.TotalPortfolioValue = totalPortfolioValue.InexactFloat64()

	return &entity.MetricsReport{
		UserID:   userID,
		FundID:   resolveFundID(fundID, yieldEntries),
		Summary:  summary,
		History:  buildHistory(yieldEntries),
		Balances: balances,
		Raw:      entity.RawSnapshots{UserYield: userYield, UserBalances: balancesByAsset},
	}, nil
}

// GetYieldMetrics builds the single-fund headline summary. Field access is
// strictly type guarded: a value of the wrong JSON type counts as absent.
func (s *metricsServiceImpl) GetYieldMetrics(ctx context.Context, userID string) (*entity.MetricsReport, error) {
	fundID := s.cfg.Fund.ID

	userYield, err := s.client.GetUserYield(ctx, port.YieldQuery{UserID: userID, FundID: fundID})
	if err != nil {
		return nil, err
	}

	entry := selectYieldEntry(userYield.Data, fundID)

	var summary entity.MetricsSummary
	if entry != nil {
		if apy, ok := numberField(entry.Apy); ok {
			summary.CurrentApy = &apy
		}
		if pv, ok := numberField(entry.PositionValue); ok {
			summary.TotalPositionValue = pv
		}
		summary.TotalYieldEarned = numeric.ToNormalisedYield(entry.YieldEarned, s.cfg.BaseAsset.Decimals).InexactFloat64()
		summary.LastUpdated = stringField(entry.LastUpdated)
		summary.BaseAsset = stringField(entry.BaseAsset)
		summary.FundName = stringField(entry.FundName)
		summary.EntryDate = stringField(entry.EntryDate)
		summary.DaysInFund = daysSince(summary.EntryDate, s.now())
	}
	if summary.FundName == "" {
		summary.FundName = s.cfg.Fund.Name
	}

	return &entity.MetricsReport{
		UserID:  userID,
		FundID:  resolveFundID(fundID, userYield.Data),
		Summary: summary,
		Raw:     entity.RawSnapshots{UserYield: userYield},
	}, nil
}

// GetTokenBalances returns the normalized base-asset balances for a user.
func (s *metricsServiceImpl) GetTokenBalances(ctx context.Context, userID string) (*entity.MetricsReport, error) {
	userBalances, err := s.client.GetUserBalances(ctx, port.BalanceQuery{
		UserID: userID,
		Asset:  s.cfg.BaseAsset.Mint,
	})
	if err != nil {
		return nil, err
	}

	return &entity.MetricsReport{
		UserID:   userID,
		Balances: mapBalanceEntries(userBalances.Data),
		Raw:      entity.RawSnapshots{UserBalances: []*entity.UserBalances{userBalances}},
	}, nil
}

// buildAggregateSummary folds every yield entry into totals and takes the
// headline fields from the current entry.
func (s *metricsServiceImpl) buildAggregateSummary(entries []entity.RawYieldEntry, fundID string) entity.MetricsSummary {
	var summary entity.MetricsSummary

	totalYield := decimal.Zero
	totalPosition := decimal.Zero
	for _, e := range entries {
		totalYield = totalYield.Add(numeric.ToDecimal(e.YieldEarned))
		totalPosition = totalPosition.Add(numeric.ToDecimal(e.PositionValue))
	}
	summary.TotalYieldEarned = totalYield.InexactFloat64()
	summary.TotalPositionValue = totalPosition.InexactFloat64()

	if current := selectYieldEntry(entries, fundID); current != nil {
		apy := numeric.ToFloat(current.Apy)
		summary.CurrentApy = &apy
		summary.LastUpdated = stringField(current.LastUpdated)
		summary.BaseAsset = stringField(current.BaseAsset)
		summary.FundName = stringField(current.FundName)
		summary.EntryDate = stringField(current.EntryDate)
		summary.DaysInFund = daysSince(summary.EntryDate, s.now())
	}
	return summary
}

// selectYieldEntry picks the entry describing the current position: the one
// matching fundID when given, otherwise the first entry. Upstream presents
// entries in a consistent, implementation-defined order with the current
// position first.
func selectYieldEntry(entries []entity.RawYieldEntry, fundID string) *entity.RawYieldEntry {
	if len(entries) == 0 {
		return nil
	}
	if fundID != "" {
		for i := range entries {
			if stringField(entries[i].FundID) == fundID {
				return &entries[i]
			}
		}
		return nil
	}
	return &entries[0]
}

func resolveFundID(fundID string, entries []entity.RawYieldEntry) string {
	if fundID != "" {
		return fundID
	}
	if len(entries) > 0 {
		return stringField(entries[0].FundID)
	}
	return ""
}

// mapBalanceEntries normalizes raw balance entries. Missing or wrong-typed
// fields collapse to their documented defaults instead of failing.
func mapBalanceEntries(entries []entity.RawBalanceEntry) []entity.TokenBalanceEntry {
	mapped := make([]entity.TokenBalanceEntry, 0, len(entries))
	for _, e := range entries {
		decimals := int32(numeric.ToInt(e.Decimals))
		if decimals < 0 {
			decimals = 0
		}
		totalBalance := numeric.ToInt(e.TotalBalance)

		var yieldBalance *entity.YieldBalance
		if e.YieldBalance != nil {
			yieldBalance = &entity.YieldBalance{
				FundID:        stringField(e.YieldBalance.FundID),
				Funds:         numeric.ToInt(e.YieldBalance.Funds),
				AmountOfYield: numeric.ToInt(e.YieldBalance.AmountOfYield),
				FundApy:       numeric.ToDecimal(e.YieldBalance.FundApy),
			}
		}

		mapped = append(mapped, entity.TokenBalanceEntry{
			TokenAddress:      stringField(e.TokenAddress),
			TokenSymbol:       stringField(e.TokenSymbol),
			TokenName:         stringField(e.TokenName),
			Decimals:          decimals,
			TotalBalance:      totalBalance,
			NormalizedBalance: numeric.NormaliseWithDecimals(decimal.NewFromInt(totalBalance), decimals),
			YieldBalance:      yieldBalance,
		})
	}
	return mapped
}

// buildHistory maps yield entries to history points, drops entries carrying
// neither a timestamp nor an entry date, and sorts ascending. Unparsable
// timestamps sort as the epoch.
func buildHistory(entries []entity.RawYieldEntry) []entity.MetricsHistoryPoint {
	points := make([]entity.MetricsHistoryPoint, 0, len(entries))
	for _, e := range entries {
		timestamp := stringField(e.LastUpdated)
		if timestamp == "" {
			timestamp = stringField(e.EntryDate)
		}
		if timestamp == "" {
			continue
		}
		points = append(points, entity.MetricsHistoryPoint{
			Timestamp:     timestamp,
			Apy:           numeric.ToFloat(e.Apy),
			PositionValue: numeric.ToFloat(e.PositionValue),
			YieldEarned:   numeric.ToFloat(e.YieldEarned),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return parseTimestamp(points[i].Timestamp).Before(parseTimestamp(points[j].Timestamp))
	})
	return points
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// daysSince derives the whole days elapsed since an entry date, never
// negative, zero when the date is missing or unparsable.
func daysSince(entryDate string, now time.Time) int {
	if entryDate == "" {
		return 0
	}
	entered := parseTimestamp(entryDate)
	if entered.Unix() == 0 {
		return 0
	}
	days := int(now.Sub(entered).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// stringField accepts only string-typed upstream values.
func stringField(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// numberField accepts only number-typed upstream values.
func numberField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
