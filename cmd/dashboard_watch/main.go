package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/app/service"
	"yield_dashboard/internal/client"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/pkg/logger"
	"yield_dashboard/internal/pkg/numeric"
	"yield_dashboard/internal/wallet"
	"yield_dashboard/pkg/metrics"
)

// dashboard_watch drives the dashboard orchestrator the way the browser
// does: connect a wallet session, fetch metrics and balances, render the
// capital breakdown, and react to account changes.
func main() {
	userFlag := flag.String("user", "", "wallet account id (defaults to DASHBOARD_USER_ID)")
	refreshFlag := flag.Duration("refresh", 0, "re-render interval; 0 renders once and exits")
	depositFlag := flag.String("deposit", "", "create an unsigned deposit transaction for this amount")
	withdrawFlag := flag.String("withdraw", "", "create an unsigned withdraw transaction for this amount")
	allFlag := flag.Bool("all", false, "withdraw the full position")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded environment from .env")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.InitDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	metrics.MustRegisterMetrics()

	fundClient, err := client.NewFundAPIClient(cfg.FundAPI, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize fund API client", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService(fundClient, cfg, zapLogger)
	txnSvc := service.NewTransactionService(fundClient, cfg, zapLogger)
	dash := service.NewDashboardService(metricsSvc, cfg, zapLogger)

	ctx := context.Background()

	session := wallet.NewSession(nil, zapLogger)
	unsubscribe := session.OnChange(func(previous, next string) {
		dash.OnAccountChanged(ctx, previous, next)
	})
	defer unsubscribe()

	userID := *userFlag
	if userID == "" {
		userID = cfg.Fund.UserID
	}
	if userID == "" {
		fmt.Fprintln(os.Stderr, "no wallet account: pass -user or set DASHBOARD_USER_ID")
		os.Exit(1)
	}

	// Connecting triggers the initial parallel fetch through the listener.
	session.Connect(userID)
	render(dash, cfg, userID)

	if *depositFlag != "" || *withdrawFlag != "" {
		createTransaction(ctx, txnSvc, dash, cfg, userID, *depositFlag, *withdrawFlag, *allFlag)
	}

	if *refreshFlag <= 0 {
		return
	}

	ticker := time.NewTicker(*refreshFlag)
	defer ticker.Stop()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := dash.ManualRefresh(ctx, userID); err != nil {
				zapLogger.Warn("Manual refresh failed", zap.Error(err))
			}
			render(dash, cfg, userID)
		case <-quit:
			session.Disconnect()
			return
		}
	}
}

func render(dash port.DashboardOrchestrator, cfg *config.Config, userID string) {
	metricsSnap := dash.Snapshot(userID, port.ResourceMetrics)
	balancesSnap := dash.Snapshot(userID, port.ResourceTokenBalances)

	fmt.Printf("\n== dashboard for %s ==\n", userID)

	if metricsSnap.Err != nil {
		fmt.Printf("error: %v\n", metricsSnap.Err)
		return
	}
	if metricsSnap.Report == nil {
		fmt.Printf("state: %s\n", metricsSnap.State)
		return
	}

	summary := metricsSnap.Report.Summary
	fmt.Printf("fund:            %s\n", summary.FundName)
	fmt.Printf("current APY:     %s\n", numeric.FormatPercent(summary.CurrentApy))
	fmt.Printf("yield earned:    %s %s\n", numeric.FormatNumber(summary.TotalYieldEarned), summary.BaseAsset)
	fmt.Printf("position value:  %s\n", numeric.FormatNumber(summary.TotalPositionValue))
	fmt.Printf("portfolio value: %s\n", numeric.FormatNumber(summary.TotalPortfolioValue))
	if summary.DaysInFund > 0 {
		fmt.Printf("days in fund:    %d\n", summary.DaysInFund)
	}

	var balances = metricsSnap.Report.Balances
	if balancesSnap.Report != nil && len(balancesSnap.Report.Balances) > 0 {
		balances = balancesSnap.Report.Balances
	}

	baseAssetCode := service.ResolveBaseAssetCode(&summary)
	breakdown := service.BuildCapitalBreakdown(service.BreakdownInput{
		Summary:          &summary,
		BaseAssetBalance: service.FindBaseAssetTokenBalance(balances, baseAssetCode, cfg.BaseAsset.Mint),
		DefaultDecimals:  cfg.BaseAsset.Decimals,
	})

	earningPct := breakdown.EarningPercent
	idlePct := breakdown.IdlePercent
	fmt.Printf("earning:         %s %s (%s)\n",
		numeric.FormatNumber(breakdown.EarningTotal.InexactFloat64()), breakdown.BaseAsset, numeric.FormatPercent(&earningPct))
	fmt.Printf("idle:            %s %s (%s)\n",
		numeric.FormatNumber(breakdown.Idle.InexactFloat64()), breakdown.BaseAsset, numeric.FormatPercent(&idlePct))
}

func createTransaction(
	ctx context.Context,
	txnSvc port.TransactionService,
	dash port.DashboardOrchestrator,
	cfg *config.Config,
	userID, depositAmount, withdrawAmount string,
	all bool,
) {
	var available *decimal.Decimal
	snap := dash.Snapshot(userID, port.ResourceTokenBalances)
	if snap.Report != nil {
		if entry := service.FindBaseAssetTokenBalance(snap.Report.Balances, cfg.BaseAsset.Symbol, cfg.BaseAsset.Mint); entry != nil {
			available = &entry.NormalizedBalance
		}
	}

	in := port.TransactionInput{UserKey: userID, PayerKey: userID, All: all}
	var err error
	var result any
	if depositAmount != "" {
		in.Amount = depositAmount
		result, err = txnSvc.CreateDeposit(ctx, in)
	} else {
		in.Amount = withdrawAmount
		in.AvailableBalance = available
		in.BaseAsset = cfg.BaseAsset.Symbol
		result, err = txnSvc.CreateWithdraw(ctx, in)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "transaction not created: %v\n", err)
		return
	}

	fmt.Printf("\nunsigned transaction ready, sign and submit with your wallet:\n%+v\n", result)

	// Give upstream state time to settle before the follow-up refetch.
	dash.Invalidate(userID, time.Duration(cfg.Dashboard.SettleDelayMillis)*time.Millisecond)
}
