package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
)

func newTestTransactionService(fake *fakeFundAPI, cfg *config.Config) port.TransactionService {
	return NewTransactionService(fake, cfg, zap.NewNop())
}

func TestCreateDepositConvertsToAtomicUnits(t *testing.T) {
	fake := &fakeFundAPI{txn: "base64-unsigned-txn"}
	svc := newTestTransactionService(fake, testConfig())

	result, err := svc.CreateDeposit(context.Background(), port.TransactionInput{Amount: "100.5"})
	require.NoError(t, err)

	assert.Equal(t, "base64-unsigned-txn", result.Transaction)
	assert.Equal(t, "fund-1", result.Metadata.FundID)
	assert.Equal(t, "default-user-key", result.Metadata.UserKey)
	assert.Equal(t, "default-payer-key", result.Metadata.PayerKey)
	assert.Equal(t, "100.5", result.Metadata.Amount.String())

	assert.Equal(t, int64(100500000), fake.lastRequest.AtomicAmount)
	assert.Equal(t, 1, fake.depositCalls)
}

func TestCreateDepositStripsCommas(t *testing.T) {
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, testConfig())

	result, err := svc.CreateDeposit(context.Background(), port.TransactionInput{Amount: "1,234.56"})
	require.NoError(t, err)
	assert.Equal(t, "1234.56", result.Metadata.Amount.String())
	assert.Equal(t, int64(1234560000), fake.lastRequest.AtomicAmount)
}

func TestCreateDepositRejectsNonPositiveAmounts(t *testing.T) {
	for _, raw := range []string{"", ".", "0", "-5", "abc", "  "} {
		t.Run("amount="+raw, func(t *testing.T) {
			fake := &fakeFundAPI{txn: "txn"}
			svc := newTestTransactionService(fake, testConfig())

			_, err := svc.CreateDeposit(context.Background(), port.TransactionInput{Amount: raw})
			require.Error(t, err)

			ve, ok := entity.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, "amount", ve.Field)
			assert.Equal(t, "enter a positive deposit amount", ve.Message)
			// Validation failures never reach the upstream API.
			assert.Zero(t, fake.depositCalls)
		})
	}
}

func TestCreateWithdrawRejectsAmountOverBalance(t *testing.T) {
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, testConfig())

	available := decimal.NewFromInt(100)
	_, err := svc.CreateWithdraw(context.Background(), port.TransactionInput{
		Amount:           "150",
		AvailableBalance: &available,
		BaseAsset:        "USDC",
	})
	require.Error(t, err)

	ve, ok := entity.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "amount exceeds available balance (100.00 USDC)", ve.Message)
	assert.Zero(t, fake.withdrawCalls)
}

func TestCreateWithdrawAtExactBalancePasses(t *testing.T) {
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, testConfig())

	available := decimal.NewFromInt(100)
	_, err := svc.CreateWithdraw(context.Background(), port.TransactionInput{
		Amount:           "100",
		AvailableBalance: &available,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.withdrawCalls)
}

func TestCreateWithdrawAllBypassesAmountValidation(t *testing.T) {
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, testConfig())

	result, err := svc.CreateWithdraw(context.Background(), port.TransactionInput{All: true})
	require.NoError(t, err)

	assert.True(t, result.Metadata.All)
	assert.True(t, result.Metadata.Amount.IsZero())
	assert.True(t, fake.lastRequest.All)
	assert.Equal(t, 1, fake.withdrawCalls)
}

func TestCreateDepositRequiresFundID(t *testing.T) {
	cfg := testConfig()
	cfg.Fund.ID = ""
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, cfg)

	_, err := svc.CreateDeposit(context.Background(), port.TransactionInput{Amount: "10"})
	require.Error(t, err)

	ve, ok := entity.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "fundId", ve.Field)
	assert.Zero(t, fake.depositCalls)
}

func TestCreateDepositRequestOverridesConfig(t *testing.T) {
	fake := &fakeFundAPI{txn: "txn"}
	svc := newTestTransactionService(fake, testConfig())

	result, err := svc.CreateDeposit(context.Background(), port.TransactionInput{
		Amount:   "10",
		FundID:   "fund-override",
		UserKey:  "user-override",
		PayerKey: "payer-override",
	})
	require.NoError(t, err)
	assert.Equal(t, "fund-override", result.Metadata.FundID)
	assert.Equal(t, "user-override", result.Metadata.UserKey)
	assert.Equal(t, "payer-override", result.Metadata.PayerKey)
}

func TestCreateWithdrawPassesUpstreamErrorThrough(t *testing.T) {
	fake := &fakeFundAPI{withdrawErr: &entity.UpstreamError{Status: 503, Message: "maintenance"}}
	svc := newTestTransactionService(fake, testConfig())

	_, err := svc.CreateWithdraw(context.Background(), port.TransactionInput{Amount: "10"})
	require.Error(t, err)

	ue, ok := entity.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, 503, ue.Status)
	assert.Equal(t, "maintenance", ue.Message)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "100", want: "100"},
		{raw: " 12.5 ", want: "12.5"},
		{raw: "1,000,000.25", want: "1000000.25"},
		{raw: "0.000001", want: "0.000001"},
		{raw: "", wantErr: true},
		{raw: ".", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "12..5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			amount, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}
