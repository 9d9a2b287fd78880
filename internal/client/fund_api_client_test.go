package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
)

func newTestClient(t *testing.T, handler http.Handler) port.FundAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewFundAPIClient(config.FundAPIConfig{
		BaseURL:              srv.URL,
		APIKey:               "test-key",
		RequestTimeoutMillis: 2000,
		RateLimitPerSecond:   100,
		RateBurst:            100,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewFundAPIClientRequiresAPIKey(t *testing.T) {
	_, err := NewFundAPIClient(config.FundAPIConfig{BaseURL: "http://localhost"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGetUserYield(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"fund_id":"fund-1","apy":6.25,"yield_earned":"3.457"}]}`))
	}))

	result, err := c.GetUserYield(context.Background(), port.YieldQuery{UserID: "user a", FundID: "fund-1", Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, "/user-yield/user%20a", gotPath)
	assert.Equal(t, "fund_id=fund-1&limit=5", gotQuery)
	assert.Equal(t, "Bearer test-key", gotAuth)

	require.Len(t, result.Data, 1)
	assert.Equal(t, "fund-1", result.Data[0].FundID)
	assert.Equal(t, "3.457", result.Data[0].YieldEarned)
}

func TestGetUserYieldSuccessFalseIsUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"user not found"}`))
	}))

	_, err := c.GetUserYield(context.Background(), port.YieldQuery{UserID: "user-a"})
	require.Error(t, err)

	ue, ok := entity.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Equal(t, "user not found", ue.Message)
}

func TestGetUserBalancesNon2xxKeepsStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance window"}`))
	}))

	_, err := c.GetUserBalances(context.Background(), port.BalanceQuery{UserID: "user-a", Asset: "mint"})
	require.Error(t, err)

	ue, ok := entity.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.Equal(t, "maintenance window", ue.Message)
}

func TestGetUserBalancesNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))

	_, err := c.GetUserBalances(context.Background(), port.BalanceQuery{UserID: "user-a"})
	require.Error(t, err)

	ue, ok := entity.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, "unexpected response from fund API", ue.Message)
	assert.Equal(t, "upstream exploded", ue.Payload)
}

func TestCreateDepositTransactionSendsAtomicAmount(t *testing.T) {
	var gotPayload map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/deposit/tx", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"success":true,"transaction":"base64-txn"}`))
	}))

	txn, err := c.CreateDepositTransaction(context.Background(), entity.TransactionRequest{
		FundID:       "fund-1",
		UserKey:      "user-key",
		PayerKey:     "payer-key",
		AtomicAmount: 100500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "base64-txn", txn)

	assert.Equal(t, "fund-1", gotPayload["fund_id"])
	assert.Equal(t, float64(100500000), gotPayload["amount"])
	assert.Equal(t, false, gotPayload["all"])
}

func TestCreateWithdrawTransactionBareStringResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/withdraw/tx", r.URL.Path)
		w.Write([]byte(`"bare-base64-txn"`))
	}))

	txn, err := c.CreateWithdrawTransaction(context.Background(), entity.TransactionRequest{FundID: "fund-1", All: true})
	require.NoError(t, err)
	assert.Equal(t, "bare-base64-txn", txn)
}

func TestCreateWithdrawTransactionResultField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"result-txn"}`))
	}))

	txn, err := c.CreateWithdrawTransaction(context.Background(), entity.TransactionRequest{FundID: "fund-1"})
	require.NoError(t, err)
	assert.Equal(t, "result-txn", txn)
}

func TestCreateWithdrawTransactionSuccessFalse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"insufficient funds"}`))
	}))

	_, err := c.CreateWithdrawTransaction(context.Background(), entity.TransactionRequest{FundID: "fund-1"})
	require.Error(t, err)

	ue, ok := entity.AsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, "insufficient funds", ue.Message)
}
