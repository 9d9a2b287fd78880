package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
	"yield_dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fundAPIClientImpl talks to the upstream fund-management API.
type fundAPIClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFundAPIClient creates a new fund API client from configuration.
// A missing API key is a construction failure, not a first-request surprise.
func NewFundAPIClient(cfg config.FundAPIConfig, logger *zap.Logger) (port.FundAPIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fund api client: API key is not configured")
	}
	return &fundAPIClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateBurst),
		logger:  logger.Named("FundAPIClient"),
	}, nil
}

// GetUserYield implements port.FundAPIClient.
func (c *fundAPIClientImpl) GetUserYield(ctx context.Context, q port.YieldQuery) (*entity.UserYield, error) {
	requestURL := fmt.Sprintf("%s/user-yield/%s", c.baseURL, url.PathEscape(q.UserID))
	args := url.Values{}
	if q.FundID != "" {
		args.Set("fund_id", q.FundID)
	}
	if q.Limit > 0 {
		args.Set("limit", strconv.Itoa(q.Limit))
	}
	if encoded := args.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	body, err := c.do(ctx, fasthttp.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	var result entity.UserYield
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("Failed to unmarshal user yield response", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal user yield response: %w", err)
	}
	if !result.Success {
		return nil, upstreamErrorFromBody(fasthttp.StatusBadGateway, body)
	}
	return &result, nil
}

// GetUserBalances implements port.FundAPIClient.
func (c *fundAPIClientImpl) GetUserBalances(ctx context.Context, q port.BalanceQuery) (*entity.UserBalances, error) {
	requestURL := fmt.Sprintf("%s/user-balances/%s", c.baseURL, url.PathEscape(q.UserID))
	if q.Asset != "" {
		requestURL += "?asset=" + url.QueryEscape(q.Asset)
	}

	body, err := c.do(ctx, fasthttp.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	var result entity.UserBalances
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("Failed to unmarshal user balances response", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal user balances response: %w", err)
	}
	if !result.Success {
		return nil, upstreamErrorFromBody(fasthttp.StatusBadGateway, body)
	}
	return &result, nil
}

// CreateDepositTransaction implements port.FundAPIClient.
func (c *fundAPIClientImpl) CreateDepositTransaction(ctx context.Context, req entity.TransactionRequest) (string, error) {
	return c.createTransaction(ctx, c.baseURL+"/deposit/tx", req)
}

// CreateWithdrawTransaction implements port.FundAPIClient.
func (c *fundAPIClientImpl) CreateWithdrawTransaction(ctx context.Context, req entity.TransactionRequest) (string, error) {
	return c.createTransaction(ctx, c.baseURL+"/withdraw/tx", req)
}

// transactionPayload is the wire shape of a transaction-creation request.
// Amount is sent in atomic units of the fund's base asset.
type transactionPayload struct {
	FundID   string `json:"fund_id"`
	UserKey  string `json:"user_key"`
	PayerKey string `json:"payer_key,omitempty"`
	Amount   int64  `json:"amount"`
	All      bool   `json:"all"`
}

// transactionEnvelope covers the response shapes the upstream has been seen
// to return for transaction creation.
type transactionEnvelope struct {
	Success     *bool  `json:"success"`
	Result      string `json:"result"`
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
	Error       string `json:"error"`
}

func (c *fundAPIClientImpl) createTransaction(ctx context.Context, requestURL string, req entity.TransactionRequest) (string, error) {
	payload := transactionPayload{
		FundID:   req.FundID,
		UserKey:  req.UserKey,
		PayerKey: req.PayerKey,
		Amount:   req.AtomicAmount,
		All:      req.All,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction payload: %w", err)
	}

	respBody, err := c.do(ctx, fasthttp.MethodPost, requestURL, body)
	if err != nil {
		return "", err
	}

	// The endpoint may answer with a bare JSON string or with an envelope.
	var raw string
	if err := json.Unmarshal(respBody, &raw); err == nil && raw != "" {
		return raw, nil
	}

	var envelope transactionEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		c.logger.Error("Failed to unmarshal transaction response", zap.Error(err), zap.ByteString("body", respBody))
		return "", fmt.Errorf("failed to unmarshal transaction response: %w", err)
	}
	if envelope.Success != nil && !*envelope.Success {
		return "", upstreamErrorFromBody(fasthttp.StatusBadGateway, respBody)
	}
	if envelope.Transaction != "" {
		return envelope.Transaction, nil
	}
	if envelope.Result != "" {
		return envelope.Result, nil
	}
	return "", upstreamErrorFromBody(fasthttp.StatusBadGateway, respBody)
}

// do executes one upstream request and returns the response body, converting
// non-2xx statuses into *entity.UpstreamError.
func (c *fundAPIClientImpl) do(ctx context.Context, method, requestURL string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting fund API", zap.String("method", method), zap.String("url", requestURL))

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	metrics.ObserveUpstreamRequest(method, resp.StatusCode(), time.Since(start), err)
	if err != nil {
		c.logger.Error("Failed to execute request to fund API", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		c.logger.Error("Fund API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody))
		return nil, upstreamErrorFromBody(status, rawBody)
	}
	return rawBody, nil
}

// upstreamErrorFromBody builds an *entity.UpstreamError from an upstream
// response body, tolerating non-JSON payloads.
func upstreamErrorFromBody(status int, body []byte) *entity.UpstreamError {
	if status == 0 {
		status = fasthttp.StatusBadGateway
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &entity.UpstreamError{
			Status:  status,
			Message: "unexpected response from fund API",
			Payload: string(body),
		}
	}

	message := "unexpected response from fund API"
	for _, key := range []string{"error", "message"} {
		if v, ok := payload[key].(string); ok && v != "" {
			message = v
			break
		}
	}
	return &entity.UpstreamError{Status: status, Message: message, Payload: payload}
}
