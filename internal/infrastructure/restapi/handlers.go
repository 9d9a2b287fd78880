package restapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
)

// ErrorResponse is the envelope every failed request answers with.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// MetricsResponse is the envelope for successful metrics requests.
type MetricsResponse struct {
	Success bool `json:"success"`
	entity.MetricsReport
}

// TransactionResponse is the envelope for successful transaction creation.
type TransactionResponse struct {
	Success bool `json:"success"`
	entity.TransactionResult
}

// DashboardHandler handles the HTTP surface exposed to the dashboard UI.
type DashboardHandler struct {
	metricsSvc port.MetricsService
	txnSvc     port.TransactionService
	cfg        *config.Config
	logger     *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(metricsSvc port.MetricsService, txnSvc port.TransactionService, cfg *config.Config, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		metricsSvc: metricsSvc,
		txnSvc:     txnSvc,
		cfg:        cfg,
		logger:     logger.Named("DashboardHandler"),
	}
}

// GetMetricsHandler serves GET /api/metrics/:userId.
func (h *DashboardHandler) GetMetricsHandler(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		userID = h.cfg.Fund.UserID
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "userId is required. Provide it in the route path or configure DASHBOARD_USER_ID.",
		})
		return
	}

	report, err := h.metricsSvc.GetMetrics(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MetricsResponse{Success: true, MetricsReport: *report})
}

// GetYieldMetricsHandler serves GET /api/yield-metrics/:userId.
func (h *DashboardHandler) GetYieldMetricsHandler(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" || h.cfg.Fund.ID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "userId is required. Provide it in the route path or configure DASHBOARD_USER_ID.",
		})
		return
	}

	report, err := h.metricsSvc.GetYieldMetrics(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MetricsResponse{Success: true, MetricsReport: *report})
}

// GetTokenBalancesHandler serves GET /api/token-balances/:userId.
func (h *DashboardHandler) GetTokenBalancesHandler(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "userId is required. Provide it in the route path or configure DASHBOARD_USER_ID.",
		})
		return
	}

	report, err := h.metricsSvc.GetTokenBalances(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MetricsResponse{Success: true, MetricsReport: *report})
}

// transactionRequestBody tolerates the shapes dashboard clients send:
// amount as string or number, all as bool or string.
type transactionRequestBody struct {
	Amount   any    `json:"amount"`
	FundID   string `json:"fundId"`
	UserID   string `json:"userId"`
	UserKey  string `json:"userKey"`
	PayerKey string `json:"payerKey"`
	All      any    `json:"all"`
}

func (b *transactionRequestBody) amountString() string {
	switch v := b.Amount.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (b *transactionRequestBody) allFlag() bool {
	switch v := b.All.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// CreateDepositHandler serves POST /api/deposit.
func (h *DashboardHandler) CreateDepositHandler(c *gin.Context) {
	h.createTransaction(c, false, h.txnSvc.CreateDeposit)
}

// CreateDepositTxnHandler serves POST /api/deposit/txn. The wallet-facing
// variant identifies the signer by userId; the payer is the user.
func (h *DashboardHandler) CreateDepositTxnHandler(c *gin.Context) {
	h.createTransaction(c, true, h.txnSvc.CreateDeposit)
}

// CreateWithdrawHandler serves POST /api/withdraw.
func (h *DashboardHandler) CreateWithdrawHandler(c *gin.Context) {
	h.createTransaction(c, false, h.txnSvc.CreateWithdraw)
}

// CreateWithdrawTxnHandler serves POST /api/withdraw/txn.
func (h *DashboardHandler) CreateWithdrawTxnHandler(c *gin.Context) {
	h.createTransaction(c, true, h.txnSvc.CreateWithdraw)
}

func (h *DashboardHandler) createTransaction(
	c *gin.Context,
	walletVariant bool,
	create func(ctx context.Context, in port.TransactionInput) (*entity.TransactionResult, error),
) {
	var body transactionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON payload", Details: err.Error()})
		return
	}

	in := port.TransactionInput{
		Amount:   body.amountString(),
		FundID:   body.FundID,
		UserKey:  body.UserKey,
		PayerKey: body.PayerKey,
		All:      body.allFlag(),
	}
	if walletVariant {
		userKey := strings.TrimSpace(body.UserID)
		in.UserKey = userKey
		in.PayerKey = userKey
	}

	result, err := create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TransactionResponse{Success: true, TransactionResult: *result})
}

// respondError maps the error taxonomy to HTTP: validation errors are 400,
// upstream failures keep their upstream status, anything else is a 500.
func (h *DashboardHandler) respondError(c *gin.Context, err error) {
	if ve, ok := entity.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message})
		return
	}
	if ue, ok := entity.AsUpstreamError(err); ok {
		status := ue.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: ue.Message, Details: ue.Payload})
		return
	}
	h.logger.Error("Unexpected error handling request", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
