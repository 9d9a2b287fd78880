package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterDashboardRoutes wires the dashboard API onto the router.
func RegisterDashboardRoutes(router *gin.Engine, handler *DashboardHandler) {
	api := router.Group("/api")
	{
		api.GET("/metrics/:userId", handler.GetMetricsHandler)
		api.GET("/yield-metrics/:userId", handler.GetYieldMetricsHandler)
		api.GET("/token-balances/:userId", handler.GetTokenBalancesHandler)

		api.POST("/deposit", handler.CreateDepositHandler)
		api.POST("/deposit/txn", handler.CreateDepositTxnHandler)
		api.POST("/withdraw", handler.CreateWithdrawHandler)
		api.POST("/withdraw/txn", handler.CreateWithdrawTxnHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
