package routes

import (
	"net/http"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/handlers"
	"github.com/valeriaulyamaeva/session-ledger/internal/logger"
	"github.com/valeriaulyamaeva/session-ledger/internal/session"
)

func SetupRouter(store database.TransactionStore, cfg config.Config, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logger.Middleware(log), gin.Recovery(), CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", handlers.HealthHandler(store))

	tx := r.Group("/transactions")
	tx.POST("", handlers.CreateTransactionHandler(store, cfg.CookieSecure))
	tx.GET("", session.Require(), handlers.GetTransactionsHandler(store))
	tx.GET("/summary", session.Require(), handlers.GetSummaryHandler(store))
	tx.GET("/:id", session.Require(), handlers.GetTransactionHandler(store))

	return r
}

// CORSMiddleware allows credentialed requests from the configured origins
// so browsers send the session cookie.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
