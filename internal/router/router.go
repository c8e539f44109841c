package router

import (
	"net/http"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Users  handler.UserStore
	Ledger handler.LedgerService
	Pinger handler.Pinger
}

// SetupRouter configures the Gin engine and mounts the API under /api.
func SetupRouter(cfg *config.Config, log zerolog.Logger, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		// no explicit origins: open to all, without credentials
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, "Route not found")
	})

	// ====== API ======
	api := r.Group("/api")
	api.GET("/health", handler.Health(deps.Pinger))

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(deps.Users, jwtSecret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost, log)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything below needs a valid token
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, deps.Users, log))

	protected.GET("/auth/me", authHandler.Me)
	protected.PUT("/auth/me", authHandler.UpdateProfile)
	protected.PUT("/auth/password", authHandler.ChangePassword)

	txHandler := handler.NewTransactionHandler(deps.Ledger, log)
	protected.GET("/transactions", txHandler.List)
	protected.POST("/transactions", txHandler.Create)
	protected.GET("/transactions/summary", txHandler.Summary)
	protected.GET("/transactions/stats/monthly", txHandler.MonthlyStats)
	protected.GET("/transactions/export/csv", txHandler.ExportCSV)
	protected.GET("/transactions/export/xlsx", txHandler.ExportXLSX)
	protected.PUT("/transactions/:id", txHandler.Update)
	protected.DELETE("/transactions/:id", txHandler.Delete)

	return r
}
