package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/checkout"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/middleware"
)

// RouterConfig is everything the BFF routes depend on.
type RouterConfig struct {
	Logger         *slog.Logger
	Sessions       sessions.Store
	AllowedOrigins []string
	Maintenance    bool

	Services *gateway.Services
	Manager  *auth.Manager
	Registry *checkout.Registry
	Checkout checkout.Options
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TrustedProxyHeaders())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.PageHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"timestamp":        time.Now().Unix(),
			"checkoutSessions": cfg.Registry.Len(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(cfg.Manager, cfg.Services.Auth, cfg.Registry, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Services, cfg.Manager, cfg.Registry, cfg.Checkout, cfg.Logger)
	walletHandler := NewWalletHandler(cfg.Services, cfg.Manager, cfg.Logger)
	requireLogin := middleware.RequireLogin(cfg.Manager)

	api := r.Group("/api")
	api.Use(middleware.SessionMiddleware(cfg.Sessions, cfg.Logger))
	api.Use(middleware.Navigation())
	api.Use(middleware.MaintenanceMiddleware(cfg.Maintenance, cfg.Manager))

	// Auth routes
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/login/:provider", authHandler.ProviderLogin)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
		authRoutes.POST("/update-password", authHandler.UpdatePassword)
		authRoutes.GET("/me", requireLogin, authHandler.Me)
	}

	// Checkout routes
	checkoutRoutes := api.Group("/checkout")
	checkoutRoutes.Use(requireLogin)
	{
		checkoutRoutes.POST("", checkoutHandler.Start)
		checkoutRoutes.GET("", checkoutHandler.Get)
		checkoutRoutes.DELETE("", checkoutHandler.Cancel)
		checkoutRoutes.PUT("/address", checkoutHandler.SelectAddress)
		checkoutRoutes.PUT("/platform-voucher", checkoutHandler.SetPlatformVoucher)
		checkoutRoutes.PUT("/coins", checkoutHandler.SetUseCoin)
		checkoutRoutes.PUT("/payment-method", checkoutHandler.SetPaymentMethod)
		checkoutRoutes.POST("/preview", checkoutHandler.RefreshPreview)
		checkoutRoutes.PUT("/shops/:shopId/voucher-code", checkoutHandler.SetShopVoucherCode)
		checkoutRoutes.POST("/shops/:shopId/voucher", checkoutHandler.ApplyShopVoucher)
		checkoutRoutes.DELETE("/shops/:shopId/voucher", checkoutHandler.RemoveShopVoucher)
		checkoutRoutes.POST("/shops/:shopId/shipping", checkoutHandler.QuoteShipping)
		checkoutRoutes.POST("/submit", checkoutHandler.Submit)
	}

	// Wallet routes
	walletRoutes := api.Group("/wallet")
	walletRoutes.Use(requireLogin)
	{
		walletRoutes.GET("/balance", walletHandler.Balance)
		walletRoutes.GET("/entries", walletHandler.Entries)
	}

	return r
}
