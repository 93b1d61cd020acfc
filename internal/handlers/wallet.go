package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/middleware"
)

const (
	defaultEntriesPageSize = 20
	maxEntriesPageSize     = 100
)

type WalletHandler struct {
	services *gateway.Services
	manager  *auth.Manager
	logger   *slog.Logger
}

func NewWalletHandler(services *gateway.Services, manager *auth.Manager, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{services: services, manager: manager, logger: logger}
}

func (h *WalletHandler) wallet(c *gin.Context) *gateway.Wallet {
	return h.services.ForSession(h.manager.Session(middleware.GetSessionID(c)), middleware.ContextNavigator{}).Wallet
}

func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.wallet(c).Balance(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Entries pages through the wallet ledger. page is zero-based.
func (h *WalletHandler) Entries(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultEntriesPageSize)))
	if err != nil || size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page size"})
		return
	}
	if size > maxEntriesPageSize {
		size = maxEntriesPageSize
	}

	entries, err := h.wallet(c).Entries(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
