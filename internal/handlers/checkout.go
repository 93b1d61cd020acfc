package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/checkout"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/middleware"
	"vibex-storefront/internal/models"
)

// CheckoutHandler exposes one checkout per BFF session.
type CheckoutHandler struct {
	services *gateway.Services
	manager  *auth.Manager
	registry *checkout.Registry
	opts     checkout.Options
	logger   *slog.Logger
}

func NewCheckoutHandler(services *gateway.Services, manager *auth.Manager, registry *checkout.Registry, opts checkout.Options, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		services: services,
		manager:  manager,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
}

// Start replaces any open checkout with one for the posted cart lines and loads it.
func (h *CheckoutHandler) Start(c *gin.Context) {
	var req models.StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := middleware.GetSessionID(c)
	backend := h.services.ForSession(h.manager.Session(sessionID), middleware.ContextNavigator{})

	// Background previews outlive this request but still belong to this page.
	base := apiclient.WithPage(context.Background(), middleware.CurrentPage(c))
	session := checkout.NewSession(base, backend, req.Items, h.opts)
	h.registry.Put(sessionID, session)

	if err := session.Load(c.Request.Context()); err != nil {
		if apiclient.IsSessionExpired(err) || middleware.LoginRedirect(c) != "" {
			h.registry.Delete(sessionID)
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	h.registry.Delete(middleware.GetSessionID(c))
	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, session, session.SelectAddress(c.Request.Context(), req.AddressID))
}

func (h *CheckoutHandler) SetPlatformVoucher(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.VoucherCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, session, session.SetPlatformVoucherCode(req.Code))
}

func (h *CheckoutHandler) SetUseCoin(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.UseCoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, session, session.SetUseCoin(req.UseCoin))
}

func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, session, session.SetPaymentMethod(req.PaymentMethod))
}

// RefreshPreview retries the preview now instead of waiting for the debounce.
func (h *CheckoutHandler) RefreshPreview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.RefreshPreview(c.Request.Context()))
}

func (h *CheckoutHandler) SetShopVoucherCode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req models.VoucherCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, session, session.SetShopVoucherCode(c.Param("shopId"), req.Code))
}

func (h *CheckoutHandler) ApplyShopVoucher(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	// The code may come with the request or from an earlier voucher-code call.
	var req models.VoucherCodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	shopID := c.Param("shopId")
	if req.Code != "" {
		if err := session.SetShopVoucherCode(shopID, req.Code); err != nil {
			h.respond(c, session, err)
			return
		}
	}

	applied, err := session.ApplyShopVoucher(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voucher": applied, "checkout": session.Snapshot()})
}

func (h *CheckoutHandler) RemoveShopVoucher(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.RemoveShopVoucher(c.Param("shopId")))
}

func (h *CheckoutHandler) QuoteShipping(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session, session.QuoteShipping(c.Request.Context(), c.Param("shopId")))
}

func (h *CheckoutHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	result, err := session.Submit(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) session(c *gin.Context) (*checkout.Session, bool) {
	session, ok := h.registry.Get(middleware.GetSessionID(c))
	if !ok {
		respondError(c, h.logger, checkout.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// respond writes the checkout view, or the error when the operation failed.
func (h *CheckoutHandler) respond(c *gin.Context, session *checkout.Session, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}
