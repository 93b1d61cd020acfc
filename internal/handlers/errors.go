package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/checkout"
	"vibex-storefront/internal/middleware"
)

// respondError writes the JSON error for err. Gateway statuses below 500 are
// passed through with the service's own message. Any 401 that reaches here
// means the session is no longer usable, including a failed refresh.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if apiclient.IsSessionExpired(err) || middleware.LoginRedirect(c) != "" ||
		apiclient.StatusCode(err) == http.StatusUnauthorized {
		middleware.Unauthorized(c, "Session expired, please log in again")
		return
	}

	var gate *checkout.GateError
	if errors.As(err, &gate) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    gate.Error(),
			"action":   gate.Action,
			"nextPath": gate.NextPath,
		})
		return
	}

	if se, ok := checkout.AsSubmitError(err); ok {
		c.JSON(submitStatus(se.Kind), gin.H{
			"error":       se.Message,
			"kind":        se.Kind,
			"productId":   se.ProductID,
			"productName": se.ProductName,
			"available":   se.Available,
			"requested":   se.Requested,
			"action":      se.Action,
			"nextPath":    se.NextPath,
		})
		return
	}

	var voucher *checkout.VoucherError
	if errors.As(err, &voucher) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       voucher.Message,
			"code":        voucher.Code,
			"shopOwnerId": voucher.ShopOwnerID,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrUnknownShop),
		errors.Is(err, checkout.ErrUnknownAddress),
		errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, checkout.ErrVoucherCodeRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, checkout.ErrSubmitInProgress),
		errors.Is(err, checkout.ErrAlreadySubmitted),
		errors.Is(err, checkout.ErrVoucherBusy),
		errors.Is(err, checkout.ErrVoucherSuperseded),
		errors.Is(err, checkout.ErrNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, checkout.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No checkout in progress"})
		return
	case errors.Is(err, checkout.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	case errors.Is(err, context.Canceled):
		// The shopper went away; nobody reads this response.
		c.Status(http.StatusRequestTimeout)
		return
	}

	if httpErr, ok := apiclient.AsHTTPError(err); ok && httpErr.Status < http.StatusInternalServerError {
		msg := httpErr.Message
		if msg == "" {
			msg = http.StatusText(httpErr.Status)
		}
		c.JSON(httpErr.Status, gin.H{"error": msg, "code": httpErr.Code})
		return
	}

	logger.Error("gateway call failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "Service temporarily unavailable"})
}

func submitStatus(kind checkout.FailureKind) int {
	switch kind {
	case checkout.FailureInsufficientStock, checkout.FailureFlashSale:
		return http.StatusConflict
	case checkout.FailureInvalidAddress, checkout.FailureEmptyCart:
		return http.StatusUnprocessableEntity
	case checkout.FailurePaymentInit, checkout.FailureNetwork:
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}
