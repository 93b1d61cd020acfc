package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

const rollbackTimeout = 10 * time.Second

// reserveFlashSale holds stock for each flash-sale line, one at a time, under
// tempOrderID. If any hold fails, the ones already taken are released.
func (s *Session) reserveFlashSale(ctx context.Context, tempOrderID string, items []models.CartLineItem) ([]models.PendingReservation, error) {
	held := make([]models.PendingReservation, 0, len(items))
	for _, item := range items {
		res, err := s.backend.ReserveStock(ctx, &models.ReservationRequest{
			OrderID:   tempOrderID,
			ProductID: item.ProductID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
		})
		var reason string
		switch {
		case err != nil:
			reason = reservationMessage(err)
		case res == nil || !res.Success:
			reason = "Flash Sale item is no longer available"
			if res != nil && res.Message != "" {
				reason = res.Message
			}
			err = errors.New(reason)
		}
		if err != nil {
			s.logger.Warn("flash sale reservation failed",
				"temp_order_id", tempOrderID, "product", item.ProductID, "held", len(held), "err", err)
			s.releaseReservations(ctx, held)
			if apiclient.IsSessionExpired(err) {
				return nil, err
			}
			return nil, &SubmitError{
				Kind:        FailureFlashSale,
				Message:     fmt.Sprintf("%s: %s", item.DisplayName(), reason),
				ProductID:   item.ProductID,
				ProductName: item.DisplayName(),
				Err:         err,
			}
		}
		held = append(held, models.PendingReservation{
			TempOrderID: tempOrderID,
			ProductID:   item.ProductID,
			SizeID:      item.SizeID,
			Quantity:    item.Quantity,
		})
	}
	return held, nil
}

func reservationMessage(err error) string {
	if httpErr, ok := apiclient.AsHTTPError(err); ok && httpErr.Message != "" {
		return httpErr.Message
	}
	return "Failed to reserve Flash Sale stock"
}

// releaseReservations cancels holds in order. It never fails: a hold that
// cannot be released is logged and left to expire on the stock service.
func (s *Session) releaseReservations(ctx context.Context, held []models.PendingReservation) {
	if len(held) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	for _, r := range held {
		err := s.backend.CancelReservation(ctx, &models.ReservationRequest{
			OrderID:   r.TempOrderID,
			ProductID: r.ProductID,
			SizeID:    r.SizeID,
			Quantity:  r.Quantity,
		})
		if err != nil {
			reservationRollbacksTotal.WithLabelValues("failure").Inc()
			s.logger.Warn("failed to release flash sale reservation",
				"temp_order_id", r.TempOrderID, "product", r.ProductID, "err", err)
			continue
		}
		reservationRollbacksTotal.WithLabelValues("success").Inc()
	}
}
