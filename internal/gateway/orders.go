package gateway

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

type Orders struct {
	api *apiclient.Client
}

func (o *Orders) Preview(ctx context.Context, req *models.PreviewRequest) (*models.CheckoutPreview, error) {
	var out models.CheckoutPreview
	if err := o.api.Post(ctx, "/checkout/preview", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateVoucher checks a shop voucher against that shop's subtotal. An
// invalid code is a successful call with Valid=false.
func (o *Orders) ValidateVoucher(ctx context.Context, code, shopOwnerID string, orderAmount decimal.Decimal) (*models.VoucherValidation, error) {
	query := url.Values{}
	query.Set("code", code)
	query.Set("shopOwnerId", shopOwnerID)
	query.Set("orderAmount", orderAmount.String())

	var out models.VoucherValidation
	if err := o.api.Get(ctx, "/vouchers/validate", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *Orders) CalculateShippingFee(ctx context.Context, req *models.ShippingQuoteRequest) (*models.ShippingQuote, error) {
	var out models.ShippingQuote
	if err := o.api.Post(ctx, "/calculate-shipping-fee", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFromCart queues a pay-on-delivery or wallet order.
func (o *Orders) CreateFromCart(ctx context.Context, intent *models.OrderIntent) (*models.OrderAccepted, error) {
	var out models.OrderAccepted
	if err := o.api.Post(ctx, "/create-from-cart", intent, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
