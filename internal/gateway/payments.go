package gateway

import (
	"context"
	"fmt"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

type Payments struct {
	api *apiclient.Client
}

func (p *Payments) CreateVNPay(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	var out models.PaymentResponse
	if err := p.api.Post(ctx, "/vnpay/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Payments) CreateMoMo(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	var out models.PaymentResponse
	if err := p.api.Post(ctx, "/momo/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create starts a payment with the provider serving method. CARD is processed by VNPay.
func (p *Payments) Create(ctx context.Context, method string, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	switch method {
	case models.PaymentMoMo:
		return p.CreateMoMo(ctx, req)
	case models.PaymentVNPay, models.PaymentCard:
		return p.CreateVNPay(ctx, req)
	default:
		return nil, fmt.Errorf("payment method %s has no redirect provider", method)
	}
}
