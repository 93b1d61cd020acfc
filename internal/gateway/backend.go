package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"vibex-storefront/internal/models"
)

// The methods below let *Services drive a checkout session directly.

func (s *Services) Addresses(ctx context.Context) ([]models.Address, error) {
	return s.Users.Addresses(ctx)
}

func (s *Services) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.Users.Information(ctx)
}

func (s *Services) WalletBalance(ctx context.Context) (*models.WalletBalance, error) {
	return s.Wallet.Balance(ctx)
}

func (s *Services) Preview(ctx context.Context, req *models.PreviewRequest) (*models.CheckoutPreview, error) {
	return s.Orders.Preview(ctx, req)
}

func (s *Services) ValidateVoucher(ctx context.Context, code, shopOwnerID string, orderAmount decimal.Decimal) (*models.VoucherValidation, error) {
	return s.Orders.ValidateVoucher(ctx, code, shopOwnerID, orderAmount)
}

func (s *Services) CalculateShippingFee(ctx context.Context, req *models.ShippingQuoteRequest) (*models.ShippingQuote, error) {
	return s.Orders.CalculateShippingFee(ctx, req)
}

func (s *Services) ReserveStock(ctx context.Context, req *models.ReservationRequest) (*models.ReservationResult, error) {
	return s.Stock.Reserve(ctx, req)
}

func (s *Services) CancelReservation(ctx context.Context, req *models.ReservationRequest) error {
	return s.Stock.Cancel(ctx, req)
}

func (s *Services) CreateOrder(ctx context.Context, intent *models.OrderIntent) (*models.OrderAccepted, error) {
	return s.Orders.CreateFromCart(ctx, intent)
}

func (s *Services) CreatePayment(ctx context.Context, method string, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	return s.Payments.Create(ctx, method, req)
}
