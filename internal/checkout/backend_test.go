package checkout

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

type shopVoucher struct {
	shop     string
	discount int64
}

// fakeBackend prices previews the way the order service does: a flat
// shipping fee per shop and fixed voucher discounts.
type fakeBackend struct {
	mu sync.Mutex

	addresses    []models.Address
	addressesErr error
	user         *models.User
	userErr      error
	wallet       *models.WalletBalance

	shippingFee      int64
	quoteErrs        map[string]error
	quoteHook        func(ctx context.Context, req *models.ShippingQuoteRequest)
	shopVouchers     map[string]shopVoucher
	platformVouchers map[string]int64
	coinDiscount     int64
	previewErr       error
	previewHook      func(ctx context.Context, req *models.PreviewRequest)

	reserveErrs map[string]error
	reserveFail map[string]string
	cancelErr   error
	orderErr    error
	orderHook   func()
	paymentURL  string
	paymentErr  error

	previews       []models.PreviewRequest
	quotes         []models.ShippingQuoteRequest
	validations    []string
	reserved       []models.ReservationRequest
	cancelled      []models.ReservationRequest
	orders         []*models.OrderIntent
	payments       []models.PaymentRequest
	paymentMethods []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		addresses: []models.Address{
			{ID: "addr-1", RecipientName: "Lan"},
			{ID: "addr-2", RecipientName: "Minh", IsDefault: true},
		},
		user:             &models.User{ID: "u-1", Email: "lan@example.test"},
		wallet:           &models.WalletBalance{BalanceAvailable: decimal.NewFromInt(500000)},
		shippingFee:      30000,
		quoteErrs:        map[string]error{},
		shopVouchers:     map[string]shopVoucher{"SALE20": {shop: "shop-a", discount: 20000}},
		platformVouchers: map[string]int64{"VIBEX10": 10000},
		coinDiscount:     5000,
		reserveErrs:      map[string]error{},
		reserveFail:      map[string]string{},
		paymentURL:       "https://pay.example.test/vnpay?token=1",
	}
}

func (f *fakeBackend) Addresses(context.Context) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addresses, f.addressesErr
}

func (f *fakeBackend) CurrentUser(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.userErr
}

func (f *fakeBackend) WalletBalance(context.Context) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallet, nil
}

func (f *fakeBackend) Preview(ctx context.Context, req *models.PreviewRequest) (*models.CheckoutPreview, error) {
	f.mu.Lock()
	f.previews = append(f.previews, *req)
	hook := f.previewHook
	err := f.previewErr
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.CheckoutPreview{AvailableCoins: 120}
	for _, g := range GroupByShop(cartItems(req.SelectedItems)) {
		sp := models.ShopPreview{
			ShopOwnerID:  g.ShopOwnerID,
			ShopName:     g.ShopName,
			ItemSubtotal: g.Subtotal(),
			ShippingFee:  decimal.NewFromInt(f.shippingFee),
		}
		for _, code := range req.VoucherCodes {
			if v, ok := f.shopVouchers[code]; ok && v.shop == g.ShopOwnerID {
				sp.ShopVoucherCode = code
				sp.ShopVoucherDiscount = decimal.NewFromInt(v.discount)
			}
		}
		sp.ShopFinalAmount = sp.ItemSubtotal.Add(sp.NetShipping()).Sub(sp.ShopVoucherDiscount)
		p.Shops = append(p.Shops, sp)
		p.Subtotal = p.Subtotal.Add(sp.ItemSubtotal)
		p.TotalShippingFee = p.TotalShippingFee.Add(sp.NetShipping())
		p.TotalShopVoucherDiscount = p.TotalShopVoucherDiscount.Add(sp.ShopVoucherDiscount)
	}
	for _, code := range req.VoucherCodes {
		if d, ok := f.platformVouchers[code]; ok {
			p.PlatformVoucherCode = code
			p.TotalPlatformVoucherDiscount = decimal.NewFromInt(d)
		}
	}
	if req.UseCoin {
		p.TotalCoinDiscount = decimal.NewFromInt(f.coinDiscount)
	}
	p.FinalAmount = p.Subtotal.Add(p.TotalShippingFee).
		Sub(p.TotalShopVoucherDiscount).
		Sub(p.TotalPlatformVoucherDiscount).
		Sub(p.TotalCoinDiscount)
	return p, nil
}

func (f *fakeBackend) ValidateVoucher(_ context.Context, code, shopOwnerID string, _ decimal.Decimal) (*models.VoucherValidation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations = append(f.validations, code)
	v, ok := f.shopVouchers[code]
	if !ok || v.shop != shopOwnerID {
		return &models.VoucherValidation{Valid: false, Code: code, Message: "Voucher does not exist or has expired"}, nil
	}
	return &models.VoucherValidation{
		Valid:     true,
		Code:      code,
		Title:     "20k off",
		Discount:  decimal.NewFromInt(v.discount),
		VoucherID: "v-" + code,
	}, nil
}

func (f *fakeBackend) CalculateShippingFee(ctx context.Context, req *models.ShippingQuoteRequest) (*models.ShippingQuote, error) {
	f.mu.Lock()
	f.quotes = append(f.quotes, *req)
	hook := f.quoteHook
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.quoteErrs[req.ShopOwnerID]; err != nil {
		return nil, err
	}
	return &models.ShippingQuote{ShippingFee: decimal.NewFromInt(f.shippingFee), Currency: "VND"}, nil
}

func (f *fakeBackend) ReserveStock(_ context.Context, req *models.ReservationRequest) (*models.ReservationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reserveErrs[req.ProductID]; err != nil {
		return nil, err
	}
	if msg, ok := f.reserveFail[req.ProductID]; ok {
		return &models.ReservationResult{Success: false, Message: msg}, nil
	}
	f.reserved = append(f.reserved, *req)
	return &models.ReservationResult{Success: true, Status: "RESERVED"}, nil
}

func (f *fakeBackend) CancelReservation(_ context.Context, req *models.ReservationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, *req)
	return f.cancelErr
}

func (f *fakeBackend) CreateOrder(_ context.Context, intent *models.OrderIntent) (*models.OrderAccepted, error) {
	f.mu.Lock()
	hook := f.orderHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, intent)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &models.OrderAccepted{Message: "Order is being processed", Status: "PENDING"}, nil
}

func (f *fakeBackend) CreatePayment(_ context.Context, method string, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentMethods = append(f.paymentMethods, method)
	f.payments = append(f.payments, *req)
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &models.PaymentResponse{PaymentURL: f.paymentURL}, nil
}

func (f *fakeBackend) previewCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.previews)
}

func (f *fakeBackend) lastPreview() models.PreviewRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previews[len(f.previews)-1]
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func cartItems(items []models.PreviewItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	for i, it := range items {
		out[i] = models.CartLineItem{
			ProductID:   it.ProductID,
			SizeID:      it.SizeID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ShopOwnerID: it.ShopOwnerID,
			ShopName:    it.ShopName,
		}
	}
	return out
}

// twoShopCart is shop A selling one item at 100,000 and shop B one at 50,000.
func twoShopCart() []models.CartLineItem {
	return []models.CartLineItem{
		{ProductID: "p-1", SizeID: "s-m", ProductName: "Linen shirt", Quantity: 1, UnitPrice: decimal.NewFromInt(100000), ShopOwnerID: "shop-a", ShopName: "Shop A"},
		{ProductID: "p-2", ProductName: "Canvas tote", Quantity: 1, UnitPrice: decimal.NewFromInt(50000), ShopOwnerID: "shop-b", ShopName: "Shop B"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testDebounce = 30 * time.Millisecond

func newTestSession(t *testing.T, backend *fakeBackend, items []models.CartLineItem) *Session {
	t.Helper()
	ctx := apiclient.WithPage(context.Background(), "/checkout")
	s := NewSession(ctx, backend, items, Options{
		Debounce: testDebounce,
		Logger:   testLogger(),
		Now:      func() time.Time { return time.UnixMilli(1_700_000_000_000) },
	})
	t.Cleanup(s.Close)
	return s
}

func orderServiceError(status int, code, message string, details map[string]any) error {
	return &apiclient.HTTPError{
		Method:  http.MethodPost,
		URL:     "http://gateway/v1/order/create-from-cart",
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
