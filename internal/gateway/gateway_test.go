package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibex-storefront/internal/models"
)

type staticAuth struct{ token string }

func (a staticAuth) AccessToken(context.Context) (string, bool) { return a.token, a.token != "" }
func (a staticAuth) Refresh(context.Context) (string, error) { return a.token, nil }
func (a staticAuth) ClearAccessToken(context.Context) {}
func (a staticAuth) Logout(context.Context) {}
func (a staticAuth) RedirectToLogin(context.Context, string) {}

func newFakeGateway(t *testing.T, register func(r *gin.Engine)) *Services {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestPreviewPostsSelection(t *testing.T) {
	var got models.PreviewRequest
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.POST("/v1/order/checkout/preview", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&got))
			c.JSON(http.StatusOK, gin.H{
				"subtotal":    150000,
				"finalAmount": 210000,
				"shops": []gin.H{
					{"shopOwnerId": "shop-a", "shippingFee": 30000, "itemSubtotal": 100000},
				},
			})
		})
	})

	preview, err := svc.Orders.Preview(context.Background(), &models.PreviewRequest{
		AddressID:     "addr-1",
		SelectedItems: []models.PreviewItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(100000), ShopOwnerID: "shop-a"}},
		VoucherCodes:  []string{"SHOP10"},
		UseCoin:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, "addr-1", got.AddressID)
	assert.Equal(t, []string{"SHOP10"}, got.VoucherCodes)
	assert.True(t, got.UseCoin)
	assert.True(t, got.SelectedItems[0].UnitPrice.Equal(decimal.NewFromInt(100000)))
	assert.True(t, preview.FinalAmount.Equal(decimal.NewFromInt(210000)))
	shop, ok := preview.Shop("shop-a")
	require.True(t, ok)
	assert.True(t, shop.NetShipping().Equal(decimal.NewFromInt(30000)))
}

func TestValidateVoucherSendsQuery(t *testing.T) {
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.GET("/v1/order/vouchers/validate", func(c *gin.Context) {
			assert.Equal(t, "SALE20", c.Query("code"))
			assert.Equal(t, "shop-a", c.Query("shopOwnerId"))
			assert.Equal(t, "100000", c.Query("orderAmount"))
			c.JSON(http.StatusOK, gin.H{"valid": true, "code": "SALE20", "title": "20k off", "discount": 20000, "voucherId": "v-1"})
		})
	})

	v, err := svc.Orders.ValidateVoucher(context.Background(), "SALE20", "shop-a", decimal.NewFromInt(100000))
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "v-1", v.VoucherID)
	assert.True(t, v.Discount.Equal(decimal.NewFromInt(20000)))
}

func TestShippingFeeErrorCarriesCode(t *testing.T) {
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.POST("/v1/order/calculate-shipping-fee", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ShippingShopAddressNotConfigured, "message": "Shop has no pickup address"})
		})
	})

	_, err := svc.Orders.CalculateShippingFee(context.Background(), &models.ShippingQuoteRequest{AddressID: "a", ShopOwnerID: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.ShippingShopAddressNotConfigured)
}

func TestReservationRoutes(t *testing.T) {
	var reserved, cancelled models.ReservationRequest
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.POST("/v1/stock/reservation/reserve", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&reserved))
			c.JSON(http.StatusOK, gin.H{"success": true, "status": "RESERVED"})
		})
		r.POST("/v1/stock/reservation/cancel", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&cancelled))
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	})
	ctx := context.Background()

	res, err := svc.ReserveStock(ctx, &models.ReservationRequest{OrderID: "temp_u1_1", ProductID: "p1", SizeID: "s1", Quantity: 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, reserved.Quantity)

	require.NoError(t, svc.CancelReservation(ctx, &models.ReservationRequest{OrderID: "temp_u1_1", ProductID: "p1", SizeID: "s1"}))
	assert.Equal(t, "temp_u1_1", cancelled.OrderID)
}

func TestPaymentProviderByMethod(t *testing.T) {
	hits := map[string]int{}
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.POST("/v1/payment/vnpay/create", func(c *gin.Context) {
			hits["vnpay"]++
			c.JSON(http.StatusOK, gin.H{"paymentUrl": "https://pay.vnpay.test/x"})
		})
		r.POST("/v1/payment/momo/create", func(c *gin.Context) {
			hits["momo"]++
			c.JSON(http.StatusOK, gin.H{"paymentUrl": "https://momo.test/x"})
		})
	})
	ctx := context.Background()
	req := &models.PaymentRequest{Amount: decimal.NewFromInt(1)}

	res, err := svc.CreatePayment(ctx, models.PaymentMoMo, req)
	require.NoError(t, err)
	assert.Equal(t, "https://momo.test/x", res.PaymentURL)

	_, err = svc.CreatePayment(ctx, models.PaymentCard, req)
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, models.PaymentVNPay, req)
	require.NoError(t, err)

	_, err = svc.CreatePayment(ctx, models.PaymentCOD, req)
	assert.Error(t, err)

	assert.Equal(t, map[string]int{"vnpay": 2, "momo": 1}, hits)
}

func TestWalletEntriesPaging(t *testing.T) {
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.GET("/v1/user/wallet/entries", func(c *gin.Context) {
			assert.Equal(t, "2", c.Query("page"))
			assert.Equal(t, "20", c.Query("size"))
			c.JSON(http.StatusOK, gin.H{"content": []gin.H{{"id": "e1", "amount": 5000}}, "totalElements": 41, "number": 2, "size": 20})
		})
	})

	page, err := svc.Wallet.Entries(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(41), page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.True(t, page.Content[0].Amount.Equal(decimal.NewFromInt(5000)))
}

func TestForSessionAuthenticatesCalls(t *testing.T) {
	var authz string
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.GET("/v1/user/address/getAllAddresses", func(c *gin.Context) {
			authz = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, []gin.H{{"id": "a1", "isDefault": true}})
		})
	})

	auth := staticAuth{token: "tok"}
	addresses, err := svc.ForSession(auth, auth).Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", authz)
	require.Len(t, addresses, 1)
	assert.True(t, addresses[0].IsDefault)

	_, err = svc.Addresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", authz)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc := newFakeGateway(t, func(r *gin.Engine) {
		r.POST("/v1/auth/login", func(c *gin.Context) {
			var req models.LoginRequest
			require.NoError(t, c.ShouldBindJSON(&req))
			if req.Password != "secret" {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "Bad credentials"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": "access", "refreshToken": "refresh"})
		})
	})
	ctx := context.Background()

	pair, err := svc.Auth.Login(ctx, models.LoginRequest{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "access", pair.Token)
	assert.Equal(t, "refresh", pair.RefreshToken)

	_, err = svc.Auth.Login(ctx, models.LoginRequest{Email: "a@b.c", Password: "nope"})
	assert.Error(t, err)
}
