package models

import (
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD    = "COD"
	PaymentWallet = "WALLET"
	PaymentVNPay  = "VNPAY"
	PaymentMoMo   = "MOMO"
	PaymentCard   = "CARD"
)

// IsRedirectPayment reports whether the method hands the shopper to an external gateway.
func IsRedirectPayment(method string) bool {
	switch method {
	case PaymentVNPay, PaymentMoMo, PaymentCard:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether method is one of the supported payment methods.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCOD, PaymentWallet, PaymentVNPay, PaymentMoMo, PaymentCard:
		return true
	}
	return false
}

// Order failure codes reported in the "error" field by the order service.
const (
	OrderErrInsufficientStock = "INSUFFICIENT_STOCK"
	OrderErrAddressNotFound   = "ADDRESS_NOT_FOUND"
	OrderErrCartEmpty         = "CART_EMPTY"
	OrderErrOrderFailed       = "ORDER_FAILED"
	OrderErrNetwork           = "NETWORK_ERROR"
)

type OrderItem struct {
	ProductID   string          `json:"productId"`
	SizeID      string          `json:"sizeId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ShopOwnerID string          `json:"shopOwnerId,omitempty"`
	IsFlashSale bool            `json:"isFlashSale"`
}

type ShopVoucherIntent struct {
	ShopOwnerID string          `json:"shopOwnerId"`
	Code        string          `json:"code"`
	VoucherID   string          `json:"voucherId,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
}

// OrderIntent is the full order as the shopper confirmed it. It is posted to
// create-from-cart directly, or serialized into orderDataJson for payment gateways.
type OrderIntent struct {
	UserID              string              `json:"userId,omitempty"`
	AddressID           string              `json:"addressId"`
	PaymentMethod       string              `json:"paymentMethod"`
	SelectedItems       []OrderItem         `json:"selectedItems"`
	ShippingFee         decimal.Decimal     `json:"shippingFee"`
	VoucherCodes        []string            `json:"voucherCodes,omitempty"`
	ShopVouchers        []ShopVoucherIntent `json:"shopVouchers,omitempty"`
	PlatformVoucherCode string              `json:"platformVoucherCode,omitempty"`
	VoucherDiscount     decimal.Decimal     `json:"voucherDiscount"`
	UseCoin             bool                `json:"useCoin"`
	CoinDiscount        decimal.Decimal     `json:"coinDiscount"`
	TempOrderID         string              `json:"tempOrderId"`
}

// OrderAccepted is the create-from-cart response; the order itself is created asynchronously.
type OrderAccepted struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// OrderErrorBody is the error envelope of the order service.
type OrderErrorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
