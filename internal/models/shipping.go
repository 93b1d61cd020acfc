package models

import (
	"github.com/shopspring/decimal"
)

// Shipping failure codes the order service reports.
const (
	ShippingShopAddressNotConfigured = "SHOP_OWNER_ADDRESS_NOT_CONFIGURED"
	ShippingAddressMissingGHNFields  = "ADDRESS_MISSING_GHN_FIELDS"
	ShippingGHNAPIError              = "GHN_API_ERROR"
)

type ShippingItem struct {
	ProductID string          `json:"productId"`
	SizeID    string          `json:"sizeId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ShippingQuoteRequest is the body of POST /v1/order/calculate-shipping-fee.
type ShippingQuoteRequest struct {
	AddressID     string         `json:"addressId"`
	SelectedItems []ShippingItem `json:"selectedItems"`
	ProductID     string         `json:"productId,omitempty"`
	ShopOwnerID   string         `json:"shopOwnerId"`
}

type ShippingQuote struct {
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Currency    string          `json:"currency"`
}
