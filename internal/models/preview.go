package models

import (
	"github.com/shopspring/decimal"
)

// PreviewItem is a normalized line in a preview or order request.
type PreviewItem struct {
	ProductID   string          `json:"productId"`
	SizeID      string          `json:"sizeId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ShopOwnerID string          `json:"shopOwnerId"`
	ShopName    string          `json:"shopName,omitempty"`
	IsFlashSale bool            `json:"isFlashSale,omitempty"`
}

// PreviewRequest is the body of POST /v1/order/checkout/preview.
type PreviewRequest struct {
	AddressID     string        `json:"addressId,omitempty"`
	SelectedItems []PreviewItem `json:"selectedItems"`
	VoucherCodes  []string      `json:"voucherCodes"`
	UseCoin       bool          `json:"useCoin"`
}

// ShopPreview is the per-shop slice of a CheckoutPreview.
type ShopPreview struct {
	ShopOwnerID         string          `json:"shopOwnerId"`
	ShopName            string          `json:"shopName"`
	ItemSubtotal        decimal.Decimal `json:"itemSubtotal"`
	ShippingFee         decimal.Decimal `json:"shippingFee"`
	ShippingDiscount    decimal.Decimal `json:"shippingDiscount"`
	IsFreeShipXtra      bool            `json:"isFreeShipXtra"`
	ShopVoucherCode     string          `json:"shopVoucherCode,omitempty"`
	ShopVoucherDiscount decimal.Decimal `json:"shopVoucherDiscount"`
	ShopFinalAmount     decimal.Decimal `json:"shopFinalAmount"`
}

// NetShipping is what the shopper pays for this shop's delivery.
func (s ShopPreview) NetShipping() decimal.Decimal {
	net := s.ShippingFee.Sub(s.ShippingDiscount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// CheckoutPreview is the server-computed pricing for the current selection.
type CheckoutPreview struct {
	Subtotal                     decimal.Decimal `json:"subtotal"`
	TotalShippingFee             decimal.Decimal `json:"totalShippingFee"`
	TotalShopVoucherDiscount     decimal.Decimal `json:"totalShopVoucherDiscount"`
	TotalPlatformVoucherDiscount decimal.Decimal `json:"totalPlatformVoucherDiscount"`
	TotalCoinDiscount            decimal.Decimal `json:"totalCoinDiscount"`
	FinalAmount                  decimal.Decimal `json:"finalAmount"`
	AvailableCoins               int64           `json:"availableCoins"`
	CoinsUsed                    int64           `json:"coinsUsed"`
	PlatformVoucherCode          string          `json:"platformVoucherCode,omitempty"`
	PlatformVoucherValue         decimal.Decimal `json:"platformVoucherValue"`
	Shops                        []ShopPreview   `json:"shops"`
}

// Shop finds the breakdown for one shop owner.
func (p *CheckoutPreview) Shop(shopOwnerID string) (ShopPreview, bool) {
	for _, s := range p.Shops {
		if s.ShopOwnerID == shopOwnerID {
			return s, true
		}
	}
	return ShopPreview{}, false
}
