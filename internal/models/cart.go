package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The gateway speaks JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartLineItem is one selected cart line carried into checkout.
type CartLineItem struct {
	ProductID   string          `json:"productId" binding:"required"`
	SizeID      string          `json:"sizeId,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ShopOwnerID string          `json:"shopOwnerId" binding:"required"`
	ShopName    string          `json:"shopName,omitempty"`
	IsFlashSale bool            `json:"isFlashSale"`
}

// LineTotal returns unit price times quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DisplayName is used in user-facing messages about the line.
func (i CartLineItem) DisplayName() string {
	if i.ProductName != "" {
		return i.ProductName
	}
	return i.ProductID
}

// StartCheckoutRequest opens a checkout with the lines the shopper selected in the cart.
type StartCheckoutRequest struct {
	Items []CartLineItem `json:"items" binding:"required,dive"`
}
