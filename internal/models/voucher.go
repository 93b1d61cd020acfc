package models

import (
	"github.com/shopspring/decimal"
)

// VoucherValidation is the response of GET /v1/order/vouchers/validate.
type VoucherValidation struct {
	Valid     bool            `json:"valid"`
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Discount  decimal.Decimal `json:"discount"`
	VoucherID string          `json:"voucherId"`
	Message   string          `json:"message"`
}

// AppliedVoucher is a shop voucher accepted by the validation call.
type AppliedVoucher struct {
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Discount  decimal.Decimal `json:"discount"`
	VoucherID string          `json:"voucherId"`
	ShopName  string          `json:"shopName"`
}

type VoucherCodeRequest struct {
	Code string `json:"code"`
}

type UseCoinRequest struct {
	UseCoin bool `json:"useCoin"`
}
