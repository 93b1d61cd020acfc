package models

import (
	"github.com/shopspring/decimal"
)

// PaymentRequest starts a VNPay or MoMo payment. The order is created by the
// payment service from OrderDataJSON once the payment is confirmed.
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	OrderInfo     string          `json:"orderInfo"`
	UserID        string          `json:"userId"`
	AddressID     string          `json:"addressId"`
	OrderDataJSON string          `json:"orderDataJson"`
}

type PaymentResponse struct {
	PaymentURL string `json:"paymentUrl"`
	Message    string `json:"message,omitempty"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}
