package models

// ReservationRequest is the body of the stock reserve and cancel calls.
type ReservationRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	SizeID    string `json:"sizeId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type ReservationResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// PendingReservation is a flash-sale stock hold taken before a payment redirect.
type PendingReservation struct {
	TempOrderID string `json:"tempOrderId"`
	ProductID   string `json:"productId"`
	SizeID      string `json:"sizeId,omitempty"`
	Quantity    int    `json:"quantity"`
}
