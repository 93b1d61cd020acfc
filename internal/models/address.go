package models

// Address is a saved delivery address as returned by the user service.
type Address struct {
	ID             string `json:"id"`
	RecipientName  string `json:"recipientName"`
	RecipientPhone string `json:"recipientPhone"`
	StreetAddress  string `json:"streetAddress"`
	Province       string `json:"province"`
	DistrictID     *int   `json:"districtId,omitempty"`
	WardCode       string `json:"wardCode,omitempty"`
	IsDefault      bool   `json:"isDefault"`
}

type SelectAddressRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}
