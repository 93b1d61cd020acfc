package checkout

import (
	"context"
	"errors"
	"fmt"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

// Follow-up actions the storefront offers next to an error.
const (
	ActionCreateAddress    = "create_address"
	ActionOpenAddressModal = "open_address_modal"
	ActionBrowseShop       = "browse_shop"
)

// GateError blocks a submission before any network call is made.
type GateError struct {
	msg      string
	Action   string
	NextPath string
}

func (e *GateError) Error() string {
	return e.msg
}

var (
	ErrNoItems            = &GateError{msg: "no items selected"}
	ErrNoAddresses        = &GateError{msg: "no saved delivery address", Action: ActionCreateAddress, NextPath: "/information/address"}
	ErrAddressNotSelected = &GateError{msg: "no delivery address selected", Action: ActionOpenAddressModal}
)

var (
	ErrClosed               = errors.New("checkout session closed")
	ErrSessionNotFound      = errors.New("no checkout in progress")
	ErrNotLoaded            = errors.New("checkout not loaded")
	ErrSubmitInProgress     = errors.New("order submission already in progress")
	ErrAlreadySubmitted     = errors.New("order already submitted")
	ErrUnknownShop          = errors.New("shop is not part of this checkout")
	ErrUnknownAddress       = errors.New("address does not belong to this shopper")
	ErrUnknownPaymentMethod = errors.New("unsupported payment method")
	ErrVoucherCodeRequired  = errors.New("voucher code is required")
	ErrVoucherBusy          = errors.New("voucher is already being validated")
	ErrVoucherSuperseded    = errors.New("voucher code changed while it was validated")
)

// VoucherError is a shop voucher the order service refused.
type VoucherError struct {
	ShopOwnerID string
	Code        string
	Message     string
}

func (e *VoucherError) Error() string {
	return fmt.Sprintf("voucher %s rejected: %s", e.Code, e.Message)
}

// FailureKind classifies a failed submission for the storefront.
type FailureKind string

const (
	FailureInsufficientStock FailureKind = "INSUFFICIENT_STOCK"
	FailureInvalidAddress    FailureKind = "INVALID_ADDRESS"
	FailureEmptyCart         FailureKind = "EMPTY_CART"
	FailureFlashSale         FailureKind = "FLASH_SALE_RESERVATION"
	FailurePaymentInit       FailureKind = "PAYMENT_INIT"
	FailureNetwork           FailureKind = "NETWORK_ERROR"
	FailureGeneric           FailureKind = "GENERIC"
)

// SubmitError is a submission the services rejected or could not complete.
type SubmitError struct {
	Kind        FailureKind
	Message     string
	ProductID   string
	ProductName string
	Available   int
	Requested   int
	Action      string
	NextPath    string
	Err         error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkout %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("checkout %s: %s", e.Kind, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// AsSubmitError unwraps err to a *SubmitError.
func AsSubmitError(err error) (*SubmitError, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func (e *SubmitError) phase() Phase {
	switch e.Kind {
	case FailureInsufficientStock:
		return PhaseInsufficientStock
	case FailureInvalidAddress:
		return PhaseInvalidAddress
	case FailureEmptyCart:
		return PhaseEmptyCart
	}
	return PhaseFailed
}

// mapOrderError turns an order or payment service failure into a SubmitError.
// Session expiry is returned unchanged so the caller can send the shopper to login.
func mapOrderError(err error, fallback FailureKind) error {
	if apiclient.IsSessionExpired(err) {
		return err
	}

	httpErr, ok := apiclient.AsHTTPError(err)
	if !ok {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &SubmitError{Kind: FailureNetwork, Message: "Network error, please try again", Err: err}
	}

	switch httpErr.Code {
	case models.OrderErrInsufficientStock:
		se := &SubmitError{
			Kind:    FailureInsufficientStock,
			Message: messageOr(httpErr.Message, "Insufficient stock"),
			Err:     err,
		}
		available, okA := httpErr.DetailInt("available")
		requested, okR := httpErr.DetailInt("requested")
		if okA && okR {
			se.Available, se.Requested = available, requested
			se.Message = fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested)
		}
		return se
	case models.OrderErrAddressNotFound:
		return &SubmitError{
			Kind:    FailureInvalidAddress,
			Message: messageOr(httpErr.Message, "Please select a valid delivery address"),
			Action:  ActionOpenAddressModal,
			Err:     err,
		}
	case models.OrderErrCartEmpty:
		return &SubmitError{
			Kind:     FailureEmptyCart,
			Message:  messageOr(httpErr.Message, "Your cart is empty"),
			Action:   ActionBrowseShop,
			NextPath: "/shop",
			Err:      err,
		}
	}

	return &SubmitError{
		Kind:    fallback,
		Message: messageOr(httpErr.Message, "Checkout failed, please try again"),
		Err:     err,
	}
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
