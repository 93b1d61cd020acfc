package checkout

// PreviewState tracks the server preview for the current selection.
type PreviewState string

const (
	PreviewIdle      PreviewState = "IDLE"
	PreviewScheduled PreviewState = "SCHEDULED"
	PreviewLoading   PreviewState = "LOADING"
	PreviewReady     PreviewState = "READY"
	PreviewFailed    PreviewState = "FAILED"
)

func (s PreviewState) String() string {
	return string(s)
}

// VoucherState is the lifecycle of one shop's voucher.
type VoucherState string

const (
	VoucherIdle       VoucherState = "IDLE"
	VoucherValidating VoucherState = "VALIDATING"
	VoucherApplied    VoucherState = "APPLIED"
	VoucherFailed     VoucherState = "FAILED"
)

func (s VoucherState) String() string {
	return string(s)
}

// Phase is where the checkout as a whole stands.
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhaseLoading           Phase = "LOADING"
	PhasePreviewing        Phase = "PREVIEWING"
	PhaseSubmitting        Phase = "SUBMITTING"
	PhaseSucceeded         Phase = "SUCCEEDED"
	PhaseInsufficientStock Phase = "INSUFFICIENT_STOCK"
	PhaseInvalidAddress    Phase = "INVALID_ADDRESS"
	PhaseEmptyCart         Phase = "EMPTY_CART"
	PhaseFailed            Phase = "FAILED"
)

func (p Phase) String() string {
	return string(p)
}

// IsTerminal reports whether no further edits are expected.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded
}

// ShippingSource says where a shop's shipping fee came from.
type ShippingSource string

const (
	ShippingNone     ShippingSource = "NONE"
	ShippingQuote    ShippingSource = "QUOTE"
	ShippingFallback ShippingSource = "FALLBACK"
	ShippingPreview  ShippingSource = "PREVIEW"
)

func (s ShippingSource) String() string {
	return string(s)
}
