package checkout

import (
	"github.com/shopspring/decimal"

	"vibex-storefront/internal/models"
)

// Totals are the amounts shown to the shopper. With a ready preview they are
// the preview's own figures; otherwise they are estimated from local state.
type Totals struct {
	Subtotal                decimal.Decimal `json:"subtotal"`
	ShippingFee             decimal.Decimal `json:"totalShippingFee"`
	ShopVoucherDiscount     decimal.Decimal `json:"totalShopVoucherDiscount"`
	PlatformVoucherDiscount decimal.Decimal `json:"totalPlatformVoucherDiscount"`
	CoinDiscount            decimal.Decimal `json:"totalCoinDiscount"`
	GrandTotal              decimal.Decimal `json:"finalAmount"`
	FromPreview             bool            `json:"fromPreview"`
}

// Discounts is every discount applied across the order.
func (t Totals) Discounts() decimal.Decimal {
	return t.ShopVoucherDiscount.Add(t.PlatformVoucherDiscount).Add(t.CoinDiscount)
}

type ShopView struct {
	ShopOwnerID     string                 `json:"shopOwnerId"`
	ShopName        string                 `json:"shopName"`
	Items           []models.CartLineItem  `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	ShippingFee     decimal.Decimal        `json:"shippingFee"`
	ShippingSource  ShippingSource         `json:"shippingSource"`
	ShippingWarning string                 `json:"shippingWarning,omitempty"`
	Quoting         bool                   `json:"calculatingShipping"`
	VoucherCode     string                 `json:"voucherCode"`
	VoucherState    VoucherState           `json:"voucherState"`
	VoucherMessage  string                 `json:"voucherMessage,omitempty"`
	AppliedVoucher  *models.AppliedVoucher `json:"appliedVoucher,omitempty"`
	VoucherDiscount decimal.Decimal        `json:"voucherDiscount"`
	Total           decimal.Decimal        `json:"total"`
}

// View is a point-in-time copy of a checkout, safe to serialize.
type View struct {
	Phase               Phase            `json:"phase"`
	PreviewState        PreviewState     `json:"previewState"`
	PreviewError        string           `json:"previewError,omitempty"`
	Addresses           []models.Address `json:"addresses"`
	SelectedAddressID   string           `json:"selectedAddressId,omitempty"`
	PaymentMethod       string           `json:"paymentMethod"`
	PlatformVoucherCode string           `json:"platformVoucherCode"`
	UseCoin             bool             `json:"useCoin"`
	AvailableCoins      int64            `json:"availableCoins"`
	WalletBalance       *decimal.Decimal `json:"walletBalance,omitempty"`
	InsufficientWallet  bool             `json:"insufficientWallet"`
	Shops               []ShopView       `json:"shops"`
	Totals              Totals           `json:"totals"`
	Warnings            []string         `json:"warnings,omitempty"`
	Failure             *FailureView     `json:"failure,omitempty"`
	Redirect            string           `json:"redirect,omitempty"`
}

// FailureView describes the last failed submission.
type FailureView struct {
	Kind      FailureKind `json:"kind"`
	Message   string      `json:"message"`
	ProductID string      `json:"productId,omitempty"`
	Available int         `json:"available,omitempty"`
	Requested int         `json:"requested,omitempty"`
	Action    string      `json:"action,omitempty"`
	NextPath  string      `json:"nextPath,omitempty"`
}

func newFailureView(e *SubmitError) *FailureView {
	return &FailureView{
		Kind:      e.Kind,
		Message:   e.Message,
		ProductID: e.ProductID,
		Available: e.Available,
		Requested: e.Requested,
		Action:    e.Action,
		NextPath:  e.NextPath,
	}
}

// Snapshot returns the current state of the checkout.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	totals := s.totalsLocked()
	v := View{
		Phase:               s.phase,
		PreviewState:        s.previewState,
		PreviewError:        s.previewError,
		Addresses:           append([]models.Address(nil), s.addresses...),
		SelectedAddressID:   s.addressID,
		PaymentMethod:       s.paymentMethod,
		PlatformVoucherCode: s.platformCode,
		UseCoin:             s.useCoin,
		Shops:               make([]ShopView, 0, len(s.groups)),
		Totals:              totals,
		Redirect:            s.loginRedirect,
	}
	if s.preview != nil {
		v.AvailableCoins = s.preview.AvailableCoins
	}
	if s.wallet != nil {
		balance := s.wallet.BalanceAvailable
		v.WalletBalance = &balance
		v.InsufficientWallet = s.paymentMethod == models.PaymentWallet && balance.LessThan(totals.GrandTotal)
	}
	if s.lastFailure != nil {
		v.Failure = newFailureView(s.lastFailure)
	}

	for _, g := range s.groups {
		st := s.shops[g.ShopOwnerID]
		sv := ShopView{
			ShopOwnerID:     g.ShopOwnerID,
			ShopName:        g.ShopName,
			Items:           g.Items,
			Subtotal:        g.Subtotal(),
			ShippingFee:     st.shipping,
			ShippingSource:  st.shippingSource,
			ShippingWarning: st.shippingWarning,
			Quoting:         st.quotingFor != "",
			VoucherCode:     st.code,
			VoucherState:    st.voucherState,
			VoucherMessage:  st.voucherMessage,
			VoucherDiscount: st.discount(),
		}
		if st.voucher != nil {
			cp := *st.voucher
			sv.AppliedVoucher = &cp
		}
		sv.Total = sv.Subtotal.Add(sv.ShippingFee).Sub(sv.VoucherDiscount)
		v.Shops = append(v.Shops, sv)
		if st.shippingWarning != "" {
			v.Warnings = append(v.Warnings, st.shippingWarning)
		}
	}
	return v
}

// discount counts only a voucher that is currently applied.
func (st *shopState) discount() decimal.Decimal {
	if st.voucherState != VoucherApplied || st.voucher == nil {
		return decimal.Zero
	}
	return st.voucher.Discount
}

func (s *Session) totalsLocked() Totals {
	if s.previewState == PreviewReady && s.preview != nil {
		p := s.preview
		return Totals{
			Subtotal:                p.Subtotal,
			ShippingFee:             p.TotalShippingFee,
			ShopVoucherDiscount:     p.TotalShopVoucherDiscount,
			PlatformVoucherDiscount: p.TotalPlatformVoucherDiscount,
			CoinDiscount:            p.TotalCoinDiscount,
			GrandTotal:              p.FinalAmount,
			FromPreview:             true,
		}
	}

	t := Totals{
		Subtotal:                decimal.Zero,
		ShippingFee:             decimal.Zero,
		ShopVoucherDiscount:     decimal.Zero,
		PlatformVoucherDiscount: decimal.Zero,
		CoinDiscount:            decimal.Zero,
	}
	for _, g := range s.groups {
		st := s.shops[g.ShopOwnerID]
		t.Subtotal = t.Subtotal.Add(g.Subtotal())
		t.ShippingFee = t.ShippingFee.Add(st.shipping)
		t.ShopVoucherDiscount = t.ShopVoucherDiscount.Add(st.discount())
	}
	// Platform and coin discounts are only known from the last preview.
	if s.platformCode != "" {
		t.PlatformVoucherDiscount = s.platformDiscount
	}
	if s.useCoin {
		t.CoinDiscount = s.coinDiscount
	}
	t.GrandTotal = t.Subtotal.Add(t.ShippingFee).Sub(t.Discounts())
	if t.GrandTotal.IsNegative() {
		t.GrandTotal = decimal.Zero
	}
	return t
}
