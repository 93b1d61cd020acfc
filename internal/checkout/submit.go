package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

const (
	paymentOrderInfo = "Thanh toan don hang"
	ordersPath       = "/information/orders"
	successNotice    = 3 * time.Second
)

// SubmitResult tells the storefront where to send the shopper next.
type SubmitResult struct {
	PaymentMethod string          `json:"paymentMethod"`
	TempOrderID   string          `json:"tempOrderId"`
	Amount        decimal.Decimal `json:"amount"`
	// PaymentURL is set for gateway payments; the order is created once the payment is confirmed.
	PaymentURL    string `json:"paymentUrl,omitempty"`
	Message       string `json:"message,omitempty"`
	NoticeSeconds int    `json:"noticeSeconds,omitempty"`
	NextPath      string `json:"nextPath,omitempty"`
}

type submission struct {
	method   string
	userID   string
	intent   *models.OrderIntent
	totals   Totals
	flash    []models.CartLineItem
	previous Phase
}

// Submit places the order with the selected payment method. Gateway payments
// reserve flash-sale stock first and return the payment URL; COD and wallet
// orders go straight to the order service.
func (s *Session) Submit(ctx context.Context) (*SubmitResult, error) {
	sub, err := s.beginSubmit()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bind(ctx)
	defer cancel()

	var res *SubmitResult
	if models.IsRedirectPayment(sub.method) {
		res, err = s.submitRedirect(ctx, sub)
	} else {
		res, err = s.submitDirect(ctx, sub)
	}
	s.finishSubmit(sub, res, err)
	return res, err
}

// beginSubmit checks the gates and snapshots what is about to be ordered.
func (s *Session) beginSubmit() (*submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return nil, ErrClosed
	case s.submitting:
		return nil, ErrSubmitInProgress
	case s.phase == PhaseSucceeded:
		return nil, ErrAlreadySubmitted
	case len(s.items) == 0:
		return nil, ErrNoItems
	case !s.addressesLoaded:
		return nil, ErrNotLoaded
	case len(s.addresses) == 0:
		return nil, ErrNoAddresses
	case s.addressID == "":
		return nil, ErrAddressNotSelected
	}

	sub := &submission{
		method:   s.paymentMethod,
		totals:   s.totalsLocked(),
		flash:    flashSaleItems(s.items),
		previous: s.phase,
	}
	if s.user != nil {
		sub.userID = s.user.Identifier()
	}
	sub.intent = s.orderIntentLocked(sub.method, sub.userID, sub.totals)

	s.submitting = true
	s.phase = PhaseSubmitting
	s.lastFailure = nil
	s.debouncer.Cancel()
	return sub, nil
}

func (s *Session) finishSubmit(sub *submission, res *SubmitResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	outcome := "success"
	switch se, ok := AsSubmitError(err); {
	case err == nil:
		s.phase = PhaseSucceeded
		if res.PaymentURL != "" {
			outcome = "redirect"
		}
	case ok:
		s.phase = se.phase()
		s.lastFailure = se
		outcome = strings.ToLower(string(se.Kind))
	case apiclient.IsSessionExpired(err):
		s.phase = sub.previous
		s.loginRedirect = apiclient.LoginRedirect(apiclient.PageFrom(s.ctx))
		outcome = "session_expired"
	default:
		s.phase = sub.previous
		outcome = "error"
	}
	submissionsTotal.WithLabelValues(sub.method, outcome).Inc()

	s.logger.Info("checkout submitted",
		"method", sub.method,
		"outcome", outcome,
		"temp_order_id", sub.intent.TempOrderID,
		"amount", sub.totals.GrandTotal.String(),
	)
}

func (s *Session) orderIntentLocked(method, userID string, totals Totals) *models.OrderIntent {
	intent := &models.OrderIntent{
		UserID:              userID,
		AddressID:           s.addressID,
		PaymentMethod:       method,
		SelectedItems:       orderItems(s.items),
		ShippingFee:         totals.ShippingFee,
		VoucherCodes:        s.voucherCodesLocked(),
		PlatformVoucherCode: s.platformCode,
		VoucherDiscount:     totals.ShopVoucherDiscount.Add(totals.PlatformVoucherDiscount),
		UseCoin:             s.useCoin,
		CoinDiscount:        totals.CoinDiscount,
		TempOrderID:         tempOrderID(userID, s.opts.Now()),
	}
	for _, g := range s.groups {
		st := s.shops[g.ShopOwnerID]
		if st.voucherState != VoucherApplied || st.voucher == nil {
			continue
		}
		intent.ShopVouchers = append(intent.ShopVouchers, models.ShopVoucherIntent{
			ShopOwnerID: g.ShopOwnerID,
			Code:        st.voucher.Code,
			VoucherID:   st.voucher.VoucherID,
			Discount:    st.voucher.Discount,
		})
	}
	return intent
}

func tempOrderID(userID string, now time.Time) string {
	return fmt.Sprintf("temp_%s_%d", userID, now.UnixMilli())
}

// payableAmount rounds to whole currency units; gateways refuse anything below 1.
func payableAmount(total decimal.Decimal) decimal.Decimal {
	amount := total.Round(0)
	if amount.LessThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return amount
}

func (s *Session) submitRedirect(ctx context.Context, sub *submission) (*SubmitResult, error) {
	if sub.userID == "" {
		return nil, &SubmitError{Kind: FailurePaymentInit, Message: "Cannot get user ID for payment"}
	}

	held, err := s.reserveFlashSale(ctx, sub.intent.TempOrderID, sub.flash)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(sub.intent)
	if err != nil {
		s.releaseReservations(ctx, held)
		return nil, fmt.Errorf("encode order data: %w", err)
	}

	amount := payableAmount(sub.totals.GrandTotal)
	resp, err := s.backend.CreatePayment(ctx, sub.method, &models.PaymentRequest{
		Amount:        amount,
		OrderInfo:     paymentOrderInfo,
		UserID:        sub.userID,
		AddressID:     sub.intent.AddressID,
		OrderDataJSON: string(payload),
	})
	if err != nil {
		s.releaseReservations(ctx, held)
		return nil, mapOrderError(err, FailurePaymentInit)
	}
	if resp == nil || resp.PaymentURL == "" {
		s.releaseReservations(ctx, held)
		msg := "No payment URL returned"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return nil, &SubmitError{Kind: FailurePaymentInit, Message: msg}
	}

	return &SubmitResult{
		PaymentMethod: sub.method,
		TempOrderID:   sub.intent.TempOrderID,
		Amount:        amount,
		PaymentURL:    resp.PaymentURL,
	}, nil
}

// submitDirect places a COD or wallet order. No stock is reserved up front on
// this path; the order service checks stock when it creates the order.
func (s *Session) submitDirect(ctx context.Context, sub *submission) (*SubmitResult, error) {
	accepted, err := s.backend.CreateOrder(ctx, sub.intent)
	if err != nil {
		return nil, mapOrderError(err, FailureGeneric)
	}

	msg := "Your order is being processed"
	if accepted != nil && accepted.Message != "" {
		msg = accepted.Message
	}
	return &SubmitResult{
		PaymentMethod: sub.method,
		TempOrderID:   sub.intent.TempOrderID,
		Amount:        sub.totals.GrandTotal,
		Message:       msg,
		NoticeSeconds: int(successNotice / time.Second),
		NextPath:      ordersPath,
	}, nil
}
