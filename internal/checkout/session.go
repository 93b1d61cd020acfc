// Package checkout drives one shopper's checkout: it splits the cart by shop,
// keeps server previews of the price current and submits the order through
// the payment path the shopper picked.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

// Backend is every gateway call a checkout makes.
type Backend interface {
	Addresses(ctx context.Context) ([]models.Address, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	WalletBalance(ctx context.Context) (*models.WalletBalance, error)
	Preview(ctx context.Context, req *models.PreviewRequest) (*models.CheckoutPreview, error)
	ValidateVoucher(ctx context.Context, code, shopOwnerID string, orderAmount decimal.Decimal) (*models.VoucherValidation, error)
	CalculateShippingFee(ctx context.Context, req *models.ShippingQuoteRequest) (*models.ShippingQuote, error)
	ReserveStock(ctx context.Context, req *models.ReservationRequest) (*models.ReservationResult, error)
	CancelReservation(ctx context.Context, req *models.ReservationRequest) error
	CreateOrder(ctx context.Context, intent *models.OrderIntent) (*models.OrderAccepted, error)
	CreatePayment(ctx context.Context, method string, req *models.PaymentRequest) (*models.PaymentResponse, error)
}

type Options struct {
	// Debounce is the quiet period before a preview is requested.
	Debounce time.Duration
	// FallbackShippingFee is charged for a shop whose quote failed.
	FallbackShippingFee decimal.Decimal
	Logger              *slog.Logger
	Now                 func() time.Time
}

func (o *Options) withDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = 800 * time.Millisecond
	}
	if o.FallbackShippingFee.IsZero() {
		o.FallbackShippingFee = decimal.NewFromInt(30000)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type shopState struct {
	code           string
	voucher        *models.AppliedVoucher
	voucherState   VoucherState
	voucherMessage string

	shipping        decimal.Decimal
	shippingSource  ShippingSource
	shippingWarning string
	// quotingFor is the address of the quote in flight, or "".
	quotingFor string
}

// Session is one shopper's checkout. All methods are safe for concurrent use.
type Session struct {
	backend Backend
	opts    Options
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	items           []models.CartLineItem
	groups          []ShopGroup
	shops           map[string]*shopState
	addresses       []models.Address
	addressesLoaded bool
	addressID       string
	user            *models.User
	wallet          *models.WalletBalance

	platformCode  string
	useCoin       bool
	paymentMethod string

	preview          *models.CheckoutPreview
	previewState     PreviewState
	previewError     string
	previewSeq       uint64
	previewCancel    context.CancelFunc
	platformDiscount decimal.Decimal
	coinDiscount     decimal.Decimal

	phase         Phase
	submitting    bool
	lastFailure   *SubmitError
	loginRedirect string
	closed        bool

	debouncer *Debouncer
}

// NewSession starts a checkout for items. ctx scopes background previews and
// carries the storefront page they are made for; Close cancels it.
func NewSession(ctx context.Context, backend Backend, items []models.CartLineItem, opts Options) *Session {
	opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		backend:       backend,
		opts:          opts,
		logger:        opts.Logger,
		ctx:           ctx,
		cancel:        cancel,
		items:         items,
		groups:        GroupByShop(items),
		shops:         make(map[string]*shopState),
		paymentMethod: models.PaymentCOD,
		previewState:  PreviewIdle,
		phase:         PhaseIdle,
	}
	for _, g := range s.groups {
		s.shops[g.ShopOwnerID] = &shopState{voucherState: VoucherIdle, shippingSource: ShippingNone}
	}
	s.debouncer = NewDebouncer(opts.Debounce, func() {
		_ = s.runPreview(s.ctx)
	})
	activeSessions.Inc()
	return s
}

// Close stops background work and cancels in-flight gateway calls.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.debouncer.Stop()
	if s.previewCancel != nil {
		s.previewCancel()
		s.previewCancel = nil
	}
	s.mu.Unlock()

	s.cancel()
	activeSessions.Dec()
}

// bind derives a context from a caller's that also ends when the session closes.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Load fetches addresses, the shopper and their wallet, picks the delivery
// address, then quotes shipping and requests the first preview.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.phase = PhaseLoading
	s.mu.Unlock()

	ctx, cancel := s.bind(ctx)
	defer cancel()

	var (
		addresses []models.Address
		user      *models.User
		wallet    *models.WalletBalance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		addresses, err = s.backend.Addresses(gctx)
		if err != nil {
			return fmt.Errorf("load addresses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		u, err := s.backend.CurrentUser(gctx)
		if err != nil {
			s.logger.Warn("failed to load checkout user", "err", err)
			return nil
		}
		user = u
		w, err := s.backend.WalletBalance(gctx)
		if err != nil {
			s.logger.Warn("failed to load wallet balance", "err", err)
			return nil
		}
		wallet = w
		return nil
	})
	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.phase = PhaseFailed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.addresses = addresses
	s.addressesLoaded = true
	s.user = user
	s.wallet = wallet
	s.addressID = defaultAddressID(addresses)
	s.phase = PhasePreviewing
	addressID := s.addressID
	s.mu.Unlock()

	if addressID == "" {
		return nil
	}

	// Quotes and the first preview only depend on the address.
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		s.quoteShops(gctx, addressID, s.groups)
		return nil
	})
	g.Go(func() error {
		_ = s.runPreview(gctx)
		return nil
	})
	return g.Wait()
}

// defaultAddressID prefers the default address, then the first one.
func defaultAddressID(addresses []models.Address) string {
	for _, a := range addresses {
		if a.IsDefault {
			return a.ID
		}
	}
	if len(addresses) > 0 {
		return addresses[0].ID
	}
	return ""
}

// SelectAddress switches the delivery address and requotes every shop. An
// empty id clears the selection.
func (s *Session) SelectAddress(ctx context.Context, addressID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	found := addressID == ""
	for _, a := range s.addresses {
		if a.ID == addressID {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrUnknownAddress
	}
	if s.addressID == addressID {
		s.mu.Unlock()
		return nil
	}
	s.addressID = addressID
	for _, st := range s.shops {
		st.shipping = decimal.Zero
		st.shippingSource = ShippingNone
		st.shippingWarning = ""
	}
	s.invalidateLocked()
	s.mu.Unlock()

	if addressID == "" {
		return nil
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.quoteShops(ctx, addressID, s.groups)
	return nil
}

// SetShopVoucherCode records what the shopper typed for a shop. Clearing the
// field also drops the shop's applied voucher.
func (s *Session) SetShopVoucherCode(shopOwnerID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	st, ok := s.shops[shopOwnerID]
	if !ok {
		return ErrUnknownShop
	}
	st.code = code
	if strings.TrimSpace(code) == "" {
		st.voucher = nil
		st.voucherState = VoucherIdle
		st.voucherMessage = ""
	}
	s.invalidateLocked()
	return nil
}

// ApplyShopVoucher validates the shop's entered code against its subtotal.
func (s *Session) ApplyShopVoucher(ctx context.Context, shopOwnerID string) (*models.AppliedVoucher, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	st, ok := s.shops[shopOwnerID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownShop
	}
	if st.voucherState == VoucherValidating {
		s.mu.Unlock()
		return nil, ErrVoucherBusy
	}
	code := strings.TrimSpace(st.code)
	if code == "" {
		s.mu.Unlock()
		return nil, ErrVoucherCodeRequired
	}
	group, _ := s.groupLocked(shopOwnerID)
	prevState := st.voucherState
	st.voucherState = VoucherValidating
	st.voucherMessage = ""
	s.mu.Unlock()

	ctx, cancel := s.bind(ctx)
	defer cancel()
	res, err := s.backend.ValidateVoucher(ctx, code, shopOwnerID, group.Subtotal())

	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(st.code) != code {
		// The shopper changed the code while it was being checked.
		if st.voucherState == VoucherValidating {
			st.voucherState = prevState
			if st.voucher == nil && prevState == VoucherApplied {
				st.voucherState = VoucherIdle
			}
		}
		return nil, ErrVoucherSuperseded
	}

	if err != nil {
		st.voucherState = VoucherFailed
		if httpErr, ok := apiclient.AsHTTPError(err); ok {
			st.voucherMessage = messageOr(httpErr.Message, "Failed to apply voucher")
			return nil, &VoucherError{ShopOwnerID: shopOwnerID, Code: code, Message: st.voucherMessage}
		}
		st.voucherMessage = "Failed to apply voucher"
		return nil, fmt.Errorf("validate voucher %s: %w", code, err)
	}
	if !res.Valid {
		st.voucherState = VoucherFailed
		st.voucherMessage = messageOr(res.Message, "Invalid voucher code")
		return nil, &VoucherError{ShopOwnerID: shopOwnerID, Code: code, Message: st.voucherMessage}
	}

	applied := &models.AppliedVoucher{
		Code:      messageOr(res.Code, code),
		Title:     res.Title,
		Discount:  res.Discount,
		VoucherID: res.VoucherID,
		ShopName:  group.ShopName,
	}
	st.voucher = applied
	st.voucherState = VoucherApplied
	s.invalidateLocked()

	s.logger.Debug("shop voucher applied", "shop", shopOwnerID, "code", applied.Code, "discount", applied.Discount.String())
	cp := *applied
	return &cp, nil
}

// RemoveShopVoucher clears both the entered code and the applied voucher.
func (s *Session) RemoveShopVoucher(shopOwnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	st, ok := s.shops[shopOwnerID]
	if !ok {
		return ErrUnknownShop
	}
	st.code = ""
	st.voucher = nil
	st.voucherState = VoucherIdle
	st.voucherMessage = ""
	s.invalidateLocked()
	return nil
}

func (s *Session) SetPlatformVoucherCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.platformCode = strings.TrimSpace(code)
	s.invalidateLocked()
	return nil
}

func (s *Session) SetUseCoin(useCoin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.useCoin = useCoin
	s.invalidateLocked()
	return nil
}

// SetPaymentMethod is not a preview input, so no preview is scheduled.
func (s *Session) SetPaymentMethod(method string) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !models.ValidPaymentMethod(method) {
		return ErrUnknownPaymentMethod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.paymentMethod = method
	return nil
}

// RefreshPreview requests a preview now, skipping any pending debounce.
func (s *Session) RefreshPreview(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()
	s.debouncer.Cancel()
	return s.runPreview(ctx)
}

// invalidateLocked marks the preview stale and schedules a new one.
func (s *Session) invalidateLocked() {
	if s.phase != PhaseSubmitting && s.phase != PhaseIdle && s.phase != PhaseLoading && !s.phase.IsTerminal() {
		s.phase = PhasePreviewing
	}
	s.lastFailure = nil
	if len(s.items) == 0 {
		return
	}
	s.previewState = PreviewScheduled
	s.debouncer.Trigger()
}

func (s *Session) previewRequestLocked() (*models.PreviewRequest, bool) {
	if len(s.items) == 0 || s.addressID == "" {
		return nil, false
	}
	return &models.PreviewRequest{
		AddressID:     s.addressID,
		SelectedItems: previewItems(s.items),
		VoucherCodes:  s.voucherCodesLocked(),
		UseCoin:       s.useCoin,
	}, true
}

// voucherCodesLocked lists the entered shop codes then the platform code.
func (s *Session) voucherCodesLocked() []string {
	codes := []string{}
	for _, g := range s.groups {
		if code := strings.TrimSpace(s.shops[g.ShopOwnerID].code); code != "" {
			codes = append(codes, code)
		}
	}
	if s.platformCode != "" {
		codes = append(codes, s.platformCode)
	}
	return codes
}

// runPreview requests a preview for the current selection. Each run supersedes
// the one before it: the older request is cancelled and its answer dropped.
func (s *Session) runPreview(parent context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	req, ok := s.previewRequestLocked()
	if !ok {
		s.previewState = PreviewIdle
		s.mu.Unlock()
		return nil
	}
	s.previewSeq++
	seq := s.previewSeq
	if s.previewCancel != nil {
		s.previewCancel()
	}
	ctx, cancel := s.bind(parent)
	s.previewCancel = cancel
	s.previewState = PreviewLoading
	s.mu.Unlock()

	preview, err := s.backend.Preview(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.previewSeq || s.closed {
		previewRequestsTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("dropping stale checkout preview", "seq", seq, "latest", s.previewSeq)
		return nil
	}
	cancel()
	s.previewCancel = nil

	if err != nil {
		previewRequestsTotal.WithLabelValues("failure").Inc()
		s.previewState = PreviewFailed
		s.previewError = "Could not refresh prices, showing an estimate"
		if apiclient.IsSessionExpired(err) {
			s.loginRedirect = apiclient.LoginRedirect(apiclient.PageFrom(parent))
		}
		s.logger.Warn("checkout preview failed", "err", err)
		return fmt.Errorf("checkout preview: %w", err)
	}

	previewRequestsTotal.WithLabelValues("success").Inc()
	s.applyPreviewLocked(preview)
	return nil
}

// applyPreviewLocked makes the preview the source of the displayed prices and
// syncs each shop's shipping and voucher from its breakdown.
func (s *Session) applyPreviewLocked(p *models.CheckoutPreview) {
	s.preview = p
	s.previewState = PreviewReady
	s.previewError = ""
	s.platformDiscount = p.TotalPlatformVoucherDiscount
	s.coinDiscount = p.TotalCoinDiscount

	for _, g := range s.groups {
		st := s.shops[g.ShopOwnerID]
		sp, ok := p.Shop(g.ShopOwnerID)
		if !ok {
			continue
		}
		st.shipping = sp.NetShipping()
		st.shippingSource = ShippingPreview
		st.shippingWarning = ""

		if st.voucherState == VoucherValidating {
			continue
		}
		switch {
		case sp.ShopVoucherDiscount.IsPositive():
			code := messageOr(sp.ShopVoucherCode, strings.TrimSpace(st.code))
			if st.voucher == nil || !strings.EqualFold(st.voucher.Code, code) {
				st.voucher = &models.AppliedVoucher{Code: code, ShopName: g.ShopName}
			}
			st.voucher.Discount = sp.ShopVoucherDiscount
			st.voucherState = VoucherApplied
			st.voucherMessage = ""
		case st.voucherState == VoucherApplied:
			st.voucherState = VoucherFailed
			st.voucherMessage = fmt.Sprintf("Voucher %s no longer applies to this order", st.voucher.Code)
		}
	}
}

// QuoteShipping requests a shipping quote for one shop unless the preview
// already priced its delivery.
func (s *Session) QuoteShipping(ctx context.Context, shopOwnerID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	group, ok := s.groupLocked(shopOwnerID)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownShop
	}
	addressID := s.addressID
	s.mu.Unlock()
	if addressID == "" {
		return ErrAddressNotSelected
	}

	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.quoteShops(ctx, addressID, []ShopGroup{group})
	return nil
}

// quoteShops quotes every listed shop in parallel. Shops already priced by a
// preview, or already being quoted for this address, are skipped.
func (s *Session) quoteShops(ctx context.Context, addressID string, groups []ShopGroup) {
	var g errgroup.Group
	for _, group := range groups {
		s.mu.Lock()
		st := s.shops[group.ShopOwnerID]
		if st.shippingSource == ShippingPreview || st.quotingFor == addressID {
			s.mu.Unlock()
			continue
		}
		st.quotingFor = addressID
		s.mu.Unlock()

		g.Go(func() error {
			s.quoteShop(ctx, addressID, group)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Session) quoteShop(ctx context.Context, addressID string, group ShopGroup) {
	quote, err := s.backend.CalculateShippingFee(ctx, &models.ShippingQuoteRequest{
		AddressID:     addressID,
		SelectedItems: shippingItems(group.Items),
		ShopOwnerID:   group.ShopOwnerID,
	})

	fee := s.opts.FallbackShippingFee
	source := ShippingFallback
	warning := ""
	switch {
	case err != nil:
		warning = shippingWarning(err, group.ShopName)
		s.logger.Warn("shipping quote failed, using fallback fee",
			"shop", group.ShopOwnerID, "fee", fee.String(), "err", err)
	case quote == nil || quote.ShippingFee.IsNegative():
		s.logger.Warn("shipping quote was unusable, using fallback fee", "shop", group.ShopOwnerID)
	default:
		fee = quote.ShippingFee
		source = ShippingQuote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.shops[group.ShopOwnerID]
	if st.quotingFor == addressID {
		st.quotingFor = ""
	}
	if s.closed {
		return
	}
	// A preview or a newer address wins over this quote.
	if st.shippingSource == ShippingPreview || s.addressID != addressID {
		return
	}
	st.shipping = fee
	st.shippingSource = source
	st.shippingWarning = warning
}

// shippingWarning explains the failure causes the shopper can act on.
func shippingWarning(err error, shopName string) string {
	httpErr, ok := apiclient.AsHTTPError(err)
	if !ok {
		return ""
	}
	if shopName == "" {
		shopName = "This shop"
	}
	switch {
	case hasCode(httpErr, models.ShippingShopAddressNotConfigured):
		return fmt.Sprintf("%s has not set up a pickup address yet. A standard shipping fee is applied.", shopName)
	case hasCode(httpErr, models.ShippingAddressMissingGHNFields):
		return "Your delivery address is missing district or ward details. Please update it for an exact shipping fee."
	case hasCode(httpErr, models.ShippingGHNAPIError):
		return "The shipping carrier is unavailable right now. A standard shipping fee is applied."
	}
	return ""
}

func hasCode(httpErr *apiclient.HTTPError, code string) bool {
	return httpErr.Code == code || strings.Contains(string(httpErr.Body), code)
}

func (s *Session) groupLocked(shopOwnerID string) (ShopGroup, bool) {
	for _, g := range s.groups {
		if g.ShopOwnerID == shopOwnerID {
			return g, true
		}
	}
	return ShopGroup{}, false
}
