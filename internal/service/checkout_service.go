package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shinyyama/uniforme-store/internal/cart"
	"github.com/shinyyama/uniforme-store/internal/checkout"
	"github.com/shinyyama/uniforme-store/internal/logger"
	"github.com/shinyyama/uniforme-store/internal/metrics"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/payment"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CheckoutRequest is the completed wizard plus the client cart.
type CheckoutRequest struct {
	checkout.Form
	Items []cart.Line `json:"items"`
}

type BolsaRequest struct {
	CheckoutRequest
	QRCodeImage  string `json:"qrCodeImage"`
	CardPassword string `json:"cardPassword"`
	Consent      bool   `json:"consent"`
}

type SessionResult struct {
	OrderID      uint64 `json:"orderId"`
	SessionID    string `json:"sessionId"`
	URL          string `json:"url,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type PaymentIntentResult struct {
	OrderID         uint64 `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

type PixResult struct {
	OrderID      uint64    `json:"orderId"`
	PaymentID    string    `json:"paymentId"`
	QRCode       string    `json:"qrCode"`
	QRCodeBase64 string    `json:"qrCodeBase64"`
	TicketURL    string    `json:"ticketUrl,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type CheckoutConfig struct {
	FrontendURL     string
	NotificationURL string
	PixDisplayTTL   time.Duration
	PixProviderTTL  time.Duration
	Shipping        checkout.ShippingTable
}

type CheckoutService interface {
	CreateSession(ctx context.Context, uid string, req CheckoutRequest) (*SessionResult, error)
	CreateEmbeddedSession(ctx context.Context, uid string, req CheckoutRequest) (*SessionResult, error)
	CreatePaymentIntent(ctx context.Context, uid string, req CheckoutRequest) (*PaymentIntentResult, error)
	CreatePix(ctx context.Context, uid string, req CheckoutRequest) (*PixResult, error)
	SubmitBolsa(ctx context.Context, uid string, req BolsaRequest) (*model.BolsaUniformePayment, error)
}

type checkoutService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	bolsa    repository.BolsaPaymentRepository
	stripe   StripeGateway
	pix      PixGateway
	metrics  *metrics.Metrics
	cfg      CheckoutConfig
	now      func() time.Time
}

func NewCheckoutService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	bolsa repository.BolsaPaymentRepository,
	stripe StripeGateway,
	pix PixGateway,
	m *metrics.Metrics,
	cfg CheckoutConfig,
) CheckoutService {
	if cfg.PixDisplayTTL <= 0 {
		cfg.PixDisplayTTL = 30 * time.Minute
	}
	if cfg.PixProviderTTL <= 0 {
		cfg.PixProviderTTL = time.Hour
	}
	return &checkoutService{
		products: products,
		orders:   orders,
		bolsa:    bolsa,
		stripe:   stripe,
		pix:      pix,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

var (
	sessionMethods = []model.PaymentMethod{model.PaymentMethodStripeCheckout, model.PaymentMethodCard, model.PaymentMethodBoleto}
	intentMethods  = []model.PaymentMethod{model.PaymentMethodCard, model.PaymentMethodPix, model.PaymentMethodBoleto}
	pixMethods     = []model.PaymentMethod{model.PaymentMethodMercadoPagoPix, model.PaymentMethodPix}
	bolsaMethods   = []model.PaymentMethod{model.PaymentMethodBolsaUniforme}
)

// priced is a validated cart with server-side prices.
type priced struct {
	form     checkout.Form
	cart     *cart.Cart
	shipping decimal.Decimal
}

func (p *priced) total() decimal.Decimal {
	return p.cart.Total(p.shipping)
}

func (s *checkoutService) price(ctx context.Context, req CheckoutRequest, accepted []model.PaymentMethod) (*priced, error) {
	form := req.Form
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !acceptsMethod(accepted, form.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment method %q is not accepted here", ErrInvalidInput, form.PaymentMethod)
	}

	c, err := cart.New(req.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ids := make([]uint64, 0, c.Len())
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, l := range c.Lines() {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d is unavailable", ErrInvalidInput, l.ProductID)
		}
		size, ok := p.MatchOption(l.Size)
		if !ok {
			return nil, fmt.Errorf("%w: size %q is not offered for %s", ErrInvalidInput, l.Size, p.Name)
		}
		c.Resize(p.ID, l.Size, size)
		c.Reprice(p.ID, p.Name, p.FirstImage(), p.Price)
	}

	shipping, err := s.cfg.Shipping.Price(form.ShippingMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &priced{form: form, cart: c, shipping: shipping}, nil
}

func acceptsMethod(accepted []model.PaymentMethod, m model.PaymentMethod) bool {
	for _, a := range accepted {
		if a == m {
			return true
		}
	}
	return false
}

// createOrder persists the pending order; total is fixed here as subtotal + shipping.
func (s *checkoutService) createOrder(ctx context.Context, uid string, p *priced, method model.PaymentMethod, provider string) (*model.Order, error) {
	o := &model.Order{
		CustomerName:    p.form.Contact.Name,
		CustomerEmail:   p.form.Contact.Email,
		CustomerPhone:   p.form.Contact.Phone,
		Subtotal:        p.cart.Subtotal(),
		Shipping:        p.shipping,
		ShippingMethod:  p.form.ShippingMethod,
		Total:           p.total(),
		Status:          model.OrderStatusPending,
		PaymentMethod:   method,
		PaymentProvider: provider,
		ShippingAddress: datatypes.NewJSONType(p.form.Address),
		Items:           orderItems(p.cart.Lines()),
	}
	if uid != "" {
		o.UserUID = &uid
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	s.metrics.OrderCreated(string(method))
	logger.FromContext(ctx).Info("order created",
		zap.Uint64("order_id", o.ID),
		zap.String("payment_method", string(method)),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return o, nil
}

func orderItems(lines []cart.Line) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{
			ProductID:    l.ProductID,
			ProductName:  l.Name,
			ProductImage: l.Image,
			Price:        l.Price,
			Size:         l.Size,
			Quantity:     l.Quantity,
		})
	}
	return items
}

// abandon cancels the pending order after the provider refused to create a charge.
func (s *checkoutService) abandon(ctx context.Context, orderID uint64, cause error) error {
	logger.FromContext(ctx).Warn("payment provider call failed", zap.Uint64("order_id", orderID), zap.Error(cause))
	if _, err := s.orders.CancelIfPending(ctx, orderID); err != nil {
		logger.FromContext(ctx).Error("cancel abandoned order", zap.Uint64("order_id", orderID), zap.Error(err))
	}
	return fmt.Errorf("%w: %w", ErrPaymentProvider, cause)
}

func (s *checkoutService) CreateSession(ctx context.Context, uid string, req CheckoutRequest) (*SessionResult, error) {
	return s.createSession(ctx, uid, req, false)
}

func (s *checkoutService) CreateEmbeddedSession(ctx context.Context, uid string, req CheckoutRequest) (*SessionResult, error) {
	return s.createSession(ctx, uid, req, true)
}

func (s *checkoutService) createSession(ctx context.Context, uid string, req CheckoutRequest, embedded bool) (*SessionResult, error) {
	p, err := s.price(ctx, req, sessionMethods)
	if err != nil {
		return nil, err
	}
	o, err := s.createOrder(ctx, uid, p, p.form.PaymentMethod, model.ProviderStripe)
	if err != nil {
		return nil, err
	}

	in := payment.CheckoutSessionInput{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		Items:         lineItems(p.cart.Lines()),
		Shipping:      p.shipping,
		ShippingLabel: shippingLabel(p.form.ShippingMethod),
		Embedded:      embedded,
	}
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	if embedded {
		in.ReturnURL = fmt.Sprintf("%s/checkout/success?order_id=%d&session_id={CHECKOUT_SESSION_ID}", base, o.ID)
	} else {
		in.SuccessURL = fmt.Sprintf("%s/checkout/success?order_id=%d&session_id={CHECKOUT_SESSION_ID}", base, o.ID)
		in.CancelURL = fmt.Sprintf("%s/checkout?cancelled=1&order_id=%d", base, o.ID)
	}
	sess, err := s.stripe.CreateCheckoutSession(ctx, in)
	if err != nil {
		return nil, s.abandon(ctx, o.ID, err)
	}
	if err := s.orders.SetPaymentReference(ctx, o.ID, model.ProviderStripe, sess.ID); err != nil {
		return nil, err
	}
	return &SessionResult{OrderID: o.ID, SessionID: sess.ID, URL: sess.URL, ClientSecret: sess.ClientSecret}, nil
}

func lineItems(lines []cart.Line) []payment.LineItem {
	out := make([]payment.LineItem, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		if l.Size != "" {
			name = fmt.Sprintf("%s (%s)", l.Name, l.Size)
		}
		out = append(out, payment.LineItem{Name: name, Image: l.Image, UnitPrice: l.Price, Quantity: l.Quantity})
	}
	return out
}

func shippingLabel(method string) string {
	switch method {
	case checkout.ShippingExpress:
		return "Frete expresso"
	case checkout.ShippingStandard:
		return "Frete padrão"
	default:
		return "Frete"
	}
}

func (s *checkoutService) CreatePaymentIntent(ctx context.Context, uid string, req CheckoutRequest) (*PaymentIntentResult, error) {
	p, err := s.price(ctx, req, intentMethods)
	if err != nil {
		return nil, err
	}
	o, err := s.createOrder(ctx, uid, p, p.form.PaymentMethod, model.ProviderStripe)
	if err != nil {
		return nil, err
	}
	pi, err := s.stripe.CreatePaymentIntent(ctx, payment.PaymentIntentInput{
		OrderID:       o.ID,
		Amount:        o.Total,
		CustomerEmail: o.CustomerEmail,
		MethodTypes:   []string{string(p.form.PaymentMethod)},
		Description:   fmt.Sprintf("Pedido #%d", o.ID),
	})
	if err != nil {
		return nil, s.abandon(ctx, o.ID, err)
	}
	if err := s.orders.SetPaymentReference(ctx, o.ID, model.ProviderStripe, pi.ID); err != nil {
		return nil, err
	}
	return &PaymentIntentResult{OrderID: o.ID, PaymentIntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *checkoutService) CreatePix(ctx context.Context, uid string, req CheckoutRequest) (*PixResult, error) {
	p, err := s.price(ctx, req, pixMethods)
	if err != nil {
		return nil, err
	}
	o, err := s.createOrder(ctx, uid, p, model.PaymentMethodMercadoPagoPix, model.ProviderMercadoPago)
	if err != nil {
		return nil, err
	}

	now := s.now()
	providerExpiry := now.Add(s.cfg.PixProviderTTL)
	pix, err := s.pix.CreatePixPayment(ctx, payment.PixRequest{
		OrderID:         o.ID,
		Amount:          o.Total,
		Description:     fmt.Sprintf("Pedido #%d", o.ID),
		PayerEmail:      o.CustomerEmail,
		PayerFirstName:  firstName(o.CustomerName),
		NotificationURL: s.cfg.NotificationURL,
		ExpiresAt:       providerExpiry,
	})
	if err != nil {
		return nil, s.abandon(ctx, o.ID, err)
	}
	if !pix.ExpiresAt.IsZero() {
		providerExpiry = pix.ExpiresAt
	}
	if err := s.orders.SetPaymentReference(ctx, o.ID, model.ProviderMercadoPago, pix.ID); err != nil {
		return nil, err
	}
	return &PixResult{
		OrderID:      o.ID,
		PaymentID:    pix.ID,
		QRCode:       pix.QRCode,
		QRCodeBase64: pix.QRCodeBase64,
		TicketURL:    pix.TicketURL,
		ExpiresAt:    PixCountdownDeadline(now, s.cfg.PixDisplayTTL, providerExpiry),
	}, nil
}

// PixCountdownDeadline is the deadline shown to the customer: the display TTL,
// capped one minute before the provider's real expiry and never before now.
func PixCountdownDeadline(now time.Time, displayTTL time.Duration, providerExpiry time.Time) time.Time {
	deadline := now.Add(displayTTL)
	if limit := providerExpiry.Add(-time.Minute); limit.Before(deadline) {
		deadline = limit
	}
	if deadline.Before(now) {
		return now
	}
	return deadline
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// matches the card_password column size
const maxCardPassword = 64

func (s *checkoutService) SubmitBolsa(ctx context.Context, uid string, req BolsaRequest) (*model.BolsaUniformePayment, error) {
	if !req.Consent {
		return nil, fmt.Errorf("%w: consent is required", ErrInvalidInput)
	}
	password := strings.TrimSpace(req.CardPassword)
	if password == "" {
		return nil, fmt.Errorf("%w: card password is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) > maxCardPassword {
		return nil, fmt.Errorf("%w: card password is too long", ErrInvalidInput)
	}
	img, contentType, err := storage.DecodeBase64Image(req.QRCodeImage)
	if err != nil {
		return nil, fmt.Errorf("%w: qr code image: %w", ErrInvalidInput, err)
	}
	p, err := s.price(ctx, req.CheckoutRequest, bolsaMethods)
	if err != nil {
		return nil, err
	}

	items := make([]model.BolsaItem, 0, p.cart.Len())
	for _, l := range p.cart.Lines() {
		items = append(items, model.BolsaItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Price:     l.Price,
			Size:      l.Size,
			Quantity:  l.Quantity,
		})
	}
	bp := &model.BolsaUniformePayment{
		CustomerName:    p.form.Contact.Name,
		CustomerEmail:   p.form.Contact.Email,
		CustomerPhone:   p.form.Contact.Phone,
		CustomerCPF:     p.form.Contact.CPF,
		QRCodeImage:     storage.DataURI(contentType, img),
		CardPassword:    password,
		Status:          model.BolsaStatusPending,
		Items:           items,
		Subtotal:        p.cart.Subtotal(),
		Shipping:        p.shipping,
		ShippingMethod:  p.form.ShippingMethod,
		Total:           p.total(),
		ShippingAddress: datatypes.NewJSONType(p.form.Address),
	}
	if uid != "" {
		bp.UserUID = &uid
	}
	if err := s.bolsa.Create(ctx, bp); err != nil {
		return nil, err
	}
	s.metrics.BolsaPayment(string(model.BolsaStatusPending))
	logger.FromContext(ctx).Info("bolsa uniforme payment submitted",
		zap.Uint64("bolsa_payment_id", bp.ID),
		zap.String("total", bp.Total.StringFixed(2)),
		zap.Int("qr_bytes", len(img)),
	)
	return bp, nil
}
