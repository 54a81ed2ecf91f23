package gateway

// CurrencyTRY is the default currency for every request type
const CurrencyTRY = "TRY"

// PaymentRequest describes a direct charge. Build it fluently:
//
//	req := gateway.NewPaymentRequest().
//		Amount(150.00).
//		OrderID("ORD-1").
//		Card(card).
//		Customer(customer)
type PaymentRequest struct {
	amount           float64
	currency         string
	orderID          string
	description      string
	installmentCount int
	card             *CreditCard
	customer         *Customer
	billingAddress   *Address
	shippingAddress  *Address
	cartItems        []*CartItem
	meta             map[string]string
}

// NewPaymentRequest returns a request with TRY currency and a single installment
func NewPaymentRequest() *PaymentRequest {
	return &PaymentRequest{
		currency:         CurrencyTRY,
		installmentCount: 1,
		meta:             make(map[string]string),
	}
}

func (r *PaymentRequest) Amount(amount float64) *PaymentRequest {
	r.amount = amount
	return r
}

func (r *PaymentRequest) Currency(currency string) *PaymentRequest {
	r.currency = currency
	return r
}

func (r *PaymentRequest) OrderID(orderID string) *PaymentRequest {
	r.orderID = orderID
	return r
}

func (r *PaymentRequest) Description(description string) *PaymentRequest {
	r.description = description
	return r
}

// Installments sets the installment count, clamped to at least 1
func (r *PaymentRequest) Installments(count int) *PaymentRequest {
	if count < 1 {
		count = 1
	}
	r.installmentCount = count
	return r
}

func (r *PaymentRequest) Card(card *CreditCard) *PaymentRequest {
	r.card = card
	return r
}

func (r *PaymentRequest) Customer(customer *Customer) *PaymentRequest {
	r.customer = customer
	return r
}

func (r *PaymentRequest) BillingAddress(address *Address) *PaymentRequest {
	r.billingAddress = address
	return r
}

func (r *PaymentRequest) ShippingAddress(address *Address) *PaymentRequest {
	r.shippingAddress = address
	return r
}

func (r *PaymentRequest) CartItems(items ...*CartItem) *PaymentRequest {
	r.cartItems = items
	return r
}

func (r *PaymentRequest) AddCartItem(item *CartItem) *PaymentRequest {
	r.cartItems = append(r.cartItems, item)
	return r
}

func (r *PaymentRequest) Meta(key, value string) *PaymentRequest {
	r.meta[key] = value
	return r
}

func (r *PaymentRequest) GetAmount() float64 { return r.amount }

func (r *PaymentRequest) GetCurrency() string { return r.currency }

func (r *PaymentRequest) GetOrderID() string { return r.orderID }

func (r *PaymentRequest) GetDescription() string { return r.description }

func (r *PaymentRequest) GetInstallments() int { return r.installmentCount }

func (r *PaymentRequest) GetCard() *CreditCard { return r.card }

func (r *PaymentRequest) GetCustomer() *Customer { return r.customer }

func (r *PaymentRequest) GetBillingAddress() *Address { return r.billingAddress }

func (r *PaymentRequest) GetShippingAddress() *Address { return r.shippingAddress }

func (r *PaymentRequest) GetCartItems() []*CartItem { return r.cartItems }

func (r *PaymentRequest) GetMeta(key string) string { return r.meta[key] }

// SecurePaymentRequest extends PaymentRequest with the return URLs of
// the 3-D Secure flow. CallbackURL is required; SuccessURL and FailURL
// fall back to it where a provider wants separate return addresses.
type SecurePaymentRequest struct {
	PaymentRequest
	callbackURL string
	successURL  string
	failURL     string
}

// NewSecurePaymentRequest returns a secure request with defaults applied
func NewSecurePaymentRequest() *SecurePaymentRequest {
	return &SecurePaymentRequest{
		PaymentRequest: *NewPaymentRequest(),
	}
}

func (r *SecurePaymentRequest) CallbackURL(url string) *SecurePaymentRequest {
	r.callbackURL = url
	return r
}

func (r *SecurePaymentRequest) SuccessURL(url string) *SecurePaymentRequest {
	r.successURL = url
	return r
}

func (r *SecurePaymentRequest) FailURL(url string) *SecurePaymentRequest {
	r.failURL = url
	return r
}

func (r *SecurePaymentRequest) GetCallbackURL() string { return r.callbackURL }

// GetSuccessURL returns the success URL, falling back to the callback URL
func (r *SecurePaymentRequest) GetSuccessURL() string {
	if r.successURL != "" {
		return r.successURL
	}
	return r.callbackURL
}

// GetFailURL returns the failure URL, falling back to the callback URL
func (r *SecurePaymentRequest) GetFailURL() string {
	if r.failURL != "" {
		return r.failURL
	}
	return r.callbackURL
}

// RefundRequest asks for a full or partial refund of a payment
type RefundRequest struct {
	TransactionID string
	OrderID       string
	Amount        float64
	Reason        string
	Meta          map[string]string
}

// QueryRequest looks up a payment by transaction or order ID
type QueryRequest struct {
	TransactionID string
	OrderID       string
	Meta          map[string]string
}

// SubscriptionRequest starts a recurring payment
type SubscriptionRequest struct {
	planName       string
	amount         float64
	currency       string
	period         string
	periodInterval int
	card           *CreditCard
	customer       *Customer
	meta           map[string]string
}

// NewSubscriptionRequest returns a subscription request with TRY
// currency, monthly period and interval 1.
func NewSubscriptionRequest() *SubscriptionRequest {
	return &SubscriptionRequest{
		currency:       CurrencyTRY,
		period:         "monthly",
		periodInterval: 1,
		meta:           make(map[string]string),
	}
}

func (r *SubscriptionRequest) PlanName(name string) *SubscriptionRequest {
	r.planName = name
	return r
}

func (r *SubscriptionRequest) Amount(amount float64) *SubscriptionRequest {
	r.amount = amount
	return r
}

func (r *SubscriptionRequest) Currency(currency string) *SubscriptionRequest {
	r.currency = currency
	return r
}

func (r *SubscriptionRequest) Period(period string) *SubscriptionRequest {
	r.period = period
	return r
}

// PeriodInterval sets the billing interval, clamped to at least 1
func (r *SubscriptionRequest) PeriodInterval(interval int) *SubscriptionRequest {
	if interval < 1 {
		interval = 1
	}
	r.periodInterval = interval
	return r
}

func (r *SubscriptionRequest) Card(card *CreditCard) *SubscriptionRequest {
	r.card = card
	return r
}

func (r *SubscriptionRequest) Customer(customer *Customer) *SubscriptionRequest {
	r.customer = customer
	return r
}

func (r *SubscriptionRequest) Meta(key, value string) *SubscriptionRequest {
	r.meta[key] = value
	return r
}

func (r *SubscriptionRequest) GetPlanName() string { return r.planName }

func (r *SubscriptionRequest) GetAmount() float64 { return r.amount }

func (r *SubscriptionRequest) GetCurrency() string { return r.currency }

func (r *SubscriptionRequest) GetPeriod() string { return r.period }

func (r *SubscriptionRequest) GetPeriodInterval() int { return r.periodInterval }

func (r *SubscriptionRequest) GetCard() *CreditCard { return r.card }

func (r *SubscriptionRequest) GetCustomer() *Customer { return r.customer }

func (r *SubscriptionRequest) GetMeta(key string) string { return r.meta[key] }
