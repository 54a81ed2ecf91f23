// Package payu implements the PayU gateway. PayU takes form-encoded
// uppercase fields with a length-prefixed HMAC order hash and answers
// JSON with uppercase keys.
package payu

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://secure.payu.com.tr"
	sandboxURL    = "https://sandbox.payu.com.tr"

	endpointOrder       = "/order/alu/v3"
	endpointRefund      = "/order/irn"
	endpointQuery       = "/order/ios"
	endpointToken       = "/order/tokens/"
	endpointTokenCancel = "/order/tokens/cancel/"

	statusSuccess    = "SUCCESS"
	statusAuthorized = "AUTHORIZED"

	orderDateLayout = "2006-01-02 15:04:05"
)

// Gateway implements the PayU payment gateway
type Gateway struct {
	gateway.Base
	merchant  string
	secretKey string
	client    *gateway.HTTPClient

	// now is swapped in tests to pin ORDER_DATE and IRN_DATE
	now func() time.Time
}

var (
	_ gateway.Payable       = (*Gateway)(nil)
	_ gateway.Refundable    = (*Gateway)(nil)
	_ gateway.Queryable     = (*Gateway)(nil)
	_ gateway.SecurePayable = (*Gateway)(nil)
	_ gateway.Subscribable  = (*Gateway)(nil)
)

// New creates an unconfigured PayU gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "payu",
			HumanName: "PayU",
			FeatureSet: []gateway.Feature{
				gateway.FeaturePay,
				gateway.FeaturePayInstallment,
				gateway.FeatureRefund,
				gateway.FeatureQuery,
				gateway.FeatureSecure3D,
				gateway.FeatureSubscription,
			},
			ProductionURL: productionURL,
			SandboxURL:    sandboxURL,
		},
		now: time.Now,
	}
}

// Configure validates the PayU credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "merchant", "secret_key"); err != nil {
		return err
	}

	g.merchant = cfg.Get("merchant")
	g.secretKey = cfg.Get("secret_key")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card through the ALU order endpoint
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	form := g.buildOrderForm(req, nil)

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointOrder, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if !orderOK(m) {
		return gateway.FailedPaymentResponse(cast.ToString(m["RETURN_CODE"]), cast.ToString(m["RETURN_MESSAGE"]), m), nil
	}

	return gateway.NewPaymentResponse(cast.ToString(m["REFNO"]), req.GetOrderID(), req.GetAmount(), m), nil
}

// PayWithInstallment charges with the installment count from the request
func (g *Gateway) PayWithInstallment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePayInstallment); err != nil {
		return nil, err
	}
	return g.Pay(ctx, req)
}

// Refund refunds a completed order
func (g *Gateway) Refund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureRefund); err != nil {
		return nil, err
	}

	amount := gateway.ToDecimalString(req.Amount)
	form := map[string]string{
		"MERCHANT":       g.merchant,
		"ORDER_REF":      req.TransactionID,
		"ORDER_AMOUNT":   amount,
		"ORDER_CURRENCY": gateway.CurrencyTRY,
		"IRN_DATE":       g.now().UTC().Format(orderDateLayout),
		"AMOUNT":         amount,
	}
	form["ORDER_HASH"] = g.orderHash(req.TransactionID, amount, gateway.CurrencyTRY)

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointRefund, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["RESPONSE_CODE"]) != "0" && cast.ToString(m["STATUS"]) != statusSuccess {
		return gateway.FailedRefundResponse(cast.ToString(m["RESPONSE_CODE"]), cast.ToString(m["RESPONSE_MSG"]), m), nil
	}

	return gateway.NewRefundResponse(cast.ToString(m["IRN_REFNO"]), req.OrderID, req.Amount, m), nil
}

// Query looks up an order by reference
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	reference := req.OrderID
	if reference == "" {
		reference = req.TransactionID
	}

	form := map[string]string{
		"MERCHANT":  g.merchant,
		"ORDER_REF": reference,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointQuery, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["ORDER_REF"]) == "" {
		return gateway.FailedQueryResponse(cast.ToString(m["RETURN_CODE"]), cast.ToString(m["RETURN_MESSAGE"]), m), nil
	}

	var status gateway.PaymentStatus
	switch cast.ToString(m["ORDER_STATUS"]) {
	case "PAYMENT_AUTHORIZED", "COMPLETE":
		status = gateway.StatusSuccessful
	case "PAYMENT_RECEIVED", "IN_PROGRESS":
		status = gateway.StatusPending
	case "REVERSED", "REFUND":
		status = gateway.StatusRefunded
	case "CANCELED":
		status = gateway.StatusCancelled
	default:
		status = gateway.StatusFailed
	}

	return gateway.NewQueryResponse(
		cast.ToString(m["REFNO"]),
		cast.ToString(m["ORDER_REF"]),
		cast.ToFloat64(m["ORDER_AMOUNT"]),
		status,
		m,
	), nil
}

// InitSecurePayment starts the 3-D flow by flagging the order as
// enrolled and passing the merchant return URL.
func (g *Gateway) InitSecurePayment(ctx context.Context, req *gateway.SecurePaymentRequest) (*gateway.SecureInitResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return gateway.FailedSecureInit(failed.ErrorCode, failed.ErrorMessage, nil), nil
	}

	form := g.buildOrderForm(&req.PaymentRequest, req)

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointOrder, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if urlThreeDS := cast.ToString(m["URL_3DS"]); urlThreeDS != "" {
		return gateway.SecureRedirect(urlThreeDS, nil, m), nil
	}
	if htmlContent := cast.ToString(m["3DS_HTML"]); htmlContent != "" {
		return gateway.SecureHTML(htmlContent, m), nil
	}

	return gateway.FailedSecureInit(cast.ToString(m["RETURN_CODE"]), cast.ToString(m["RETURN_MESSAGE"]), m), nil
}

// CompleteSecurePayment classifies the PayU return callback
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	raw := callback.Raw()
	status := callback.Get("STATUS", callback.Get("status", ""))
	if status != statusSuccess && status != statusAuthorized {
		return gateway.FailedPaymentResponse(
			callback.Get("RETURN_CODE", gateway.ErrCodePaymentFailed),
			callback.Get("RETURN_MESSAGE", "3d authentication failed"),
			raw,
		), nil
	}

	return gateway.NewPaymentResponse(
		callback.Get("REFNO", ""),
		callback.Get("ORDER_REF", ""),
		cast.ToFloat64(callback.Get("ORDER_AMOUNT", "")),
		raw,
	), nil
}

// CreateSubscription tokenizes a card for recurring charges
func (g *Gateway) CreateSubscription(ctx context.Context, req *gateway.SubscriptionRequest) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateSubscriptionCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	card := req.GetCard()
	form := map[string]string{
		"MERCHANT":        g.merchant,
		"REF_NO":          "SUB_" + uuid.NewString(),
		"PLAN_NAME":       req.GetPlanName(),
		"AMOUNT":          gateway.ToDecimalString(req.GetAmount()),
		"CURRENCY":        req.GetCurrency(),
		"PERIOD":          req.GetPeriod(),
		"PERIOD_INTERVAL": strconv.Itoa(req.GetPeriodInterval()),
		"CC_OWNER":        card.HolderName,
		"CC_NUMBER":       card.Number,
		"EXP_MONTH":       card.ExpireMonth,
		"EXP_YEAR":        card.ExpireYear,
		"CC_CVV":          card.CVV,
	}
	if customer := req.GetCustomer(); customer != nil {
		form["SUBSCRIBER_NAME"] = customer.FullName()
		form["SUBSCRIBER_EMAIL"] = customer.Email
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointToken, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["STATUS"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["RETURN_CODE"]), cast.ToString(m["RETURN_MESSAGE"]), m), nil
	}

	token := cast.ToString(m["IPN_CC_TOKEN"])
	if token == "" {
		token = cast.ToString(m["TOKEN"])
	}
	return gateway.NewSubscriptionResponse(token, gateway.SubscriptionActive, m), nil
}

// CancelSubscription cancels a recurring token
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}

	form := map[string]string{
		"MERCHANT": g.merchant,
		"TOKEN":    subscriptionID,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointTokenCancel, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["STATUS"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["RETURN_CODE"]), cast.ToString(m["RETURN_MESSAGE"]), m), nil
	}

	return gateway.NewSubscriptionResponse(subscriptionID, gateway.SubscriptionCancelled, m), nil
}

func (g *Gateway) buildOrderForm(req *gateway.PaymentRequest, secure *gateway.SecurePaymentRequest) map[string]string {
	card := req.GetCard()
	amount := gateway.ToDecimalString(req.GetAmount())

	form := map[string]string{
		"MERCHANT":                     g.merchant,
		"ORDER_REF":                    req.GetOrderID(),
		"ORDER_DATE":                   g.now().UTC().Format(orderDateLayout),
		"PRICES_CURRENCY":              req.GetCurrency(),
		"PAY_METHOD":                   "CCVISAMC",
		"CC_NUMBER":                    card.Number,
		"EXP_MONTH":                    card.ExpireMonth,
		"EXP_YEAR":                     card.ExpireYear,
		"CC_CVV":                       card.CVV,
		"CC_OWNER":                     card.HolderName,
		"SELECTED_INSTALLMENTS_NUMBER": strconv.Itoa(req.GetInstallments()),
		"BILL_COUNTRYCODE":             "TR",
		"ORDER_HASH":                   g.orderHash(req.GetOrderID(), amount, req.GetCurrency()),
	}

	items := req.GetCartItems()
	if len(items) == 0 {
		form["ORDER_PNAME[0]"] = "Ödeme"
		form["ORDER_PCODE[0]"] = "DEFAULT"
		form["ORDER_PPRICE[0]"] = amount
		form["ORDER_PQTY[0]"] = "1"
		form["ORDER_PRICE_TYPE[0]"] = "GROSS"
	} else {
		for i, item := range items {
			idx := strconv.Itoa(i)
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			form["ORDER_PNAME["+idx+"]"] = item.Name
			form["ORDER_PCODE["+idx+"]"] = item.ID
			form["ORDER_PPRICE["+idx+"]"] = gateway.ToDecimalString(item.Price)
			form["ORDER_PQTY["+idx+"]"] = strconv.Itoa(qty)
			form["ORDER_PRICE_TYPE["+idx+"]"] = "GROSS"
		}
	}

	if customer := req.GetCustomer(); customer != nil {
		form["CLIENT_IP"] = customer.IP
		form["BILL_FNAME"] = customer.FirstName
		form["BILL_LNAME"] = customer.LastName
		form["BILL_EMAIL"] = customer.Email
		form["BILL_PHONE"] = customer.Phone
	}
	if billing := req.GetBillingAddress(); billing != nil {
		form["BILL_ADDRESS"] = billing.Address
		form["BILL_CITY"] = billing.City
		form["BILL_ZIPCODE"] = billing.ZipCode
	}

	if secure != nil {
		form["3DS_ENROLLED"] = "YES"
		form["BACK_REF"] = secure.GetCallbackURL()
	}

	return form
}

// orderHash computes the length-prefixed HMAC over merchant, order
// reference, amount and currency.
func (g *Gateway) orderHash(orderRef, amount, currency string) string {
	data := lenPrefix(g.merchant) + lenPrefix(orderRef) + lenPrefix(amount) + lenPrefix(currency)
	return gateway.HMACSHA256Hex(data, g.secretKey)
}

func lenPrefix(v string) string {
	return strconv.Itoa(len(v)) + v
}

func orderOK(m map[string]any) bool {
	return cast.ToString(m["STATUS"]) == statusSuccess || cast.ToString(m["RETURN_CODE"]) == statusAuthorized
}
