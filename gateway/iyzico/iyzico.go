// Package iyzico implements the Iyzico gateway. Iyzico takes JSON
// bodies signed with an IYZWS authorization header computed over the
// exact request bytes, and reports amounts as decimal strings.
package iyzico

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://api.iyzipay.com"
	sandboxURL    = "https://sandbox-api.iyzipay.com"

	endpointPayment            = "/payment/auth"
	endpointRefund             = "/payment/refund"
	endpointDetail             = "/payment/detail"
	endpoint3DInit             = "/payment/3dsecure/initialize"
	endpoint3DAuth             = "/payment/3dsecure/auth"
	endpointSubscription       = "/v2/subscription/initialize"
	endpointSubscriptionCancel = "/v2/subscription/cancel"
	endpointInstallment        = "/payment/iyzi/installment"

	statusSuccess = "success"
	localeTR      = "tr"
	clientVersion = "arpay-go-1.0.0"
)

// Gateway implements the Iyzico payment gateway
type Gateway struct {
	gateway.Base
	apiKey    string
	secretKey string
	client    *gateway.HTTPClient
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.Subscribable         = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured Iyzico gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "iyzico",
			HumanName: "Iyzico",
			FeatureSet: []gateway.Feature{
				gateway.FeaturePay,
				gateway.FeaturePayInstallment,
				gateway.FeatureRefund,
				gateway.FeatureQuery,
				gateway.FeatureSecure3D,
				gateway.FeatureSubscription,
				gateway.FeatureInstallmentQuery,
			},
			ProductionURL: productionURL,
			SandboxURL:    sandboxURL,
		},
	}
}

// Configure validates the Iyzico credentials. The optional base_url
// key overrides both environments, which the tests use.
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "api_key", "secret_key"); err != nil {
		return err
	}

	g.apiKey = cfg.Get("api_key")
	g.secretKey = cfg.Get("secret_key")
	g.ApplyTestMode(cfg)

	baseURL := g.BaseURL()
	if cfg.Has("base_url") {
		baseURL = cfg.Get("base_url")
	}
	g.client = gateway.NewHTTPClient(g.Name(), baseURL)

	return nil
}

// Pay charges a card through the direct auth endpoint
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	m, err := g.post(ctx, endpointPayment, g.buildPaymentBody(req, ""))
	if err != nil {
		return nil, err
	}

	return g.parsePaymentResponse(req, m), nil
}

// PayWithInstallment charges with the installment count from the request
func (g *Gateway) PayWithInstallment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePayInstallment); err != nil {
		return nil, err
	}
	return g.Pay(ctx, req)
}

// Refund refunds a payment transaction
func (g *Gateway) Refund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureRefund); err != nil {
		return nil, err
	}

	body := map[string]any{
		"locale":               localeTR,
		"paymentTransactionId": req.TransactionID,
		"price":                gateway.ToDecimalString(req.Amount),
		"currency":             gateway.CurrencyTRY,
	}

	m, err := g.post(ctx, endpointRefund, body)
	if err != nil {
		return nil, err
	}

	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedRefundResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	return gateway.NewRefundResponse(cast.ToString(m["paymentTransactionId"]), req.OrderID, cast.ToFloat64(m["price"]), m), nil
}

// Query looks up a payment by its Iyzico payment id
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"locale":    localeTR,
		"paymentId": req.TransactionID,
	}

	m, err := g.post(ctx, endpointDetail, body)
	if err != nil {
		return nil, err
	}

	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedQueryResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	status := gateway.StatusPending
	switch cast.ToString(m["paymentStatus"]) {
	case "SUCCESS":
		status = gateway.StatusSuccessful
	case "FAILURE":
		status = gateway.StatusFailed
	case "INIT_THREEDS", "CALLBACK_THREEDS":
		status = gateway.StatusPending
	}

	return gateway.NewQueryResponse(
		cast.ToString(m["paymentId"]),
		cast.ToString(m["conversationId"]),
		cast.ToFloat64(m["price"]),
		status,
		m,
	), nil
}

// InitSecurePayment starts the 3-D flow. Iyzico returns the challenge
// page as base64 HTML which is decoded before handing it back.
func (g *Gateway) InitSecurePayment(ctx context.Context, req *gateway.SecurePaymentRequest) (*gateway.SecureInitResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return gateway.FailedSecureInit(failed.ErrorCode, failed.ErrorMessage, nil), nil
	}

	m, err := g.post(ctx, endpoint3DInit, g.buildPaymentBody(&req.PaymentRequest, req.GetCallbackURL()))
	if err != nil {
		return nil, err
	}

	htmlContent := cast.ToString(m["threeDSHtmlContent"])
	if cast.ToString(m["status"]) != statusSuccess || htmlContent == "" {
		return gateway.FailedSecureInit(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	if decoded := gateway.Base64Decode(htmlContent); decoded != "" {
		htmlContent = decoded
	}
	return gateway.SecureHTML(htmlContent, m), nil
}

// CompleteSecurePayment finalizes the 3-D payment referenced by the
// paymentId the callback carries.
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	paymentID := callback.Get("paymentId", "")
	if paymentID == "" {
		return gateway.FailedPaymentResponse(gateway.ErrCodePaymentFailed, "callback is missing paymentId", callback.Raw()), nil
	}

	body := map[string]any{
		"locale":    localeTR,
		"paymentId": paymentID,
	}
	if conversationID := callback.Get("conversationId", ""); conversationID != "" {
		body["conversationId"] = conversationID
	}

	m, err := g.post(ctx, endpoint3DAuth, body)
	if err != nil {
		return nil, err
	}

	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedPaymentResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	return gateway.NewPaymentResponse(
		cast.ToString(m["paymentId"]),
		cast.ToString(m["conversationId"]),
		cast.ToFloat64(m["price"]),
		m,
	), nil
}

// CreateSubscription starts a subscription on a pricing plan
func (g *Gateway) CreateSubscription(ctx context.Context, req *gateway.SubscriptionRequest) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateSubscriptionCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	card := req.GetCard()
	body := map[string]any{
		"locale":                   localeTR,
		"pricingPlanReferenceCode": req.GetPlanName(),
		"paymentCard": map[string]any{
			"cardHolderName": card.HolderName,
			"cardNumber":     card.Number,
			"expireMonth":    card.ExpireMonth,
			"expireYear":     card.ExpireYear,
			"cvc":            card.CVV,
		},
	}
	if customer := req.GetCustomer(); customer != nil {
		body["customer"] = map[string]any{
			"name":    customer.FirstName,
			"surname": customer.LastName,
			"email":   customer.Email,
		}
	}

	m, err := g.post(ctx, endpointSubscription, body)
	if err != nil {
		return nil, err
	}

	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	data := cast.ToStringMap(m["data"])
	return gateway.NewSubscriptionResponse(cast.ToString(data["referenceCode"]), gateway.SubscriptionActive, m), nil
}

// CancelSubscription cancels a subscription by its reference code
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}

	body := map[string]any{
		"locale":                    localeTR,
		"subscriptionReferenceCode": subscriptionID,
	}

	m, err := g.post(ctx, endpointSubscriptionCancel, body)
	if err != nil {
		return nil, err
	}

	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m), nil
	}

	return gateway.NewSubscriptionResponse(subscriptionID, gateway.SubscriptionCancelled, m), nil
}

// QueryInstallments lists installment options for a BIN. Iyzico only
// reports per-installment totals, so the interest rate is derived.
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"locale":    localeTR,
		"binNumber": bin,
		"price":     gateway.ToDecimalString(amount),
	}

	m, err := g.post(ctx, endpointInstallment, body)
	if err != nil {
		return nil, err
	}

	var infos []gateway.InstallmentInfo
	for _, detail := range cast.ToSlice(m["installmentDetails"]) {
		detailMap := cast.ToStringMap(detail)
		for _, price := range cast.ToSlice(detailMap["installmentPrices"]) {
			priceMap := cast.ToStringMap(price)
			count := cast.ToInt(priceMap["installmentNumber"])
			if count < 1 {
				continue
			}
			total := cast.ToFloat64(priceMap["totalPrice"])
			rate := 0.0
			if amount > 0 {
				rate = gateway.Round2((total - amount) / amount * 100)
			}
			infos = append(infos, gateway.InstallmentInfo{
				Count:             count,
				InstallmentAmount: cast.ToFloat64(priceMap["installmentPrice"]),
				TotalAmount:       total,
				InterestRate:      rate,
			})
		}
	}

	return infos, nil
}

// post signs the marshaled body and sends it. The signature covers the
// exact bytes on the wire, so the body is marshaled exactly once.
func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	payload, err := gateway.MarshalBody(body)
	if err != nil {
		return nil, &gateway.NetworkError{Gateway: g.Name(), Err: err}
	}

	rnd := strconv.FormatInt(time.Now().UnixNano(), 10)
	signature := gateway.SHA1Base64(g.apiKey + rnd + g.secretKey + payload)

	headers := map[string]string{
		"Authorization":         "IYZWS " + g.apiKey + ":" + signature,
		"x-iyzi-rnd":            rnd,
		"x-iyzi-client-version": clientVersion,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{
		Endpoint: endpoint,
		Headers:  headers,
		Body:     payload,
	})
	if err != nil {
		return nil, err
	}

	return resp.Map(), nil
}

func (g *Gateway) buildPaymentBody(req *gateway.PaymentRequest, callbackURL string) map[string]any {
	price := gateway.ToDecimalString(req.GetAmount())
	card := req.GetCard()

	body := map[string]any{
		"locale":         localeTR,
		"conversationId": req.GetOrderID(),
		"price":          price,
		"paidPrice":      price,
		"currency":       req.GetCurrency(),
		"installment":    req.GetInstallments(),
		"paymentChannel": "WEB",
		"paymentGroup":   "PRODUCT",
		"paymentCard": map[string]any{
			"cardHolderName": card.HolderName,
			"cardNumber":     card.Number,
			"expireMonth":    card.ExpireMonth,
			"expireYear":     card.ExpireYear,
			"cvc":            card.CVV,
			"registerCard":   "0",
		},
		"buyer":       g.buildBuyer(req),
		"basketItems": g.buildBasketItems(req),
	}

	address := map[string]any{
		"contactName": "Ad Soyad",
		"city":        "Istanbul",
		"country":     "Turkey",
		"address":     "Adres",
	}
	if customer := req.GetCustomer(); customer != nil && customer.FullName() != "" {
		address["contactName"] = customer.FullName()
	}
	if billing := req.GetBillingAddress(); billing != nil {
		address["city"] = billing.City
		address["country"] = billing.Country
		address["address"] = billing.Address
	}
	body["billingAddress"] = address
	body["shippingAddress"] = address
	if shipping := req.GetShippingAddress(); shipping != nil {
		shippingAddr := map[string]any{
			"contactName": address["contactName"],
			"city":        shipping.City,
			"country":     shipping.Country,
			"address":     shipping.Address,
		}
		body["shippingAddress"] = shippingAddr
	}

	if callbackURL != "" {
		body["callbackUrl"] = callbackURL
	}

	return body
}

func (g *Gateway) buildBuyer(req *gateway.PaymentRequest) map[string]any {
	buyer := map[string]any{
		"id":                  "BUYER_" + req.GetOrderID(),
		"name":                "Ad",
		"surname":             "Soyad",
		"email":               "musteri@example.com",
		"identityNumber":      "11111111111",
		"registrationAddress": "Adres",
		"city":                "Istanbul",
		"country":             "Turkey",
	}

	customer := req.GetCustomer()
	if customer == nil {
		return buyer
	}

	if customer.IdentityNumber != "" {
		buyer["id"] = customer.IdentityNumber
		buyer["identityNumber"] = customer.IdentityNumber
	}
	if customer.FirstName != "" {
		buyer["name"] = customer.FirstName
	}
	if customer.LastName != "" {
		buyer["surname"] = customer.LastName
	}
	if customer.Email != "" {
		buyer["email"] = customer.Email
	}
	if customer.IP != "" {
		buyer["ip"] = customer.IP
	}
	if customer.Phone != "" {
		buyer["gsmNumber"] = customer.Phone
	}
	if billing := req.GetBillingAddress(); billing != nil {
		buyer["registrationAddress"] = billing.Address
		if billing.City != "" {
			buyer["city"] = billing.City
		}
		if billing.Country != "" {
			buyer["country"] = billing.Country
		}
	}

	return buyer
}

func (g *Gateway) buildBasketItems(req *gateway.PaymentRequest) []map[string]any {
	items := req.GetCartItems()
	if len(items) == 0 {
		return []map[string]any{{
			"id":        "DEFAULT",
			"name":      "Ödeme",
			"category1": "Genel",
			"itemType":  "PHYSICAL",
			"price":     gateway.ToDecimalString(req.GetAmount()),
		}}
	}

	basket := make([]map[string]any, 0, len(items))
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Genel"
		}
		basket = append(basket, map[string]any{
			"id":        item.ID,
			"name":      item.Name,
			"category1": category,
			"itemType":  "PHYSICAL",
			"price":     gateway.ToDecimalString(item.Total()),
		})
	}
	return basket
}

func (g *Gateway) parsePaymentResponse(req *gateway.PaymentRequest, m map[string]any) *gateway.PaymentResponse {
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedPaymentResponse(cast.ToString(m["errorCode"]), cast.ToString(m["errorMessage"]), m)
	}

	amount := cast.ToFloat64(m["price"])
	if amount == 0 {
		amount = req.GetAmount()
	}
	return gateway.NewPaymentResponse(cast.ToString(m["paymentId"]), req.GetOrderID(), amount, m)
}
