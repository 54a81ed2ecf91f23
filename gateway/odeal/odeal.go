// Package odeal implements the Ödeal gateway. Requests are bearer
// authenticated JSON carrying a SHA-256 signature over the order
// fields and the secret key.
package odeal

import (
	"context"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://api.odeal.com/v1"
	sandboxURL    = "https://sandbox-api.odeal.com/v1"

	endpointPayment    = "/payment/auth"
	endpointRefund     = "/payment/refund"
	endpointDetail     = "/payment/detail"
	endpoint3DInit     = "/payment/3dsecure/init"
	endpoint3DComplete = "/payment/3dsecure/complete"

	statusSuccess = "success"
)

// Gateway implements the Ödeal payment gateway
type Gateway struct {
	gateway.Base
	apiKey    string
	secretKey string
	client    *gateway.HTTPClient
}

var (
	_ gateway.Payable       = (*Gateway)(nil)
	_ gateway.Refundable    = (*Gateway)(nil)
	_ gateway.Queryable     = (*Gateway)(nil)
	_ gateway.SecurePayable = (*Gateway)(nil)
)

// New creates an unconfigured Ödeal gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "odeal",
			HumanName: "Ödeal",
			FeatureSet: []gateway.Feature{
				gateway.FeaturePay,
				gateway.FeaturePayInstallment,
				gateway.FeatureRefund,
				gateway.FeatureQuery,
				gateway.FeatureSecure3D,
			},
			ProductionURL: productionURL,
			SandboxURL:    sandboxURL,
		},
	}
}

// Configure validates the Ödeal credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "api_key", "secret_key"); err != nil {
		return err
	}

	g.apiKey = cfg.Get("api_key")
	g.secretKey = cfg.Get("secret_key")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card through the auth endpoint
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	m, err := g.post(ctx, endpointPayment, g.buildPaymentBody(req, nil))
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedPaymentResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewPaymentResponse(cast.ToString(m["transactionId"]), req.GetOrderID(), req.GetAmount(), m), nil
}

// PayWithInstallment charges with the installment count from the request
func (g *Gateway) PayWithInstallment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePayInstallment); err != nil {
		return nil, err
	}
	return g.Pay(ctx, req)
}

// Refund refunds a payment
func (g *Gateway) Refund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureRefund); err != nil {
		return nil, err
	}

	reference := req.TransactionID
	if reference == "" {
		reference = req.OrderID
	}
	amount := gateway.ToDecimalString(req.Amount)

	body := map[string]any{
		"transactionId": req.TransactionID,
		"orderId":       req.OrderID,
		"amount":        amount,
		"signature":     gateway.SHA256Hex(reference + amount + g.secretKey),
	}

	m, err := g.post(ctx, endpointRefund, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedRefundResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewRefundResponse(req.TransactionID, req.OrderID, req.Amount, m), nil
}

// Query looks up a payment
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"transactionId": req.TransactionID,
		"orderId":       req.OrderID,
	}

	m, err := g.post(ctx, endpointDetail, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedQueryResponse(errorCode(m), errorMessage(m), m), nil
	}

	var status gateway.PaymentStatus
	switch cast.ToString(m["paymentStatus"]) {
	case "approved", "captured":
		status = gateway.StatusSuccessful
	case "declined", "error":
		status = gateway.StatusFailed
	case "pending":
		status = gateway.StatusPending
	case "refunded":
		status = gateway.StatusRefunded
	case "cancelled":
		status = gateway.StatusCancelled
	default:
		status = gateway.StatusPending
	}

	return gateway.NewQueryResponse(
		cast.ToString(m["transactionId"]),
		cast.ToString(m["orderId"]),
		cast.ToFloat64(m["amount"]),
		status,
		m,
	), nil
}

// InitSecurePayment starts the 3-D flow
func (g *Gateway) InitSecurePayment(ctx context.Context, req *gateway.SecurePaymentRequest) (*gateway.SecureInitResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return gateway.FailedSecureInit(failed.ErrorCode, failed.ErrorMessage, nil), nil
	}

	m, err := g.post(ctx, endpoint3DInit, g.buildPaymentBody(&req.PaymentRequest, req))
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedSecureInit(errorCode(m), errorMessage(m), m), nil
	}

	if encoded := cast.ToString(m["threeDSecureHtml"]); encoded != "" {
		htmlContent := gateway.Base64Decode(encoded)
		if htmlContent == "" {
			htmlContent = encoded
		}
		return gateway.SecureHTML(htmlContent, m), nil
	}
	if redirectURL := cast.ToString(m["redirectUrl"]); redirectURL != "" {
		return gateway.SecureRedirect(redirectURL, nil, m), nil
	}

	return gateway.FailedSecureInit(errorCode(m), "3d response has no challenge content", m), nil
}

// CompleteSecurePayment finalizes a 3-D payment with the callback token
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	status := callback.Get("status", callback.Get("mdStatus", ""))
	if status != statusSuccess && status != "1" {
		return gateway.FailedPaymentResponse(
			callback.Get("errorCode", gateway.ErrCodePaymentFailed),
			callback.Get("errorMessage", "3d authentication failed"),
			callback.Raw(),
		), nil
	}

	body := map[string]any{
		"paymentToken": callback.Get("paymentToken", ""),
		"orderId":      callback.Get("orderId", ""),
	}

	m, err := g.post(ctx, endpoint3DComplete, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedPaymentResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewPaymentResponse(
		cast.ToString(m["transactionId"]),
		callback.Get("orderId", ""),
		cast.ToFloat64(m["amount"]),
		m,
	), nil
}

func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + g.apiKey,
		"X-Api-Key":     g.apiKey,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{
		Endpoint: endpoint,
		Headers:  headers,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	return resp.Map(), nil
}

func (g *Gateway) buildPaymentBody(req *gateway.PaymentRequest, secure *gateway.SecurePaymentRequest) map[string]any {
	card := req.GetCard()
	amount := gateway.ToDecimalString(req.GetAmount())

	body := map[string]any{
		"orderId":     req.GetOrderID(),
		"amount":      amount,
		"currency":    req.GetCurrency(),
		"installment": req.GetInstallments(),
		"description": req.GetDescription(),
		"card": map[string]any{
			"holderName": card.HolderName,
			"number":     card.Number,
			"expMonth":   card.ExpireMonth,
			"expYear":    card.ExpireYear,
			"cvv":        card.CVV,
		},
		"signature": gateway.SHA256Hex(req.GetOrderID() + amount + req.GetCurrency() + g.secretKey),
	}

	if customer := req.GetCustomer(); customer != nil {
		body["buyer"] = map[string]any{
			"name":    customer.FirstName,
			"surname": customer.LastName,
			"email":   customer.Email,
			"ip":      customer.IP,
		}
	}

	if secure != nil {
		body["callbackUrl"] = secure.GetSuccessURL()
		body["failUrl"] = secure.GetFailURL()
	}

	return body
}

func ok(m map[string]any) bool {
	return cast.ToString(m["status"]) == statusSuccess
}

func errorCode(m map[string]any) string {
	return cast.ToString(m["errorCode"])
}

func errorMessage(m map[string]any) string {
	return cast.ToString(m["errorMessage"])
}
