// Package vepara implements the Vepara gateway. Every request is JSON
// signed with an X-Hash header (HMAC-SHA256 over the body) and answers
// carry an integer status_code where 100 means success.
package vepara

import (
	"context"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://api.vepara.com.tr/v2"
	sandboxURL    = "https://sandbox-api.vepara.com.tr/v2"

	endpointPayment     = "/payment/non3d"
	endpointRefund      = "/payment/refund"
	endpointQuery       = "/payment/query"
	endpoint3D          = "/payment/3d"
	endpointInstallment = "/payment/installment"

	statusCodeOK = 100
)

// Gateway implements the Vepara payment gateway
type Gateway struct {
	gateway.Base
	apiKey     string
	secretKey  string
	merchantID string
	client     *gateway.HTTPClient
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured Vepara gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "vepara",
			HumanName: "Vepara",
			FeatureSet: []gateway.Feature{
				gateway.FeaturePay,
				gateway.FeaturePayInstallment,
				gateway.FeatureRefund,
				gateway.FeatureQuery,
				gateway.FeatureSecure3D,
				gateway.FeatureInstallmentQuery,
			},
			ProductionURL: productionURL,
			SandboxURL:    sandboxURL,
		},
	}
}

// Configure validates the Vepara credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "api_key", "secret_key", "merchant_id"); err != nil {
		return err
	}

	g.apiKey = cfg.Get("api_key")
	g.secretKey = cfg.Get("secret_key")
	g.merchantID = cfg.Get("merchant_id")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card through the non 3-D endpoint
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
		return gateway.FailedPaymentResponse(statusCode(m), statusDescription(m), m), nil
	}

	return gateway.NewPaymentResponse(cast.ToString(m["transaction_id"]), req.GetOrderID(), req.GetAmount(), m), nil
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

	body := map[string]any{
		"merchant_id":    g.merchantID,
		"transaction_id": reference,
		"amount":         gateway.ToDecimalString(req.Amount),
	}

	m, err := g.post(ctx, endpointRefund, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedRefundResponse(statusCode(m), statusDescription(m), m), nil
	}

	return gateway.NewRefundResponse(reference, req.OrderID, req.Amount, m), nil
}

// Query looks up a payment
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"merchant_id":    g.merchantID,
		"transaction_id": req.TransactionID,
		"order_id":       req.OrderID,
	}

	m, err := g.post(ctx, endpointQuery, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedQueryResponse(statusCode(m), statusDescription(m), m), nil
	}

	return gateway.NewQueryResponse(
		cast.ToString(m["transaction_id"]),
		cast.ToString(m["order_id"]),
		cast.ToFloat64(m["amount"]),
		gateway.StatusSuccessful,
		m,
	), nil
}

// InitSecurePayment starts the 3-D flow. Vepara either redirects with
// form data or hands back an inline challenge page.
func (g *Gateway) InitSecurePayment(ctx context.Context, req *gateway.SecurePaymentRequest) (*gateway.SecureInitResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return gateway.FailedSecureInit(failed.ErrorCode, failed.ErrorMessage, nil), nil
	}

	m, err := g.post(ctx, endpoint3D, g.buildPaymentBody(&req.PaymentRequest, req))
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedSecureInit(statusCode(m), statusDescription(m), m), nil
	}

	if redirectURL := cast.ToString(m["redirect_url"]); redirectURL != "" {
		return gateway.SecureRedirect(redirectURL, cast.ToStringMapString(m["form_data"]), m), nil
	}
	if htmlContent := cast.ToString(m["html_content"]); htmlContent != "" {
		return gateway.SecureHTML(htmlContent, m), nil
	}

	return gateway.FailedSecureInit(statusCode(m), "3d response has no redirect url or html content", m), nil
}

// CompleteSecurePayment classifies the Vepara return callback
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	raw := callback.Raw()
	status := callback.Get("status", "")
	if status != "success" && status != "1" {
		return gateway.FailedPaymentResponse(callback.Get("error_code", gateway.ErrCodePaymentFailed), callback.Get("error_message", "payment failed"), raw), nil
	}

	return gateway.NewPaymentResponse(
		callback.Get("transaction_id", ""),
		callback.Get("order_id", ""),
		cast.ToFloat64(callback.Get("amount", "")),
		raw,
	), nil
}

// QueryInstallments lists installment options
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"merchant_id": g.merchantID,
		"bin_number":  bin,
		"amount":      gateway.ToDecimalString(amount),
	}

	m, err := g.post(ctx, endpointInstallment, body)
	if err != nil {
		return nil, err
	}

	items := cast.ToSlice(m["installments"])

	infos := make([]gateway.InstallmentInfo, 0, len(items))
	for _, item := range items {
		entry := cast.ToStringMap(item)
		count := cast.ToInt(entry["count"])
		if count < 1 {
			continue
		}
		infos = append(infos, gateway.InstallmentInfo{
			Count:             count,
			InstallmentAmount: cast.ToFloat64(entry["per_amount"]),
			TotalAmount:       cast.ToFloat64(entry["total_amount"]),
			InterestRate:      cast.ToFloat64(entry["interest_rate"]),
		})
	}

	return infos, nil
}

// post marshals once, signs the exact bytes into X-Hash and sends
func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	payload, err := gateway.MarshalBody(body)
	if err != nil {
		return nil, &gateway.NetworkError{Gateway: g.Name(), Err: err}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + g.apiKey,
		"X-Hash":        gateway.HMACSHA256Hex(payload, g.secretKey),
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

func (g *Gateway) buildPaymentBody(req *gateway.PaymentRequest, secure *gateway.SecurePaymentRequest) map[string]any {
	card := req.GetCard()
	body := map[string]any{
		"merchant_id":      g.merchantID,
		"order_id":         req.GetOrderID(),
		"amount":           gateway.ToDecimalString(req.GetAmount()),
		"currency":         req.GetCurrency(),
		"installment":      req.GetInstallments(),
		"description":      req.GetDescription(),
		"card_holder_name": card.HolderName,
		"card_number":      card.Number,
		"expiry_month":     card.ExpireMonth,
		"expiry_year":      card.ExpireYear,
		"cvv":              card.CVV,
	}

	if customer := req.GetCustomer(); customer != nil {
		body["customer_ip"] = customer.IP
		body["customer_email"] = customer.Email
	}
	if secure != nil {
		body["callback_url"] = secure.GetCallbackURL()
	}

	return body
}

func ok(m map[string]any) bool {
	return cast.ToInt(m["status_code"]) == statusCodeOK
}

func statusCode(m map[string]any) string {
	return cast.ToString(m["status_code"])
}

func statusDescription(m map[string]any) string {
	return cast.ToString(m["status_description"])
}
