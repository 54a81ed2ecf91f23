// Package paynet implements the Paynet gateway. Paynet takes Basic
// authenticated JSON with integer penny amounts plus a SHA-256 body
// hash over the order fields and the secret key.
package paynet

import (
	"context"
	"strconv"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://api.paynet.com.tr/v2"
	sandboxURL    = "https://sandbox-api.paynet.com.tr/v2"

	endpointSale               = "/payment/sale"
	endpointRefund             = "/payment/refund"
	endpointInquiry            = "/payment/inquiry"
	endpoint3DInit             = "/payment/3d/init"
	endpoint3DComplete         = "/payment/3d/complete"
	endpointSubscription       = "/subscription/create"
	endpointSubscriptionCancel = "/subscription/cancel"
	endpointInstallment        = "/payment/installment-query"
)

// Gateway implements the Paynet payment gateway
type Gateway struct {
	gateway.Base
	secretKey  string
	merchantID string
	client     *gateway.HTTPClient
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.Subscribable         = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured Paynet gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "paynet",
			HumanName: "Paynet",
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

// Configure validates the Paynet credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "secret_key", "merchant_id"); err != nil {
		return err
	}

	g.secretKey = cfg.Get("secret_key")
	g.merchantID = cfg.Get("merchant_id")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card through the sale endpoint
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	m, err := g.post(ctx, endpointSale, g.buildPaymentBody(req, nil))
	if err != nil {
		return nil, err
	}

	// the sale endpoint also reports success via code "0"
	if !cast.ToBool(m["is_successful"]) && cast.ToString(m["code"]) != "0" {
		return gateway.FailedPaymentResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
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
	pennyStr := strconv.Itoa(gateway.ToPenny(req.Amount))

	body := map[string]any{
		"merchant_id":    g.merchantID,
		"transaction_id": req.TransactionID,
		"order_id":       req.OrderID,
		"amount":         gateway.ToPenny(req.Amount),
		"reason":         req.Reason,
		"hash":           gateway.SHA256Hex(reference + pennyStr + g.secretKey),
	}

	m, err := g.post(ctx, endpointRefund, body)
	if err != nil {
		return nil, err
	}

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedRefundResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	return gateway.NewRefundResponse(req.TransactionID, req.OrderID, req.Amount, m), nil
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

	m, err := g.post(ctx, endpointInquiry, body)
	if err != nil {
		return nil, err
	}

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedQueryResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	var status gateway.PaymentStatus
	switch cast.ToString(m["payment_status"]) {
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

	amount := float64(cast.ToInt(m["amount"])) / 100
	return gateway.NewQueryResponse(cast.ToString(m["transaction_id"]), cast.ToString(m["order_id"]), amount, status, m), nil
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

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedSecureInit(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	if htmlContent := cast.ToString(m["html_content"]); htmlContent != "" {
		return gateway.SecureHTML(htmlContent, m), nil
	}
	if redirectURL := cast.ToString(m["redirect_url"]); redirectURL != "" {
		return gateway.SecureRedirect(redirectURL, nil, m), nil
	}

	return gateway.FailedSecureInit(cast.ToString(m["code"]), "3d response has no challenge content", m), nil
}

// CompleteSecurePayment finalizes a 3-D payment with the token from
// the callback. A failed challenge never reaches the network.
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	mdStatus := callback.Get("md_status", callback.Get("mdStatus", ""))
	if mdStatus != "1" {
		return gateway.FailedPaymentResponse(
			callback.Get("code", gateway.ErrCodePaymentFailed),
			callback.Get("message", "3d authentication failed"),
			callback.Raw(),
		), nil
	}

	body := map[string]any{
		"merchant_id":   g.merchantID,
		"payment_token": callback.Get("payment_token", callback.Get("token", "")),
		"order_id":      callback.Get("order_id", ""),
	}

	m, err := g.post(ctx, endpoint3DComplete, body)
	if err != nil {
		return nil, err
	}

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedPaymentResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	amount := float64(cast.ToInt(m["amount"])) / 100
	return gateway.NewPaymentResponse(cast.ToString(m["transaction_id"]), callback.Get("order_id", ""), amount, m), nil
}

// CreateSubscription starts a recurring payment plan
func (g *Gateway) CreateSubscription(ctx context.Context, req *gateway.SubscriptionRequest) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateSubscriptionCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	card := req.GetCard()
	body := map[string]any{
		"merchant_id":     g.merchantID,
		"plan_name":       req.GetPlanName(),
		"amount":          gateway.ToPenny(req.GetAmount()),
		"currency":        req.GetCurrency(),
		"period":          req.GetPeriod(),
		"period_interval": req.GetPeriodInterval(),
		"card_holder":     card.HolderName,
		"card_no":         card.Number,
		"card_exp_month":  card.ExpireMonth,
		"card_exp_year":   card.ExpireYear,
		"card_cvv":        card.CVV,
	}

	m, err := g.post(ctx, endpointSubscription, body)
	if err != nil {
		return nil, err
	}

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	return gateway.NewSubscriptionResponse(cast.ToString(m["subscription_id"]), gateway.SubscriptionActive, m), nil
}

// CancelSubscription stops a recurring payment plan
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}

	body := map[string]any{
		"merchant_id":     g.merchantID,
		"subscription_id": subscriptionID,
	}

	m, err := g.post(ctx, endpointSubscriptionCancel, body)
	if err != nil {
		return nil, err
	}

	if !cast.ToBool(m["is_successful"]) {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["code"]), cast.ToString(m["message"]), m), nil
	}

	return gateway.NewSubscriptionResponse(subscriptionID, gateway.SubscriptionCancelled, m), nil
}

// QueryInstallments lists installment options for a BIN
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"merchant_id": g.merchantID,
		"bin":         bin,
		"amount":      gateway.ToPenny(amount),
	}

	m, err := g.post(ctx, endpointInstallment, body)
	if err != nil {
		return nil, err
	}

	items := cast.ToSlice(m["installment_list"])
	infos := make([]gateway.InstallmentInfo, 0, len(items))
	for _, item := range items {
		entry := cast.ToStringMap(item)
		count := cast.ToInt(entry["count"])
		if count < 1 {
			continue
		}
		infos = append(infos, gateway.InstallmentInfo{
			Count:             count,
			InstallmentAmount: float64(cast.ToInt(entry["per_amount"])) / 100,
			TotalAmount:       float64(cast.ToInt(entry["total_amount"])) / 100,
			InterestRate:      cast.ToFloat64(entry["interest_rate"]),
		})
	}

	return infos, nil
}

func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	headers := map[string]string{
		"Authorization": "Basic " + gateway.Base64Encode(g.merchantID+":"+g.secretKey),
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
	penny := gateway.ToPenny(req.GetAmount())
	pennyStr := strconv.Itoa(penny)

	body := map[string]any{
		"merchant_id":    g.merchantID,
		"order_id":       req.GetOrderID(),
		"amount":         penny,
		"currency":       req.GetCurrency(),
		"installment":    req.GetInstallments(),
		"description":    req.GetDescription(),
		"card_holder":    card.HolderName,
		"card_no":        card.Number,
		"card_exp_month": card.ExpireMonth,
		"card_exp_year":  card.ExpireYear,
		"card_cvv":       card.CVV,
		"hash":           gateway.SHA256Hex(req.GetOrderID() + pennyStr + req.GetCurrency() + g.secretKey),
	}

	if customer := req.GetCustomer(); customer != nil {
		body["customer_name"] = customer.FirstName
		body["customer_surname"] = customer.LastName
		body["customer_email"] = customer.Email
		body["customer_ip"] = customer.IP
	}

	if items := req.GetCartItems(); len(items) > 0 {
		products := make([]map[string]any, 0, len(items))
		for _, item := range items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			products = append(products, map[string]any{
				"id":       item.ID,
				"name":     item.Name,
				"category": item.Category,
				"price":    gateway.ToPenny(item.Price),
				"quantity": qty,
			})
		}
		body["products"] = products
	}

	if secure != nil {
		body["success_url"] = secure.GetSuccessURL()
		body["fail_url"] = secure.GetFailURL()
	}

	return body
}
