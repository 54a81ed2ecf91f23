// Package paytr implements the PayTR gateway. PayTR speaks form-encoded
// requests authenticated with per-endpoint HMAC tokens and answers JSON.
package paytr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://www.paytr.com"
	sandboxURL    = "https://test.paytr.com"

	endpointToken           = "/odeme/api/get-token"
	endpointRefund          = "/odeme/iade"
	endpointStatus          = "/odeme/durum-sorgu"
	endpointRecurring       = "/odeme/api/recurring"
	endpointRecurringCancel = "/odeme/api/recurring/cancel"
	endpointBinDetail       = "/odeme/api/bin-detail"
	securePaymentURL        = "https://www.paytr.com/odeme/guvenli/"

	statusSuccess = "success"
)

// Gateway implements the PayTR payment gateway
type Gateway struct {
	gateway.Base
	merchantID   string
	merchantKey  string
	merchantSalt string
	client       *gateway.HTTPClient
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.Subscribable         = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured PayTR gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "paytr",
			HumanName: "PayTR",
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

// Configure validates the PayTR credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "merchant_id", "merchant_key", "merchant_salt"); err != nil {
		return err
	}

	g.merchantID = cfg.Get("merchant_id")
	g.merchantKey = cfg.Get("merchant_key")
	g.merchantSalt = cfg.Get("merchant_salt")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card through the direct (non 3-D) token API
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	form := g.buildTokenForm(req, nil)
	form["non_3d"] = "1"

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointToken, FormData: form})
	if err != nil {
		return nil, err
	}

	return g.parsePaymentResponse(req, resp.Map()), nil
}

// PayWithInstallment charges with installments. PayTR requires at
// least two installments here; single installment goes through Pay.
func (g *Gateway) PayWithInstallment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePayInstallment); err != nil {
		return nil, err
	}
	if req.GetInstallments() < 2 {
		return gateway.FailedPaymentResponse(gateway.ErrCodeInvalidInstallment, "installment count must be at least 2", nil), nil
	}

	return g.Pay(ctx, req)
}

// Refund refunds a payment fully or partially
func (g *Gateway) Refund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureRefund); err != nil {
		return nil, err
	}

	penny := gateway.ToPenny(req.Amount)
	pennyStr := strconv.Itoa(penny)
	token := gateway.HMACSHA256Base64(g.merchantID+req.OrderID+pennyStr+g.merchantSalt, g.merchantKey)

	form := map[string]string{
		"merchant_id":   g.merchantID,
		"merchant_oid":  req.OrderID,
		"return_amount": pennyStr,
		"paytr_token":   token,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointRefund, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedRefundResponse(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m), nil
	}

	return gateway.NewRefundResponse(cast.ToString(m["trans_id"]), req.OrderID, req.Amount, m), nil
}

// Query looks up a payment by merchant order id
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	token := gateway.HMACSHA256Base64(g.merchantID+req.OrderID+g.merchantSalt, g.merchantKey)
	form := map[string]string{
		"merchant_id":  g.merchantID,
		"merchant_oid": req.OrderID,
		"paytr_token":  token,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointStatus, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedQueryResponse(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m), nil
	}

	status := gateway.StatusPending
	switch cast.ToString(m["payment_status"]) {
	case "success":
		status = gateway.StatusSuccessful
	case "failed":
		status = gateway.StatusFailed
	}

	amount := float64(cast.ToInt(m["payment_amount"])) / 100
	return gateway.NewQueryResponse(cast.ToString(m["trans_id"]), req.OrderID, amount, status, m), nil
}

// InitSecurePayment starts the 3-D Secure flow. PayTR returns a token
// for its hosted secure page, rendered here as an iframe document.
func (g *Gateway) InitSecurePayment(ctx context.Context, req *gateway.SecurePaymentRequest) (*gateway.SecureInitResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return gateway.FailedSecureInit(failed.ErrorCode, failed.ErrorMessage, nil), nil
	}

	form := g.buildTokenForm(&req.PaymentRequest, req)

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointToken, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	token := cast.ToString(m["token"])
	if cast.ToString(m["status"]) != statusSuccess || token == "" {
		return gateway.FailedSecureInit(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m), nil
	}

	iframe := fmt.Sprintf(`<iframe src="%s%s" id="paytriframe" frameborder="0" scrolling="no" style="width:100%%"></iframe>`, securePaymentURL, token)
	return gateway.SecureHTML(iframe, m), nil
}

// CompleteSecurePayment verifies the PayTR callback hash and finalizes.
// A bad hash means the callback did not come from PayTR.
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	orderID := callback.Get("merchant_oid", "")
	status := callback.Get("status", "")
	totalAmount := callback.Get("total_amount", "")

	expected := gateway.HMACSHA256Base64(orderID+g.merchantSalt+status+totalAmount, g.merchantKey)
	if !gateway.SecureCompare(expected, callback.Get("hash", "")) {
		return nil, &gateway.AuthenticationError{Gateway: g.Name(), Message: "callback hash verification failed"}
	}

	raw := callback.Raw()
	if status != statusSuccess {
		return gateway.FailedPaymentResponse(gateway.ErrCodePaymentFailed, callback.Get("failed_reason_msg", "payment failed"), raw), nil
	}

	amount := cast.ToFloat64(totalAmount) / 100
	return gateway.NewPaymentResponse(callback.Get("merchant_oid", ""), orderID, amount, raw), nil
}

// CreateSubscription starts a recurring payment plan
func (g *Gateway) CreateSubscription(ctx context.Context, req *gateway.SubscriptionRequest) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateSubscriptionCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	token := gateway.HMACSHA256Base64(g.merchantID+req.GetPlanName()+g.merchantSalt, g.merchantKey)
	form := map[string]string{
		"merchant_id":     g.merchantID,
		"plan_name":       req.GetPlanName(),
		"amount":          strconv.Itoa(gateway.ToPenny(req.GetAmount())),
		"currency":        mapCurrency(req.GetCurrency()),
		"period":          req.GetPeriod(),
		"period_interval": strconv.Itoa(req.GetPeriodInterval()),
		"utoken":          "aut",
		"paytr_token":     token,
	}
	card := req.GetCard()
	form["cc_owner"] = card.HolderName
	form["card_number"] = card.Number
	form["expiry_month"] = card.ExpireMonth
	form["expiry_year"] = card.ExpireYearShort()
	form["cvv"] = card.CVV

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointRecurring, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m), nil
	}

	return gateway.NewSubscriptionResponse(cast.ToString(m["subscription_id"]), gateway.SubscriptionActive, m), nil
}

// CancelSubscription stops a recurring payment plan
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}

	token := gateway.HMACSHA256Base64(g.merchantID+subscriptionID+g.merchantSalt, g.merchantKey)
	form := map[string]string{
		"merchant_id":     g.merchantID,
		"subscription_id": subscriptionID,
		"paytr_token":     token,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointRecurringCancel, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedSubscriptionResponse(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m), nil
	}

	return gateway.NewSubscriptionResponse(subscriptionID, gateway.SubscriptionCancelled, m), nil
}

// QueryInstallments lists installment options from the BIN detail API
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	token := gateway.HMACSHA256Base64(g.merchantID+bin+g.merchantSalt, g.merchantKey)
	form := map[string]string{
		"merchant_id": g.merchantID,
		"bin_number":  bin,
		"paytr_token": token,
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpointBinDetail, FormData: form})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if cast.ToString(m["status"]) != statusSuccess {
		return nil, nil
	}
	items := cast.ToSlice(m["installments"])

	infos := make([]gateway.InstallmentInfo, 0, len(items))
	for _, item := range items {
		entry := cast.ToStringMap(item)
		count := cast.ToInt(entry["count"])
		if count < 1 {
			continue
		}
		rate := cast.ToFloat64(entry["rate"])
		total := gateway.Round2(amount * (1 + rate/100))
		infos = append(infos, gateway.InstallmentInfo{
			Count:             count,
			InstallmentAmount: gateway.Round2(total / float64(count)),
			TotalAmount:       total,
			InterestRate:      rate,
		})
	}

	return infos, nil
}

// buildTokenForm assembles the shared get-token form. secure carries
// the return URLs for the 3-D variant and is nil for direct payments.
func (g *Gateway) buildTokenForm(req *gateway.PaymentRequest, secure *gateway.SecurePaymentRequest) map[string]string {
	userIP := ""
	email := ""
	if customer := req.GetCustomer(); customer != nil {
		userIP = customer.IP
		email = customer.Email
	}

	pennyStr := strconv.Itoa(gateway.ToPenny(req.GetAmount()))
	basket := buildBasket(req.GetCartItems())
	noInstallment := "1"
	if req.GetInstallments() > 1 {
		noInstallment = "0"
	}
	maxInstallment := strconv.Itoa(req.GetInstallments())
	currency := mapCurrency(req.GetCurrency())
	testMode := "0"
	if g.TestMode {
		testMode = "1"
	}

	token := gateway.HMACSHA256Base64(
		g.merchantID+userIP+req.GetOrderID()+email+pennyStr+basket+noInstallment+maxInstallment+currency+testMode,
		g.merchantKey+g.merchantSalt,
	)

	form := map[string]string{
		"merchant_id":       g.merchantID,
		"user_ip":           userIP,
		"merchant_oid":      req.GetOrderID(),
		"email":             email,
		"payment_amount":    pennyStr,
		"user_basket":       basket,
		"no_installment":    noInstallment,
		"max_installment":   maxInstallment,
		"currency":          currency,
		"test_mode":         testMode,
		"installment_count": strconv.Itoa(req.GetInstallments()),
		"paytr_token":       token,
	}

	if card := req.GetCard(); card != nil {
		form["cc_owner"] = card.HolderName
		form["card_number"] = card.Number
		form["expiry_month"] = card.ExpireMonth
		form["expiry_year"] = card.ExpireYearShort()
		form["cvv"] = card.CVV
	}

	if secure != nil {
		form["merchant_ok_url"] = secure.GetSuccessURL()
		form["merchant_fail_url"] = secure.GetFailURL()
	}

	return form
}

func (g *Gateway) parsePaymentResponse(req *gateway.PaymentRequest, m map[string]any) *gateway.PaymentResponse {
	if cast.ToString(m["status"]) != statusSuccess {
		return gateway.FailedPaymentResponse(cast.ToString(m["err_no"]), cast.ToString(m["err_msg"]), m)
	}

	txnID := cast.ToString(m["trans_id"])
	if txnID == "" {
		txnID = req.GetOrderID()
	}
	return gateway.NewPaymentResponse(txnID, req.GetOrderID(), req.GetAmount(), m)
}

// buildBasket encodes cart items as PayTR's base64 JSON array of
// [name, pennyPrice, quantity] triples.
func buildBasket(items []*gateway.CartItem) string {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		rows = append(rows, []any{item.Name, strconv.Itoa(gateway.ToPenny(item.Price)), qty})
	}
	if len(rows) == 0 {
		rows = append(rows, []any{"Ödeme", "0", 1})
	}

	data, _ := json.Marshal(rows)
	return gateway.Base64Encode(string(data))
}

func mapCurrency(currency string) string {
	if currency == gateway.CurrencyTRY {
		return "TL"
	}
	return currency
}
