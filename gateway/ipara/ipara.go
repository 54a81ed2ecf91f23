// Package ipara implements the iPara gateway. Requests are JSON with a
// per-request SHA-1 token over private key, public key, transaction
// date and the exact body bytes.
package ipara

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://api.ipara.com"
	sandboxURL    = "https://api-test.ipara.com"

	endpointPayment     = "/rest/payment/auth"
	endpointRefund      = "/rest/payment/refund"
	endpointInquiry     = "/rest/payment/inquiry"
	endpoint3D          = "/rest/payment/3dsecure"
	endpoint3DComplete  = "/rest/payment/3dsecure/complete"
	endpointInstallment = "/rest/payment/bin/installment"

	resultSuccess = "1"
	apiVersion    = "1.0"

	transactionDateLayout = "2006-01-02T15:04:05"
)

// Gateway implements the iPara payment gateway
type Gateway struct {
	gateway.Base
	publicKey  string
	privateKey string
	client     *gateway.HTTPClient

	// now is swapped in tests to pin the signed transaction date
	now func() time.Time
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured iPara gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "ipara",
			HumanName: "iPara",
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
		now: time.Now,
	}
}

// Configure validates the iPara credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "public_key", "private_key"); err != nil {
		return err
	}

	g.publicKey = cfg.Get("public_key")
	g.privateKey = cfg.Get("private_key")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

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

	body := map[string]any{
		"orderId":       req.OrderID,
		"transactionId": req.TransactionID,
		"amount":        gateway.ToDecimalString(req.Amount),
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

// Query looks up a payment by order id
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"orderId":       req.OrderID,
		"transactionId": req.TransactionID,
	}

	m, err := g.post(ctx, endpointInquiry, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedQueryResponse(errorCode(m), errorMessage(m), m), nil
	}

	var status gateway.PaymentStatus
	switch cast.ToString(m["status"]) {
	case "1", "approved":
		status = gateway.StatusSuccessful
	case "0", "declined":
		status = gateway.StatusFailed
	case "pending":
		status = gateway.StatusPending
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

// InitSecurePayment starts the 3-D flow. iPara answers with base64
// challenge HTML or a redirect URL.
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

// CompleteSecurePayment finalizes a 3-D payment after a successful
// challenge. The callback only proves authentication; the charge is
// confirmed with a second call.
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	result := callback.Get("result", callback.Get("mdStatus", ""))
	if result != resultSuccess {
		return gateway.FailedPaymentResponse(
			callback.Get("errorCode", gateway.ErrCodePaymentFailed),
			callback.Get("errorMessage", "3d authentication failed"),
			callback.Raw(),
		), nil
	}

	body := map[string]any{
		"threeDSecureCode": callback.Get("threeDSecureCode", ""),
		"orderId":          callback.Get("orderId", ""),
		"transactionId":    callback.Get("transactionId", ""),
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

// QueryInstallments lists installment options for a BIN
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	body := map[string]any{
		"binNumber": bin,
		"amount":    gateway.ToDecimalString(amount),
	}

	m, err := g.post(ctx, endpointInstallment, body)
	if err != nil {
		return nil, err
	}

	items := cast.ToSlice(m["installmentDetails"])
	infos := make([]gateway.InstallmentInfo, 0, len(items))
	for _, item := range items {
		entry := cast.ToStringMap(item)
		count := cast.ToInt(entry["installmentCount"])
		if count < 1 {
			continue
		}
		infos = append(infos, gateway.InstallmentInfo{
			Count:             count,
			InstallmentAmount: cast.ToFloat64(entry["installmentAmount"]),
			TotalAmount:       cast.ToFloat64(entry["totalAmount"]),
			InterestRate:      cast.ToFloat64(entry["interestRate"]),
		})
	}

	return infos, nil
}

// post signs the exact marshaled body into the Authorization token
func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	payload, err := gateway.MarshalBody(body)
	if err != nil {
		return nil, &gateway.NetworkError{Gateway: g.Name(), Err: err}
	}

	transactionDate := g.now().UTC().Format(transactionDateLayout)
	token := gateway.SHA1Hex(g.privateKey + g.publicKey + transactionDate + payload)

	headers := map[string]string{
		"Authorization":   g.publicKey + ":" + token,
		"TransactionDate": transactionDate,
		"Version":         apiVersion,
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
		"orderId":         req.GetOrderID(),
		"amount":          gateway.ToDecimalString(req.GetAmount()),
		"currency":        req.GetCurrency(),
		"installment":     strconv.Itoa(req.GetInstallments()),
		"cardOwnerName":   card.HolderName,
		"cardNumber":      card.Number,
		"cardExpireMonth": card.ExpireMonth,
		"cardExpireYear":  card.ExpireYear,
		"cardCvc":         card.CVV,
		"products":        g.buildProducts(req),
	}

	if customer := req.GetCustomer(); customer != nil {
		purchaser := map[string]any{
			"name":     customer.FirstName,
			"surname":  customer.LastName,
			"email":    customer.Email,
			"clientIp": customer.IP,
		}
		if billing := req.GetBillingAddress(); billing != nil {
			purchaser["invoiceAddress"] = map[string]any{
				"address": billing.Address,
				"city":    billing.City,
				"country": billing.Country,
				"zipcode": billing.ZipCode,
			}
		}
		body["purchaser"] = purchaser
	}

	if secure != nil {
		mode := "P"
		if g.TestMode {
			mode = "T"
		}
		body["mode"] = mode
		body["callbackUrl"] = secure.GetSuccessURL()
	}

	return body
}

func (g *Gateway) buildProducts(req *gateway.PaymentRequest) []map[string]any {
	items := req.GetCartItems()
	if len(items) == 0 {
		return []map[string]any{{
			"productCode": "DEFAULT",
			"productName": "Ödeme",
			"quantity":    "1",
			"price":       gateway.ToDecimalString(req.GetAmount()),
		}}
	}

	products := make([]map[string]any, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		products = append(products, map[string]any{
			"productCode": item.ID,
			"productName": item.Name,
			"quantity":    strconv.Itoa(qty),
			"price":       gateway.ToDecimalString(item.Price),
		})
	}
	return products
}

func ok(m map[string]any) bool {
	return cast.ToString(m["result"]) == resultSuccess
}

func errorCode(m map[string]any) string {
	return cast.ToString(m["errorCode"])
}

func errorMessage(m map[string]any) string {
	return cast.ToString(m["errorMessage"])
}
