// Package papara implements the Papara gateway. Papara is API key
// authenticated JSON, encodes currencies as integers and reports
// payment state as an integer status.
package papara

import (
	"context"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://merchant-api.papara.com"
	sandboxURL    = "https://merchant-api-test.papara.com"

	endpointPayments = "/payments"
	endpointRefund   = "/payments/refund"
)

// integer payment states on the query endpoint
const (
	statePending = iota
	stateCompleted
	stateRefunded
	stateCancelled
)

// Gateway implements the Papara payment gateway
type Gateway struct {
	gateway.Base
	apiKey     string
	merchantID string
	client     *gateway.HTTPClient
}

var (
	_ gateway.Payable    = (*Gateway)(nil)
	_ gateway.Refundable = (*Gateway)(nil)
	_ gateway.Queryable  = (*Gateway)(nil)
)

// New creates an unconfigured Papara gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "papara",
			HumanName: "Papara",
			FeatureSet: []gateway.Feature{
				gateway.FeaturePay,
				gateway.FeaturePayInstallment,
				gateway.FeatureRefund,
				gateway.FeatureQuery,
			},
			ProductionURL: productionURL,
			SandboxURL:    sandboxURL,
		},
	}
}

// Configure validates the Papara credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "api_key", "merchant_id"); err != nil {
		return err
	}

	g.apiKey = cfg.Get("api_key")
	g.merchantID = cfg.Get("merchant_id")
	g.ApplyTestMode(cfg)
	g.client = gateway.NewHTTPClient(g.Name(), g.BaseURL())

	return nil
}

// Pay charges a card
func (g *Gateway) Pay(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePay); err != nil {
		return nil, err
	}
	if failed := gateway.ValidateCard(req.GetCard()); failed != nil {
		return failed, nil
	}

	card := req.GetCard()
	body := map[string]any{
		"merchantId":       g.merchantID,
		"referenceId":      req.GetOrderID(),
		"amount":           gateway.ToDecimalString(req.GetAmount()),
		"currency":         currencyCode(req.GetCurrency()),
		"description":      req.GetDescription(),
		"installmentCount": req.GetInstallments(),
		"cardHolderName":   card.HolderName,
		"cardNumber":       card.Number,
		"expireMonth":      card.ExpireMonth,
		"expireYear":       card.ExpireYear,
		"cvc":              card.CVV,
	}
	if customer := req.GetCustomer(); customer != nil {
		body["buyerName"] = customer.FirstName
		body["buyerSurname"] = customer.LastName
		body["buyerEmail"] = customer.Email
		body["buyerPhone"] = customer.Phone
		body["buyerIp"] = customer.IP
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{
		Endpoint: endpointPayments,
		Headers:  g.headers(),
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if !cast.ToBool(m["succeeded"]) {
		code, message := errorInfo(m)
		return gateway.FailedPaymentResponse(code, message, m), nil
	}

	data := cast.ToStringMap(m["data"])
	txnID := cast.ToString(data["id"])
	if txnID == "" {
		txnID = cast.ToString(data["paymentId"])
	}
	orderID := cast.ToString(data["referenceId"])
	if orderID == "" {
		orderID = req.GetOrderID()
	}
	return gateway.NewPaymentResponse(txnID, orderID, req.GetAmount(), m), nil
}

// PayWithInstallment charges with installments. Papara takes the count
// in the same payload, so this is a plain Pay.
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
		"merchantId":  g.merchantID,
		"paymentId":   req.TransactionID,
		"referenceId": req.OrderID,
		"amount":      gateway.ToDecimalString(req.Amount),
	}

	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{
		Endpoint: endpointRefund,
		Headers:  g.headers(),
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if !cast.ToBool(m["succeeded"]) {
		code, message := errorInfo(m)
		return gateway.FailedRefundResponse(code, message, m), nil
	}

	return gateway.NewRefundResponse(req.TransactionID, req.OrderID, req.Amount, m), nil
}

// Query looks up a payment by its Papara payment id
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	resp, err := g.client.Get(ctx, &gateway.HTTPRequest{
		Endpoint: endpointPayments + "/" + req.TransactionID,
		Headers:  g.headers(),
	})
	if err != nil {
		return nil, err
	}

	m := resp.Map()
	if !cast.ToBool(m["succeeded"]) {
		code, message := errorInfo(m)
		return gateway.FailedQueryResponse(code, message, m), nil
	}

	data := cast.ToStringMap(m["data"])
	var status gateway.PaymentStatus
	switch cast.ToInt(data["status"]) {
	case statePending:
		status = gateway.StatusPending
	case stateCompleted:
		status = gateway.StatusSuccessful
	case stateRefunded:
		status = gateway.StatusRefunded
	case stateCancelled:
		status = gateway.StatusCancelled
	default:
		status = gateway.StatusFailed
	}

	return gateway.NewQueryResponse(
		cast.ToString(data["id"]),
		cast.ToString(data["referenceId"]),
		cast.ToFloat64(data["amount"]),
		status,
		m,
	), nil
}

func (g *Gateway) headers() map[string]string {
	return map[string]string{"ApiKey": g.apiKey}
}

// currencyCode maps ISO currency codes to Papara's integer enumeration
func currencyCode(currency string) int {
	switch currency {
	case "USD":
		return 1
	case "EUR":
		return 2
	case "GBP":
		return 3
	default:
		return 0 // TRY
	}
}

func errorInfo(m map[string]any) (string, string) {
	errMap := cast.ToStringMap(m["error"])
	return cast.ToString(errMap["code"]), cast.ToString(errMap["message"])
}
