// Package parampos implements the ParamPos gateway. ParamPos carries
// the merchant credentials inside every JSON body, names its fields in
// Turkish and signals success with Sonuc "1".
package parampos

import (
	"context"

	"github.com/spf13/cast"

	"github.com/armagangokce/arpay-go/gateway"
)

const (
	productionURL = "https://pos.param.com.tr/rest"
	sandboxURL    = "https://test-pos.param.com.tr/rest"

	endpointPayment            = "/payment/non3d"
	endpointRefund             = "/payment/refund"
	endpointQuery              = "/payment/query"
	endpoint3D                 = "/payment/3d"
	endpointSubscription       = "/subscription/create"
	endpointSubscriptionCancel = "/subscription/cancel"
	endpointInstallment        = "/payment/installment-query"
)

// Gateway implements the ParamPos payment gateway
type Gateway struct {
	gateway.Base
	clientCode     string
	clientUsername string
	clientPassword string
	guid           string
	client         *gateway.HTTPClient
}

var (
	_ gateway.Payable              = (*Gateway)(nil)
	_ gateway.Refundable           = (*Gateway)(nil)
	_ gateway.Queryable            = (*Gateway)(nil)
	_ gateway.SecurePayable        = (*Gateway)(nil)
	_ gateway.Subscribable         = (*Gateway)(nil)
	_ gateway.InstallmentQueryable = (*Gateway)(nil)
)

// New creates an unconfigured ParamPos gateway
func New() gateway.Gateway {
	return &Gateway{
		Base: gateway.Base{
			ShortName: "parampos",
			HumanName: "ParamPos",
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

// Configure validates the ParamPos credentials
func (g *Gateway) Configure(cfg gateway.Config) error {
	if err := cfg.ValidateRequired(g.Name(), "client_code", "client_username", "client_password", "guid"); err != nil {
		return err
	}

	g.clientCode = cfg.Get("client_code")
	g.clientUsername = cfg.Get("client_username")
	g.clientPassword = cfg.Get("client_password")
	g.guid = cfg.Get("guid")
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
		return gateway.FailedPaymentResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewPaymentResponse(cast.ToString(m["Dekont_ID"]), req.GetOrderID(), req.GetAmount(), m), nil
}

// PayWithInstallment charges with the installment count from the request
func (g *Gateway) PayWithInstallment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeaturePayInstallment); err != nil {
		return nil, err
	}
	return g.Pay(ctx, req)
}

// Refund refunds a payment by its receipt id
func (g *Gateway) Refund(ctx context.Context, req *gateway.RefundRequest) (*gateway.RefundResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureRefund); err != nil {
		return nil, err
	}

	body := g.credentials()
	body["Dekont_ID"] = req.TransactionID
	body["Siparis_ID"] = req.OrderID
	body["Tutar"] = gateway.ToDecimalString(req.Amount)

	m, err := g.post(ctx, endpointRefund, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedRefundResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewRefundResponse(req.TransactionID, req.OrderID, req.Amount, m), nil
}

// Query looks up a payment by its order id
func (g *Gateway) Query(ctx context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureQuery); err != nil {
		return nil, err
	}

	body := g.credentials()
	body["Siparis_ID"] = req.OrderID
	body["Dekont_ID"] = req.TransactionID

	m, err := g.post(ctx, endpointQuery, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedQueryResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewQueryResponse(
		cast.ToString(m["Dekont_ID"]),
		cast.ToString(m["Siparis_ID"]),
		cast.ToFloat64(m["Tutar"]),
		gateway.StatusSuccessful,
		m,
	), nil
}

// InitSecurePayment starts the 3-D flow. ParamPos answers with an
// inline UCD_HTML page or a plain redirect URL.
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

	if ucdHTML := cast.ToString(m["UCD_HTML"]); ucdHTML != "" {
		return gateway.SecureHTML(ucdHTML, m), nil
	}
	if redirectURL := cast.ToString(m["redirect_url"]); redirectURL != "" {
		return gateway.SecureRedirect(redirectURL, nil, m), nil
	}

	return gateway.FailedSecureInit(errorCode(m), "3d response has no challenge content", m), nil
}

// CompleteSecurePayment classifies the ParamPos return callback.
// Sonuc and mdStatus both mark success with "1".
func (g *Gateway) CompleteSecurePayment(ctx context.Context, callback *gateway.SecureCallbackData) (*gateway.PaymentResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSecure3D); err != nil {
		return nil, err
	}

	raw := callback.Raw()
	result := callback.Get("Sonuc", callback.Get("mdStatus", ""))
	if result != "1" {
		return gateway.FailedPaymentResponse(
			callback.Get("Sonuc", gateway.ErrCodePaymentFailed),
			callback.Get("Sonuc_Str", "3d authentication failed"),
			raw,
		), nil
	}

	return gateway.NewPaymentResponse(
		callback.Get("Dekont_ID", ""),
		callback.Get("Siparis_ID", ""),
		cast.ToFloat64(callback.Get("Tutar", "")),
		raw,
	), nil
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
	body := g.credentials()
	body["Plan_Adi"] = req.GetPlanName()
	body["Tutar"] = gateway.ToDecimalString(req.GetAmount())
	body["Doviz_Kodu"] = currencyCode(req.GetCurrency())
	body["Periyot"] = req.GetPeriod()
	body["Periyot_Aralik"] = req.GetPeriodInterval()
	body["KK_Sahibi"] = card.HolderName
	body["KK_No"] = card.Number
	body["KK_SK_Ay"] = card.ExpireMonth
	body["KK_SK_Yil"] = card.ExpireYear
	body["KK_CVC"] = card.CVV

	m, err := g.post(ctx, endpointSubscription, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedSubscriptionResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewSubscriptionResponse(cast.ToString(m["subscription_id"]), gateway.SubscriptionActive, m), nil
}

// CancelSubscription stops a recurring payment plan
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.SubscriptionResponse, error) {
	if err := g.EnsureSupports(gateway.FeatureSubscription); err != nil {
		return nil, err
	}

	body := g.credentials()
	body["subscription_id"] = subscriptionID

	m, err := g.post(ctx, endpointSubscriptionCancel, body)
	if err != nil {
		return nil, err
	}

	if !ok(m) {
		return gateway.FailedSubscriptionResponse(errorCode(m), errorMessage(m), m), nil
	}

	return gateway.NewSubscriptionResponse(subscriptionID, gateway.SubscriptionCancelled, m), nil
}

// QueryInstallments lists installment options for a BIN
func (g *Gateway) QueryInstallments(ctx context.Context, bin string, amount float64) ([]gateway.InstallmentInfo, error) {
	if err := g.EnsureSupports(gateway.FeatureInstallmentQuery); err != nil {
		return nil, err
	}

	body := g.credentials()
	body["BIN"] = bin
	body["Tutar"] = gateway.ToDecimalString(amount)

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

func (g *Gateway) post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	resp, err := g.client.Post(ctx, &gateway.HTTPRequest{Endpoint: endpoint, Body: body})
	if err != nil {
		return nil, err
	}
	return resp.Map(), nil
}

// credentials returns a fresh body seeded with the merchant credentials
func (g *Gateway) credentials() map[string]any {
	return map[string]any{
		"CLIENT_CODE":     g.clientCode,
		"CLIENT_USERNAME": g.clientUsername,
		"CLIENT_PASSWORD": g.clientPassword,
		"GUID":            g.guid,
	}
}

func (g *Gateway) buildPaymentBody(req *gateway.PaymentRequest, secure *gateway.SecurePaymentRequest) map[string]any {
	card := req.GetCard()
	amount := gateway.ToDecimalString(req.GetAmount())

	body := g.credentials()
	body["KK_Sahibi"] = card.HolderName
	body["KK_No"] = card.Number
	body["KK_SK_Ay"] = card.ExpireMonth
	body["KK_SK_Yil"] = card.ExpireYear
	body["KK_CVC"] = card.CVV
	body["Siparis_ID"] = req.GetOrderID()
	body["Tutar"] = amount
	body["Islem_Tutar"] = amount
	body["Doviz_Kodu"] = currencyCode(req.GetCurrency())
	body["Taksit"] = req.GetInstallments()

	if customer := req.GetCustomer(); customer != nil {
		body["IPAdr"] = customer.IP
	}
	if secure != nil {
		body["Basarili_URL"] = secure.GetSuccessURL()
		body["Hata_URL"] = secure.GetFailURL()
	}

	return body
}

// currencyCode maps ISO currency codes to ParamPos wire codes
func currencyCode(currency string) string {
	switch currency {
	case "USD":
		return "1"
	case "EUR":
		return "2"
	case "GBP":
		return "3"
	default:
		return "1008" // TRY
	}
}

// ok accepts Sonuc "1" or result_code "00" as success
func ok(m map[string]any) bool {
	return cast.ToString(m["Sonuc"]) == "1" || cast.ToString(m["result_code"]) == "00"
}

func errorCode(m map[string]any) string {
	return cast.ToString(m["Sonuc"])
}

func errorMessage(m map[string]any) string {
	if msg := cast.ToString(m["Sonuc_Str"]); msg != "" {
		return msg
	}
	return cast.ToString(m["Sonuc_Ack"])
}
