package payu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/armagangokce/arpay-go/gateway"
)

var fixedTime = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestGateway(t *testing.T, serverURL string) *Gateway {
	t.Helper()

	g := New().(*Gateway)
	err := g.Configure(gateway.Config{
		"merchant":   "MERCH01",
		"secret_key": "topsecret",
		"test_mode":  "true",
	})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	g.now = func() time.Time { return fixedTime }
	if serverURL != "" {
		g.client.SetBaseURL(serverURL)
	}
	return g
}

func testPaymentRequest() *gateway.PaymentRequest {
	return gateway.NewPaymentRequest().
		Amount(150.00).
		OrderID("ORD-9001").
		Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123")).
		Customer(&gateway.Customer{FirstName: "Ali", LastName: "Veli", Email: "ali@example.com", IP: "10.0.0.1"})
}

func TestGateway_Configure(t *testing.T) {
	tests := []struct {
		name    string
		config  gateway.Config
		wantErr bool
	}{
		{"Valid configuration", gateway.Config{"merchant": "m", "secret_key": "s"}, false},
		{"Missing merchant", gateway.Config{"secret_key": "s"}, true},
		{"Missing secret key", gateway.Config{"merchant": "m"}, true},
		{"Empty configuration", gateway.Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New().(*Gateway)
			if err := g.Configure(tt.config); (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGateway_Features(t *testing.T) {
	g := New()
	if !g.Supports(gateway.FeatureSubscription) {
		t.Error("subscription should be supported")
	}
	if g.Supports(gateway.FeatureInstallmentQuery) {
		t.Error("installment query should not be supported")
	}
}

func TestGateway_Pay_SendsSignedOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointOrder {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		r.ParseForm()

		wantHash := gateway.HMACSHA256Hex("7MERCH018ORD-90016150.003TRY", "topsecret")
		if got := r.FormValue("ORDER_HASH"); got != wantHash {
			t.Errorf("ORDER_HASH = %s, want %s", got, wantHash)
		}
		if got := r.FormValue("ORDER_DATE"); got != "2025-06-15 10:30:00" {
			t.Errorf("ORDER_DATE = %s", got)
		}
		if got := r.FormValue("PAY_METHOD"); got != "CCVISAMC" {
			t.Errorf("PAY_METHOD = %s", got)
		}
		if got := r.FormValue("ORDER_PNAME[0]"); got != "Ödeme" {
			t.Errorf("ORDER_PNAME[0] = %s", got)
		}
		if got := r.FormValue("ORDER_PPRICE[0]"); got != "150.00" {
			t.Errorf("ORDER_PPRICE[0] = %s", got)
		}
		if got := r.FormValue("BILL_COUNTRYCODE"); got != "TR" {
			t.Errorf("BILL_COUNTRYCODE = %s", got)
		}
		if got := r.FormValue("3DS_ENROLLED"); got != "" {
			t.Errorf("3DS_ENROLLED should be absent for plain pay, got %s", got)
		}

		json.NewEncoder(w).Encode(map[string]any{"STATUS": "SUCCESS", "REFNO": "PU-100"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Pay(context.Background(), testPaymentRequest())
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if !resp.Successful || resp.TransactionID != "PU-100" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_Pay_Classification(t *testing.T) {
	tests := []struct {
		name           string
		response       map[string]any
		wantSuccessful bool
		wantErrorCode  string
	}{
		{"Status success", map[string]any{"STATUS": "SUCCESS", "REFNO": "PU-1"}, true, ""},
		{"Authorized return code", map[string]any{"RETURN_CODE": "AUTHORIZED", "REFNO": "PU-2"}, true, ""},
		{"Declined", map[string]any{"STATUS": "FAILED", "RETURN_CODE": "GW_ERROR", "RETURN_MESSAGE": "insufficient funds"}, false, "GW_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			g := newTestGateway(t, server.URL)
			resp, err := g.Pay(context.Background(), testPaymentRequest())
			if err != nil {
				t.Fatalf("Pay() error = %v", err)
			}
			if resp.Successful != tt.wantSuccessful {
				t.Errorf("Successful = %v, want %v", resp.Successful, tt.wantSuccessful)
			}
			if resp.ErrorCode != tt.wantErrorCode {
				t.Errorf("ErrorCode = %s, want %s", resp.ErrorCode, tt.wantErrorCode)
			}
		})
	}
}

func TestGateway_Pay_MissingCard(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Pay(context.Background(), gateway.NewPaymentRequest().Amount(10).OrderID("ORD-1"))
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if resp.Successful || resp.ErrorCode != gateway.ErrCodeCardMissing {
		t.Errorf("resp = %+v", resp)
	}
	if called {
		t.Error("no request should be sent when the card is missing")
	}
}

func TestGateway_Refund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointRefund {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		r.ParseForm()

		wantHash := gateway.HMACSHA256Hex("7MERCH016PU-100550.003TRY", "topsecret")
		if got := r.FormValue("ORDER_HASH"); got != wantHash {
			t.Errorf("ORDER_HASH = %s, want %s", got, wantHash)
		}
		if got := r.FormValue("AMOUNT"); got != "50.00" {
			t.Errorf("AMOUNT = %s", got)
		}
		if got := r.FormValue("IRN_DATE"); got != "2025-06-15 10:30:00" {
			t.Errorf("IRN_DATE = %s", got)
		}

		json.NewEncoder(w).Encode(map[string]any{"RESPONSE_CODE": "0", "IRN_REFNO": "IRN-7"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Refund(context.Background(), &gateway.RefundRequest{TransactionID: "PU-100", OrderID: "ORD-9001", Amount: 50.00})
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if !resp.Successful || resp.TransactionID != "IRN-7" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_Refund_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"RESPONSE_CODE": "12", "RESPONSE_MSG": "order not refundable"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Refund(context.Background(), &gateway.RefundRequest{TransactionID: "PU-100", Amount: 50})
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if resp.Successful || resp.ErrorCode != "12" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_Query_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   gateway.PaymentStatus
	}{
		{"Authorized", "PAYMENT_AUTHORIZED", gateway.StatusSuccessful},
		{"Complete", "COMPLETE", gateway.StatusSuccessful},
		{"Received", "PAYMENT_RECEIVED", gateway.StatusPending},
		{"In progress", "IN_PROGRESS", gateway.StatusPending},
		{"Reversed", "REVERSED", gateway.StatusRefunded},
		{"Refund", "REFUND", gateway.StatusRefunded},
		{"Canceled", "CANCELED", gateway.StatusCancelled},
		{"Unknown", "FRAUD_REVIEW", gateway.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				if got := r.FormValue("ORDER_REF"); got != "ORD-9001" {
					t.Errorf("ORDER_REF = %s", got)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"ORDER_REF":    "ORD-9001",
					"ORDER_STATUS": tt.status,
					"ORDER_AMOUNT": "150.00",
					"REFNO":        "PU-100",
				})
			}))
			defer server.Close()

			g := newTestGateway(t, server.URL)
			resp, err := g.Query(context.Background(), &gateway.QueryRequest{OrderID: "ORD-9001"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if resp.Status != tt.want {
				t.Errorf("Status = %s, want %s", resp.Status, tt.want)
			}
			if resp.Amount != 150.00 {
				t.Errorf("Amount = %v, want 150.00", resp.Amount)
			}
		})
	}
}

func TestGateway_Query_UnknownOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"RETURN_CODE": "ORDER_NOT_FOUND", "RETURN_MESSAGE": "no such order"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Query(context.Background(), &gateway.QueryRequest{OrderID: "MISSING"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Successful || resp.ErrorCode != "ORDER_NOT_FOUND" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_InitSecurePayment(t *testing.T) {
	tests := []struct {
		name         string
		response     map[string]any
		wantRedirect string
		wantHTML     string
		wantFailed   bool
	}{
		{"Redirect", map[string]any{"STATUS": "SUCCESS", "URL_3DS": "https://3ds.payu.com.tr/challenge"}, "https://3ds.payu.com.tr/challenge", "", false},
		{"Inline HTML", map[string]any{"STATUS": "SUCCESS", "3DS_HTML": "<form>challenge</form>"}, "", "<form>challenge</form>", false},
		{"Not enrolled", map[string]any{"RETURN_CODE": "NOT_ENROLLED", "RETURN_MESSAGE": "card not enrolled"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				if got := r.FormValue("3DS_ENROLLED"); got != "YES" {
					t.Errorf("3DS_ENROLLED = %s, want YES", got)
				}
				if got := r.FormValue("BACK_REF"); got != "https://shop.example.com/callback" {
					t.Errorf("BACK_REF = %s", got)
				}
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			g := newTestGateway(t, server.URL)
			req := gateway.NewSecurePaymentRequest()
			req.Amount(150.00)
			req.OrderID("ORD-9001")
			req.Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123"))
			req.CallbackURL("https://shop.example.com/callback")

			resp, err := g.InitSecurePayment(context.Background(), req)
			if err != nil {
				t.Fatalf("InitSecurePayment() error = %v", err)
			}
			if resp.RedirectURL != tt.wantRedirect {
				t.Errorf("RedirectURL = %s, want %s", resp.RedirectURL, tt.wantRedirect)
			}
			if resp.HTMLForm != tt.wantHTML {
				t.Errorf("HTMLForm = %s, want %s", resp.HTMLForm, tt.wantHTML)
			}
			if resp.Successful == tt.wantFailed {
				t.Errorf("Successful = %v", resp.Successful)
			}
		})
	}
}

func TestGateway_CompleteSecurePayment(t *testing.T) {
	tests := []struct {
		name           string
		callback       map[string]string
		wantSuccessful bool
	}{
		{"Success status", map[string]string{"STATUS": "SUCCESS", "REFNO": "PU-100", "ORDER_REF": "ORD-9001", "ORDER_AMOUNT": "150.00"}, true},
		{"Authorized status", map[string]string{"status": "AUTHORIZED", "REFNO": "PU-101"}, true},
		{"Failed authentication", map[string]string{"STATUS": "FAILED", "RETURN_CODE": "AUTH_FAILED"}, false},
		{"Empty callback", map[string]string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, "")
			resp, err := g.CompleteSecurePayment(context.Background(), gateway.NewSecureCallbackData(tt.callback))
			if err != nil {
				t.Fatalf("CompleteSecurePayment() error = %v", err)
			}
			if resp.Successful != tt.wantSuccessful {
				t.Errorf("Successful = %v, want %v", resp.Successful, tt.wantSuccessful)
			}
			if tt.wantSuccessful && resp.TransactionID == "" {
				t.Error("TransactionID should be set on success")
			}
		})
	}
}

func TestGateway_CreateSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointToken {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		r.ParseForm()

		if got := r.FormValue("REF_NO"); !strings.HasPrefix(got, "SUB_") {
			t.Errorf("REF_NO = %s, want SUB_ prefix", got)
		}
		if got := r.FormValue("PLAN_NAME"); got != "Gold" {
			t.Errorf("PLAN_NAME = %s", got)
		}
		if got := r.FormValue("PERIOD_INTERVAL"); got != "3" {
			t.Errorf("PERIOD_INTERVAL = %s", got)
		}

		json.NewEncoder(w).Encode(map[string]any{"STATUS": "SUCCESS", "IPN_CC_TOKEN": "TKN-42"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	req := gateway.NewSubscriptionRequest().
		PlanName("Gold").
		Amount(99.90).
		PeriodInterval(3).
		Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123"))

	resp, err := g.CreateSubscription(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if !resp.Successful || resp.SubscriptionID != "TKN-42" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_CreateSubscription_MissingCard(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(map[string]any{"STATUS": "SUCCESS", "IPN_CC_TOKEN": "TKN-42"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	req := gateway.NewSubscriptionRequest().PlanName("Gold").Amount(49.90)

	resp, err := g.CreateSubscription(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if resp.Successful {
		t.Error("Successful = true, want false")
	}
	if resp.ErrorCode != gateway.ErrCodeCardMissing {
		t.Errorf("ErrorCode = %s, want %s", resp.ErrorCode, gateway.ErrCodeCardMissing)
	}
	if called {
		t.Error("subscription without a card reached the network")
	}
}

func TestGateway_CancelSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointTokenCancel {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		r.ParseForm()
		if got := r.FormValue("TOKEN"); got != "TKN-42" {
			t.Errorf("TOKEN = %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"STATUS": "SUCCESS"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.CancelSubscription(context.Background(), "TKN-42")
	if err != nil {
		t.Fatalf("CancelSubscription() error = %v", err)
	}
	if !resp.Successful || resp.Status != gateway.SubscriptionCancelled {
		t.Errorf("resp = %+v", resp)
	}
}
