package paynet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/armagangokce/arpay-go/gateway"
)

func newTestGateway(t *testing.T, serverURL string) *Gateway {
	t.Helper()

	g := New().(*Gateway)
	err := g.Configure(gateway.Config{
		"secret_key":  "test-secret",
		"merchant_id": "M-77",
		"test_mode":   "true",
	})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if serverURL != "" {
		g.client.SetBaseURL(serverURL)
	}
	return g
}

func testPaymentRequest() *gateway.PaymentRequest {
	return gateway.NewPaymentRequest().
		Amount(150.00).
		OrderID("ORD-7001").
		Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123")).
		Customer(&gateway.Customer{FirstName: "Ali", LastName: "Veli", IP: "10.0.0.1"})
}

func TestGateway_Pay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointSale {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		wantAuth := "Basic " + gateway.Base64Encode("M-77:test-secret")
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %s, want %s", got, wantAuth)
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["amount"] != float64(15000) {
			t.Errorf("amount = %v, want 15000 penny", payload["amount"])
		}
		wantHash := gateway.SHA256Hex("ORD-7001" + "15000" + "TRY" + "test-secret")
		if payload["hash"] != wantHash {
			t.Errorf("hash = %v, want %s", payload["hash"], wantHash)
		}
		if payload["customer_name"] != "Ali" || payload["customer_surname"] != "Veli" {
			t.Errorf("customer fields = %v / %v, want Ali / Veli", payload["customer_name"], payload["customer_surname"])
		}
		products, _ := payload["products"].([]any)
		if len(products) != 1 {
			t.Fatalf("len(products) = %d, want 1", len(products))
		}
		product, _ := products[0].(map[string]any)
		if product["id"] != "SKU-1" || product["category"] != "Elektronik" {
			t.Errorf("product = %v", product)
		}

		json.NewEncoder(w).Encode(map[string]any{"is_successful": true, "transaction_id": "PN-1"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	req := testPaymentRequest().AddCartItem(&gateway.CartItem{ID: "SKU-1", Name: "Kulaklık", Category: "Elektronik", Price: 150.00, Quantity: 1})
	resp, err := g.Pay(context.Background(), req)
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if !resp.Successful || resp.TransactionID != "PN-1" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_Pay_CodeZeroSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": "0", "transaction_id": "PN-2"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Pay(context.Background(), testPaymentRequest())
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if !resp.Successful {
		t.Error("Successful = false, want true for code 0")
	}
}

func TestGateway_Query_StatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   gateway.PaymentStatus
	}{
		{"approved", gateway.StatusSuccessful},
		{"captured", gateway.StatusSuccessful},
		{"declined", gateway.StatusFailed},
		{"error", gateway.StatusFailed},
		{"pending", gateway.StatusPending},
		{"refunded", gateway.StatusRefunded},
		{"cancelled", gateway.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"is_successful":  true,
					"payment_status": tt.status,
					"transaction_id": "PN-1",
					"order_id":       "ORD-7001",
					"amount":         15000,
				})
			}))
			defer server.Close()

			g := newTestGateway(t, server.URL)
			resp, err := g.Query(context.Background(), &gateway.QueryRequest{OrderID: "ORD-7001"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if resp.Status != tt.want {
				t.Errorf("Status = %s, want %s", resp.Status, tt.want)
			}
			if resp.Amount != 150.00 {
				t.Errorf("Amount = %v, want 150.00 (penny conversion)", resp.Amount)
			}
		})
	}
}

func TestGateway_Refund_Hash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		// the refund hash prefers transaction_id over order_id
		wantHash := gateway.SHA256Hex("PN-1" + "7500" + "test-secret")
		if payload["hash"] != wantHash {
			t.Errorf("hash = %v, want %s", payload["hash"], wantHash)
		}
		if payload["reason"] != "customer request" {
			t.Errorf("reason = %v, want customer request", payload["reason"])
		}
		json.NewEncoder(w).Encode(map[string]any{"is_successful": true})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	resp, err := g.Refund(context.Background(), &gateway.RefundRequest{TransactionID: "PN-1", OrderID: "ORD-7001", Amount: 75.00, Reason: "customer request"})
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if !resp.Successful {
		t.Error("Successful = false, want true")
	}
}

func TestGateway_InitSecurePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpoint3DInit {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)
		if payload["success_url"] == "" || payload["fail_url"] == "" {
			t.Error("success_url or fail_url is empty")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"is_successful": true,
			"redirect_url":  "https://3d.paynet.com.tr/go",
		})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	req := gateway.NewSecurePaymentRequest()
	req.Amount(150.00)
	req.OrderID("ORD-7001")
	req.Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123"))
	req.CallbackURL("https://merchant.example.com/cb")

	resp, err := g.InitSecurePayment(context.Background(), req)
	if err != nil {
		t.Fatalf("InitSecurePayment() error = %v", err)
	}
	if !resp.RedirectRequired || resp.RedirectURL != "https://3d.paynet.com.tr/go" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_CompleteSecurePayment(t *testing.T) {
	t.Run("Successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != endpoint3DComplete {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			var payload map[string]any
			json.Unmarshal(body, &payload)
			if payload["payment_token"] != "tok-1" {
				t.Errorf("payment_token = %v", payload["payment_token"])
			}
			json.NewEncoder(w).Encode(map[string]any{
				"is_successful":  true,
				"transaction_id": "PN-1",
				"amount":         15000,
			})
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL)
		callback := gateway.NewSecureCallbackData(map[string]string{
			"md_status":     "1",
			"payment_token": "tok-1",
			"order_id":      "ORD-7001",
		})

		resp, err := g.CompleteSecurePayment(context.Background(), callback)
		if err != nil {
			t.Fatalf("CompleteSecurePayment() error = %v", err)
		}
		if !resp.Successful || resp.Amount != 150.00 {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("Failed challenge short-circuits", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		g := newTestGateway(t, server.URL)
		callback := gateway.NewSecureCallbackData(map[string]string{"md_status": "0"})

		resp, err := g.CompleteSecurePayment(context.Background(), callback)
		if err != nil {
			t.Fatalf("CompleteSecurePayment() error = %v", err)
		}
		if resp.Successful {
			t.Error("Successful = true, want false")
		}
		if called {
			t.Error("failed challenge still reached the complete endpoint")
		}
	})
}

func TestGateway_CreateSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointSubscription {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)
		if payload["plan_name"] != "Gold" {
			t.Errorf("plan_name = %v", payload["plan_name"])
		}
		if payload["card_no"] != "4111111111111111" {
			t.Errorf("card_no = %v", payload["card_no"])
		}
		json.NewEncoder(w).Encode(map[string]any{"is_successful": true, "subscription_id": "SUB-9"})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	req := gateway.NewSubscriptionRequest().
		PlanName("Gold").
		Amount(49.90).
		Card(gateway.NewCreditCard("Ali Veli", "4111111111111111", "12", "2030", "123"))

	resp, err := g.CreateSubscription(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if !resp.Successful || resp.SubscriptionID != "SUB-9" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGateway_CreateSubscription_MissingCard(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(map[string]any{"is_successful": true, "subscription_id": "SUB-9"})
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

func TestGateway_QueryInstallments_PennyConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)
		if payload["amount"] != float64(15000) {
			t.Errorf("amount = %v, want 15000 penny", payload["amount"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"is_successful": true,
			"installment_list": []any{
				map[string]any{"count": 3, "per_amount": 5200, "total_amount": 15600, "interest_rate": 4.0},
			},
		})
	}))
	defer server.Close()

	g := newTestGateway(t, server.URL)
	infos, err := g.QueryInstallments(context.Background(), "411111", 150.00)
	if err != nil {
		t.Fatalf("QueryInstallments() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("len(infos) = %d, want 1", len(infos))
	}
	if infos[0].TotalAmount != 156.00 || infos[0].InstallmentAmount != 52.00 {
		t.Errorf("infos[0] = %+v", infos[0])
	}
}
