// Package arpay provides a unified client for Turkish payment gateways
// behind a single, capability based API. Each gateway translates the
// common request types into its provider's wire format, signs the
// request the way that provider requires and maps the response back to
// a standardized result.
//
// # Overview
//
// Every provider has its own authentication scheme, amount unit,
// response format and 3-D Secure flow. Arpay hides those differences:
// you build one PaymentRequest and the selected gateway handles the
// signing, the penny-or-decimal conversion and the response
// classification. Business declines come back as failed responses with
// the provider's error code; Go errors are reserved for configuration,
// transport and callback authenticity failures.
//
// # Supported Gateways
//
//   - PayTR: payments, refunds, 3D secure, subscriptions, installment lookup
//   - Iyzico: payments, refunds, 3D secure, subscriptions, installment lookup
//   - ParamPos: payments, refunds, 3D secure, subscriptions, installment lookup
//   - Paynet: payments, refunds, 3D secure, subscriptions, installment lookup
//   - Vepara: payments, refunds, 3D secure, installment lookup
//   - iPara: payments, refunds, 3D secure, installment lookup
//   - Ödeal: payments, refunds, 3D secure
//   - PayU: payments, refunds, 3D secure, subscriptions
//   - Papara: payments, refunds, queries
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/armagangokce/arpay-go"
//	    "github.com/armagangokce/arpay-go/gateway"
//	)
//
//	func main() {
//	    gw, err := arpay.Create("paytr", gateway.Config{
//	        "merchant_id":   "your-merchant-id",
//	        "merchant_key":  "your-merchant-key",
//	        "merchant_salt": "your-merchant-salt",
//	        "test_mode":     "true",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    req := gateway.NewPaymentRequest().
//	        Amount(150.00).
//	        OrderID("ORD-1001").
//	        Card(gateway.NewCreditCard("John Doe", "4111111111111111", "12", "2030", "123")).
//	        Customer(&gateway.Customer{FirstName: "John", LastName: "Doe", Email: "john@example.com", IP: "85.34.78.112"})
//
//	    payable, ok := gw.(gateway.Payable)
//	    if !ok {
//	        panic("gateway cannot charge directly")
//	    }
//
//	    resp, err := payable.Pay(context.Background(), req)
//	    if err != nil {
//	        panic(err)
//	    }
//	    if resp.Successful {
//	        fmt.Println("transaction:", resp.TransactionID)
//	    } else {
//	        fmt.Println("declined:", resp.ErrorCode, resp.ErrorMessage)
//	    }
//	}
//
// # Capabilities
//
// Gateways differ in what they support. Check before calling:
//
//	if gw.Supports(gateway.FeatureSubscription) {
//	    sub := gw.(gateway.Subscribable)
//	    // ...
//	}
//
// Calling an unsupported operation never reaches the network; it
// returns an *UnsupportedOperationError immediately.
//
// # 3-D Secure
//
// The secure flow has two phases. InitSecurePayment returns either a
// redirect URL (optionally with an auto-submit POST form) or inline
// HTML to render. After the cardholder completes the challenge the
// provider posts back to your callback URL; wrap those parameters in a
// SecureCallbackData and pass them to CompleteSecurePayment. Gateways
// that sign their callbacks verify the signature in constant time and
// return an *AuthenticationError on mismatch, so a forged callback can
// never finalize a payment.
//
// # Environments
//
// Every gateway has a production and a sandbox base URL. Set
// "test_mode" to "true" in the config to use the sandbox.
//
// # HTTP API
//
// A demo REST server lives under cmd/. It exposes the common
// operations over JSON:
//
//	POST /v1/payments/{gateway}
//	POST /v1/payments/{gateway}/3dsecure
//	POST /v1/callback/{gateway}
//	POST /v1/refunds/{gateway}
//	GET  /v1/payments/{gateway}/{orderId}
//	GET  /v1/installments/{gateway}?bin=545616&amount=1500
//
// # Adding a Gateway
//
// To add a new gateway:
//
//  1. Implement the gateway.Gateway interface plus the capability
//     interfaces the provider supports
//  2. Add the package under gateway/{name}/
//  3. Register it in gateway/{name}/register.go
//  4. Add tests against an httptest server
package arpay
