// Package handler provides the HTTP request handlers of the demo server.
//
// PaymentHandler bridges the JSON API with the gateway capability
// interfaces. Requests are bound and validated, translated into the
// common request types and dispatched to the gateway the URL names:
//
//	paymentHandler := handler.NewPaymentHandler(resolver, validator)
//
//	// Routes
//	r.Post("/v1/payments/{gateway}", paymentHandler.ProcessPayment)
//	r.Post("/v1/payments/{gateway}/3dsecure", paymentHandler.InitSecurePayment)
//	r.Post("/v1/callback/{gateway}", paymentHandler.CompleteSecurePayment)
//	r.Post("/v1/refunds/{gateway}", paymentHandler.RefundPayment)
//	r.Get("/v1/payments/{gateway}/{orderId}", paymentHandler.GetPaymentStatus)
//	r.Get("/v1/installments/{gateway}", paymentHandler.GetInstallments)
//
// Gateway level failures are split the same way the library splits
// them: business declines come back HTTP 200 with successful=false,
// while configuration, transport and callback authenticity problems
// map to 4xx/5xx status codes.
package handler
