package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/armagangokce/arpay-go"
	"github.com/armagangokce/arpay-go/gateway"
	"github.com/armagangokce/arpay-go/handler"
	"github.com/armagangokce/arpay-go/infra/config"
)

// DefaultResolver creates a gateway with the credentials found in the
// environment for its name.
func DefaultResolver(name string) (gateway.Gateway, error) {
	return arpay.Create(name, config.GatewayConfig(name))
}

// Routes mounts the payment API
func Routes(r chi.Router, resolve handler.GatewayResolver) {
	if resolve == nil {
		resolve = DefaultResolver
	}
	h := handler.NewPaymentHandler(resolve, validator.New())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/gateways", h.ListGateways)

		r.Route("/payments/{gateway}", func(r chi.Router) {
			r.Post("/", h.ProcessPayment)
			r.Post("/3dsecure", h.InitSecurePayment)
			r.Get("/{orderId}", h.GetPaymentStatus)
		})

		r.Post("/callback/{gateway}", h.CompleteSecurePayment)
		r.Post("/refunds/{gateway}", h.RefundPayment)
		r.Get("/installments/{gateway}", h.GetInstallments)
	})
}
