// Package gateway defines the common contracts, data types and helpers shared
// by all payment gateway implementations. Each gateway lives in its own
// subpackage and registers itself with the default registry on import.
package gateway

import "context"

// Feature identifies a single capability a gateway may support.
type Feature string

const (
	FeaturePay              Feature = "pay"
	FeaturePayInstallment   Feature = "pay_installment"
	FeatureRefund           Feature = "refund"
	FeatureQuery            Feature = "query"
	FeatureSecure3D         Feature = "secure_3d"
	FeatureSubscription     Feature = "subscription"
	FeatureInstallmentQuery Feature = "installment_query"
)

// Gateway is the base contract every payment gateway implements.
// Capability methods live on the narrow interfaces below; callers check
// support with Supports or a type assertion before invoking them.
type Gateway interface {
	// Name returns the short registry name (e.g. "paytr")
	Name() string

	// DisplayName returns the human readable name (e.g. "PayTR")
	DisplayName() string

	// Configure validates and applies the gateway credentials.
	// It fails fast with a *ConfigError when required keys are missing.
	Configure(cfg Config) error

	// Supports reports whether the gateway implements the given feature
	Supports(feature Feature) bool

	// Features returns the full static capability set of the gateway
	Features() []Feature
}

// Payable is implemented by gateways that can charge a card directly
type Payable interface {
	Gateway
	Pay(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)
	PayWithInstallment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)
}

// Refundable is implemented by gateways that can refund a completed payment
type Refundable interface {
	Gateway
	Refund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)
}

// Queryable is implemented by gateways that can look up payment state
type Queryable interface {
	Gateway
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)
}

// SecurePayable is implemented by gateways that support the two phase
// 3-D Secure flow: InitSecurePayment starts it and returns either a redirect
// or inline HTML, CompleteSecurePayment verifies the provider callback and
// finalizes the charge.
type SecurePayable interface {
	Gateway
	InitSecurePayment(ctx context.Context, req *SecurePaymentRequest) (*SecureInitResponse, error)
	CompleteSecurePayment(ctx context.Context, callback *SecureCallbackData) (*PaymentResponse, error)
}

// Subscribable is implemented by gateways that support recurring payments
type Subscribable interface {
	Gateway
	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResponse, error)
}

// InstallmentQueryable is implemented by gateways that can list the
// installment options available for a card BIN and amount.
type InstallmentQueryable interface {
	Gateway
	QueryInstallments(ctx context.Context, bin string, amount float64) ([]InstallmentInfo, error)
}

// Factory creates an unconfigured gateway instance
type Factory func() Gateway
