package gateway

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
)

// PaymentResponse is the unified result of a charge attempt. Business
// declines are reported here with Successful=false and the provider's
// error code; they are never Go errors.
type PaymentResponse struct {
	Successful    bool           `json:"successful"`
	TransactionID string         `json:"transactionId,omitempty"`
	OrderID       string         `json:"orderId,omitempty"`
	Amount        float64        `json:"amount,omitempty"`
	Status        PaymentStatus  `json:"status"`
	ErrorCode     string         `json:"errorCode,omitempty"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// NewPaymentResponse builds a successful payment response
func NewPaymentResponse(transactionID, orderID string, amount float64, raw map[string]any) *PaymentResponse {
	return &PaymentResponse{
		Successful:    true,
		TransactionID: transactionID,
		OrderID:       orderID,
		Amount:        amount,
		Status:        StatusSuccessful,
		Raw:           raw,
	}
}

// FailedPaymentResponse builds a failed payment response
func FailedPaymentResponse(errorCode, errorMessage string, raw map[string]any) *PaymentResponse {
	return &PaymentResponse{
		Successful:   false,
		Status:       StatusFailed,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Raw:          raw,
	}
}

// QueryResponse is the unified result of a payment lookup
type QueryResponse struct {
	Successful    bool           `json:"successful"`
	TransactionID string         `json:"transactionId,omitempty"`
	OrderID       string         `json:"orderId,omitempty"`
	Amount        float64        `json:"amount,omitempty"`
	Status        PaymentStatus  `json:"status"`
	ErrorCode     string         `json:"errorCode,omitempty"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	Raw           map[string]any `json:"raw,omitempty"`
}

// NewQueryResponse builds a successful query response with the looked up status
func NewQueryResponse(transactionID, orderID string, amount float64, status PaymentStatus, raw map[string]any) *QueryResponse {
	return &QueryResponse{
		Successful:    true,
		TransactionID: transactionID,
		OrderID:       orderID,
		Amount:        amount,
		Status:        status,
		Raw:           raw,
	}
}

// FailedQueryResponse builds a failed query response
func FailedQueryResponse(errorCode, errorMessage string, raw map[string]any) *QueryResponse {
	return &QueryResponse{
		Successful:   false,
		Status:       StatusFailed,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Raw:          raw,
	}
}

// RefundResponse is the unified result of a refund attempt
type RefundResponse struct {
	Successful     bool           `json:"successful"`
	TransactionID  string         `json:"transactionId,omitempty"`
	OrderID        string         `json:"orderId,omitempty"`
	RefundedAmount float64        `json:"refundedAmount,omitempty"`
	ErrorCode      string         `json:"errorCode,omitempty"`
	ErrorMessage   string         `json:"errorMessage,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// NewRefundResponse builds a successful refund response
func NewRefundResponse(transactionID, orderID string, refundedAmount float64, raw map[string]any) *RefundResponse {
	return &RefundResponse{
		Successful:     true,
		TransactionID:  transactionID,
		OrderID:        orderID,
		RefundedAmount: refundedAmount,
		Raw:            raw,
	}
}

// FailedRefundResponse builds a failed refund response
func FailedRefundResponse(errorCode, errorMessage string, raw map[string]any) *RefundResponse {
	return &RefundResponse{
		Successful:   false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Raw:          raw,
	}
}

// SubscriptionStatus values
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// SubscriptionResponse is the unified result of a subscription operation
type SubscriptionResponse struct {
	Successful     bool           `json:"successful"`
	SubscriptionID string         `json:"subscriptionId,omitempty"`
	Status         string         `json:"status,omitempty"`
	ErrorCode      string         `json:"errorCode,omitempty"`
	ErrorMessage   string         `json:"errorMessage,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// NewSubscriptionResponse builds a successful subscription response
func NewSubscriptionResponse(subscriptionID, status string, raw map[string]any) *SubscriptionResponse {
	return &SubscriptionResponse{
		Successful:     true,
		SubscriptionID: subscriptionID,
		Status:         status,
		Raw:            raw,
	}
}

// FailedSubscriptionResponse builds a failed subscription response
func FailedSubscriptionResponse(errorCode, errorMessage string, raw map[string]any) *SubscriptionResponse {
	return &SubscriptionResponse{
		Successful:   false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Raw:          raw,
	}
}

// SecureInitResponse is the first half of the 3-D Secure flow. Exactly
// one shape applies: a redirect (URL plus an auto-submit form when the
// provider wants a POST), inline HTML to render as is, or a failure.
type SecureInitResponse struct {
	Successful       bool              `json:"successful"`
	RedirectRequired bool              `json:"redirectRequired"`
	RedirectURL      string            `json:"redirectUrl,omitempty"`
	HTMLForm         string            `json:"htmlForm,omitempty"`
	FormData         map[string]string `json:"formData,omitempty"`
	ErrorCode        string            `json:"errorCode,omitempty"`
	ErrorMessage     string            `json:"errorMessage,omitempty"`
	Raw              map[string]any    `json:"raw,omitempty"`
}

// SecureRedirect builds a redirect response. When formData is non-empty
// an auto-submit POST form is rendered alongside the URL.
func SecureRedirect(redirectURL string, formData map[string]string, raw map[string]any) *SecureInitResponse {
	resp := &SecureInitResponse{
		Successful:       true,
		RedirectRequired: true,
		RedirectURL:      redirectURL,
		FormData:         formData,
		Raw:              raw,
	}
	if len(formData) > 0 {
		resp.HTMLForm = buildAutoSubmitForm(redirectURL, formData)
	}
	return resp
}

// SecureHTML builds an inline HTML response
func SecureHTML(content string, raw map[string]any) *SecureInitResponse {
	return &SecureInitResponse{
		Successful:       true,
		RedirectRequired: false,
		HTMLForm:         content,
		Raw:              raw,
	}
}

// FailedSecureInit builds a failed 3-D initialization response
func FailedSecureInit(errorCode, errorMessage string, raw map[string]any) *SecureInitResponse {
	return &SecureInitResponse{
		Successful:   false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Raw:          raw,
	}
}

// buildAutoSubmitForm renders a self-posting form for providers whose
// 3-D page expects a POST. Field order is fixed so the output is stable.
func buildAutoSubmitForm(action string, formData map[string]string) string {
	keys := make([]string, 0, len(formData))
	for k := range formData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, `<form id="arpay_3d_form" method="POST" action="%s">`, html.EscapeString(action))
	b.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, html.EscapeString(k), html.EscapeString(formData[k]))
		b.WriteString("\n")
	}
	b.WriteString(`</form>` + "\n")
	b.WriteString(`<script>document.getElementById("arpay_3d_form").submit();</script>`)
	return b.String()
}

// SecureCallbackData wraps the opaque parameters a provider posts back
// to the merchant after the 3-D challenge. Adapters know their own keys.
type SecureCallbackData struct {
	values map[string]string
}

// NewSecureCallbackData wraps an already extracted parameter map
func NewSecureCallbackData(values map[string]string) *SecureCallbackData {
	if values == nil {
		values = make(map[string]string)
	}
	return &SecureCallbackData{values: values}
}

// CallbackFromValues builds callback data from posted form values
func CallbackFromValues(values url.Values) *SecureCallbackData {
	m := make(map[string]string, len(values))
	for k := range values {
		m[k] = values.Get(k)
	}
	return &SecureCallbackData{values: m}
}

// Get returns the value for key, or def when absent
func (d *SecureCallbackData) Get(key, def string) string {
	if v, ok := d.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key was present in the callback
func (d *SecureCallbackData) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Raw returns the callback parameters as a raw response map
func (d *SecureCallbackData) Raw() map[string]any {
	m := make(map[string]any, len(d.values))
	for k, v := range d.values {
		m[k] = v
	}
	return m
}

// ToMap returns a copy of all callback parameters
func (d *SecureCallbackData) ToMap() map[string]string {
	m := make(map[string]string, len(d.values))
	for k, v := range d.values {
		m[k] = v
	}
	return m
}
