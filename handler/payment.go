package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/armagangokce/arpay-go/gateway"
	"github.com/armagangokce/arpay-go/infra/logger"
	"github.com/armagangokce/arpay-go/infra/middle"
	"github.com/armagangokce/arpay-go/infra/response"
)

const requestTimeout = 30 * time.Second

// GatewayResolver returns a configured gateway for a registry name
type GatewayResolver func(name string) (gateway.Gateway, error)

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	resolve  GatewayResolver
	validate *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(resolve GatewayResolver, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		resolve:  resolve,
		validate: validate,
	}
}

type cardPayload struct {
	HolderName  string `json:"holderName" validate:"required"`
	Number      string `json:"number" validate:"required,min=13"`
	ExpireMonth string `json:"expireMonth" validate:"required"`
	ExpireYear  string `json:"expireYear" validate:"required"`
	CVV         string `json:"cvv" validate:"required,min=3,max=4"`
}

type customerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

type paymentPayload struct {
	Amount       float64          `json:"amount" validate:"required,gt=0"`
	Currency     string           `json:"currency"`
	OrderID      string           `json:"orderId"`
	Description  string           `json:"description"`
	Installments int              `json:"installments" validate:"gte=0,lte=12"`
	Card         *cardPayload     `json:"card" validate:"required"`
	Customer     *customerPayload `json:"customer"`
	CallbackURL  string           `json:"callbackUrl" validate:"omitempty,url"`
	SuccessURL   string           `json:"successUrl" validate:"omitempty,url"`
	FailURL      string           `json:"failUrl" validate:"omitempty,url"`
}

type refundPayload struct {
	TransactionID string  `json:"transactionId" validate:"required_without=OrderID"`
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Reason        string  `json:"reason"`
}

// ProcessPayment handles direct payment requests
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payload, gw, ok := h.bindPayment(w, r)
	if !ok {
		return
	}

	payable, ok := gw.(gateway.Payable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway cannot charge directly", nil)
		return
	}

	req := h.buildPaymentRequest(payload, r)

	var resp *gateway.PaymentResponse
	var err error
	if payload.Installments > 1 {
		resp, err = payable.PayWithInstallment(ctx, req)
	} else {
		resp, err = payable.Pay(ctx, req)
	}
	if err != nil {
		h.writeGatewayError(w, "Payment failed", err)
		return
	}

	logger.Info("payment processed",
		zap.String("gateway", gw.Name()),
		zap.String("order_id", resp.OrderID),
		zap.Bool("successful", resp.Successful),
	)
	response.Success(w, http.StatusOK, "Payment processed", resp)
}

// InitSecurePayment starts a 3-D Secure payment
func (h *PaymentHandler) InitSecurePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payload, gw, ok := h.bindPayment(w, r)
	if !ok {
		return
	}
	if payload.CallbackURL == "" {
		response.Error(w, http.StatusBadRequest, "Validation error", errors.New("callbackUrl is required for 3D secure payments"))
		return
	}

	secure, ok := gw.(gateway.SecurePayable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway does not support 3D secure", nil)
		return
	}

	req := gateway.NewSecurePaymentRequest().
		CallbackURL(payload.CallbackURL).
		SuccessURL(payload.SuccessURL).
		FailURL(payload.FailURL)
	req.PaymentRequest = *h.buildPaymentRequest(payload, r)

	resp, err := secure.InitSecurePayment(ctx, req)
	if err != nil {
		h.writeGatewayError(w, "3D secure initialization failed", err)
		return
	}

	response.Success(w, http.StatusOK, "3D secure initialized", resp)
}

// CompleteSecurePayment finalizes a 3-D Secure payment from the
// provider callback. The posted form is handed to the gateway opaquely;
// gateways that sign their callbacks verify the signature themselves.
func (h *PaymentHandler) CompleteSecurePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gw, ok := h.resolveGateway(w, r)
	if !ok {
		return
	}

	secure, ok := gw.(gateway.SecurePayable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway does not support 3D secure", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid callback format", err)
		return
	}

	resp, err := secure.CompleteSecurePayment(ctx, gateway.CallbackFromValues(r.Form))
	if err != nil {
		h.writeGatewayError(w, "3D secure completion failed", err)
		return
	}

	response.Success(w, http.StatusOK, "3D secure completed", resp)
}

// RefundPayment handles refund requests
func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gw, ok := h.resolveGateway(w, r)
	if !ok {
		return
	}

	var payload refundPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	refundable, ok := gw.(gateway.Refundable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway does not support refunds", nil)
		return
	}

	resp, err := refundable.Refund(ctx, &gateway.RefundRequest{
		TransactionID: payload.TransactionID,
		OrderID:       payload.OrderID,
		Amount:        payload.Amount,
		Reason:        payload.Reason,
	})
	if err != nil {
		h.writeGatewayError(w, "Refund failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Refund processed", resp)
}

// GetPaymentStatus looks up a payment by order ID
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gw, ok := h.resolveGateway(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing order ID", nil)
		return
	}

	queryable, ok := gw.(gateway.Queryable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway does not support queries", nil)
		return
	}

	resp, err := queryable.Query(ctx, &gateway.QueryRequest{OrderID: orderID})
	if err != nil {
		h.writeGatewayError(w, "Failed to get payment status", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment status retrieved", resp)
}

// GetInstallments lists the installment options for a BIN and amount
func (h *PaymentHandler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gw, ok := h.resolveGateway(w, r)
	if !ok {
		return
	}

	bin := r.URL.Query().Get("bin")
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if bin == "" || err != nil || amount <= 0 {
		response.Error(w, http.StatusBadRequest, "bin and a positive amount are required", nil)
		return
	}

	installmentQueryable, ok := gw.(gateway.InstallmentQueryable)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Gateway does not support installment queries", nil)
		return
	}

	installments, err := installmentQueryable.QueryInstallments(ctx, bin, amount)
	if err != nil {
		h.writeGatewayError(w, "Failed to get installments", err)
		return
	}

	response.Success(w, http.StatusOK, "Installments retrieved", installments)
}

// ListGateways returns the registered gateway names and capabilities
func (h *PaymentHandler) ListGateways(w http.ResponseWriter, r *http.Request) {
	gateways := make(map[string][]gateway.Feature)
	for _, name := range gateway.Names() {
		gw, err := h.resolve(name)
		if err != nil {
			continue
		}
		gateways[name] = gw.Features()
	}
	response.Success(w, http.StatusOK, "Gateways retrieved", gateways)
}

func (h *PaymentHandler) resolveGateway(w http.ResponseWriter, r *http.Request) (gateway.Gateway, bool) {
	gw, err := h.resolve(chi.URLParam(r, "gateway"))
	if err != nil {
		h.writeGatewayError(w, "Gateway unavailable", err)
		return nil, false
	}
	return gw, true
}

func (h *PaymentHandler) bindPayment(w http.ResponseWriter, r *http.Request) (*paymentPayload, gateway.Gateway, bool) {
	gw, ok := h.resolveGateway(w, r)
	if !ok {
		return nil, nil, false
	}

	var payload paymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return nil, nil, false
	}
	if err := h.validate.Struct(payload); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return nil, nil, false
	}

	return &payload, gw, true
}

func (h *PaymentHandler) buildPaymentRequest(payload *paymentPayload, r *http.Request) *gateway.PaymentRequest {
	orderID := payload.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}

	req := gateway.NewPaymentRequest().
		Amount(payload.Amount).
		OrderID(orderID).
		Description(payload.Description).
		Card(gateway.NewCreditCard(
			payload.Card.HolderName,
			payload.Card.Number,
			payload.Card.ExpireMonth,
			payload.Card.ExpireYear,
			payload.Card.CVV,
		))
	if payload.Currency != "" {
		req.Currency(payload.Currency)
	}
	if payload.Installments > 1 {
		req.Installments(payload.Installments)
	}

	customer := &gateway.Customer{IP: middle.GetClientIP(r)}
	if payload.Customer != nil {
		customer.FirstName = payload.Customer.FirstName
		customer.LastName = payload.Customer.LastName
		customer.Email = payload.Customer.Email
		customer.Phone = payload.Customer.Phone
	}
	req.Customer(customer)

	return req
}

// writeGatewayError maps library error types to HTTP status codes
func (h *PaymentHandler) writeGatewayError(w http.ResponseWriter, message string, err error) {
	var (
		notFound    *gateway.GatewayNotFoundError
		unsupported *gateway.UnsupportedOperationError
		cfgErr      *gateway.ConfigError
		authErr     *gateway.AuthenticationError
		netErr      *gateway.NetworkError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &unsupported):
		status = http.StatusBadRequest
	case errors.As(err, &cfgErr):
		status = http.StatusInternalServerError
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	}

	logger.Warn(message, zap.Int("status", status), zap.Error(err))
	response.Error(w, status, message, err)
}
