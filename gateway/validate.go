package gateway

// Local validation error codes. These short-circuit a request before
// any network call and surface as failed responses, not Go errors.
const (
	ErrCodeCardMissing        = "CARD_MISSING"
	ErrCodeInvalidCard        = "INVALID_CARD"
	ErrCodeInvalidInstallment = "INVALID_INSTALLMENT"
	ErrCodePaymentFailed      = "PAYMENT_FAILED"
)

// ValidateCard checks that a card is present and passes the Luhn check.
// It returns a failed response to hand back unchanged, or nil when the
// card is usable.
func ValidateCard(card *CreditCard) *PaymentResponse {
	if card == nil {
		return FailedPaymentResponse(ErrCodeCardMissing, "credit card is required", nil)
	}
	if !card.Valid() {
		return FailedPaymentResponse(ErrCodeInvalidCard, "credit card number is invalid", nil)
	}
	return nil
}

// ValidateSubscriptionCard is ValidateCard for the subscription flow,
// returning the failure as a SubscriptionResponse.
func ValidateSubscriptionCard(card *CreditCard) *SubscriptionResponse {
	if failed := ValidateCard(card); failed != nil {
		return FailedSubscriptionResponse(failed.ErrorCode, failed.ErrorMessage, nil)
	}
	return nil
}
