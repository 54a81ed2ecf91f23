package gateway

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusSuccessful PaymentStatus = "successful"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusRefunded   PaymentStatus = "refunded"
)
