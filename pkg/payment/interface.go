package payment

import (
	"context"
	"errors"
	"math"
)

const (
	StatusSucceeded = "succeeded"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

type PaymentProvider interface {
	Name() string
	ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error)
}

type PaymentRequest struct {
	// Reference identifies the charge on our side and doubles as the
	// idempotency key.
	Reference   string            `json:"reference"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	CustomerID  string            `json:"customer_id"`
	Metadata    map[string]string `json:"metadata"`
}

type PaymentResponse struct {
	TransactionID string  `json:"transaction_id"`
	Provider      string  `json:"provider"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CreatedAt     int64   `json:"created_at"`
}

func (r *PaymentResponse) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// toMinorUnits converts rupees (or dollars) into paise (or cents).
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func validateRequest(request *PaymentRequest) error {
	if request.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
