package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *RazorpayProvider) Name() string {
	return "razorpay"
}

// ProcessPayment creates an order. Razorpay captures the payment through
// the checkout widget, so the charge stays pending here.
func (r *RazorpayProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}

	notes := make(map[string]interface{}, len(request.Metadata))
	for k, v := range request.Metadata {
		notes[k] = v
	}

	orderData := map[string]interface{}{
		"amount":   toMinorUnits(request.Amount),
		"currency": strings.ToUpper(request.Currency),
		"receipt":  truncate(request.Reference, 40),
		"notes":    notes,
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	id, _ := order["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}
	currency, _ := order["currency"].(string)

	return &PaymentResponse{
		TransactionID: id,
		Provider:      r.Name(),
		Status:        razorpayStatus(order["status"]),
		Amount:        float64(numberField(order["amount"])) / 100,
		Currency:      currency,
		CreatedAt:     numberField(order["created_at"]),
	}, nil
}

func razorpayStatus(v interface{}) string {
	if s, _ := v.(string); s == "paid" {
		return StatusSucceeded
	}
	return StatusPending
}

// numberField reads a JSON number that may have been decoded as float64 or int.
func numberField(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
