package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockProvider approves every charge. It is the default when no gateway is
// configured.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		TransactionID: "mock_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider:      m.Name(),
		Status:        StatusSucceeded,
		Amount:        request.Amount,
		Currency:      request.Currency,
		CreatedAt:     time.Now().Unix(),
	}, nil
}
