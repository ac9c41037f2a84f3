package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestMockProviderApproves(t *testing.T) {
	p := NewMockProvider()

	resp, err := p.ProcessPayment(context.Background(), &PaymentRequest{Amount: 299, Currency: "INR", Reference: "sub_1"})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded())
	assert.True(t, strings.HasPrefix(resp.TransactionID, "mock_"))
	assert.Equal(t, 299.0, resp.Amount)

	_, err = p.ProcessPayment(context.Background(), &PaymentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&Config{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	_, err = NewProvider(&Config{Provider: "stripe"})
	assert.Error(t, err)

	p, err = NewProvider(&Config{Provider: "stripe", StripeSecretKey: "sk_test_x"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())

	p, err = NewProvider(&Config{Provider: "razorpay", RazorpayKeyID: "rzp_test", RazorpayKeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "razorpay", p.Name())

	_, err = NewProvider(&Config{Provider: "paypal"})
	assert.Error(t, err)
}

func TestAmountConversions(t *testing.T) {
	assert.Equal(t, int64(4900), toMinorUnits(49))
	assert.Equal(t, int64(12050), toMinorUnits(120.5))
	assert.Equal(t, int64(29), toMinorUnits(0.29))

	assert.Equal(t, int64(9990), numberField(float64(9990)))
	assert.Equal(t, int64(7), numberField(7))
	assert.Zero(t, numberField("x"))
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, StatusSucceeded, stripeStatus(stripe.PaymentIntentStatusSucceeded))
	assert.Equal(t, StatusPending, stripeStatus(stripe.PaymentIntentStatusRequiresPaymentMethod))
	assert.Equal(t, StatusFailed, stripeStatus(stripe.PaymentIntentStatusCanceled))
	assert.Equal(t, StatusSucceeded, razorpayStatus("paid"))
	assert.Equal(t, StatusPending, razorpayStatus("created"))
}
