package payment

import "fmt"

type Config struct {
	Provider          string
	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string
}

// NewProvider picks the gateway named in config. An empty name selects the
// mock provider.
func NewProvider(config *Config) (PaymentProvider, error) {
	switch config.Provider {
	case "", "mock":
		return NewMockProvider(), nil
	case "stripe":
		if config.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe provider requires STRIPE_SECRET_KEY")
		}
		return NewStripeProvider(config.StripeSecretKey), nil
	case "razorpay":
		if config.RazorpayKeyID == "" || config.RazorpayKeySecret == "" {
			return nil, fmt.Errorf("razorpay provider requires RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
		}
		return NewRazorpayProvider(config.RazorpayKeyID, config.RazorpayKeySecret), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", config.Provider)
	}
}
