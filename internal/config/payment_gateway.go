package config

const (
	PaymentProviderMock     = "mock"
	PaymentProviderStripe   = "stripe"
	PaymentProviderRazorpay = "razorpay"
)

type PaymentConfig struct {
	DefaultProvider  string          `yaml:"default_provider"`
	Stripe           *StripeConfig   `yaml:"stripe"`
	Razorpay         *RazorpayConfig `yaml:"razorpay"`
	Currency         string          `yaml:"currency"`
	ChargeOnComplete bool            `yaml:"charge_on_complete"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		DefaultProvider: getEnv("PAYMENT_DEFAULT_PROVIDER", PaymentProviderMock),
		Stripe: &StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Razorpay: &RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Currency:         getEnv("PAYMENT_CURRENCY", "INR"),
		ChargeOnComplete: getEnvAsBool("PAYMENT_CHARGE_ON_COMPLETE", true),
	}
}
