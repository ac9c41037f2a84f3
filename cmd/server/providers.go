package main

import (
	"context"
	"fmt"

	"ridedeck/internal/config"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/maps"
	"ridedeck/pkg/payment"
	"ridedeck/pkg/sms"
)

type providers struct {
	payments payment.PaymentProvider
	sms      sms.SMSProvider
	// geocoder is nil when no maps key is configured.
	geocoder maps.Geocoder
}

func newProviders(ctx context.Context, cfg *config.Config, log *logger.Logger) (*providers, error) {
	paymentProvider, err := payment.NewProvider(&payment.Config{
		Provider:          cfg.Payment.DefaultProvider,
		StripeSecretKey:   cfg.Payment.Stripe.SecretKey,
		RazorpayKeyID:     cfg.Payment.Razorpay.KeyID,
		RazorpayKeySecret: cfg.Payment.Razorpay.KeySecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment provider: %w", err)
	}

	smsProvider, err := newSMSProvider(ctx, cfg.SMS, log)
	if err != nil {
		return nil, err
	}

	p := &providers{
		payments: paymentProvider,
		sms:      smsProvider,
	}

	if cfg.Maps.Enabled() {
		geocoder, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey, cfg.Maps.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create maps provider: %w", err)
		}
		p.geocoder = geocoder
	}

	log.WithFields(map[string]interface{}{
		"payment_provider": paymentProvider.Name(),
		"sms_provider":     smsProvider.Name(),
		"geocoding":        p.geocoder != nil,
	}).Info("Providers initialized")

	return p, nil
}

func newSMSProvider(ctx context.Context, cfg *config.SMSConfig, log *logger.Logger) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case config.SMSProviderTwilio:
		if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
			return nil, fmt.Errorf("twilio SMS provider requires TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN")
		}
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	case config.SMSProviderAWS:
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.AWS.Region, cfg.SenderID)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS SNS provider: %w", err)
		}
		return provider, nil
	case config.SMSProviderLog, "":
		return sms.NewLogProvider(log), nil
	default:
		return nil, fmt.Errorf("unknown SMS provider %q", cfg.Provider)
	}
}
