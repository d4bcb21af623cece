package config

type PaymentConfig struct {
	Provider string        `yaml:"provider"`
	Stripe   *StripeConfig `yaml:"stripe"`
	Currency string        `yaml:"currency"`
}

type StripeConfig struct {
	PublishableKey string `yaml:"publishable_key"`
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Provider: getEnv("PAYMENT_PROVIDER", "stripe"),
		Stripe: &StripeConfig{
			PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Currency: getEnv("PAYMENT_CURRENCY", "usd"),
	}
}
