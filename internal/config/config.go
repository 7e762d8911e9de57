package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        string `envconfig:"PORT" default:"8080"`
	AppBaseURL  string `envconfig:"APP_BASE_URL" default:"http://localhost:3000"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	StripeSecretKey             string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret         string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	StripeWebhookFallbackSecret string `envconfig:"STRIPE_WEBHOOK_FALLBACK_SECRET"`

	SendgridAPIKey    string `envconfig:"SENDGRID_API_KEY"`
	SendgridFromEmail string `envconfig:"SENDGRID_FROM_EMAIL"`
	SendgridFromName  string `envconfig:"SENDGRID_FROM_NAME" default:"EquipRent"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
