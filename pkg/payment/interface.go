package payment

import (
	"context"
)

// Intent statuses as reported by the gateway. Succeeded is the only
// terminal-success value; everything else leaves bookings untouched.
const (
	IntentStatusSucceeded = "succeeded"

	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Gateway is the payment provider contract. Card data never passes through
// this process; the gateway hands back a client token the frontend uses to
// collect payment details directly.
type Gateway interface {
	CreateIntent(ctx context.Context, request *IntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	// VerifyWebhook checks the event signature against the shared webhook
	// secret before anything in the payload is trusted.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type IntentRequest struct {
	Amount   float64           `json:"amount"` // major units; converted to minor units by the provider
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"` // minor units
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

type WebhookEvent struct {
	EventID      string            `json:"event_id"`
	EventType    string            `json:"event_type"`
	IntentID     string            `json:"intent_id"`
	IntentStatus string            `json:"intent_status"`
	Metadata     map[string]string `json:"metadata"`
}
