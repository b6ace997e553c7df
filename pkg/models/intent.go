package models

// Recipient identifies the receiving agent and its ledger address.
type Recipient struct {
	AgentID string `json:"agent_id"`
	Address string `json:"address"`
	// DestinationCurrency requests conversion; empty means deliver the
	// source currency unchanged.
	DestinationCurrency string `json:"destination_currency,omitempty"`
}

// Sender identifies the paying agent and carries its bearer token.
type Sender struct {
	AgentID   string `json:"agent_id"`
	AuthToken string `json:"auth_token"`
}

// PaymentIntent is a signed, agent-issued instruction to move value.
// IntentID is caller-chosen and is the only correlation key: the
// gateway keeps no store, so duplicate ids mean duplicate settlement.
type PaymentIntent struct {
	IntentID       string            `json:"intent_id"`
	Amount         string            `json:"amount"`
	SourceCurrency string            `json:"source_currency"`
	Recipient      Recipient         `json:"recipient"`
	Sender         Sender            `json:"sender"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CallbackURL    string            `json:"callback_url,omitempty"`
	// ExpiresAt is an optional RFC 3339 timestamp.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// DestinationCurrency returns the requested destination currency,
// falling back to the source currency when no conversion is asked for.
func (p *PaymentIntent) DestinationCurrency() string {
	if p.Recipient.DestinationCurrency != "" {
		return p.Recipient.DestinationCurrency
	}
	return p.SourceCurrency
}
