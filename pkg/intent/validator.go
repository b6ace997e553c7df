package intent

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/models"
)

// amountPattern is the ledger's amount grammar: a positive decimal
// with at most 7 fractional digits.
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,7})?$`)

// Validator checks payment intents before any authentication or
// network call happens. Validation is the cheapest step and always
// runs first.
type Validator struct {
	resolver *currency.Resolver
	now      func() time.Time
}

// NewValidator creates a validator backed by the given currency resolver.
func NewValidator(resolver *currency.Resolver) *Validator {
	return &Validator{resolver: resolver, now: time.Now}
}

// Validate checks structure and business rules. It returns a
// validation error for malformed intents and an expired-intent error
// when expires_at lies in the past.
func (v *Validator) Validate(pi *models.PaymentIntent) error {
	if pi.IntentID == "" {
		return errs.New(errs.KindValidation, "intent_id is required")
	}
	if pi.Amount == "" {
		return errs.New(errs.KindValidation, "amount is required")
	}
	if pi.SourceCurrency == "" {
		return errs.New(errs.KindValidation, "source_currency is required")
	}
	if pi.Recipient.AgentID == "" {
		return errs.New(errs.KindValidation, "recipient.agent_id is required")
	}
	if pi.Recipient.Address == "" {
		return errs.New(errs.KindValidation, "recipient.address is required")
	}
	if pi.Sender.AgentID == "" {
		return errs.New(errs.KindValidation, "sender.agent_id is required")
	}
	if pi.Sender.AuthToken == "" {
		return errs.New(errs.KindValidation, "sender.auth_token is required")
	}

	if !amountPattern.MatchString(pi.Amount) {
		return errs.New(errs.KindValidation, "amount must be a positive decimal with at most 7 fractional digits")
	}
	amount, err := decimal.NewFromString(pi.Amount)
	if err != nil {
		return errs.Wrap(errs.KindValidation, err, "amount is not a valid decimal")
	}
	if amount.Sign() <= 0 {
		return errs.New(errs.KindValidation, "amount must be greater than zero")
	}

	if _, err := v.resolver.Resolve(pi.SourceCurrency); err != nil {
		return err
	}
	if pi.Recipient.DestinationCurrency != "" {
		if _, err := v.resolver.Resolve(pi.Recipient.DestinationCurrency); err != nil {
			return err
		}
	}

	if pi.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, pi.ExpiresAt)
		if err != nil {
			return errs.Wrap(errs.KindValidation, err, "expires_at must be an RFC 3339 timestamp")
		}
		if expiresAt.Before(v.now()) {
			return errs.New(errs.KindExpiredIntent, "payment intent has expired")
		}
	}

	return nil
}
