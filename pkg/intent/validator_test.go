package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/models"
)

const (
	testUSDCIssuer = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"
	testEURCIssuer = "GDHU6WRG4IEQXM5NZ4BMPKOXHW76MZM4Y2IEMFDVXBSDP6SJY4ITNPP2"
)

func validIntent() *models.PaymentIntent {
	return &models.PaymentIntent{
		IntentID:       "intent-123",
		Amount:         "100.50",
		SourceCurrency: "USDC",
		Recipient: models.Recipient{
			AgentID: "merchant-agent",
			Address: "GBVNTPGWPK4DALGKQVJ5SQCEEVVNF4T3GHMSWNUMBE6AOS4W7RZ3FOWD",
		},
		Sender: models.Sender{
			AgentID:   "shopper-agent",
			AuthToken: "some.jwt.token",
		},
	}
}

func newTestValidator(now time.Time) *Validator {
	v := NewValidator(currency.NewResolver(testUSDCIssuer, testEURCIssuer))
	v.now = func() time.Time { return now }
	return v
}

func TestValidateRequiredFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(pi *models.PaymentIntent)
	}{
		{"missing_intent_id", func(pi *models.PaymentIntent) { pi.IntentID = "" }},
		{"missing_amount", func(pi *models.PaymentIntent) { pi.Amount = "" }},
		{"missing_source_currency", func(pi *models.PaymentIntent) { pi.SourceCurrency = "" }},
		{"missing_recipient_agent", func(pi *models.PaymentIntent) { pi.Recipient.AgentID = "" }},
		{"missing_recipient_address", func(pi *models.PaymentIntent) { pi.Recipient.Address = "" }},
		{"missing_sender_agent", func(pi *models.PaymentIntent) { pi.Sender.AgentID = "" }},
		{"missing_auth_token", func(pi *models.PaymentIntent) { pi.Sender.AuthToken = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := validIntent()
			tt.mutate(pi)
			err := newTestValidator(now).Validate(pi)
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestValidateAmountGrammar(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"integer", "100", false},
		{"two_decimals", "100.50", false},
		{"seven_decimals", "0.0000001", false},
		{"eight_decimals", "0.00000001", true},
		{"zero", "0", true},
		{"zero_fraction", "0.0", true},
		{"negative", "-5", true},
		{"leading_plus", "+5", true},
		{"scientific", "1e3", true},
		{"trailing_dot", "100.", true},
		{"not_a_number", "abc", true},
		{"comma_separator", "1,000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := validIntent()
			pi.Amount = tt.amount
			err := newTestValidator(now).Validate(pi)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateCurrencies(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unsupported_source", func(t *testing.T) {
		pi := validIntent()
		pi.SourceCurrency = "JPY"
		err := newTestValidator(now).Validate(pi)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("unsupported_destination", func(t *testing.T) {
		pi := validIntent()
		pi.Recipient.DestinationCurrency = "GBP"
		err := newTestValidator(now).Validate(pi)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("alias_destination_accepted", func(t *testing.T) {
		pi := validIntent()
		pi.Recipient.DestinationCurrency = "eur"
		assert.NoError(t, newTestValidator(now).Validate(pi))
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("expired_intent", func(t *testing.T) {
		pi := validIntent()
		pi.ExpiresAt = now.Add(-time.Minute).Format(time.RFC3339)
		err := newTestValidator(now).Validate(pi)
		require.Error(t, err)
		assert.Equal(t, errs.KindExpiredIntent, errs.KindOf(err))
	})

	t.Run("future_expiry", func(t *testing.T) {
		pi := validIntent()
		pi.ExpiresAt = now.Add(time.Hour).Format(time.RFC3339)
		assert.NoError(t, newTestValidator(now).Validate(pi))
	})

	t.Run("malformed_expiry_is_validation_error", func(t *testing.T) {
		pi := validIntent()
		pi.ExpiresAt = "tomorrow"
		err := newTestValidator(now).Validate(pi)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("missing_expiry_is_fine", func(t *testing.T) {
		pi := validIntent()
		pi.ExpiresAt = ""
		assert.NoError(t, newTestValidator(now).Validate(pi))
	})
}
