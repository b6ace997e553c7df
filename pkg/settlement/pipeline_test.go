package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ap2stellar/gateway/pkg/auth"
	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/models"
)

type fakeValidator struct {
	err   error
	calls int
}

func (f *fakeValidator) Validate(_ *models.PaymentIntent) error {
	f.calls++
	return f.err
}

type fakeVerifier struct {
	err   error
	calls int
}

func (f *fakeVerifier) Verify(_, claimedAgentID string) (*auth.Claims, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Claims{AgentID: claimedAgentID, Permissions: []string{auth.PermissionSendPayment}}, nil
}

type spyDispatcher struct {
	url   string
	conf  *models.Confirmation
	calls int
}

func (s *spyDispatcher) Deliver(url string, conf *models.Confirmation) {
	s.calls++
	s.url = url
	s.conf = conf
}

type pipelineFixture struct {
	service    *Service
	validator  *fakeValidator
	verifier   *fakeVerifier
	gateway    *fakeGateway
	router     *spyRouter
	dispatcher *spyDispatcher
}

func newPipelineFixture() *pipelineFixture {
	log := &logger.EmptyLogger{}
	f := &pipelineFixture{
		validator:  &fakeValidator{},
		verifier:   &fakeVerifier{},
		gateway:    &fakeGateway{resp: acceptedTx()},
		router:     &spyRouter{},
		dispatcher: &spyDispatcher{},
	}
	resolver := currency.NewResolver(testUSDCIssuer, testEURCIssuer)
	executor := NewExecutor(f.gateway, f.router, log)
	f.service = NewService(f.validator, f.verifier, resolver, executor, f.dispatcher, log)
	return f
}

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture()
	pi := testIntent()
	pi.CallbackURL = "https://merchant.example/callbacks"

	conf, err := f.service.Process(context.Background(), pi)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, conf.Status)
	assert.Equal(t, "intent-abc", conf.IntentID)
	assert.Equal(t, 1, f.validator.calls)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Equal(t, 1, f.gateway.submits)

	// The completed confirmation is also handed to the callback endpoint.
	assert.Equal(t, 1, f.dispatcher.calls)
	assert.Equal(t, "https://merchant.example/callbacks", f.dispatcher.url)
	assert.Equal(t, conf, f.dispatcher.conf)
}

func TestProcessNoCallbackURL(t *testing.T) {
	f := newPipelineFixture()

	_, err := f.service.Process(context.Background(), testIntent())
	require.NoError(t, err)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestProcessInvalidIntentStopsEarly(t *testing.T) {
	f := newPipelineFixture()
	f.validator.err = errs.New(errs.KindValidation, "amount is required")

	conf, err := f.service.Process(context.Background(), testIntent())
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	// Validation failure happens before any credential or network work.
	assert.Equal(t, 0, f.verifier.calls)
	assert.Equal(t, 0, f.router.calls)
	assert.Equal(t, 0, f.gateway.submits)

	require.NotNil(t, conf)
	assert.Equal(t, models.StatusFailed, conf.Status)
	assert.Equal(t, "VALIDATION_ERROR", conf.Error.Code)
}

func TestProcessAuthFailureStopsBeforeLedger(t *testing.T) {
	f := newPipelineFixture()
	f.verifier.err = errs.New(errs.KindAuthentication, "authentication failed")

	conf, err := f.service.Process(context.Background(), testIntent())
	require.Error(t, err)
	assert.Equal(t, errs.KindAuthentication, errs.KindOf(err))
	assert.Equal(t, 0, f.gateway.submits)
	assert.Equal(t, "AUTHENTICATION_ERROR", conf.Error.Code)
}

func TestProcessLedgerMarkedFailed(t *testing.T) {
	f := newPipelineFixture()
	tx := acceptedTx()
	tx.Successful = false
	f.gateway.resp = tx

	pi := testIntent()
	pi.CallbackURL = "https://merchant.example/callbacks"

	conf, err := f.service.Process(context.Background(), pi)
	require.Error(t, err)
	assert.Equal(t, errs.KindTransaction, errs.KindOf(err))
	assert.Equal(t, models.StatusFailed, conf.Status)
	assert.Equal(t, "TRANSACTION_ERROR", conf.Error.Code)

	// Failed confirmations are dispatched too.
	assert.Equal(t, 1, f.dispatcher.calls)
	assert.Equal(t, conf, f.dispatcher.conf)
}

func TestProcessSubmitFailure(t *testing.T) {
	f := newPipelineFixture()
	f.gateway.err = errs.New(errs.KindInsufficientFunds, "insufficient funds to settle payment")

	conf, err := f.service.Process(context.Background(), testIntent())
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficientFunds, errs.KindOf(err))
	assert.Equal(t, "INSUFFICIENT_FUNDS", conf.Error.Code)
	// Exactly one submission: never retried.
	assert.Equal(t, 1, f.gateway.submits)
}
