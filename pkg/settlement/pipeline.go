package settlement

import (
	"context"

	"github.com/ap2stellar/gateway/pkg/auth"
	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
	"github.com/ap2stellar/gateway/pkg/models"
)

// ConfirmationDispatcher delivers a confirmation to a caller-supplied
// endpoint without blocking the pipeline.
type ConfirmationDispatcher interface {
	Deliver(url string, conf *models.Confirmation)
}

// Service runs the settlement pipeline for one intent at a time:
// validate, authorize, resolve currencies, execute, confirm, and
// hand the confirmation to the callback dispatcher. Validation and
// authorization run before any network call.
type Service struct {
	validator  IntentValidator
	verifier   TokenVerifier
	resolver   *currency.Resolver
	executor   *Executor
	dispatcher ConfirmationDispatcher
	log        logger.Logger
}

// IntentValidator checks an intent's structure and business rules.
type IntentValidator interface {
	Validate(pi *models.PaymentIntent) error
}

// TokenVerifier authenticates the sender's bearer token.
type TokenVerifier interface {
	Verify(token, claimedAgentID string) (*auth.Claims, error)
}

// NewService wires the pipeline together.
func NewService(
	validator IntentValidator,
	verifier TokenVerifier,
	resolver *currency.Resolver,
	executor *Executor,
	dispatcher ConfirmationDispatcher,
	log logger.Logger,
) *Service {
	return &Service{
		validator:  validator,
		verifier:   verifier,
		resolver:   resolver,
		executor:   executor,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Process settles one payment intent. It always returns a
// confirmation; when err is non-nil the confirmation is the failed
// shape and err's kind selects the HTTP status at the API boundary.
func (s *Service) Process(ctx context.Context, pi *models.PaymentIntent) (*models.Confirmation, error) {
	if err := s.validator.Validate(pi); err != nil {
		return s.failed(pi, err)
	}

	if _, err := s.verifier.Verify(pi.Sender.AuthToken, pi.Sender.AgentID); err != nil {
		return s.failed(pi, err)
	}

	source, err := s.resolver.Resolve(pi.SourceCurrency)
	if err != nil {
		return s.failed(pi, err)
	}
	destination, err := s.resolver.Resolve(pi.DestinationCurrency())
	if err != nil {
		return s.failed(pi, err)
	}

	result, err := s.executor.Execute(ctx, pi, source, destination)
	if err != nil {
		return s.failed(pi, err)
	}

	if !result.Successful {
		// Accepted by the network but rejected by the ledger itself.
		return s.failed(pi, errs.New(errs.KindTransaction, "transaction was included but marked failed by the ledger"))
	}

	conf := BuildCompleted(pi.IntentID, result)
	s.dispatch(pi, conf)
	return conf, nil
}

func (s *Service) failed(pi *models.PaymentIntent, err error) (*models.Confirmation, error) {
	kind := errs.KindOf(err)
	metrics.IntentErrors.WithLabelValues(kind.String()).Inc()

	if kind == errs.KindInternal {
		s.log.ErrorWithComponent(logger.Settle, "intent %s: internal failure: %v", pi.IntentID, err)
	} else {
		s.log.NoticeWithComponent(logger.Settle, "intent %s rejected (%s): %v", pi.IntentID, kind, err)
	}

	conf := BuildFailed(pi.IntentID, err)
	s.dispatch(pi, conf)
	return conf, err
}

func (s *Service) dispatch(pi *models.PaymentIntent, conf *models.Confirmation) {
	if pi.CallbackURL == "" {
		return
	}
	s.dispatcher.Deliver(pi.CallbackURL, conf)
}
