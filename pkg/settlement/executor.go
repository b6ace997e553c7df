package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
	"github.com/ap2stellar/gateway/pkg/models"
	"github.com/ap2stellar/gateway/pkg/pathfind"
)

// ledgerPrecision is the number of fractional digits the ledger keeps.
const ledgerPrecision = 7

// slippageFactor is 1 minus the fixed 1% slippage tolerance.
var slippageFactor = decimal.New(99, -2)

// LedgerGateway is the slice of the ledger gateway the executor uses.
type LedgerGateway interface {
	AccountID() string
	Submit(ctx context.Context, ops []txnbuild.Operation, memo string) (hProtocol.Transaction, error)
}

// PathRouter finds the best conversion for a cross-currency settlement.
type PathRouter interface {
	FindBestPath(ctx context.Context, source, destination currency.AssetDescriptor, sourceAmount string) (*pathfind.Path, error)
}

// Executor turns a validated, authorized payment intent into a signed
// ledger transaction. Same-asset intents become a single transfer;
// cross-asset intents become a strict-send conversion through the
// best path the oracle offers. There is exactly one submission per
// intent: nothing here retries, because a blind retry can double-pay.
type Executor struct {
	gateway LedgerGateway
	router  PathRouter
	log     logger.Logger
}

// NewExecutor creates an executor over the given gateway and router.
func NewExecutor(gateway LedgerGateway, router PathRouter, log logger.Logger) *Executor {
	return &Executor{gateway: gateway, router: router, log: log}
}

// Execute settles a single intent whose assets have already been
// resolved. The returned result's Successful field reflects the
// ledger's own judgment, not just acceptance at the network layer.
func (e *Executor) Execute(
	ctx context.Context,
	pi *models.PaymentIntent,
	source, destination currency.AssetDescriptor,
) (*models.SettlementResult, error) {
	start := time.Now()
	memo := CorrelationMemo(pi.IntentID)

	var op txnbuild.Operation
	destinationAmount := pi.Amount
	mode := "direct"

	if currency.Same(source, destination) {
		// Direct transfer: exact amount, no conversion, no slippage.
		op = &txnbuild.Payment{
			Destination: pi.Recipient.Address,
			Amount:      pi.Amount,
			Asset:       source.Asset(),
		}
	} else {
		mode = "conversion"
		path, err := e.router.FindBestPath(ctx, source, destination, pi.Amount)
		if err != nil {
			metrics.SettlementsTotal.WithLabelValues(mode, "no_path").Inc()
			return nil, err
		}

		minDestination, err := MinimumDestination(path.DestinationAmount)
		if err != nil {
			return nil, err
		}

		e.log.InfoWithComponent(logger.Settle,
			"intent %s: converting %s %s, quoted %s %s, minimum %s",
			pi.IntentID, pi.Amount, source.Code, path.DestinationAmount, destination.Code, minDestination)

		op = &txnbuild.PathPaymentStrictSend{
			SendAsset:   source.Asset(),
			SendAmount:  pi.Amount,
			Destination: pi.Recipient.Address,
			DestAsset:   destination.Asset(),
			DestMin:     minDestination,
			Path:        path.Assets(),
		}
		// The quoted amount is what we report; the ledger may deliver
		// more, never less than the minimum.
		destinationAmount = path.DestinationAmount
	}

	resp, err := e.gateway.Submit(ctx, []txnbuild.Operation{op}, memo)
	duration := time.Since(start)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues(mode, errs.KindOf(err).String()).Inc()
		return nil, err
	}

	result := "completed"
	if !resp.Successful {
		result = "ledger_failed"
	}
	metrics.SettlementsTotal.WithLabelValues(mode, result).Inc()
	metrics.SettlementDuration.WithLabelValues(mode).Observe(duration.Seconds())

	e.log.InfoWithComponent(logger.Settle, "intent %s settled in %v: tx %s (successful=%v)",
		pi.IntentID, duration, resp.Hash, resp.Successful)

	return &models.SettlementResult{
		TxHash:              resp.Hash,
		LedgerSequence:      resp.Ledger,
		Successful:          resp.Successful,
		SourceAmount:        pi.Amount,
		SourceCurrency:      source.Code,
		DestinationAmount:   destinationAmount,
		DestinationCurrency: destination.Code,
		FeeStroops:          resp.FeeCharged,
		Duration:            duration,
		Timestamp:           resp.LedgerCloseTime,
	}, nil
}

// MinimumDestination applies the fixed slippage tolerance to a quoted
// destination amount: exactly quoted x 0.99, truncated to the
// ledger's 7-digit precision. Decimal arithmetic throughout; this
// value becomes a hard on-ledger minimum.
func MinimumDestination(quoted string) (string, error) {
	amount, err := decimal.NewFromString(quoted)
	if err != nil {
		return "", errs.Wrap(errs.KindInternal, err, "quoted destination amount is not a valid decimal")
	}
	return amount.Mul(slippageFactor).Truncate(ledgerPrecision).String(), nil
}
