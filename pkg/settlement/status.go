package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/operations"

	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
	"github.com/ap2stellar/gateway/pkg/models"
)

// HistorySearcher locates a transaction by its correlation memo and
// exposes its operations.
type HistorySearcher interface {
	FindTransactionByMemo(ctx context.Context, memo string, limit int) (*hProtocol.Transaction, error)
	TransactionOperations(ctx context.Context, txHash string) ([]operations.Operation, error)
}

// StatusResolver reconstructs the status of a past settlement from
// ledger history. There is no local store: the memo is the only
// correlation, and only a bounded window is searched, so intents
// settled long enough ago become unresolvable.
type StatusResolver struct {
	history  HistorySearcher
	lookback int
	log      logger.Logger
}

// NewStatusResolver creates a resolver over the given history source.
func NewStatusResolver(history HistorySearcher, lookback int, log logger.Logger) *StatusResolver {
	return &StatusResolver{history: history, lookback: lookback, log: log}
}

// Resolve searches for the intent's correlation memo and maps the
// most recent match into a confirmation-shaped status. For a
// completed settlement the amount breakdown is rebuilt from the
// transaction's operations.
func (s *StatusResolver) Resolve(ctx context.Context, intentID string) (*models.Confirmation, error) {
	memo := CorrelationMemo(intentID)

	tx, err := s.history.FindTransactionByMemo(ctx, memo, s.lookback)
	if err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			metrics.StatusLookups.WithLabelValues("not_found").Inc()
			s.log.DebugWithComponent(logger.Status, "no transaction with memo %q in last %d entries", memo, s.lookback)
		} else {
			metrics.StatusLookups.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.StatusLookups.WithLabelValues("found").Inc()

	conf := &models.Confirmation{
		ConfirmationID: uuid.NewString(),
		IntentID:       intentID,
	}
	if tx.Successful {
		conf.Status = models.StatusCompleted
		conf.TransactionDetails = &models.TransactionDetails{
			TransactionHash: tx.Hash,
			LedgerSequence:  tx.Ledger,
			Timestamp:       tx.LedgerCloseTime.UTC().Format(time.RFC3339),
		}
		conf.Amount = s.recoverAmount(ctx, tx.Hash)
		conf.Fees = &models.Fees{
			NetworkFee:    stroopsToLumens(tx.FeeCharged),
			ConversionFee: "0",
		}
	} else {
		conf.Status = models.StatusFailed
		conf.Error = &models.ErrorDetail{
			Code:    errs.KindTransaction.WireCode(),
			Message: "settlement transaction failed on the ledger",
		}
	}
	return conf, nil
}

// recoverAmount rebuilds the amount breakdown from the settled
// transaction's payment operation. Historical transactions remain
// resolvable even when the lookup fails, so a nil breakdown is
// returned instead of an error.
func (s *StatusResolver) recoverAmount(ctx context.Context, txHash string) *models.AmountBreakdown {
	ops, err := s.history.TransactionOperations(ctx, txHash)
	if err != nil {
		s.log.DebugWithComponent(logger.Status, "could not fetch operations for %s: %v", txHash, err)
		return nil
	}

	for _, op := range ops {
		switch rec := op.(type) {
		case operations.PathPaymentStrictSend:
			return &models.AmountBreakdown{
				Sent:             rec.SourceAmount,
				CurrencySent:     recordedAssetCode(rec.SourceAssetType, rec.SourceAssetCode),
				Received:         rec.Amount,
				CurrencyReceived: recordedAssetCode(rec.Asset.Type, rec.Asset.Code),
			}
		case operations.Payment:
			code := recordedAssetCode(rec.Asset.Type, rec.Asset.Code)
			return &models.AmountBreakdown{
				Sent:             rec.Amount,
				CurrencySent:     code,
				Received:         rec.Amount,
				CurrencyReceived: code,
			}
		}
	}

	s.log.DebugWithComponent(logger.Status, "no payment operation on %s", txHash)
	return nil
}

// recordedAssetCode maps a Horizon asset record to a currency code;
// the native asset carries no code of its own.
func recordedAssetCode(assetType, code string) string {
	if assetType == "native" {
		return "XLM"
	}
	return code
}
