package settlement

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/models"
)

// BuildCompleted maps a successful settlement into its confirmation.
// The conversion fee is always reported as zero: any DEX spread is
// already reflected in the destination amount.
func BuildCompleted(intentID string, res *models.SettlementResult) *models.Confirmation {
	return &models.Confirmation{
		ConfirmationID: uuid.NewString(),
		IntentID:       intentID,
		Status:         models.StatusCompleted,
		TransactionDetails: &models.TransactionDetails{
			TransactionHash:       res.TxHash,
			LedgerSequence:        res.LedgerSequence,
			Timestamp:             res.Timestamp.UTC().Format(time.RFC3339),
			SettlementTimeSeconds: int64(math.Round(res.Duration.Seconds())),
		},
		Amount: &models.AmountBreakdown{
			Sent:             res.SourceAmount,
			CurrencySent:     res.SourceCurrency,
			Received:         res.DestinationAmount,
			CurrencyReceived: res.DestinationCurrency,
		},
		Fees: &models.Fees{
			NetworkFee:    stroopsToLumens(res.FeeStroops),
			ConversionFee: "0",
		},
	}
}

// BuildFailed maps a failure into its confirmation. Only the error
// shape is populated, never amounts or fees, even when partial ledger
// data exists.
func BuildFailed(intentID string, err error) *models.Confirmation {
	return &models.Confirmation{
		ConfirmationID: uuid.NewString(),
		IntentID:       intentID,
		Status:         models.StatusFailed,
		Error: &models.ErrorDetail{
			Code:    errs.KindOf(err).WireCode(),
			Message: errs.PublicMessage(err),
		},
	}
}

func stroopsToLumens(stroops int64) string {
	return decimal.New(stroops, -ledgerPrecision).String()
}
