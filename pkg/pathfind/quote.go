package pathfind

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/models"
)

// stroopsPerLumen is the ledger's native precision: 1 XLM = 10^7 stroops.
const stroopsPerLumen = 7

// Quote estimates a conversion without submitting anything. It is the
// public entry point the quote endpoint uses; the same-currency case
// short-circuits to a 1:1 rate with no oracle call.
func (r *Router) Quote(
	ctx context.Context,
	source, destination currency.AssetDescriptor,
	sourceAmount string,
	destinationAccount string,
	baseFeeStroops int64,
) (*models.Quote, error) {
	fee := decimal.New(baseFeeStroops, -stroopsPerLumen)

	if currency.Same(source, destination) {
		return &models.Quote{
			SourceCurrency:             source.Code,
			DestinationCurrency:        destination.Code,
			SourceAmount:               sourceAmount,
			EstimatedDestinationAmount: sourceAmount,
			EstimatedFee:               fee.String(),
			ExchangeRate:               "1",
			PathLength:                 0,
		}, nil
	}

	if destinationAccount == "" {
		destinationAccount = r.operatingAccount
	}
	path, err := r.quotePaths(ctx, source, destination, sourceAmount, destinationAccount)
	if err != nil {
		return nil, err
	}

	sent, err := decimal.NewFromString(sourceAmount)
	if err != nil || sent.Sign() <= 0 {
		return nil, errs.New(errs.KindValidation, "source_amount must be a positive decimal")
	}
	received, err := decimal.NewFromString(path.DestinationAmount)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "oracle returned a malformed destination amount")
	}

	// Display rate only; settlement math never depends on it.
	rate := received.DivRound(sent, stroopsPerLumen)

	return &models.Quote{
		SourceCurrency:             source.Code,
		DestinationCurrency:        destination.Code,
		SourceAmount:               sourceAmount,
		EstimatedDestinationAmount: path.DestinationAmount,
		EstimatedFee:               fee.String(),
		ExchangeRate:               rate.String(),
		PathLength:                 len(path.Hops),
	}, nil
}
