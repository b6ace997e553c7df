package pathfind

import (
	"context"

	"github.com/shopspring/decimal"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
)

// Oracle abstracts the ledger's path-finding endpoint.
type Oracle interface {
	StrictSendPaths(
		ctx context.Context,
		source currency.AssetDescriptor,
		sourceAmount string,
		destination currency.AssetDescriptor,
		destinationAccount string,
	) ([]hProtocol.Path, error)
}

// Path is a viable conversion of an exact source amount into a
// destination asset, possibly through intermediate hops.
type Path struct {
	SourceAmount      string
	DestinationAmount string
	Hops              []currency.AssetDescriptor
}

// Assets returns the intermediate hops in transaction-builder form.
func (p *Path) Assets() []txnbuild.Asset {
	assets := make([]txnbuild.Asset, 0, len(p.Hops))
	for _, hop := range p.Hops {
		assets = append(assets, hop.Asset())
	}
	return assets
}

// Router queries the path oracle and picks the best conversion. A
// missing route is terminal for the intent: the router never retries.
type Router struct {
	oracle Oracle
	// operatingAccount provides the destination context the oracle
	// requires when the caller has none of its own.
	operatingAccount string
	log              logger.Logger
}

// NewRouter creates a router over the given oracle.
func NewRouter(oracle Oracle, operatingAccount string, log logger.Logger) *Router {
	return &Router{oracle: oracle, operatingAccount: operatingAccount, log: log}
}

// FindBestPath returns the conversion with the maximum destination
// amount for an exact source amount. Ties keep the first-seen path.
// Settlement treats a failing oracle and an empty answer as the same
// terminal outcome: the intent cannot be converted.
func (r *Router) FindBestPath(
	ctx context.Context,
	source, destination currency.AssetDescriptor,
	sourceAmount string,
) (*Path, error) {
	records, err := r.oracle.StrictSendPaths(ctx, source, sourceAmount, destination, r.operatingAccount)
	if err != nil {
		metrics.PathQueries.WithLabelValues("error").Inc()
		return nil, errs.Wrap(errs.KindNoPathFound, err,
			"no conversion path from "+source.Code+" to "+destination.Code)
	}
	return r.selectBest(records, source, destination)
}

// quotePaths is the quote flow's oracle query. Unlike settlement, an
// oracle transport failure here is the backend's fault, not evidence
// that no path exists, so it stays internal.
func (r *Router) quotePaths(
	ctx context.Context,
	source, destination currency.AssetDescriptor,
	sourceAmount, destinationAccount string,
) (*Path, error) {
	records, err := r.oracle.StrictSendPaths(ctx, source, sourceAmount, destination, destinationAccount)
	if err != nil {
		metrics.PathQueries.WithLabelValues("error").Inc()
		return nil, errs.Wrap(errs.KindInternal, err, "path oracle query failed")
	}
	return r.selectBest(records, source, destination)
}

func (r *Router) selectBest(records []hProtocol.Path, source, destination currency.AssetDescriptor) (*Path, error) {
	if len(records) == 0 {
		metrics.PathQueries.WithLabelValues("empty").Inc()
		return nil, errs.New(errs.KindNoPathFound,
			"no conversion path from "+source.Code+" to "+destination.Code)
	}

	best := records[0]
	bestAmount, err := decimal.NewFromString(best.DestinationAmount)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "oracle returned a malformed destination amount")
	}
	for _, record := range records[1:] {
		amount, err := decimal.NewFromString(record.DestinationAmount)
		if err != nil {
			return nil, errs.Wrap(errs.KindInternal, err, "oracle returned a malformed destination amount")
		}
		// Strictly greater keeps the first-seen path on ties.
		if amount.GreaterThan(bestAmount) {
			best = record
			bestAmount = amount
		}
	}

	metrics.PathQueries.WithLabelValues("ok").Inc()
	r.log.DebugWithComponent(logger.Path, "selected path %s %s -> %s %s through %d hops",
		best.SourceAmount, source.Code, best.DestinationAmount, destination.Code, len(best.Path))

	hops := make([]currency.AssetDescriptor, 0, len(best.Path))
	for _, hop := range best.Path {
		if hop.Type == "native" {
			hops = append(hops, currency.AssetDescriptor{Code: "XLM"})
			continue
		}
		hops = append(hops, currency.AssetDescriptor{Code: hop.Code, Issuer: hop.Issuer})
	}

	return &Path{
		SourceAmount:      best.SourceAmount,
		DestinationAmount: best.DestinationAmount,
		Hops:              hops,
	}, nil
}
