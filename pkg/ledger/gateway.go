package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"

	"github.com/ap2stellar/gateway/pkg/circuitbreaker"
	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/metrics"
)

// HorizonClient is the slice of the Horizon API the gateway needs.
// *horizonclient.Client satisfies it.
type HorizonClient interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	SubmitTransaction(tx *txnbuild.Transaction) (hProtocol.Transaction, error)
	StrictSendPaths(request horizonclient.StrictSendPathsRequest) (hProtocol.PathsPage, error)
	Transactions(request horizonclient.TransactionRequest) (hProtocol.TransactionsPage, error)
	Operations(request horizonclient.OperationRequest) (operations.OperationsPage, error)
}

// Gateway owns the operating account: it signs and submits
// transactions, queries the path oracle and searches transaction
// history. Submission is serialized per signing identity.
type Gateway struct {
	horizon    HorizonClient
	signer     *keypair.Full
	passphrase string
	baseFee    int64
	// txTimeout bounds, in seconds, how long a broadcast transaction
	// stays valid on the ledger.
	txTimeout int64
	breaker   *circuitbreaker.CircuitBreaker
	seq       *sequenceLocker
	log       logger.Logger
}

// NewGateway creates a gateway around the given Horizon client and
// signing keypair.
func NewGateway(
	horizon HorizonClient,
	signer *keypair.Full,
	passphrase string,
	baseFee int64,
	txTimeoutSeconds int64,
	breaker *circuitbreaker.CircuitBreaker,
	log logger.Logger,
) *Gateway {
	return &Gateway{
		horizon:    horizon,
		signer:     signer,
		passphrase: passphrase,
		baseFee:    baseFee,
		txTimeout:  txTimeoutSeconds,
		breaker:    breaker,
		seq:        newSequenceLocker(),
		log:        log,
	}
}

// AccountID returns the operating account's public address.
func (g *Gateway) AccountID() string {
	return g.signer.Address()
}

// BaseFee returns the per-operation fee in stroops.
func (g *Gateway) BaseFee() int64 {
	return g.baseFee
}

// Submit builds, signs and submits a transaction carrying the given
// operations and text memo. The whole load-sequence/build/sign/submit
// section runs under the signing account's lock.
func (g *Gateway) Submit(ctx context.Context, ops []txnbuild.Operation, memo string) (hProtocol.Transaction, error) {
	if g.breaker.IsEnabled() && g.breaker.IsOpen() {
		metrics.LedgerSubmissions.WithLabelValues("rejected_fast").Inc()
		return hProtocol.Transaction{}, errs.New(errs.KindTransaction, "ledger temporarily unavailable")
	}

	unlock := g.seq.lock(g.signer.Address())
	defer unlock()

	if err := ctx.Err(); err != nil {
		return hProtocol.Transaction{}, errs.Wrap(errs.KindTransaction, err, "settlement cancelled before submission")
	}

	account, err := g.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: g.signer.Address()})
	if err != nil {
		g.breaker.RecordFailure()
		metrics.LedgerSubmissions.WithLabelValues("account_load_failed").Inc()
		return hProtocol.Transaction{}, errs.Wrap(errs.KindTransaction, err, "failed to load operating account")
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              g.baseFee,
		Memo:                 txnbuild.MemoText(memo),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(g.txTimeout),
		},
	})
	if err != nil {
		return hProtocol.Transaction{}, errs.Wrap(errs.KindInternal, err, "failed to build transaction")
	}

	signed, err := tx.Sign(g.passphrase, g.signer)
	if err != nil {
		return hProtocol.Transaction{}, errs.Wrap(errs.KindInternal, err, "failed to sign transaction")
	}

	resp, err := g.horizon.SubmitTransaction(signed)
	if err != nil {
		g.breaker.RecordFailure()
		classified := classifySubmitError(err)
		g.logSubmitFailure(classified)
		metrics.LedgerSubmissions.WithLabelValues("failed").Inc()
		return hProtocol.Transaction{}, classified
	}

	metrics.LedgerSubmissions.WithLabelValues("submitted").Inc()
	g.log.DebugWithComponent(logger.Ledger, "transaction %s submitted at ledger %d (successful=%v)",
		resp.Hash, resp.Ledger, resp.Successful)
	return resp, nil
}

// StrictSendPaths queries the path oracle for all conversions of an
// exact source amount into the destination asset, using the given
// account as destination context, and filters the records down to the
// requested destination asset.
func (g *Gateway) StrictSendPaths(
	ctx context.Context,
	source currency.AssetDescriptor,
	sourceAmount string,
	destination currency.AssetDescriptor,
	destinationAccount string,
) ([]hProtocol.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if destinationAccount == "" {
		destinationAccount = g.signer.Address()
	}

	req := horizonclient.StrictSendPathsRequest{
		SourceAmount:       sourceAmount,
		SourceAssetType:    assetType(source),
		DestinationAccount: destinationAccount,
	}
	if !source.Native() {
		req.SourceAssetCode = source.Code
		req.SourceAssetIssuer = source.Issuer
	}

	page, err := g.horizon.StrictSendPaths(req)
	if err != nil {
		return nil, err
	}

	matches := make([]hProtocol.Path, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		if pathDestinationMatches(record, destination) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// FindTransactionByMemo scans the operating account's transaction
// history, most recent first, for an exact text-memo match within the
// given window.
func (g *Gateway) FindTransactionByMemo(ctx context.Context, memo string, limit int) (*hProtocol.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "status lookup cancelled")
	}

	page, err := g.horizon.Transactions(horizonclient.TransactionRequest{
		ForAccount:    g.signer.Address(),
		Order:         horizonclient.OrderDesc,
		Limit:         uint(limit),
		IncludeFailed: true,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to search transaction history")
	}

	for i := range page.Embedded.Records {
		tx := page.Embedded.Records[i]
		if tx.MemoType == "text" && tx.Memo == memo {
			return &tx, nil
		}
	}
	return nil, errs.New(errs.KindNotFound, "no settlement found for intent")
}

// TransactionOperations fetches the operations of a ledger
// transaction by hash.
func (g *Gateway) TransactionOperations(ctx context.Context, txHash string) ([]operations.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "operations lookup cancelled")
	}

	page, err := g.horizon.Operations(horizonclient.OperationRequest{
		ForTransaction: txHash,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to fetch transaction operations")
	}
	return page.Embedded.Records, nil
}

// logSubmitFailure logs the full ledger diagnostics; they are never
// surfaced to the caller.
func (g *Gateway) logSubmitFailure(err error) {
	var e *errs.Error
	if errors.As(err, &e) && len(e.ResultCodes) > 0 {
		g.log.ErrorWithComponent(logger.Ledger, "submission rejected, result codes [%s]: %v",
			strings.Join(e.ResultCodes, ", "), e.Err)
		return
	}
	g.log.ErrorWithComponent(logger.Ledger, "submission failed: %v", err)
}

func assetType(a currency.AssetDescriptor) horizonclient.AssetType {
	switch {
	case a.Native():
		return horizonclient.AssetTypeNative
	case len(a.Code) <= 4:
		return horizonclient.AssetType4
	default:
		return horizonclient.AssetType12
	}
}

func pathDestinationMatches(record hProtocol.Path, destination currency.AssetDescriptor) bool {
	if destination.Native() {
		return record.DestinationAssetType == "native"
	}
	return record.DestinationAssetCode == destination.Code &&
		record.DestinationAssetIssuer == destination.Issuer
}
