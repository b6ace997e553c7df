package settlement

import (
	"context"
	"testing"
	"time"

	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/models"
	"github.com/ap2stellar/gateway/pkg/pathfind"
)

const (
	testUSDCIssuer = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"
	testEURCIssuer = "GDHU6WRG4IEQXM5NZ4BMPKOXHW76MZM4Y2IEMFDVXBSDP6SJY4ITNPP2"
	testAccount    = "GBVNTPGWPK4DALGKQVJ5SQCEEVVNF4T3GHMSWNUMBE6AOS4W7RZ3FOWD"
	testRecipient  = "GDQNY3PBOJOKYZSRMK2S7LHHGWZIUISD4QORETLMXEWXBI7KFZZMKTL3"
)

var (
	usdc = currency.AssetDescriptor{Code: "USDC", Issuer: testUSDCIssuer}
	eurc = currency.AssetDescriptor{Code: "EURC", Issuer: testEURCIssuer}
	xlm  = currency.AssetDescriptor{Code: "XLM"}
)

// fakeGateway records submitted operations and memos.
type fakeGateway struct {
	resp    hProtocol.Transaction
	err     error
	ops     []txnbuild.Operation
	memo    string
	submits int
}

func (f *fakeGateway) AccountID() string { return testAccount }

func (f *fakeGateway) Submit(_ context.Context, ops []txnbuild.Operation, memo string) (hProtocol.Transaction, error) {
	f.submits++
	f.ops = ops
	f.memo = memo
	return f.resp, f.err
}

// spyRouter counts path queries; the direct branch must never reach it.
type spyRouter struct {
	path  *pathfind.Path
	err   error
	calls int
}

func (s *spyRouter) FindBestPath(
	_ context.Context,
	_, _ currency.AssetDescriptor,
	_ string,
) (*pathfind.Path, error) {
	s.calls++
	return s.path, s.err
}

func acceptedTx() hProtocol.Transaction {
	return hProtocol.Transaction{
		Hash:            "abc123hash",
		Ledger:          55443322,
		Successful:      true,
		FeeCharged:      100,
		LedgerCloseTime: time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
	}
}

func testIntent() *models.PaymentIntent {
	return &models.PaymentIntent{
		IntentID:       "intent-abc",
		Amount:         "100.50",
		SourceCurrency: "USDC",
		Recipient:      models.Recipient{AgentID: "merchant", Address: testRecipient},
		Sender:         models.Sender{AgentID: "shopper", AuthToken: "tok"},
	}
}

func TestExecuteDirect(t *testing.T) {
	gw := &fakeGateway{resp: acceptedTx()}
	router := &spyRouter{}
	e := NewExecutor(gw, router, &logger.EmptyLogger{})

	res, err := e.Execute(context.Background(), testIntent(), usdc, usdc)
	require.NoError(t, err)

	// Same-currency settlement never consults the path oracle.
	assert.Equal(t, 0, router.calls)
	assert.Equal(t, 1, gw.submits)

	require.Len(t, gw.ops, 1)
	payment, ok := gw.ops[0].(*txnbuild.Payment)
	require.True(t, ok, "direct settlement must be a plain payment")
	assert.Equal(t, testRecipient, payment.Destination)
	assert.Equal(t, "100.50", payment.Amount)
	assert.Equal(t, "AP2:intent-abc", gw.memo)

	assert.True(t, res.Successful)
	assert.Equal(t, "abc123hash", res.TxHash)
	assert.Equal(t, int32(55443322), res.LedgerSequence)
	// No conversion: destination amount equals the source amount.
	assert.Equal(t, "100.50", res.DestinationAmount)
	assert.Equal(t, int64(100), res.FeeStroops)
}

func TestExecuteConversion(t *testing.T) {
	gw := &fakeGateway{resp: acceptedTx()}
	router := &spyRouter{path: &pathfind.Path{
		SourceAmount:      "100.50",
		DestinationAmount: "84.91",
		Hops:              []currency.AssetDescriptor{{Code: "XLM"}},
	}}
	e := NewExecutor(gw, router, &logger.EmptyLogger{})

	pi := testIntent()
	pi.Recipient.DestinationCurrency = "EURC"

	res, err := e.Execute(context.Background(), pi, usdc, eurc)
	require.NoError(t, err)
	assert.Equal(t, 1, router.calls)

	require.Len(t, gw.ops, 1)
	pathOp, ok := gw.ops[0].(*txnbuild.PathPaymentStrictSend)
	require.True(t, ok, "conversion settlement must be a strict-send path payment")
	assert.Equal(t, "100.50", pathOp.SendAmount)
	assert.Equal(t, testRecipient, pathOp.Destination)
	// Exactly quoted x 0.99, truncated to ledger precision.
	assert.Equal(t, "84.0609", pathOp.DestMin)
	assert.Len(t, pathOp.Path, 1)

	assert.Equal(t, "84.91", res.DestinationAmount)
	assert.Equal(t, "EURC", res.DestinationCurrency)
}

func TestExecuteNoPath(t *testing.T) {
	gw := &fakeGateway{resp: acceptedTx()}
	router := &spyRouter{err: errs.New(errs.KindNoPathFound, "no conversion path from USDC to XLM")}
	e := NewExecutor(gw, router, &logger.EmptyLogger{})

	_, err := e.Execute(context.Background(), testIntent(), usdc, xlm)
	require.Error(t, err)
	assert.Equal(t, errs.KindNoPathFound, errs.KindOf(err))
	// Nothing may reach the ledger when routing fails.
	assert.Equal(t, 0, gw.submits)
}

func TestExecuteSubmitError(t *testing.T) {
	gw := &fakeGateway{err: errs.New(errs.KindInsufficientFunds, "insufficient funds to settle payment")}
	router := &spyRouter{}
	e := NewExecutor(gw, router, &logger.EmptyLogger{})

	_, err := e.Execute(context.Background(), testIntent(), usdc, usdc)
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficientFunds, errs.KindOf(err))
	// One submission per intent, never a retry.
	assert.Equal(t, 1, gw.submits)
}

func TestExecuteLedgerMarkedFailed(t *testing.T) {
	tx := acceptedTx()
	tx.Successful = false
	gw := &fakeGateway{resp: tx}
	e := NewExecutor(gw, &spyRouter{}, &logger.EmptyLogger{})

	res, err := e.Execute(context.Background(), testIntent(), usdc, usdc)
	require.NoError(t, err)
	assert.False(t, res.Successful)
}

func TestMinimumDestination(t *testing.T) {
	tests := []struct {
		name   string
		quoted string
		want   string
	}{
		{"fractional_quote", "84.91", "84.0609"},
		{"round_number", "100", "99"},
		{"truncates_to_seven_digits", "0.1234567", "0.1222221"},
		{"tiny_amount_truncates_to_zero", "0.0000001", "0"},
		{"one", "1", "0.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinimumDestination(tt.quoted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed_quote", func(t *testing.T) {
		_, err := MinimumDestination("not-a-number")
		require.Error(t, err)
		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	})
}
