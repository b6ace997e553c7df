package ledger

import (
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"

	"github.com/ap2stellar/gateway/pkg/errs"
)

// Result codes that mean the operating account cannot cover the
// payment or its fee.
const (
	codeOpUnderfunded         = "op_underfunded"
	codeTxInsufficientBalance = "tx_insufficient_balance"
)

// classifySubmitError maps a Horizon submission failure onto the
// gateway's error taxonomy. Structured rejections keep their raw
// result codes for logging; transport failures carry none.
func classifySubmitError(err error) error {
	hErr := horizonclient.GetError(err)
	if hErr == nil {
		return errs.Wrap(errs.KindTransaction, err, "ledger submission failed")
	}

	codes, codesErr := hErr.ResultCodes()
	if codesErr != nil {
		return errs.Wrap(errs.KindTransaction, err, "transaction submission rejected")
	}

	return classifyResultCodes(codes, err)
}

// classifyResultCodes inspects structured result codes from a
// rejected submission.
func classifyResultCodes(codes *hProtocol.TransactionResultCodes, cause error) error {
	raw := make([]string, 0, len(codes.OperationCodes)+1)
	if codes.TransactionCode != "" {
		raw = append(raw, codes.TransactionCode)
	}
	raw = append(raw, codes.OperationCodes...)

	if codes.TransactionCode == codeTxInsufficientBalance {
		e := errs.Wrap(errs.KindInsufficientFunds, cause, "insufficient funds to settle payment")
		e.ResultCodes = raw
		return e
	}
	for _, op := range codes.OperationCodes {
		if op == codeOpUnderfunded {
			e := errs.Wrap(errs.KindInsufficientFunds, cause, "insufficient funds to settle payment")
			e.ResultCodes = raw
			return e
		}
	}

	e := errs.Wrap(errs.KindTransaction, cause, "transaction rejected by ledger")
	e.ResultCodes = raw
	return e
}
