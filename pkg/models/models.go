package models

import "time"

// SettlementResult captures the outcome of a single ledger submission.
type SettlementResult struct {
	TxHash         string
	LedgerSequence int32
	// Successful mirrors the ledger's own success flag. A transaction
	// can be accepted at the network layer and still be marked failed
	// by the ledger; the two must not be conflated.
	Successful          bool
	SourceAmount        string
	SourceCurrency      string
	DestinationAmount   string
	DestinationCurrency string
	FeeStroops          int64
	Duration            time.Duration
	Timestamp           time.Time
}

// Status is the lifecycle state reported in a confirmation.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// TransactionDetails describes the settled ledger transaction.
type TransactionDetails struct {
	TransactionHash       string `json:"transaction_hash"`
	LedgerSequence        int32  `json:"ledger_sequence"`
	Timestamp             string `json:"timestamp"`
	SettlementTimeSeconds int64  `json:"settlement_time_seconds"`
}

// AmountBreakdown reports what was sent and what was received.
type AmountBreakdown struct {
	Sent             string `json:"sent"`
	CurrencySent     string `json:"currency_sent"`
	Received         string `json:"received"`
	CurrencyReceived string `json:"currency_received"`
}

// Fees reports the cost of the settlement. ConversionFee is always
// "0": any DEX spread is already reflected in the destination amount.
type Fees struct {
	NetworkFee    string `json:"network_fee"`
	ConversionFee string `json:"conversion_fee"`
}

// ErrorDetail is the caller-visible failure description.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Confirmation is the protocol representation of a settlement outcome.
// TransactionDetails, Amount and Fees are present iff the status is
// completed; Error is present iff the status is failed.
type Confirmation struct {
	ConfirmationID     string              `json:"confirmation_id"`
	IntentID           string              `json:"intent_id"`
	Status             Status              `json:"status"`
	TransactionDetails *TransactionDetails `json:"transaction_details,omitempty"`
	Amount             *AmountBreakdown    `json:"amount,omitempty"`
	Fees               *Fees               `json:"fees,omitempty"`
	Error              *ErrorDetail        `json:"error,omitempty"`
}

// Quote is the response shape of the quote endpoint.
type Quote struct {
	SourceCurrency             string `json:"source_currency"`
	DestinationCurrency        string `json:"destination_currency"`
	SourceAmount               string `json:"source_amount"`
	EstimatedDestinationAmount string `json:"estimated_destination_amount"`
	EstimatedFee               string `json:"estimated_fee"`
	ExchangeRate               string `json:"exchange_rate"`
	PathLength                 int    `json:"path_length"`
}
