package entity

import "github.com/shopspring/decimal"

// TransactionRequest carries a validated deposit or withdraw request on its
// way to the upstream transaction-creation endpoint.
type TransactionRequest struct {
	FundID   string
	UserKey  string
	PayerKey string
	// Amount is the human-readable decimal amount; AtomicAmount is the same
	// value converted to the base asset's smallest denomination.
	Amount       decimal.Decimal
	AtomicAmount int64
	All          bool
}

// TransactionMetadata echoes the parameters an unsigned transaction was
// created with, so the signer can display what it is about to approve.
type TransactionMetadata struct {
	FundID   string          `json:"fundId"`
	UserKey  string          `json:"userKey"`
	PayerKey string          `json:"payerKey,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	All      bool            `json:"all"`
}

// TransactionResult is an unsigned, base64-encoded transaction prepared by
// the upstream fund API, plus the metadata it was built from.
type TransactionResult struct {
	Transaction string              `json:"transaction"`
	Metadata    TransactionMetadata `json:"metadata"`
}
