package model

import (
	"errors"
	"time"
)

// Closed set of error kinds produced by the store adapter. The retry loop
// branches on these with errors.Is; only ErrTransientConflict is retryable.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransientConflict   = errors.New("transient transaction conflict")
	ErrAmbiguousCommit     = errors.New("ambiguous commit result")
	ErrConnectionFailure   = errors.New("store connection failed")

	ErrInvalidWalletID   = errors.New("wallet id must not be empty")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidRetryLimit = errors.New("max retries must not be negative")
	ErrInvalidDelay      = errors.New("delay must not be negative")
)

// Wallet is a funds document shared by one or more customers. Balance never
// goes negative: the only mutation is a conditional decrement guarded by
// balance >= amount at write time.
type Wallet struct {
	ID             string   `bson:"_id"`
	CustomerIDs    []string `bson:"customer_ids"`
	Balance        int64    `bson:"balance"`
	ContentionTest bool     `bson:"contentionTest,omitempty"`
}

// Payment is the sub-record embedded in an order document.
type Payment struct {
	Method   string    `bson:"method" json:"method"`
	WalletID string    `bson:"walletId" json:"walletId"`
	Amount   int64     `bson:"amount" json:"amount"`
	TxDate   time.Time `bson:"txDate" json:"txDate"`
}

// Order is written (upsert) in the same transaction as the wallet debit and
// never read back by this service.
type Order struct {
	ID      string  `bson:"_id"`
	Payment Payment `bson:"payment"`
}

// TransferParams are the inputs of one transfer execution. CommitDelay is a
// test-only knob that holds the transaction open between the writes and the
// commit to widen the race window under concurrent load.
type TransferParams struct {
	WalletID    string
	Amount      int64
	MaxRetries  int
	RetryDelay  time.Duration
	CommitDelay time.Duration
}

// Validate rejects parameters the executor must not run with.
func (p TransferParams) Validate() error {
	if p.WalletID == "" {
		return ErrInvalidWalletID
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.MaxRetries < 0 {
		return ErrInvalidRetryLimit
	}
	if p.RetryDelay < 0 || p.CommitDelay < 0 {
		return ErrInvalidDelay
	}
	return nil
}

// TransferResult is the executor's output contract, returned verbatim by the
// HTTP handler. RetryCount is the number of retries consumed and is always
// <= MaxRetries.
type TransferResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryCount int    `json:"retryCount"`
	TestID     string `json:"testId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TransferEvent is published after a successful commit.
type TransferEvent struct {
	WalletID   string    `json:"walletId"`
	Amount     int64     `json:"amount"`
	RetryCount int       `json:"retryCount"`
	TxDate     time.Time `json:"txDate"`
}
