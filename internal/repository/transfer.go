package repository

import (
	"context"
	"time"
)

// TransferRepository runs one transactional debit-and-record attempt. Errors
// are classified into the model sentinel kinds at this boundary; the retry
// policy lives entirely in the service layer.
type TransferRepository interface {
	RunTransferAttempt(ctx context.Context, walletID string, amount int64, commitDelay time.Duration) error
}
