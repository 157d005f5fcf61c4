package service

import (
	"context"
	"errors"
	"log"
	"time"

	"TransferApi/internal/events"
	"TransferApi/internal/model"
	"TransferApi/internal/repository"
)

const (
	msgSuccess      = "Transaction successful"
	msgInsufficient = "Insufficient balance"
	msgFailed       = "Transaction failed"
)

// TransferService executes wallet debits with bounded retry on transient
// store conflicts.
type TransferService interface {
	// ExecuteTransfer runs the debit-and-record transaction. The error is
	// non-nil only when the parameters are invalid and nothing ran; every
	// store outcome, including failure, is reported in the result.
	ExecuteTransfer(ctx context.Context, p model.TransferParams) (model.TransferResult, error)
}

type transferService struct {
	repo   repository.TransferRepository
	events events.Publisher
}

func NewTransferService(repo repository.TransferRepository, pub events.Publisher) TransferService {
	return &transferService{repo: repo, events: pub}
}

// ExecuteTransfer is the retry state machine. Exactly one attempt commits:
// transient conflicts abort cleanly and restart from scratch, every other
// error is terminal. The wallet balance therefore changes by Amount on
// success and by zero otherwise, regardless of how many retries were spent.
func (s *transferService) ExecuteTransfer(ctx context.Context, p model.TransferParams) (model.TransferResult, error) {
	if err := p.Validate(); err != nil {
		return model.TransferResult{}, err
	}

	retryCount := 0
	for {
		err := s.repo.RunTransferAttempt(ctx, p.WalletID, p.Amount, p.CommitDelay)
		switch {
		case err == nil:
			s.publish(ctx, p, retryCount)
			return model.TransferResult{
				Success:    true,
				Message:    msgSuccess,
				RetryCount: retryCount,
			}, nil

		case errors.Is(err, model.ErrInsufficientBalance):
			// Business-rule rejection, never retried.
			return model.TransferResult{
				Message:    msgInsufficient,
				RetryCount: retryCount,
			}, nil

		case errors.Is(err, model.ErrTransientConflict):
			if retryCount >= p.MaxRetries {
				log.Printf("max retries (%d) reached for wallet %s", p.MaxRetries, p.WalletID)
				return failure(err, retryCount), nil
			}
			retryCount++
			log.Printf("transient conflict for wallet %s, retry %d/%d in %s", p.WalletID, retryCount, p.MaxRetries, p.RetryDelay)
			if err := s.wait(ctx, p.RetryDelay); err != nil {
				return failure(err, retryCount), nil
			}

		default:
			// Includes ambiguous commit results: retrying those risks a
			// double debit, so they terminate with the error detail.
			return failure(err, retryCount), nil
		}
	}
}

func failure(err error, retryCount int) model.TransferResult {
	return model.TransferResult{
		Message:    msgFailed,
		RetryCount: retryCount,
		Error:      err.Error(),
	}
}

func (s *transferService) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *transferService) publish(ctx context.Context, p model.TransferParams, retryCount int) {
	if s.events == nil {
		return
	}
	ev := model.TransferEvent{
		WalletID:   p.WalletID,
		Amount:     p.Amount,
		RetryCount: retryCount,
		TxDate:     time.Now().UTC(),
	}
	if err := s.events.TransferCompleted(ctx, ev); err != nil {
		// Event delivery is best-effort; the debit already committed.
		log.Printf("transfer event publish failed for wallet %s: %v", p.WalletID, err)
	}
}
