package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"TransferApi/internal/model"
)

func TestClassify_TransientTransactionError(t *testing.T) {
	err := mongo.CommandError{
		Code:    112,
		Message: "WriteConflict",
		Labels:  []string{"TransientTransactionError"},
	}

	got := classify(err)
	assert.ErrorIs(t, got, model.ErrTransientConflict)
	assert.Contains(t, got.Error(), "WriteConflict")
}

func TestClassify_UnknownCommitResult(t *testing.T) {
	err := mongo.CommandError{
		Code:    50,
		Message: "MaxTimeMSExpired",
		Labels:  []string{"UnknownTransactionCommitResult"},
	}

	got := classify(err)
	assert.ErrorIs(t, got, model.ErrAmbiguousCommit)
}

func TestClassify_TransientLabelWinsOverCommitLabel(t *testing.T) {
	// A commit can carry both labels; the driver documents that transient
	// takes precedence because the whole transaction is safely retryable.
	err := mongo.CommandError{
		Labels: []string{"TransientTransactionError", "UnknownTransactionCommitResult"},
	}

	got := classify(err)
	assert.ErrorIs(t, got, model.ErrTransientConflict)
}

func TestClassify_WrappedServerError(t *testing.T) {
	inner := mongo.CommandError{Labels: []string{"TransientTransactionError"}}
	err := fmt.Errorf("commit: %w", inner)

	assert.ErrorIs(t, classify(err), model.ErrTransientConflict)
}

func TestClassify_PassesThroughBusinessAndUnknownErrors(t *testing.T) {
	assert.NoError(t, classify(nil))

	assert.ErrorIs(t, classify(model.ErrInsufficientBalance), model.ErrInsufficientBalance)

	plain := errors.New("context deadline exceeded")
	assert.Equal(t, plain, classify(plain))

	unlabeled := mongo.CommandError{Code: 11000, Message: "duplicate key"}
	assert.Equal(t, error(unlabeled), classify(unlabeled))
}
