package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"TransferApi/internal/model"
	"TransferApi/internal/mongodb"
)

const (
	walletsCollection = "wallets"
	ordersCollection  = "orders"

	transientTransactionError      = "TransientTransactionError"
	unknownTransactionCommitResult = "UnknownTransactionCommitResult"
)

type MongoRepository struct {
	pool   *mongodb.Pool
	dbName string
}

func NewMongoRepository(pool *mongodb.Pool, dbName string) *MongoRepository {
	return &MongoRepository{pool: pool, dbName: dbName}
}

// RunTransferAttempt performs exactly one transaction attempt: conditional
// debit, order upsert, optional commit delay, commit. Every exit path ends
// the session; a non-committed attempt leaves no visible side effects.
func (r *MongoRepository) RunTransferAttempt(ctx context.Context, walletID string, amount int64, commitDelay time.Duration) error {
	client, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}

	sess, err := client.StartSession()
	if err != nil {
		return classify(err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(txnOpts); err != nil {
			return err
		}

		db := client.Database(r.dbName)

		// The guard predicate is the sole enforcement of the non-negative
		// balance invariant: no match means not found or insufficient funds.
		res, err := db.Collection(walletsCollection).UpdateOne(sc,
			bson.M{"_id": walletID, "balance": bson.M{"$gte": amount}},
			bson.M{"$inc": bson.M{"balance": -amount}},
		)
		if err != nil {
			r.abort(sc, sess)
			return err
		}
		if res.MatchedCount == 0 {
			r.abort(sc, sess)
			return model.ErrInsufficientBalance
		}

		// A fresh id per attempt is safe: an aborted attempt's upsert is
		// rolled back with the debit, so no orphaned order ever surfaces.
		order := model.Order{
			ID: "O" + uuid.NewString(),
			Payment: model.Payment{
				Method:   "wallet",
				WalletID: walletID,
				Amount:   amount,
				TxDate:   time.Now().UTC(),
			},
		}
		_, err = db.Collection(ordersCollection).ReplaceOne(sc,
			bson.M{"_id": order.ID},
			order,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			r.abort(sc, sess)
			return err
		}

		// Test-only knob: hold the open transaction to widen the race
		// window. The session keeps its write intent for the duration.
		if commitDelay > 0 {
			if err := sleep(sc, commitDelay); err != nil {
				r.abort(sc, sess)
				return err
			}
		}

		if err := sess.CommitTransaction(sc); err != nil {
			r.abort(sc, sess)
			return err
		}
		return nil
	})

	return classify(err)
}

func (r *MongoRepository) abort(ctx context.Context, sess mongo.Session) {
	// Abort failures are unrecoverable at this point and the transaction is
	// rolled back server-side on session end either way.
	_ = sess.AbortTransaction(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// classify maps driver errors to the closed error-kind set the retry loop
// branches on. Ambiguous commits are deliberately not folded into the
// transient kind: retrying one risks a double debit.
func classify(err error) error {
	if err == nil || errors.Is(err, model.ErrInsufficientBalance) {
		return err
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.HasErrorLabel(transientTransactionError) {
			return fmt.Errorf("%w: %v", model.ErrTransientConflict, err)
		}
		if serverErr.HasErrorLabel(unknownTransactionCommitResult) {
			return fmt.Errorf("%w: %v", model.ErrAmbiguousCommit, err)
		}
	}
	return err
}
