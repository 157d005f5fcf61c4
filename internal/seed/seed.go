// Package seed populates the wallet and order collections with test
// fixtures, including a pool of deliberately contended shared wallets.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TransferApi/internal/model"
)

const (
	walletsCollection = "wallets"

	// Bulk wallets carry a balance large enough that a load test never
	// drains them; contention wallets start low so concurrent debits race
	// both for the write lock and for the remaining funds.
	bulkBalance       = 1_000_000
	contentionBalance = 500

	contentionIndexName = "idx_contentionTest"

	insertBatchSize = 10000

	maxCustomerID = 50000
)

// CustomerIDs returns 1 to 3 distinct customer references C1..C50000.
func CustomerIDs(rng *rand.Rand) []string {
	count := 1 + rng.Intn(3)
	used := make(map[string]bool, count)
	ids := make([]string, 0, count)
	for len(ids) < count {
		id := fmt.Sprintf("C%d", 1+rng.Intn(maxCustomerID))
		if used[id] {
			continue
		}
		used[id] = true
		ids = append(ids, id)
	}
	return ids
}

// NewWallet builds the i-th bulk fixture wallet (1-based id W1, W2, ...).
func NewWallet(i int, rng *rand.Rand) model.Wallet {
	return model.Wallet{
		ID:          fmt.Sprintf("W%d", i),
		CustomerIDs: CustomerIDs(rng),
		Balance:     bulkBalance,
	}
}

// NewContentionWallet builds the i-th shared contention wallet (SW1, SW2, ...).
func NewContentionWallet(i int, rng *rand.Rand) model.Wallet {
	return model.Wallet{
		ID:             fmt.Sprintf("SW%d", i),
		CustomerIDs:    CustomerIDs(rng),
		Balance:        contentionBalance,
		ContentionTest: true,
	}
}

// Wallets drops the wallet collection and inserts count bulk fixtures in
// batches. Re-running yields the same document count and balance
// distribution as a fresh run.
func Wallets(ctx context.Context, db *mongo.Database, count int, rng *rand.Rand) error {
	coll := db.Collection(walletsCollection)

	if err := coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop wallet collection: %w", err)
	}

	inserted := 0
	for inserted < count {
		end := inserted + insertBatchSize
		if end > count {
			end = count
		}
		batch := make([]interface{}, 0, end-inserted)
		for i := inserted + 1; i <= end; i++ {
			batch = append(batch, NewWallet(i, rng))
		}
		if _, err := coll.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert wallet batch: %w", err)
		}
		inserted = end
		log.Printf("seeded %d/%d wallets", inserted, count)
	}
	return nil
}

// ContentionWallets replaces the contention fixtures: deletes existing
// flagged wallets, ensures the partial index used for that cleanup, and
// inserts count shared wallets with a low balance.
func ContentionWallets(ctx context.Context, db *mongo.Database, count int, rng *rand.Rand) error {
	coll := db.Collection(walletsCollection)

	res, err := coll.DeleteMany(ctx, bson.M{"contentionTest": true})
	if err != nil {
		return fmt.Errorf("failed to delete existing contention wallets: %w", err)
	}
	log.Printf("deleted %d existing contention wallets", res.DeletedCount)

	if err := ensureContentionIndex(ctx, coll); err != nil {
		return err
	}

	batch := make([]interface{}, 0, count)
	for i := 1; i <= count; i++ {
		batch = append(batch, NewContentionWallet(i, rng))
	}
	if _, err := coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert contention wallets: %w", err)
	}
	log.Printf("seeded %d contention wallets", count)
	return nil
}

func ensureContentionIndex(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "contentionTest", Value: 1}},
		Options: options.Index().
			SetName(contentionIndexName).
			SetPartialFilterExpression(bson.M{"contentionTest": true}),
	})
	if err != nil {
		return fmt.Errorf("failed to create contention index: %w", err)
	}
	return nil
}
