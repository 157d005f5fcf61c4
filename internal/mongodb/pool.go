// Package mongodb owns the shared client handle for the process lifetime.
// The pool is constructed once in main and injected; the underlying client is
// dialed lazily on first use, and concurrent first users share one dial.
package mongodb

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"TransferApi/internal/model"
)

const (
	maxPoolSize     = 100
	minPoolSize     = 10
	maxConnIdleTime = 30 * time.Second
	connectTimeout  = 5 * time.Second
	socketTimeout   = 45 * time.Second
)

// Pool lazily establishes one pooled client shared by all callers.
// Lifecycle: uninitialized -> connecting -> ready, or uninitialized ->
// connecting -> failed -> uninitialized (a later caller dials again).
type Pool struct {
	dial func(ctx context.Context) (*mongo.Client, error)

	mu     sync.Mutex
	client *mongo.Client
	init   *initAttempt
}

// initAttempt is the in-flight initialization future. Waiters block on done;
// client and err are written before done is closed.
type initAttempt struct {
	done   chan struct{}
	client *mongo.Client
	err    error
}

// NewPool builds a pool for the given connection string. No network activity
// happens until the first Acquire.
func NewPool(uri string) *Pool {
	return &Pool{dial: dialer(uri)}
}

func dialer(uri string) func(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetMaxConnIdleTime(maxConnIdleTime).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(socketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetWriteConcern(writeconcern.Majority())

	return func(ctx context.Context) (*mongo.Client, error) {
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		// Verify liveness before publishing the handle.
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Println("MongoDB connection established")
		return client, nil
	}
}

// Acquire returns the shared client, dialing it on first use. Callers that
// arrive while a dial is in flight wait for that dial instead of starting
// another. A failed dial clears the in-flight state so a subsequent call
// starts over.
func (p *Pool) Acquire(ctx context.Context) (*mongo.Client, error) {
	p.mu.Lock()
	if p.client != nil {
		client := p.client
		p.mu.Unlock()
		return client, nil
	}

	if p.init != nil {
		attempt := p.init
		p.mu.Unlock()
		select {
		case <-attempt.done:
			if attempt.err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrConnectionFailure, attempt.err)
			}
			return attempt.client, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	attempt := &initAttempt{done: make(chan struct{})}
	p.init = attempt
	p.mu.Unlock()

	client, err := p.dial(ctx)

	p.mu.Lock()
	if err == nil {
		p.client = client
	}
	p.init = nil
	p.mu.Unlock()

	attempt.client, attempt.err = client, err
	close(attempt.done)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConnectionFailure, err)
	}
	return client, nil
}

// Ping issues a no-op round trip through the shared client, dialing first if
// needed. Used by the liveness endpoint.
func (p *Pool) Ping(ctx context.Context) error {
	client, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	return client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the shared client. Idempotent: calling it before any
// Acquire, or twice, is a no-op.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
