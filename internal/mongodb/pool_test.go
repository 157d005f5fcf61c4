package mongodb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"TransferApi/internal/model"
)

func TestAcquire_ConcurrentCallersShareOneDial(t *testing.T) {
	var dials int32
	shared := new(mongo.Client)

	p := &Pool{dial: func(ctx context.Context) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		time.Sleep(20 * time.Millisecond) // hold the dial open so callers pile up
		return shared, nil
	}}

	const callers = 25
	var wg sync.WaitGroup
	clients := make(chan *mongo.Client, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := p.Acquire(context.Background())
			assert.NoError(t, err)
			clients <- client
		}()
	}
	wg.Wait()
	close(clients)

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	for client := range clients {
		assert.Same(t, shared, client)
	}
}

func TestAcquire_FailureResetsStateForNextCaller(t *testing.T) {
	var dials int32
	shared := new(mongo.Client)

	p := &Pool{dial: func(ctx context.Context) (*mongo.Client, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return shared, nil
	}}

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, model.ErrConnectionFailure)

	client, err := p.Acquire(context.Background())
	assert.NoError(t, err)
	assert.Same(t, shared, client)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
}

func TestAcquire_WaiterSeesInFlightFailure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	p := &Pool{dial: func(ctx context.Context) (*mongo.Client, error) {
		close(started)
		<-release
		return nil, errors.New("handshake failed")
	}}

	errs := make(chan error, 2)
	go func() {
		_, err := p.Acquire(context.Background())
		errs <- err
	}()
	<-started
	go func() {
		_, err := p.Acquire(context.Background())
		errs <- err
	}()

	// Give the second caller time to register as a waiter, then fail the dial.
	time.Sleep(10 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, <-errs, model.ErrConnectionFailure)
	}
}

func TestAcquire_ReturnsCachedClientWithoutDialing(t *testing.T) {
	var dials int32
	shared := new(mongo.Client)

	p := &Pool{dial: func(ctx context.Context) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		return shared, nil
	}}

	for i := 0; i < 3; i++ {
		client, err := p.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Same(t, shared, client)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestAcquire_WaiterHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	defer close(release)

	p := &Pool{dial: func(ctx context.Context) (*mongo.Client, error) {
		close(started)
		<-release
		return new(mongo.Client), nil
	}}

	go func() {
		_, _ = p.Acquire(context.Background())
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose_IdempotentWhenNeverConnected(t *testing.T) {
	p := NewPool("mongodb://localhost:27017")
	assert.NoError(t, p.Close(context.Background()))
	assert.NoError(t, p.Close(context.Background()))
}
