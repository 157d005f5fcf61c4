// Package loadgen drives concurrent transfer requests at a constant arrival
// rate and aggregates success, retry, and latency figures.
package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"TransferApi/internal/model"
)

type Config struct {
	TargetURL    string        // transfer endpoint, e.g. http://localhost:8080/execute-transaction
	Rate         int           // requests per second
	Duration     time.Duration // total run time
	Workers      int           // concurrent senders
	WalletPrefix string        // wallet id prefix, e.g. "SW"
	WalletCount  int           // wallets WalletPrefix1..WalletPrefixN
	MaxAmount    int64         // amounts drawn uniformly from [1, MaxAmount]
	MaxRetries   int
	RetryDelay   float64 // seconds
	CommitSleep  float64 // milliseconds
}

func (c Config) validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target url is required")
	}
	if c.Rate <= 0 || c.Duration <= 0 || c.Workers <= 0 {
		return fmt.Errorf("rate, duration and workers must be positive")
	}
	if c.WalletCount <= 0 || c.MaxAmount <= 0 {
		return fmt.Errorf("wallet count and max amount must be positive")
	}
	return nil
}

// Report aggregates one load run.
type Report struct {
	Total               int64
	Success             int64
	InsufficientBalance int64
	Failed              int64
	HTTPErrors          int64
	Retries             int64
	Elapsed             time.Duration
	Latency             LatencySummary
}

type LatencySummary struct {
	Min time.Duration
	Avg time.Duration
	Max time.Duration
	P95 time.Duration
	P99 time.Duration
}

type collector struct {
	total        int64
	success      int64
	insufficient int64
	failed       int64
	httpErrors   int64
	retries      int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (c *collector) record(res *model.TransferResult, latency time.Duration, httpErr error) {
	atomic.AddInt64(&c.total, 1)
	if httpErr != nil {
		atomic.AddInt64(&c.httpErrors, 1)
		return
	}

	c.mu.Lock()
	c.latencies = append(c.latencies, latency)
	c.mu.Unlock()

	atomic.AddInt64(&c.retries, int64(res.RetryCount))
	switch {
	case res.Success:
		atomic.AddInt64(&c.success, 1)
	case res.Message == "Insufficient balance":
		atomic.AddInt64(&c.insufficient, 1)
	default:
		atomic.AddInt64(&c.failed, 1)
	}
}

// Run executes the load scenario until the duration elapses or the context
// is cancelled, then returns the aggregated report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	jobs := make(chan struct{}, cfg.Rate)
	col := &collector{}
	client := &http.Client{Timeout: 60 * time.Second}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for range jobs {
				fire(ctx, client, cfg, rng, col)
			}
		}(time.Now().UnixNano() + int64(i))
	}

	start := time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Rate))

feed:
	for {
		select {
		case <-ctx.Done():
			break feed
		case <-ticker.C:
			select {
			case jobs <- struct{}{}:
			default:
				// Workers saturated; the arrival is dropped rather than
				// queued so the offered rate stays constant.
			}
		}
	}
	ticker.Stop()
	close(jobs)
	wg.Wait()

	return col.report(time.Since(start)), nil
}

func fire(ctx context.Context, client *http.Client, cfg Config, rng *rand.Rand, col *collector) {
	walletID := fmt.Sprintf("%s%d", cfg.WalletPrefix, 1+rng.Intn(cfg.WalletCount))
	amount := 1 + rng.Int63n(cfg.MaxAmount)

	body, err := json.Marshal(map[string]interface{}{
		"walletId":   walletID,
		"amount":     amount,
		"maxRetries": cfg.MaxRetries,
		"retryDelay": cfg.RetryDelay,
		"sleep":      cfg.CommitSleep,
		"testId":     fmt.Sprintf("loadgen-%d", rng.Int63()),
	})
	if err != nil {
		col.record(nil, 0, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TargetURL, bytes.NewReader(body))
	if err != nil {
		col.record(nil, 0, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		col.record(nil, latency, err)
		return
	}
	defer resp.Body.Close()

	var result model.TransferResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		col.record(nil, latency, err)
		return
	}
	col.record(&result, latency, nil)
}

func (c *collector) report(elapsed time.Duration) *Report {
	c.mu.Lock()
	latencies := append([]time.Duration(nil), c.latencies...)
	c.mu.Unlock()

	return &Report{
		Total:               atomic.LoadInt64(&c.total),
		Success:             atomic.LoadInt64(&c.success),
		InsufficientBalance: atomic.LoadInt64(&c.insufficient),
		Failed:              atomic.LoadInt64(&c.failed),
		HTTPErrors:          atomic.LoadInt64(&c.httpErrors),
		Retries:             atomic.LoadInt64(&c.retries),
		Elapsed:             elapsed,
		Latency:             summarize(latencies),
	}
}

func summarize(latencies []time.Duration) LatencySummary {
	if len(latencies) == 0 {
		return LatencySummary{}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	return LatencySummary{
		Min: latencies[0],
		Avg: sum / time.Duration(len(latencies)),
		Max: latencies[len(latencies)-1],
		P95: percentile(latencies, 0.95),
		P99: percentile(latencies, 0.99),
	}
}

// percentile expects latencies sorted ascending.
func percentile(latencies []time.Duration, p float64) time.Duration {
	idx := int(p*float64(len(latencies))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(latencies) {
		idx = len(latencies) - 1
	}
	return latencies[idx]
}

// String renders the report the way the stress tool prints it.
func (r *Report) String() string {
	var rate float64
	if r.Elapsed > 0 {
		rate = float64(r.Total) / r.Elapsed.Seconds()
	}
	return fmt.Sprintf(
		"requests: %d (%.1f/s)\nsuccess: %d\ninsufficient balance: %d\nfailed: %d\nhttp errors: %d\nretries: %d\nlatency min/avg/max: %s / %s / %s\nlatency p95/p99: %s / %s",
		r.Total, rate, r.Success, r.InsufficientBalance, r.Failed, r.HTTPErrors, r.Retries,
		r.Latency.Min, r.Latency.Avg, r.Latency.Max, r.Latency.P95, r.Latency.P99,
	)
}
