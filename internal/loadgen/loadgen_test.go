package loadgen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TransferApi/internal/loadgen"
	"TransferApi/internal/model"
)

func TestRun_AggregatesOutcomes(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req["walletId"])
		require.Greater(t, req["amount"].(float64), 0.0)

		// Cycle through the three handled outcomes.
		var result model.TransferResult
		switch atomic.AddInt64(&calls, 1) % 3 {
		case 0:
			result = model.TransferResult{Success: true, Message: "Transaction successful", RetryCount: 1}
		case 1:
			result = model.TransferResult{Message: "Insufficient balance"}
		default:
			result = model.TransferResult{Message: "Transaction failed", Error: "transient transaction conflict"}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}))
	defer server.Close()

	report, err := loadgen.Run(context.Background(), loadgen.Config{
		TargetURL:    server.URL,
		Rate:         200,
		Duration:     300 * time.Millisecond,
		Workers:      8,
		WalletPrefix: "SW",
		WalletCount:  10,
		MaxAmount:    100,
		MaxRetries:   3,
	})
	require.NoError(t, err)

	assert.Greater(t, report.Total, int64(0))
	assert.Equal(t, report.Total, report.Success+report.InsufficientBalance+report.Failed+report.HTTPErrors)
	assert.Equal(t, report.Success, report.Retries) // one retry per success in this fixture
	assert.LessOrEqual(t, report.Latency.Min, report.Latency.Avg)
	assert.LessOrEqual(t, report.Latency.Avg, report.Latency.Max)
	assert.LessOrEqual(t, report.Latency.P95, report.Latency.P99)
	assert.NotEmpty(t, report.String())
}

func TestRun_CountsUnreachableTargetAsHTTPErrors(t *testing.T) {
	report, err := loadgen.Run(context.Background(), loadgen.Config{
		TargetURL:    "http://127.0.0.1:1/execute-transaction",
		Rate:         100,
		Duration:     150 * time.Millisecond,
		Workers:      4,
		WalletPrefix: "SW",
		WalletCount:  5,
		MaxAmount:    50,
	})
	require.NoError(t, err)

	assert.Greater(t, report.Total, int64(0))
	assert.Equal(t, report.Total, report.HTTPErrors)
	assert.Zero(t, report.Success)
}

func TestRun_ConfigValidation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  loadgen.Config
	}{
		{name: "missing url", cfg: loadgen.Config{Rate: 1, Duration: time.Second, Workers: 1, WalletCount: 1, MaxAmount: 1}},
		{name: "zero rate", cfg: loadgen.Config{TargetURL: "http://x", Duration: time.Second, Workers: 1, WalletCount: 1, MaxAmount: 1}},
		{name: "zero workers", cfg: loadgen.Config{TargetURL: "http://x", Rate: 1, Duration: time.Second, WalletCount: 1, MaxAmount: 1}},
		{name: "zero wallets", cfg: loadgen.Config{TargetURL: "http://x", Rate: 1, Duration: time.Second, Workers: 1, MaxAmount: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadgen.Run(context.Background(), tc.cfg)
			assert.Error(t, err)
		})
	}
}
