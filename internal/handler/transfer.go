package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"TransferApi/internal/model"
	"TransferApi/internal/service"
)

// Endpoint defaults matching the transfer contract: 3 retries, 2 seconds
// between attempts, no artificial commit delay.
const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2.0
)

// transferRequest is the inbound body. Optional fields are pointers so that
// an explicit zero is distinguishable from an omitted field.
type transferRequest struct {
	WalletID   string   `json:"walletId"`
	Amount     int64    `json:"amount"`
	MaxRetries *int     `json:"maxRetries"`
	RetryDelay *float64 `json:"retryDelay"` // seconds
	Sleep      *float64 `json:"sleep"`      // milliseconds
	TestID     string   `json:"testId"`
}

func (r transferRequest) params() model.TransferParams {
	p := model.TransferParams{
		WalletID:   r.WalletID,
		Amount:     r.Amount,
		MaxRetries: defaultMaxRetries,
		RetryDelay: time.Duration(defaultRetryDelay * float64(time.Second)),
	}
	if r.MaxRetries != nil {
		p.MaxRetries = *r.MaxRetries
	}
	if r.RetryDelay != nil {
		p.RetryDelay = time.Duration(*r.RetryDelay * float64(time.Second))
	}
	if r.Sleep != nil {
		p.CommitDelay = time.Duration(*r.Sleep * float64(time.Millisecond))
	}
	return p
}

// Pinger is the connectivity probe used by the liveness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type TransferHandler struct {
	service service.TransferService
	pinger  Pinger
}

func NewTransferHandler(service service.TransferService, pinger Pinger) *TransferHandler {
	return &TransferHandler{service: service, pinger: pinger}
}

// HandleTransfer decodes a transfer request, applies defaults, runs the
// executor, and returns its result verbatim. Every executor outcome,
// including business rejection, is a 200; 500 is reserved for failures
// before the executor could run.
func (h *TransferHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendServerError(w, err)
		return
	}

	result, err := h.service.ExecuteTransfer(r.Context(), req.params())
	if err != nil {
		sendServerError(w, err)
		return
	}

	result.TestID = req.TestID
	sendJSON(w, http.StatusOK, result)
}

// HandleHealth reports store connectivity via a no-op round trip.
func (h *TransferHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		sendJSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"mongodb": "disconnected",
			"error":   err.Error(),
		})
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"mongodb": "connected",
	})
}

func sendServerError(w http.ResponseWriter, err error) {
	log.Printf("transfer request rejected: %v", err)
	sendJSON(w, http.StatusInternalServerError, model.TransferResult{
		Message: "Server error",
		Error:   err.Error(),
	})
}

func sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
