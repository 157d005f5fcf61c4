// Package events delivers best-effort notifications about committed
// transfers. The order write is kept inside the debit transaction for
// atomicity, so downstream consumers learn about completed transfers from
// these events rather than from a second write.
package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"TransferApi/internal/model"
)

const SubjectTransferCompleted = "wallet.transfer.completed"

type Publisher interface {
	TransferCompleted(ctx context.Context, ev model.TransferEvent) error
}

// NATSPublisher publishes transfer events to a NATS subject.
type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) TransferCompleted(_ context.Context, ev model.TransferEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(SubjectTransferCompleted, data)
}

func (p *NATSPublisher) Close() {
	p.nc.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) TransferCompleted(context.Context, model.TransferEvent) error { return nil }
