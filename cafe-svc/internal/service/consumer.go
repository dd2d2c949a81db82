package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/domain"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// SalesConsumer folds submitted order events into per-business item sales.
type SalesConsumer struct {
	Reader MessageReader
	Store  SalesStore
}

func NewSalesConsumer(reader MessageReader, store SalesStore) *SalesConsumer {
	return &SalesConsumer{
		Reader: reader,
		Store:  store,
	}
}

func (c *SalesConsumer) Start(ctx context.Context) {
	log.Info("starting sales consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("sales consumer stopped")
				return
			}
			log.Errorf("read order event: %v", err)
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Errorf("decode order event: %v", err)
			continue
		}

		c.ProcessOrder(ctx, event)
	}
}

func (c *SalesConsumer) ProcessOrder(ctx context.Context, event domain.OrderEvent) {
	if event.Type != domain.OrderSubmittedEvent {
		return
	}
	entry := log.WithFields(log.Fields{"order": event.OrderID, "business": event.BusinessID})
	if len(event.Items) == 0 {
		entry.Debug("order event has no items")
		return
	}

	if err := c.Store.RecordSale(ctx, event.BusinessID, event.Items); err != nil {
		entry.Errorf("record sale: %v", err)
		return
	}
	entry.Infof("recorded %d order lines", len(event.Items))
}

func (c *SalesConsumer) TopItems(ctx context.Context, businessID string, limit int) ([]domain.ItemSales, error) {
	if limit <= 0 {
		limit = 10
	}
	return c.Store.TopItems(ctx, businessID, limit)
}
