package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/domain"
	"cafe-checkout/cafe-svc/internal/metrics"
)

var ErrNoPaymentURI = errors.New("order has no payment uri")

// OrderService persists submitted orders and announces them on the orders
// topic.
type OrderService struct {
	repository OrderRepository
	publisher  OrderPublisher
	qr         QRGenerator
}

func NewOrderService(repository OrderRepository, publisher OrderPublisher, qr QRGenerator) *OrderService {
	return &OrderService{
		repository: repository,
		publisher:  publisher,
		qr:         qr,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := s.repository.CreateOrder(ctx, order); err != nil {
		metrics.OrdersSubmitted.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to store order: %w", err)
	}
	metrics.OrdersSubmitted.WithLabelValues("ok").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, orderEvent(order)); err != nil {
			log.WithField("order", order.ID).Warnf("publish order event: %v", err)
		}
	}
	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, businessID string) ([]domain.Order, error) {
	return s.repository.ListOrders(ctx, businessID)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repository.GetOrder(ctx, id)
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error {
	if err := s.repository.UpdateOrderStatus(ctx, id, status, txHash); err != nil {
		return err
	}
	metrics.OrderSettlements.WithLabelValues(string(status)).Inc()
	return nil
}

// QRCode renders the payment URI of a stored order.
func (s *OrderService) QRCode(ctx context.Context, id string) ([]byte, error) {
	order, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.URI == "" {
		return nil, ErrNoPaymentURI
	}
	return s.qr.Generate(order.URI)
}

func orderEvent(order *domain.Order) domain.OrderEvent {
	items := make([]domain.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderEventItem{ItemID: item.ID, Quantity: item.Quantity})
	}
	timestamp := order.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return domain.OrderEvent{
		Type:       domain.OrderSubmittedEvent,
		OrderID:    order.ID,
		BusinessID: order.BusinessID,
		Items:      items,
		Total:      order.Checkout.Total,
		Currency:   order.Checkout.Currency,
		Timestamp:  timestamp,
	}
}
