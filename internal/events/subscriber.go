package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/pkg/event"
	"github.com/appetiteclub/apt"
)

// Subscription is one live topic subscription.
type Subscription interface {
	Unsubscribe() error
}

// Transport is the raw push channel. Reconnection and backoff live inside the
// transport implementation, not here.
type Transport interface {
	Subscribe(topic string, handler func(data []byte)) (Subscription, error)
	IsConnected() bool
}

// Callbacks receive fully populated order documents from the feed. Any nil
// callback is skipped.
type Callbacks struct {
	OnOrderCreated       func(order.Order)
	OnOrderUpdated       func(order.Order)
	OnOrderStatusUpdated func(order.Order)
	OnOrderModified      func(order.Order)
}

// OrderSubscriber owns the per-restaurant order feed subscription. Exactly
// one restaurant is subscribed at a time: Start tears down the previous
// subscription before establishing the new one, so switching restaurants
// cannot produce duplicate or stale-restaurant delivery.
type OrderSubscriber struct {
	transport Transport
	callbacks Callbacks
	logger    apt.Logger
	enabled   bool

	mu           sync.Mutex
	sub          Subscription
	restaurantID string
}

func NewOrderSubscriber(transport Transport, callbacks Callbacks, enabled bool, logger apt.Logger) *OrderSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderSubscriber{
		transport: transport,
		callbacks: callbacks,
		enabled:   enabled,
		logger:    logger,
	}
}

// Start subscribes to the order feed of the given restaurant, replacing any
// previous subscription. Disabled subscribers only record the selection.
func (s *OrderSubscriber) Start(restaurantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.logger.Errorf("failed to unsubscribe from restaurant %s: %v", s.restaurantID, err)
		}
		s.sub = nil
	}
	s.restaurantID = restaurantID

	if !s.enabled {
		return nil
	}

	topic := event.OrderFeedTopic(restaurantID)
	sub, err := s.transport.Subscribe(topic, s.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	s.sub = sub

	s.logger.Info("subscribed to order feed", "restaurant", restaurantID, "topic", topic)
	return nil
}

// Stop tears down the current subscription, if any.
func (s *OrderSubscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	if err != nil {
		return fmt.Errorf("failed to unsubscribe from restaurant %s: %w", s.restaurantID, err)
	}
	return nil
}

// IsConnected reports whether the underlying transport is connected.
func (s *OrderSubscriber) IsConnected() bool {
	return s.transport != nil && s.transport.IsConnected()
}

// handleMessage decodes one feed message and dispatches it by event type.
// Malformed payloads and unknown event types are logged and skipped; the feed
// must never die because of one bad message.
func (s *OrderSubscriber) handleMessage(data []byte) {
	var evt event.OrderEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Errorf("failed to unmarshal order event: %v", err)
		return
	}

	switch evt.EventType {
	case event.EventOrderCreated:
		s.invoke(s.callbacks.OnOrderCreated, evt.Order)
	case event.EventOrderUpdated:
		s.invoke(s.callbacks.OnOrderUpdated, evt.Order)
	case event.EventOrderStatusUpdated:
		s.invoke(s.callbacks.OnOrderStatusUpdated, evt.Order)
	case event.EventOrderModified:
		s.invoke(s.callbacks.OnOrderModified, evt.Order)
	default:
		s.logger.Infof("Unknown event type: %s", evt.EventType)
	}
}

func (s *OrderSubscriber) invoke(callback func(order.Order), o order.Order) {
	if callback == nil {
		return
	}
	callback(o)
}
