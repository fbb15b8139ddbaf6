package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bizhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus stopped")

// DeliveryObserver is told about every handler invocation. err is nil on
// success.
type DeliveryObserver func(eventType string, err error)

// Bus is the in-process event bus. Handlers run synchronously on the
// publishing goroutine in registration order; a failing or panicking
// handler is logged and does not stop delivery to the rest.
type Bus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	observe  DeliveryObserver
	stopped  atomic.Bool
}

// BusOption configures a Bus
type BusOption func(*Bus)

// WithDeliveryObserver reports handler outcomes, typically to metrics
func WithDeliveryObserver(o DeliveryObserver) BusOption {
	return func(b *Bus) { b.observe = o }
}

func NewBus(logger *zap.Logger, opts ...BusOption) *Bus {
	b := &Bus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		observe:  func(string, error) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to their handlers. Handler failures are never
// returned.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	for _, ev := range events {
		for _, h := range b.registry.Handlers(ev.EventType()) {
			err := b.deliver(ctx, h, ev)
			b.observe(ev.EventType(), err)
			if err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for the handler's own
// EventTypes when none are given
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *Bus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop rejects further publishing. Deliveries already in progress finish
// normally.
func (b *Bus) Stop(context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("Event bus stopped")
	return nil
}

func (b *Bus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

var _ shared.EventBus = (*Bus)(nil)
