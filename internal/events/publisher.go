package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	contractsmq "donezo/contracts/mq"
	"donezo/internal/model"
	"donezo/pkg/circuitbreaker"
	"donezo/pkg/metrics"
)

// Broker is the subset of *mq.Publisher used here.
type Broker interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// TodoPublisher announces todo changes on the events exchange. Publishing is
// best effort: failures are logged and counted, never returned.
type TodoPublisher struct {
	broker  Broker
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	now     func() time.Time
}

func NewTodoPublisher(broker Broker, logger *zap.Logger) *TodoPublisher {
	return &TodoPublisher{broker: broker, logger: logger, now: time.Now}
}

// WithBreaker skips publishing while b is open so an unreachable broker does
// not slow down every write.
func (p *TodoPublisher) WithBreaker(b *circuitbreaker.Breaker) *TodoPublisher {
	p.breaker = b
	return p
}

func (p *TodoPublisher) TodoCreated(ctx context.Context, t model.Todo) {
	p.publish(ctx, contractsmq.TodoCreatedKey, p.changed(t))
}

func (p *TodoPublisher) TodoUpdated(ctx context.Context, t model.Todo) {
	p.publish(ctx, contractsmq.TodoUpdatedKey, p.changed(t))
}

func (p *TodoPublisher) TodoDeleted(ctx context.Context, id int64) {
	p.publish(ctx, contractsmq.TodoDeletedKey, contractsmq.TodoDeletedPayload{
		ID:         id,
		OccurredAt: p.now().UTC(),
	})
}

func (p *TodoPublisher) changed(t model.Todo) contractsmq.TodoChangedPayload {
	return contractsmq.TodoChangedPayload{
		ID:         t.ID,
		Task:       t.Task,
		Category:   t.Category,
		Completed:  t.Completed,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		OccurredAt: p.now().UTC(),
	}
}

func (p *TodoPublisher) publish(ctx context.Context, routingKey string, payload any) {
	send := func() error { return p.broker.Publish(ctx, routingKey, payload) }

	var err error
	if p.breaker != nil {
		err = p.breaker.Execute(send)
	} else {
		err = send()
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		p.logger.Debug("Broker circuit open, todo event dropped", zap.String("routing_key", routingKey))
		metrics.IncrementEventPublished(routingKey, "skipped")
		return
	}
	if err != nil {
		p.logger.Warn("Failed to publish todo event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		metrics.IncrementEventPublished(routingKey, "failed")
		return
	}
	p.logger.Debug("Todo event published", zap.String("routing_key", routingKey))
	metrics.IncrementEventPublished(routingKey, "success")
}
