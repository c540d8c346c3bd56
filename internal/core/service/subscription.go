package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsletter/internal/core/domain"
	"newsletter/internal/core/port"
)

type SubscriptionService struct {
	repo      port.SubscriberRepository
	telemetry port.Telemetry
	now       func() time.Time
}

func NewSubscriptionService(repo port.SubscriberRepository, telemetry port.Telemetry) *SubscriptionService {
	return &SubscriptionService{repo: repo, telemetry: telemetry, now: time.Now}
}

// Subscribe records a new subscriber with a generated id. Persistence errors
// are returned wrapped; nothing is retried.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) (domain.Subscriber, error) {
	start := time.Now()

	ctx, span := s.telemetry.StartServiceSpan(ctx, "subscription", "subscribe", nil)
	defer span.End()

	subscriber := domain.NewSubscriber(name, email, s.now())

	span.SetAttributes(attribute.String("subscriber.id", subscriber.ID.String()))

	if err := s.repo.Create(ctx, subscriber); err != nil {
		err = fmt.Errorf("saving subscriber: %w", err)
		s.telemetry.RecordServiceOperation(ctx, "subscription", "subscribe", time.Since(start), err)

		return domain.Subscriber{}, err
	}

	s.telemetry.RecordServiceOperation(ctx, "subscription", "subscribe", time.Since(start), nil)
	s.telemetry.RecordBusinessEvent(ctx, "subscriber.created", "subscriber", subscriber.ID.String(), nil)

	return subscriber, nil
}
