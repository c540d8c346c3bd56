package port

import (
	"context"

	"github.com/google/uuid"

	"newsletter/internal/core/domain"
)

type SubscriberRepository interface {
	Create(ctx context.Context, subscriber domain.Subscriber) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Subscriber, error)
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) (domain.Subscriber, error)
}
