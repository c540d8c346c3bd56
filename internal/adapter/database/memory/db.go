package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"newsletter/internal/core/domain"
	"newsletter/internal/core/port"
)

var ErrNotFound = errors.New("subscriber not found")

// SubscriberRepository keeps subscribers in process memory. Like the
// subscriptions table it enforces a unique id and nothing else.
type SubscriberRepository struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]domain.Subscriber
	order       []uuid.UUID
	err         error
}

var _ port.SubscriberRepository = (*SubscriberRepository)(nil)

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{subscribers: make(map[uuid.UUID]domain.Subscriber)}
}

// FailWith makes every following call return err. A nil err restores
// normal behaviour.
func (r *SubscriberRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *SubscriberRepository) Create(_ context.Context, subscriber domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	if _, exists := r.subscribers[subscriber.ID]; exists {
		return fmt.Errorf("subscriber %s already exists", subscriber.ID)
	}

	r.subscribers[subscriber.ID] = subscriber
	r.order = append(r.order, subscriber.ID)

	return nil
}

func (r *SubscriberRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return domain.Subscriber{}, r.err
	}

	subscriber, ok := r.subscribers[id]

	if !ok {
		return domain.Subscriber{}, ErrNotFound
	}

	return subscriber, nil
}

// All returns the stored subscribers in insertion order.
func (r *SubscriberRepository) All() []domain.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Subscriber, 0, len(r.order))

	for _, id := range r.order {
		all = append(all, r.subscribers[id])
	}

	return all
}
