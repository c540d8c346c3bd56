package domain

import (
	"time"

	"github.com/google/uuid"
)

type Subscriber struct {
	ID           uuid.UUID
	Email        string
	Name         string
	SubscribedAt time.Time
}

// NewSubscriber stamps a fresh identifier and subscription time onto the
// given contact details.
func NewSubscriber(name, email string, now time.Time) Subscriber {
	return Subscriber{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		SubscribedAt: now.UTC(),
	}
}
