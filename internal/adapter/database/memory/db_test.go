package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter/internal/adapter/database/memory"
	"newsletter/internal/core/domain"
)

func TestSubscriberRepository_CreateAndGet(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	subscriber := domain.NewSubscriber("le guin", "ursula_le_guin@gmail.com", time.Now())

	require.NoError(t, repo.Create(context.Background(), subscriber))

	found, err := repo.GetByID(context.Background(), subscriber.ID)
	require.NoError(t, err)
	assert.Equal(t, subscriber, found)
}

func TestSubscriberRepository_RejectsDuplicateID(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	subscriber := domain.NewSubscriber("le guin", "ursula_le_guin@gmail.com", time.Now())

	require.NoError(t, repo.Create(context.Background(), subscriber))
	assert.Error(t, repo.Create(context.Background(), subscriber))
	assert.Len(t, repo.All(), 1)
}

func TestSubscriberRepository_UnknownID(t *testing.T) {
	_, err := memory.NewSubscriberRepository().GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, memory.ErrNotFound)
}

func TestSubscriberRepository_FailWith(t *testing.T) {
	repo := memory.NewSubscriberRepository()
	boom := errors.New("connection refused")

	repo.FailWith(boom)
	assert.ErrorIs(t, repo.Create(context.Background(), domain.NewSubscriber("a", "a@example.com", time.Now())), boom)

	repo.FailWith(nil)
	assert.NoError(t, repo.Create(context.Background(), domain.NewSubscriber("a", "a@example.com", time.Now())))
}

func TestSubscriberRepository_ConcurrentCreates(t *testing.T) {
	repo := memory.NewSubscriberRepository()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			repo.Create(context.Background(), domain.NewSubscriber("n", "n@example.com", time.Now()))
		}()
	}

	wg.Wait()

	assert.Len(t, repo.All(), 50)
}
