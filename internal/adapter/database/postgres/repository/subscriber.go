package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	database "newsletter/internal/adapter/database/postgres"
	domain "newsletter/internal/core/domain"
	port "newsletter/internal/core/port"
)

const (
	subscriptionsTable = "subscriptions"
	subscriberEntity   = "subscriber"
)

type SubscriberRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewSubscriberRepository(db *database.DB, telemetry port.Telemetry) port.SubscriberRepository {
	return &SubscriberRepository{db: db, telemetry: telemetry}
}

func (r *SubscriberRepository) Create(ctx context.Context, subscriber domain.Subscriber) (err error) {
	start := time.Now()

	ctx, span := r.telemetry.StartRepositorySpan(ctx, "create", subscriberEntity, []attribute.KeyValue{
		attribute.String("subscriber.id", subscriber.ID.String()),
	})
	defer func() {
		r.telemetry.RecordRepositoryOperation(ctx, "create", subscriberEntity, time.Since(start), err)
		span.End()
	}()

	stmt, args, err := r.db.QueryBuilder.Insert(subscriptionsTable).
		Columns("id", "email", "name", "subscribed_at").
		Values(subscriber.ID, subscriber.Email, subscriber.Name, subscriber.SubscribedAt).
		ToSql()

	if err != nil {
		return err
	}

	r.telemetry.RecordRepositoryQuery(ctx, "create", subscriberEntity, stmt, args)

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("inserting subscriber %s: %w", subscriber.ID, err)
	}

	return nil
}

func (r *SubscriberRepository) GetByID(ctx context.Context, id uuid.UUID) (subscriber domain.Subscriber, err error) {
	start := time.Now()

	ctx, span := r.telemetry.StartRepositorySpan(ctx, "get_by_id", subscriberEntity, []attribute.KeyValue{
		attribute.String("subscriber.id", id.String()),
	})
	defer func() {
		r.telemetry.RecordRepositoryOperation(ctx, "get_by_id", subscriberEntity, time.Since(start), err)
		span.End()
	}()

	stmt, args, err := r.db.QueryBuilder.Select("id", "email", "name", "subscribed_at").
		From(subscriptionsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Subscriber{}, err
	}

	r.telemetry.RecordRepositoryQuery(ctx, "get_by_id", subscriberEntity, stmt, args)

	var data domain.Subscriber

	err = r.db.QueryRow(ctx, stmt, args...).Scan(
		&data.ID,
		&data.Email,
		&data.Name,
		&data.SubscribedAt,
	)

	if err != nil {
		return domain.Subscriber{}, err
	}

	return data, nil
}
