package http

import (
	database "newsletter/internal/adapter/database/postgres"
	repository "newsletter/internal/adapter/database/postgres/repository"
	"newsletter/internal/adapter/http/handler"
	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"
	"newsletter/internal/core/service"
	probe "newsletter/internal/core/telemetry"
)

type Container struct {
	HealthHandler       *handler.HealthHandler
	SubscriptionHandler *handler.SubscriptionHandler
}

func NewContainer(db *database.DB, logger *logger.Logger, metrics *telemetry.AppMetrics) *Container {
	tel := probe.NewOTELProbe(logger.Logger)

	subscriberRepo := repository.NewSubscriberRepository(db, tel)

	subscriptionSvc := service.NewSubscriptionService(subscriberRepo, tel)

	return &Container{
		HealthHandler:       handler.NewHealthHandler(),
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionSvc, logger, metrics),
	}
}
