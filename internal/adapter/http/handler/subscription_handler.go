package handler

import (
	"net/http"

	. "newsletter/internal/adapter/http/helper"
	. "newsletter/internal/adapter/http/validation"
	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"
	"newsletter/internal/core/model/request"
	"newsletter/internal/core/port"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	svc     port.SubscriptionService
	logger  *logger.Logger
	metrics *telemetry.AppMetrics
}

func NewSubscriptionHandler(svc port.SubscriptionService, log *logger.Logger, metrics *telemetry.AppMetrics) *SubscriptionHandler {
	if log == nil {
		log = logger.Nop()
	}

	return &SubscriptionHandler{
		svc:     svc,
		logger:  log,
		metrics: metrics,
	}
}

// Subscribe handles POST /subscriptions with a form-encoded name and email.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.SubscriptionRequest

	if err := c.ShouldBindWith(&params, binding.FormPost); err != nil {
		h.metrics.RecordSubscription(telemetry.SubscriptionRejected)
		SendBadRequestError(c, "request", "Request body is not a valid form")
		return
	}

	if err := Validator.Struct(params); err != nil {
		h.metrics.RecordSubscription(telemetry.SubscriptionRejected)
		SendValidationError(c, err)
		return
	}

	log := h.logger.Ctx(ctx)

	log.Info("Adding a new subscriber",
		zap.String("subscriber_email", params.Email),
		zap.String("subscriber_name", params.Name),
	)

	subscriber, err := h.svc.Subscribe(ctx, params.Name, params.Email)

	if err != nil {
		h.metrics.RecordSubscription(telemetry.SubscriptionFailed)
		log.Error("Failed to save subscriber", zap.Error(err))
		SendInternalError(c, "Failed to save subscription")
		return
	}

	h.metrics.RecordSubscription(telemetry.SubscriptionCreated)
	log.Info("New subscriber saved", zap.String("subscriber_id", subscriber.ID.String()))

	SendEmpty(c, http.StatusOK)
}
