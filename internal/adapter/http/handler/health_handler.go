package handler

import (
	"net/http"

	. "newsletter/internal/adapter/http/helper"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check is a liveness probe: 200 with an empty body, nothing inspected.
func (h *HealthHandler) Check(c *gin.Context) {
	SendEmpty(c, http.StatusOK)
}
