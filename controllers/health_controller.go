package controllers

import (
	"context"
	"net/http"

	"order-intake-service/common/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	service string
	check   HealthCheck
}

func NewHealthController(service string, check HealthCheck) *HealthController {
	return &HealthController{service: service, check: check}
}

func (hc *HealthController) Welcome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"service": hc.service,
		"message": "Order intake API. POST /orders to place an order.",
	})
}

func (hc *HealthController) Health(ctx *gin.Context) {
	if hc.check != nil {
		if err := hc.check(ctx.Request.Context()); err != nil {
			logger.Warn(ctx, "Health check failed", zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": hc.service})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": hc.service})
}
