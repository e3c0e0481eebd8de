package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	financeapp "github.com/posledger/backend/internal/application/finance"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/shared"
)

// AlertDeriver derives the tenant's alert list
type AlertDeriver interface {
	DeriveAlerts(ctx context.Context, tc shared.TenantContext, filter finance.AlertFilter) ([]finance.Alert, error)
}

// AlertHandler serves derived alerts
type AlertHandler struct {
	BaseHandler
	alerts AlertDeriver
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alerts AlertDeriver) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts godoc
// GET /alerts?type=OVERDUE&priority=HIGH
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	filter := finance.AlertFilter{
		Type:     finance.AlertType(strings.ToUpper(c.Query("type"))),
		Priority: finance.AlertPriority(strings.ToUpper(c.Query("priority"))),
	}

	alerts, err := h.alerts.DeriveAlerts(c.Request.Context(), tc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, financeapp.ToAlertResponses(alerts), len(alerts))
}
