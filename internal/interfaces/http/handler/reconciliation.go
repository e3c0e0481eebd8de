package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/posledger/backend/internal/application/finance"
)

// TenantReconciler corrects recorded debt drift for one tenant
type TenantReconciler interface {
	ReconcileTenant(ctx context.Context, tenantID uuid.UUID) (*financeapp.ReconciliationReport, error)
}

// ReconciliationHandler triggers an on-demand debt reconciliation for the
// caller's tenant. The nightly run covers every tenant.
type ReconciliationHandler struct {
	BaseHandler
	reconciler TenantReconciler
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciler TenantReconciler) *ReconciliationHandler {
	return &ReconciliationHandler{reconciler: reconciler}
}

// Reconcile godoc
// POST /admin/debt-reconciliation
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	report, err := h.reconciler.ReconcileTenant(c.Request.Context(), tc.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
