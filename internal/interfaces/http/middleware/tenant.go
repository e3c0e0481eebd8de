package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
)

// Headers set by the session resolver in front of the ledger
const (
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
	RoleHeaderKey   = "X-User-Role"
)

// tenantContextKey stores the resolved shared.TenantContext in gin.Context
const tenantContextKey = "tenant_context"

// TenantContext resolves the caller's tenant, user and role from the trusted
// headers. A missing or malformed tenant is rejected with 400; the user id is
// optional but must be a uuid when present. Roles are carried, not checked.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			abortTenant(c, "Tenant identification required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortTenant(c, "Invalid tenant ID format")
			return
		}

		var userID uuid.UUID
		if rawUser := c.GetHeader(UserHeaderKey); rawUser != "" {
			userID, err = uuid.Parse(rawUser)
			if err != nil {
				abortTenant(c, "Invalid user ID format")
				return
			}
		}

		tc := shared.TenantContext{
			TenantID: tenantID,
			UserID:   userID,
			Role:     c.GetHeader(RoleHeaderKey),
		}
		c.Set(tenantContextKey, tc)

		ctx := logger.WithTenantID(c.Request.Context(), tenantID)
		if userID != uuid.Nil {
			ctx = logger.WithUserID(ctx, userID)
		}
		c.Request = c.Request.WithContext(ctx)
		annotateSpan(c, attribute.String("tenant_id", tenantID.String()))
		if userID != uuid.Nil {
			annotateSpan(c, attribute.String("user_id", userID.String()))
		}

		c.Next()
	}
}

func abortTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeTenantRequired, message, GetRequestID(c)))
}

// GetTenantContext returns the context resolved by TenantContext
func GetTenantContext(c *gin.Context) (shared.TenantContext, bool) {
	v, ok := c.Get(tenantContextKey)
	if !ok {
		return shared.TenantContext{}, false
	}
	tc, ok := v.(shared.TenantContext)
	return tc, ok
}

// GetTenantID returns the resolved tenant id as a string, "" when absent
func GetTenantID(c *gin.Context) string {
	if tc, ok := GetTenantContext(c); ok {
		return tc.TenantID.String()
	}
	return ""
}
