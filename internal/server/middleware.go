package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/buildvault/bimlibrary/internal/modules/handler"
	"github.com/buildvault/bimlibrary/internal/modules/serializer"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

// TenantMiddleware extracts the tenant and acting-user ids placed by the
// upstream auth gateway. Both are mandatory on every catalog route; nothing
// is ever inferred from ambient context.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.GetHeader("X-Tenant-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				serializer.ParamErr("tenant id is required", apperr.Validation("missing or malformed X-Tenant-ID header")))
			return
		}

		actorID, err := uuid.Parse(c.GetHeader("X-Actor-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				serializer.ParamErr("actor id is required", apperr.Validation("missing or malformed X-Actor-ID header")))
			return
		}

		c.Set(handler.CtxTenantID, tenantID)
		c.Set(handler.CtxActorID, actorID)
		c.Next()
	}
}
