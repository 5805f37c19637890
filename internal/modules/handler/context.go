package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the tenant middleware. Every entry point requires an
// explicit tenant and acting user; neither is ever inferred.
const (
	CtxTenantID = "tenant_id"
	CtxActorID  = "actor_id"
)

func tenantFrom(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxTenantID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func actorFrom(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxActorID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
