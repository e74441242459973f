package middleware

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/gin-gonic/gin"
)

const (
	actorCtxKey  = contextKey("actor")
	tenantCtxKey = contextKey("tenant")
)

// WithActor returns a copy of ctx carrying the authenticated identity.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// GetActorFromContext retrieves the authenticated identity set by AuthMiddleware.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	actor, ok := c.Request.Context().Value(actorCtxKey).(domain.Actor)
	if !ok || actor.UserID == "" {
		return domain.Actor{}, false
	}
	return actor, true
}

// GetTenantFromContext retrieves the tenant store resolved by TenantMiddleware.
func GetTenantFromContext(c *gin.Context) (portsrepo.TenantStore, bool) {
	tenant, ok := c.Get(string(tenantCtxKey))
	if !ok {
		return nil, false
	}
	store, ok := tenant.(portsrepo.TenantStore)
	return store, ok
}
