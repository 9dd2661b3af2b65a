package middlewares

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

// AuthMiddleware resolves the bearer token into a live profile and, when roles are given, enforces them.
// Suspension is checked on every request, so suspending a user ends their sessions.
func AuthMiddleware(auth *services.AuthService, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			resp.Unauthorized(c, "missing or invalid token")
			c.Abort()
			return
		}
		authorize(c, auth, strings.TrimPrefix(h, "Bearer "), requiredRoles)
	}
}

func authorize(c *gin.Context, auth *services.AuthService, token string, roles []string) {
	p, err := auth.Authorize(c.Request.Context(), token)
	switch {
	case errors.Is(err, apperr.ErrSuspended):
		resp.Unauthorized(c, apperr.ErrSuspended.Error())
		c.Abort()
		return
	case err != nil:
		resp.Unauthorized(c, "invalid token")
		c.Abort()
		return
	}

	c.Set(utils.CtxUserID, p.ID)
	c.Set(utils.CtxRole, p.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), p.ID))

	if len(roles) > 0 && !hasRole(p.Role, roles) {
		resp.Forbidden(c, "forbidden")
		c.Abort()
		return
	}
	c.Next()
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
