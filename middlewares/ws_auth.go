package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
)

// WSAuthMiddleware accepts the token from ?token= (browsers cannot set headers on upgrade) or the Authorization header.
func WSAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			resp.Unauthorized(c, "missing token")
			c.Abort()
			return
		}
		authorize(c, auth, token, nil)
	}
}
