package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/repository"
)

// WSAuthMiddleware accepts the token from ?token= (browsers cannot set headers
// on a websocket handshake) or the Authorization header.
func WSAuthMiddleware(secret string, principals *repository.PrincipalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr = bearerToken(c)
		}
		if !authenticate(c, tokenStr, secret, principals) {
			return
		}
		c.Next()
	}
}
