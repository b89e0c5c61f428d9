package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/repository"
	"github.com/konnn04/food-app-server/utils"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// authenticate resolves the token to a stored principal and attaches it to c.
func authenticate(c *gin.Context, tokenStr, secret string, principals *repository.PrincipalRepository) bool {
	if tokenStr == "" {
		resp.Unauthorized(c, "missing or invalid token")
		return false
	}
	claims, err := utils.ParseToken(tokenStr, secret)
	if err != nil {
		resp.Unauthorized(c, "invalid token")
		return false
	}
	p, err := principals.FindByID(claims.PrincipalID)
	if err != nil || p.Kind != claims.Kind {
		resp.Unauthorized(c, "unknown principal")
		return false
	}
	utils.SetPrincipal(c, p)
	return true
}

// AuthMiddleware checks the bearer token and, when kinds are given, the principal kind.
func AuthMiddleware(secret string, principals *repository.PrincipalRepository, kinds ...entity.PrincipalKind) gin.HandlerFunc {
	guard := RequireKind(kinds...)
	return func(c *gin.Context) {
		if !authenticate(c, bearerToken(c), secret, principals) {
			return
		}
		guard(c)
	}
}

// RequireKind rejects principals of any other kind. With no kinds it allows everyone.
func RequireKind(kinds ...entity.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(kinds) == 0 {
			c.Next()
			return
		}
		p := utils.CurrentPrincipal(c)
		if p == nil {
			resp.Unauthorized(c, "missing principal")
			return
		}
		for _, k := range kinds {
			if p.Kind == k {
				c.Next()
				return
			}
		}
		resp.Forbidden(c, "forbidden")
	}
}

// RequireWallet allows principals that can hold a wallet balance.
func RequireWallet() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.CurrentPrincipal(c)
		if p == nil {
			resp.Unauthorized(c, "missing principal")
			return
		}
		if !p.CanHoldWallet() {
			resp.Forbidden(c, "principal cannot hold a wallet")
			return
		}
		c.Next()
	}
}
