package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/entity"
)

const principalKey = "principal"

func SetPrincipal(c *gin.Context, p *entity.Principal) {
	c.Set(principalKey, p)
	c.Set("principalId", p.ID)
	c.Set("kind", string(p.Kind))
}

// CurrentPrincipal returns the principal attached by the auth middleware, or nil.
func CurrentPrincipal(c *gin.Context) *entity.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*entity.Principal); ok {
			return p
		}
	}
	return nil
}

func CurrentPrincipalID(c *gin.Context) uint {
	if p := CurrentPrincipal(c); p != nil {
		return p.ID
	}
	return 0
}
