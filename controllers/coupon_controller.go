package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
)

type CouponController struct{ Cart *services.CartService }

func NewCouponController(cart *services.CartService) *CouponController {
	return &CouponController{Cart: cart}
}

type applyCouponReq struct {
	Code string `json:"code" binding:"required"`
}

// POST /coupons/apply prices the caller's cart with a coupon without ordering.
func (h *CouponController) Apply(c *gin.Context) {
	var req applyCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	quote, err := h.Cart.PreviewCoupon(utils.CurrentPrincipalID(c), req.Code)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, quote)
}
