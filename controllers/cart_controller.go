package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
)

type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

// GET /cart
func (h *CartController) Get(c *gin.Context) {
	cart, err := h.Svc.Get(utils.CurrentPrincipalID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// POST /cart/items
func (h *CartController) Add(c *gin.Context) {
	var req services.AddToCartIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cart, err := h.Svc.Add(utils.CurrentPrincipalID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, cart)
}

type updateQtyReq struct {
	Quantity int `json:"quantity" binding:"required"`
}

// PATCH /cart/items/:itemId
func (h *CartController) UpdateQty(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req updateQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cart, err := h.Svc.UpdateQty(utils.CurrentPrincipalID(c), itemID, req.Quantity)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// DELETE /cart/items/:itemId
func (h *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	cart, err := h.Svc.RemoveItem(utils.CurrentPrincipalID(c), itemID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cart)
}

// DELETE /cart
func (h *CartController) Clear(c *gin.Context) {
	if err := h.Svc.Clear(utils.CurrentPrincipalID(c)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"cleared": true})
}
