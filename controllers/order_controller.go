package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
)

type OrderController struct {
	Svc *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{Svc: svc}
}

// POST /orders/checkout
func (h *OrderController) Checkout(c *gin.Context) {
	var req services.CheckoutIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	order, err := h.Svc.CreateFromCart(utils.CurrentPrincipalID(c), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, order)
}

// GET /orders?limit=
func (h *OrderController) ListForMe(c *gin.Context) {
	items, err := h.Svc.ListForCustomer(utils.CurrentPrincipalID(c), queryInt(c, "limit", 50))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, items)
}

// GET /orders/:id
func (h *OrderController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Svc.DetailForCustomer(utils.CurrentPrincipalID(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// GET /orders/:id/invoice
func (h *OrderController) Invoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.InvoiceForCustomer(utils.CurrentPrincipalID(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, inv)
}

// GET /orders/:id/wallet-entries
func (h *OrderController) WalletEntries(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entries, err := h.Svc.WalletEntriesForCustomer(utils.CurrentPrincipalID(c), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, entries)
}
