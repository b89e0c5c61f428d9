package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
	"github.com/shopspring/decimal"
)

type PaymentController struct {
	Svc *services.SettlementService
}

func NewPaymentController(svc *services.SettlementService) *PaymentController {
	return &PaymentController{Svc: svc}
}

// POST /payments/orders/:id/pay
func (h *PaymentController) PayOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.Svc.PayOrder(c.Request.Context(), utils.CurrentPrincipalID(c), orderID, c.ClientIP())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

type depositReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// POST /payments/deposits
func (h *PaymentController) Deposit(c *gin.Context) {
	var req depositReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	out, err := h.Svc.CreateDeposit(c.Request.Context(), utils.CurrentPrincipalID(c), req.Amount, c.ClientIP())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}

// GET /payments/vnpay/return is where the customer's browser lands.
func (h *PaymentController) VNPayReturn(c *gin.Context) {
	res := h.Svc.HandleCallback(c.Request.Context(), "return", c.Request.URL.Query())
	if res.RspCode == services.RspInvalidSignature {
		resp.BadRequest(c, "invalid signature")
		return
	}
	resp.OK(c, gin.H{
		"success": res.Confirmed() && res.Status == entity.TxnSuccess,
		"rspCode": res.RspCode,
		"message": res.Message,
		"txnRef":  res.TxnRef,
		"status":  res.Status,
		"orderId": res.OrderID,
	})
}

// GET|POST /payments/vnpay/ipn is the provider's server-to-server call. It
// always answers 200; the outcome is in RspCode.
func (h *PaymentController) VNPayIPN(c *gin.Context) {
	params := c.Request.URL.Query()
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil && len(c.Request.PostForm) > 0 {
			params = mergeValues(params, c.Request.PostForm)
		}
	}
	res := h.Svc.HandleCallback(c.Request.Context(), "ipn", params)
	c.JSON(http.StatusOK, gin.H{"RspCode": res.RspCode, "Message": res.Message})
}

func mergeValues(a, b url.Values) url.Values {
	out := url.Values{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
