package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
)

type WalletController struct {
	Wallet     *services.WalletService
	Settlement *services.SettlementService
}

func NewWalletController(wallet *services.WalletService, settlement *services.SettlementService) *WalletController {
	return &WalletController{Wallet: wallet, Settlement: settlement}
}

// GET /wallet
func (h *WalletController) Balance(c *gin.Context) {
	v, err := h.Wallet.Balance(utils.CurrentPrincipalID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, v)
}

// GET /wallet/entries?limit=
func (h *WalletController) Entries(c *gin.Context) {
	rows, err := h.Wallet.History(utils.CurrentPrincipalID(c), queryInt(c, "limit", 50))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

// GET /wallet/transactions?limit=
func (h *WalletController) Transactions(c *gin.Context) {
	rows, err := h.Settlement.Transactions(utils.CurrentPrincipalID(c), queryInt(c, "limit", 50))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}
