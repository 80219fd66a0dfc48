package handlers

import (
	"net/http"

	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// stellarHandler exposes read-only Horizon passthrough endpoints.
type stellarHandler struct {
	horizon portssvc.HorizonClient
}

func newStellarHandler(horizon portssvc.HorizonClient) *stellarHandler {
	return &stellarHandler{horizon: horizon}
}

// registerStellarRoutes registers the Horizon passthrough routes.
func registerStellarRoutes(rg *gin.RouterGroup, horizon portssvc.HorizonClient) {
	h := newStellarHandler(horizon)

	stellar := rg.Group("/stellar")
	{
		stellar.GET("/accounts/:address", h.getAccount)
	}
}

// getAccount godoc
// @Summary Fetch Stellar account state
// @Description Horizon passthrough: balances and trustlines for an account.
// @Tags stellar
// @Produce  json
// @Param   address path string true "Stellar account address"
// @Success 200 {object} domain.StellarAccount
// @Failure 404 {object} ErrorResponse "Account not found on Horizon"
// @Security BearerAuth
// @Router /stellar/accounts/{address} [get]
func (h *stellarHandler) getAccount(c *gin.Context) {
	account, err := h.horizon.GetAccount(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondWithError(c, err, "Failed to fetch account from horizon")
		return
	}
	c.JSON(http.StatusOK, account)
}
