package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/dto"
)

type transactionHandler struct {
	ledger portssvc.LedgerReaderSvc
}

func registerTransactionRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerReaderSvc) {
	h := &transactionHandler{ledger: ledger}
	rg.GET("/transactions/:transaction_id", h.getTransaction)
}

// getTransaction returns a transaction with its entries.
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.ledger.GetTransaction(c.Request.Context(), c.Param("tenant_id"), c.Param("transaction_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
