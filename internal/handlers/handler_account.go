package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/dto"
	"github.com/propledger/ledgercore/internal/middleware"
)

// accountHandler serves chart-of-accounts queries.
type accountHandler struct {
	tree   portssvc.AccountTreeSvc
	ledger portssvc.LedgerReaderSvc
}

func newAccountHandler(tree portssvc.AccountTreeSvc, ledger portssvc.LedgerReaderSvc) *accountHandler {
	return &accountHandler{tree: tree, ledger: ledger}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, tree portssvc.AccountTreeSvc, ledger portssvc.LedgerReaderSvc) {
	h := newAccountHandler(tree, ledger)

	accounts := rg.Group("/accounts/:code")
	{
		accounts.GET("/balance", h.getBalance)
		accounts.GET("/children", h.listChildren)
		accounts.GET("/entries", h.listEntries)
	}
}

// getBalance returns the posted balance of an account on its normal side over [from, to).
func (h *accountHandler) getBalance(c *gin.Context) {
	tenantID, code := c.Param("tenant_id"), c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", code))

	var query dto.AccountBalanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.tree.ResolveByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		respondError(c, err, "Failed to resolve account")
		return
	}
	balance, err := h.ledger.AccountBalance(c.Request.Context(), tenantID, account.AccountID, query.From, query.To)
	if err != nil {
		respondError(c, err, "Failed to compute balance")
		return
	}

	logger.Debug("Balance computed", slog.String("balance", balance.String()))
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountCode:   account.Code,
		AccountName:   account.Name,
		NormalBalance: string(account.NormalBalance),
		From:          query.From,
		To:            query.To,
		Balance:       balance,
	})
}

// listChildren returns the direct children of an account.
func (h *accountHandler) listChildren(c *gin.Context) {
	tenantID, code := c.Param("tenant_id"), c.Param("code")

	account, err := h.tree.ResolveByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		respondError(c, err, "Failed to resolve account")
		return
	}
	children, err := h.tree.ChildrenOf(c.Request.Context(), *account)
	if err != nil {
		respondError(c, err, "Failed to list child accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account":  dto.ToAccountResponse(*account),
		"children": dto.ToAccountResponses(children),
	})
}

// listEntries pages through posted entries of an account, newest first.
func (h *accountHandler) listEntries(c *gin.Context) {
	tenantID, code := c.Param("tenant_id"), c.Param("code")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.tree.ResolveByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		respondError(c, err, "Failed to resolve account")
		return
	}
	page, err := h.ledger.ListEntriesByAccount(c.Request.Context(), tenantID, account.AccountID, params)
	if err != nil {
		respondError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, page)
}
