package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/dto"
)

type budgetHandler struct {
	budget portssvc.BudgetPlannerSvc
}

func registerBudgetRoutes(rg *gin.RouterGroup, budget portssvc.BudgetPlannerSvc) {
	h := &budgetHandler{budget: budget}
	rg.GET("/budget-execution", h.listExecution)
}

// listExecution returns budget execution rows of one month ordered by account code.
func (h *budgetHandler) listExecution(c *gin.Context) {
	var query dto.BudgetExecutionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}
	rows, err := h.budget.ListExecution(c.Request.Context(), c.Param("tenant_id"), query.Year, query.Month)
	if err != nil {
		respondError(c, err, "Failed to list budget execution")
		return
	}
	c.JSON(http.StatusOK, dto.BudgetExecutionResponse{Year: query.Year, Month: query.Month, Rows: rows})
}
