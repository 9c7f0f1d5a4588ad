package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/projection"
	"github.com/kylewu/payroll-console/internal/sheetapi"
)

// previewRequest carries the operator's adjustment rows per group. A nil
// group means no edits yet; the seeded blank rows come back in the
// response so the form can render them.
type previewRequest struct {
	Fixed     []projection.Row `json:"fixed"`
	Variable  []projection.Row `json:"variable"`
	Deduction []projection.Row `json:"deduction"`
}

type previewGroup struct {
	LastMonth []projection.Row `json:"last_month"`
	Rows      []projection.Row `json:"rows"`
	Subtotal  int64            `json:"subtotal"`
}

// previewPayroll projects this month's payslip from last month's actuals
// plus the submitted adjustments. A first-ever month has no prior record;
// the projection then runs against zero actuals rather than failing.
func (s *Server) previewPayroll(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	last, err := s.svc.LastMonthPayroll(c.Request.Context(), c.Param("id"), year, month)
	if err != nil && !errors.Is(err, sheetapi.ErrNotFound) {
		s.renderError(c, err, msgRecordFetchFailed)
		return
	}

	groups := map[string]*previewGroup{
		"fixed":     buildPreview(last, entity.GroupFixed, req.Fixed),
		"variable":  buildPreview(last, entity.GroupVariable, req.Variable),
		"deduction": buildPreview(last, entity.GroupDeduction, req.Deduction),
	}
	total := projection.Total(
		groups["fixed"].Subtotal,
		groups["variable"].Subtotal,
		groups["deduction"].Subtotal,
	)
	c.JSON(http.StatusOK, gin.H{
		"fixed":     groups["fixed"],
		"variable":  groups["variable"],
		"deduction": groups["deduction"],
		"total":     total,
	})
}

func buildPreview(last *entity.PayrollRecord, g entity.Group, adjustments []projection.Row) *previewGroup {
	if adjustments == nil {
		adjustments = projection.AdjustmentRows(g)
	}
	lastRows := projection.LastMonthRows(last, g)
	rows := projection.Preview(lastRows, adjustments)
	return &previewGroup{
		LastMonth: lastRows,
		Rows:      rows,
		Subtotal:  projection.Subtotal(rows),
	}
}
