package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/minguo"
	"github.com/kylewu/payroll-console/internal/projection"
	"github.com/kylewu/payroll-console/pkg/utils"
)

func (s *Server) getPayroll(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	rec, err := s.svc.Payroll(c.Request.Context(), c.Param("id"), year, month, wantRefresh(c))
	if err != nil {
		s.renderError(c, err, msgRecordFetchFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (s *Server) getLeave(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	rec, err := s.svc.Leave(c.Request.Context(), c.Param("id"), year, month, wantRefresh(c))
	if err != nil {
		s.renderError(c, err, msgRecordFetchFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// employeeMonth joins the payroll and leave fetches for a detail page.
// One side failing still renders the other; only a double failure is a
// page-level error.
func (s *Server) employeeMonth(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	em := s.svc.GetEmployeeMonth(c.Request.Context(), c.Param("id"), year, month, wantRefresh(c))
	if em.PayrollErr != nil && em.LeaveErr != nil {
		s.renderError(c, em.PayrollErr, msgRecordFetchFailed)
		return
	}
	body := gin.H{"payroll": em.Payroll, "leave": em.Leave}
	if em.PayrollErr != nil {
		body["payroll_error"] = msgRecordFetchFailed
	}
	if em.LeaveErr != nil {
		body["leave_error"] = msgRecordFetchFailed
	}
	c.JSON(http.StatusOK, body)
}

func validateCustomItems(errs *utils.Errors, g entity.Group, items []entity.CustomItem) {
	if len(items) > entity.MaxCustomItems {
		errs.Add("%s group allows at most %d custom items", g, entity.MaxCustomItems)
	}
}

func validatePayroll(r *entity.PayrollRecord) utils.Errors {
	var errs utils.Errors
	if r.PayDate != "" {
		if _, ok := minguo.ParseDisplay(r.PayDate); !ok {
			errs.Add("pay_date must be an ROC date formatted YYY-MM-DD: %s", r.PayDate)
		}
	}
	validateCustomItems(&errs, entity.GroupFixed, r.FixedCustom)
	validateCustomItems(&errs, entity.GroupVariable, r.VariableCustom)
	validateCustomItems(&errs, entity.GroupDeduction, r.DeductCustom)
	return errs
}

// bindPayroll decodes a submitted payslip and stamps the identity fields
// from the path so every call site shares one id construction.
func (s *Server) bindPayroll(c *gin.Context) (*entity.PayrollRecord, int, int, bool) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return nil, 0, 0, false
	}
	var rec entity.PayrollRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, 0, 0, false
	}
	rec.EmployeeID = c.Param("id")
	rec.ID = minguo.RecordID(rec.EmployeeID, year, month)
	if errs := validatePayroll(&rec); !errs.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return nil, 0, 0, false
	}
	return &rec, year, month, true
}

func (s *Server) createPayroll(c *gin.Context) {
	rec, year, month, ok := s.bindPayroll(c)
	if !ok {
		return
	}
	if err := s.svc.CreatePayroll(c.Request.Context(), rec, year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created", "id": rec.ID})
}

func (s *Server) updatePayroll(c *gin.Context) {
	rec, year, month, ok := s.bindPayroll(c)
	if !ok {
		return
	}
	if err := s.svc.UpdatePayroll(c.Request.Context(), rec, year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "id": rec.ID})
}

func (s *Server) deletePayroll(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	if err := s.svc.DeletePayroll(c.Request.Context(), c.Param("id"), year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// validateLeave checks the three wire dates. Zero means absent; anything
// else must be a well-formed 7-digit ROC date, never silently coerced.
func validateLeave(r *entity.LeaveRecord) utils.Errors {
	var errs utils.Errors
	check := func(name string, v int) {
		if v == 0 {
			return
		}
		if _, ok := minguo.ParseWire(v); !ok {
			errs.Add("%s must be a 7-digit ROC date (YYYMMDD): %d", name, v)
		}
	}
	check("leave_start", r.LeaveStart)
	check("leave_end", r.LeaveEnd)
	check("comp_expiry", r.CompExpiry)
	return errs
}

func (s *Server) bindLeave(c *gin.Context) (*entity.LeaveRecord, int, int, bool) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return nil, 0, 0, false
	}
	var rec entity.LeaveRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, 0, 0, false
	}
	rec.ID = minguo.RecordID(c.Param("id"), year, month)
	// Remaining balances are derived, not accepted from the client.
	rec.RemainingDays = projection.RemainingDays(rec.CarryoverDays, rec.GrantedDays, rec.UsedDays)
	rec.RemainingHours = projection.RemainingHours(rec.CarryoverHours, rec.GrantedHours, rec.UsedHours, rec.CashoutHours)
	if errs := validateLeave(&rec); !errs.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return nil, 0, 0, false
	}
	return &rec, year, month, true
}

func (s *Server) createLeave(c *gin.Context) {
	rec, year, month, ok := s.bindLeave(c)
	if !ok {
		return
	}
	if err := s.svc.CreateLeave(c.Request.Context(), rec, c.Param("id"), year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created", "id": rec.ID})
}

func (s *Server) updateLeave(c *gin.Context) {
	rec, year, month, ok := s.bindLeave(c)
	if !ok {
		return
	}
	if err := s.svc.UpdateLeave(c.Request.Context(), rec, c.Param("id"), year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "id": rec.ID})
}

func (s *Server) deleteLeave(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteLeave(c.Request.Context(), c.Param("id"), year, month); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) listRecords(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	list, err := s.svc.MonthRecords(c.Request.Context(), year, month, wantRefresh(c))
	if err != nil {
		s.renderError(c, err, msgRecordFetchFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) monthlyReport(c *gin.Context) {
	year, month, ok := s.yearMonth(c)
	if !ok {
		return
	}
	list, err := s.svc.MonthRecords(c.Request.Context(), year, month, wantRefresh(c))
	if err != nil {
		s.renderError(c, err, msgRecordFetchFailed)
		return
	}
	f, err := s.reports.MonthlyPayroll(year, month, list)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	filename := fmt.Sprintf("payroll_%d%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
