// Package server exposes the payroll console as a JSON API: roster and
// record lookups served cache-first, mutations forwarded to the sheet
// API, previews computed server-side, and a monthly workbook download.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/minguo"
	"github.com/kylewu/payroll-console/internal/records"
	"github.com/kylewu/payroll-console/internal/report"
	"github.com/kylewu/payroll-console/internal/sheetapi"
)

// Generic page-level failure messages; upstream detail goes to the log,
// not the operator.
const (
	msgEmployeesFetchFailed = "failed to fetch employees"
	msgRecordFetchFailed    = "failed to fetch record"
	msgMutationFailed       = "operation failed"
)

// Server holds the console's handler dependencies.
type Server struct {
	svc     *records.Service
	reports *report.Builder
	logger  *zap.Logger
}

// New creates the console server.
func New(svc *records.Service, reports *report.Builder, logger *zap.Logger) *Server {
	return &Server{svc: svc, reports: reports, logger: logger}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(s.logger))
	r.Use(corsMiddleware())
	r.Use(tokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "payroll-console",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/employees", s.listEmployees)
		api.POST("/employees", s.createEmployee)
		api.GET("/employees/:id", s.getEmployee)
		api.PUT("/employees/:id", s.updateEmployee)
		api.DELETE("/employees/:id", s.deleteEmployee)

		api.GET("/employees/:id/month/:year/:month", s.employeeMonth)

		api.GET("/employees/:id/payroll/:year/:month", s.getPayroll)
		api.POST("/employees/:id/payroll/:year/:month", s.createPayroll)
		api.PUT("/employees/:id/payroll/:year/:month", s.updatePayroll)
		api.DELETE("/employees/:id/payroll/:year/:month", s.deletePayroll)
		api.POST("/employees/:id/payroll/:year/:month/preview", s.previewPayroll)

		api.GET("/employees/:id/leave/:year/:month", s.getLeave)
		api.POST("/employees/:id/leave/:year/:month", s.createLeave)
		api.PUT("/employees/:id/leave/:year/:month", s.updateLeave)
		api.DELETE("/employees/:id/leave/:year/:month", s.deleteLeave)

		api.GET("/records/:year/:month", s.listRecords)
		api.GET("/reports/payroll/:year/:month", s.monthlyReport)

		api.POST("/session/reset", s.resetSession)
	}

	return r
}

// yearMonth parses and validates the :year/:month path segments as an
// ROC payroll period. On failure it writes the 400 itself.
func (s *Server) yearMonth(c *gin.Context) (int, int, bool) {
	year, errY := strconv.Atoi(c.Param("year"))
	month, errM := strconv.Atoi(c.Param("month"))
	if errY != nil || errM != nil || !minguo.ValidYearMonth(year, month) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "year must be a 3-digit ROC year and month 1-12",
		})
		return 0, 0, false
	}
	return year, month, true
}

func wantRefresh(c *gin.Context) bool {
	switch c.Query("refresh") {
	case "1", "true":
		return true
	}
	return false
}

// renderError maps upstream failures onto the console's responses: a
// missing record is a 404 the UI can route to a creation flow, anything
// else is a 502 with a generic page-level message.
func (s *Server) renderError(c *gin.Context, err error, message string) {
	if errors.Is(err, sheetapi.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	var apiErr *sheetapi.APIError
	if errors.As(err, &apiErr) {
		s.logger.Warn("upstream rejected request",
			zap.String("action", apiErr.Action),
			zap.String("reason", apiErr.Message))
	} else {
		s.logger.Warn("upstream call failed", zap.Error(err))
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": message})
}
