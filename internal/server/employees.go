package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/pkg/utils"
)

func (s *Server) listEmployees(c *gin.Context) {
	list, err := s.svc.Employees(c.Request.Context(), wantRefresh(c))
	if err != nil {
		s.renderError(c, err, msgEmployeesFetchFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *Server) getEmployee(c *gin.Context) {
	e, err := s.svc.Employee(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err, msgEmployeesFetchFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": e})
}

// validateEmployee gathers every problem with a submitted roster entry;
// the whole list gates the submit rather than advising on it.
func validateEmployee(e entity.Employee) utils.Errors {
	var errs utils.Errors
	errs.AddErr(utils.ValidateEmployeeID(e.EmployeeID))
	if e.Name == "" {
		errs.Add("name is required")
	}
	if e.Email != "" {
		errs.AddErr(utils.ValidateEmail(e.Email))
	}
	return errs
}

func (s *Server) createEmployee(c *gin.Context) {
	var e entity.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if errs := validateEmployee(e); !errs.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	if err := s.svc.CreateEmployee(c.Request.Context(), e); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (s *Server) updateEmployee(c *gin.Context) {
	var e entity.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	e.EmployeeID = c.Param("id")
	if errs := validateEmployee(e); !errs.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	if err := s.svc.UpdateEmployee(c.Request.Context(), e); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) deleteEmployee(c *gin.Context) {
	if err := s.svc.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err, msgMutationFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) resetSession(c *gin.Context) {
	s.svc.Reset()
	c.Status(http.StatusNoContent)
}
