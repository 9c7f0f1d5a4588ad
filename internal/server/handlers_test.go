package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/cache"
	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/records"
	"github.com/kylewu/payroll-console/internal/report"
	"github.com/kylewu/payroll-console/internal/sheetapi"
)

// fakeUpstream scripts the sheet API for handler tests.
type fakeUpstream struct {
	employees    []entity.Employee
	payrolls     map[string]*entity.PayrollRecord
	listErr      error
	listCalls    int
	createdEmps  []entity.Employee
	deletedIDs   []string
	updatedSlips []*entity.PayrollRecord
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{payrolls: map[string]*entity.PayrollRecord{}}
}

func payrollKey(employeeID string, year, month int) string {
	return fmt.Sprintf("%s/%d/%d", employeeID, year, month)
}

func (f *fakeUpstream) ListEmployees(ctx context.Context) ([]entity.Employee, error) {
	f.listCalls++
	if f.listErr != nil {
		err := f.listErr
		f.listErr = nil
		return nil, err
	}
	return f.employees, nil
}

func (f *fakeUpstream) GetPayroll(ctx context.Context, employeeID string, year, month int) (*entity.PayrollRecord, error) {
	rec, ok := f.payrolls[payrollKey(employeeID, year, month)]
	if !ok {
		return nil, sheetapi.ErrNotFound
	}
	return rec, nil
}

func (f *fakeUpstream) GetLeave(ctx context.Context, employeeID string, year, month int) (*entity.LeaveRecord, error) {
	return nil, sheetapi.ErrNotFound
}

func (f *fakeUpstream) ListRecords(ctx context.Context, year, month int) ([]entity.PayrollRecord, error) {
	return nil, nil
}

func (f *fakeUpstream) CreateEmployee(ctx context.Context, e entity.Employee) error {
	f.createdEmps = append(f.createdEmps, e)
	return nil
}

func (f *fakeUpstream) UpdateEmployee(ctx context.Context, e entity.Employee) error { return nil }

func (f *fakeUpstream) DeleteEmployee(ctx context.Context, employeeID string) error {
	f.deletedIDs = append(f.deletedIDs, employeeID)
	return nil
}

func (f *fakeUpstream) CreatePayroll(ctx context.Context, r *entity.PayrollRecord) error {
	f.payrolls[r.ID] = r
	return nil
}

func (f *fakeUpstream) UpdatePayroll(ctx context.Context, r *entity.PayrollRecord) error {
	f.updatedSlips = append(f.updatedSlips, r)
	return nil
}

func (f *fakeUpstream) DeletePayroll(ctx context.Context, recordID string) error { return nil }

func (f *fakeUpstream) CreateLeave(ctx context.Context, r *entity.LeaveRecord) error { return nil }

func (f *fakeUpstream) UpdateLeave(ctx context.Context, r *entity.LeaveRecord) error { return nil }

func (f *fakeUpstream) DeleteLeave(ctx context.Context, recordID string) error { return nil }

func newTestRouter(t *testing.T, up records.Upstream) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := records.NewService(up, cache.New(), 0, logger)
	srv := New(svc, report.NewBuilder(logger), logger)
	return srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListEmployeesFailureThenRetry(t *testing.T) {
	up := newFakeUpstream()
	up.employees = []entity.Employee{{EmployeeID: "A001", Name: "王小明"}}
	up.listErr = fmt.Errorf("upstream timeout")
	r := newTestRouter(t, up)

	w := doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgEmployeesFetchFailed)

	// The failed fetch must not poison the cache; the retry goes back
	// upstream and succeeds.
	w = doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A001")
	assert.Equal(t, 2, up.listCalls)
}

func TestListEmployeesServedFromCache(t *testing.T) {
	up := newFakeUpstream()
	up.employees = []entity.Employee{{EmployeeID: "A001", Name: "王小明"}}
	r := newTestRouter(t, up)

	doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, 1, up.listCalls)

	doJSON(t, r, http.MethodGet, "/api/v1/employees?refresh=1", nil)
	assert.Equal(t, 2, up.listCalls)
}

func TestCreateEmployeeCollectsAllErrors(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees", gin.H{
		"employee_id": "",
		"name":        "",
		"user_email":  "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 3)
}

func TestCreateEmployeeValid(t *testing.T) {
	up := newFakeUpstream()
	r := newTestRouter(t, up)

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees", gin.H{
		"employee_id": "A003",
		"name":        "陳大文",
		"user_email":  "chen@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, up.createdEmps, 1)
	assert.Equal(t, "A003", up.createdEmps[0].EmployeeID)
}

func TestGetPayrollNotFound(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodGet, "/api/v1/employees/A001/payroll/114/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestYearMonthValidation(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	for _, path := range []string{
		"/api/v1/employees/A001/payroll/2025/8",
		"/api/v1/employees/A001/payroll/114/13",
		"/api/v1/employees/A001/payroll/abc/8",
	} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestPreviewAddsAdjustmentToLastMonth(t *testing.T) {
	up := newFakeUpstream()
	up.payrolls[payrollKey("A001", 114, 7)] = &entity.PayrollRecord{
		ID:         "A001_11407",
		EmployeeID: "A001",
		BaseSalary: 300000,
	}
	r := newTestRouter(t, up)

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees/A001/payroll/114/8/preview", gin.H{
		"fixed": []gin.H{
			{"slot": "base_salary", "label": "底薪", "value": "5000"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Fixed struct {
			Rows []struct {
				Slot  string `json:"slot"`
				Value string `json:"value"`
			} `json:"rows"`
			Subtotal int64 `json:"subtotal"`
		} `json:"fixed"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fixed.Rows, 1)
	assert.Equal(t, "305000", body.Fixed.Rows[0].Value)
	assert.Equal(t, int64(305000), body.Fixed.Subtotal)
	assert.Equal(t, int64(305000), body.Total)
}

func TestPreviewWithoutPriorMonth(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees/B001/payroll/114/1/preview", gin.H{
		"variable": []gin.H{
			{"slot": "bonus", "label": "獎金", "value": "8000"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Variable struct {
			Subtotal int64 `json:"subtotal"`
		} `json:"variable"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(8000), body.Variable.Subtotal)
}

func TestCreatePayrollStampsCompositeID(t *testing.T) {
	up := newFakeUpstream()
	r := newTestRouter(t, up)

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees/A001/payroll/114/8", gin.H{
		"base_salary": 300000,
		"pay_date":    "114-08-05",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	rec, ok := up.payrolls["A001_11408"]
	require.True(t, ok)
	assert.Equal(t, "A001", rec.EmployeeID)
}

func TestCreatePayrollRejectsBadPayDate(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodPost, "/api/v1/employees/A001/payroll/114/8", gin.H{
		"pay_date": "2025-08-05",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pay_date")
}

func TestUpdateLeaveRejectsMalformedWireDate(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodPut, "/api/v1/employees/A001/leave/114/8", gin.H{
		"leave_start": 202508,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "leave_start")
}

func TestEmployeeMonthPartialFailure(t *testing.T) {
	up := newFakeUpstream()
	up.payrolls[payrollKey("A001", 114, 8)] = &entity.PayrollRecord{
		ID:         "A001_11408",
		EmployeeID: "A001",
		BaseSalary: 300000,
	}
	r := newTestRouter(t, up)

	// Leave always 404s in the fake; the page still renders payroll.
	w := doJSON(t, r, http.MethodGet, "/api/v1/employees/A001/month/114/8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A001_11408")
	assert.Contains(t, w.Body.String(), "leave_error")
}

func TestSessionReset(t *testing.T) {
	up := newFakeUpstream()
	up.employees = []entity.Employee{{EmployeeID: "A001", Name: "王小明"}}
	r := newTestRouter(t, up)

	doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	w := doJSON(t, r, http.MethodPost, "/api/v1/session/reset", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	doJSON(t, r, http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, 2, up.listCalls)
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t, newFakeUpstream())

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
