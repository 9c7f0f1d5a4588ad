package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/cache"
	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/sheetapi"
)

// fakeUpstream counts calls and can be scripted to fail per operation.
type fakeUpstream struct {
	employees    []entity.Employee
	payrolls     map[string]*entity.PayrollRecord
	leaves       map[string]*entity.LeaveRecord
	monthRecords []entity.PayrollRecord

	failList    error
	failPayroll error
	failLeave   error

	listCalls    int
	payrollCalls int
	leaveCalls   int
	monthCalls   int

	created []string
}

func key(employeeID string, year, month int) string {
	return cache.PayrollKey(employeeID, year, month)
}

func (f *fakeUpstream) ListEmployees(ctx context.Context) ([]entity.Employee, error) {
	f.listCalls++
	if f.failList != nil {
		return nil, f.failList
	}
	return f.employees, nil
}

func (f *fakeUpstream) GetPayroll(ctx context.Context, employeeID string, year, month int) (*entity.PayrollRecord, error) {
	f.payrollCalls++
	if f.failPayroll != nil {
		return nil, f.failPayroll
	}
	rec, ok := f.payrolls[key(employeeID, year, month)]
	if !ok {
		return nil, sheetapi.ErrNotFound
	}
	return rec, nil
}

func (f *fakeUpstream) GetLeave(ctx context.Context, employeeID string, year, month int) (*entity.LeaveRecord, error) {
	f.leaveCalls++
	if f.failLeave != nil {
		return nil, f.failLeave
	}
	rec, ok := f.leaves[cache.LeaveKey(employeeID, year, month)]
	if !ok {
		return nil, sheetapi.ErrNotFound
	}
	return rec, nil
}

func (f *fakeUpstream) ListRecords(ctx context.Context, year, month int) ([]entity.PayrollRecord, error) {
	f.monthCalls++
	return f.monthRecords, nil
}

func (f *fakeUpstream) CreateEmployee(ctx context.Context, e entity.Employee) error {
	f.created = append(f.created, "employee:"+e.EmployeeID)
	return nil
}

func (f *fakeUpstream) UpdateEmployee(ctx context.Context, e entity.Employee) error { return nil }

func (f *fakeUpstream) DeleteEmployee(ctx context.Context, employeeID string) error { return nil }

func (f *fakeUpstream) CreatePayroll(ctx context.Context, r *entity.PayrollRecord) error {
	f.created = append(f.created, "payroll:"+r.ID)
	return nil
}

func (f *fakeUpstream) UpdatePayroll(ctx context.Context, r *entity.PayrollRecord) error { return nil }

func (f *fakeUpstream) DeletePayroll(ctx context.Context, recordID string) error { return nil }

func (f *fakeUpstream) CreateLeave(ctx context.Context, r *entity.LeaveRecord) error { return nil }

func (f *fakeUpstream) UpdateLeave(ctx context.Context, r *entity.LeaveRecord) error { return nil }

func (f *fakeUpstream) DeleteLeave(ctx context.Context, recordID string) error { return nil }

func newTestService(f *fakeUpstream) *Service {
	return NewService(f, cache.New(), 0, zap.NewNop())
}

func TestEmployeesCacheFirst(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{{EmployeeID: "A001", Name: "王小明"}}}
	svc := newTestService(f)

	first, err := svc.Employees(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.Employees(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.listCalls, "second read must come from cache")
}

func TestEmployeesRefreshBypassesCache(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{{EmployeeID: "A001"}}}
	svc := newTestService(f)

	_, err := svc.Employees(context.Background(), false)
	require.NoError(t, err)
	_, err = svc.Employees(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, f.listCalls)
}

func TestEmployeesFailureThenRetry(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{{EmployeeID: "A001"}}}
	f.failList = errors.New("network down")
	svc := newTestService(f)

	_, err := svc.Employees(context.Background(), false)
	require.Error(t, err, "failed fetch surfaces the error")

	// A failed fetch must not poison the cache; the retry goes upstream.
	f.failList = nil
	got, err := svc.Employees(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, f.listCalls)
}

func TestEmployeeLookup(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{
		{EmployeeID: "A001", Name: "王小明"},
		{EmployeeID: "A002", Name: "李小華"},
	}}
	svc := newTestService(f)

	e, err := svc.Employee(context.Background(), "A002")
	require.NoError(t, err)
	assert.Equal(t, "李小華", e.Name)

	_, err = svc.Employee(context.Background(), "A999")
	assert.ErrorIs(t, err, sheetapi.ErrNotFound)
	assert.Equal(t, 1, f.listCalls, "lookup rides the roster cache")
}

func TestPayrollCacheAndInvalidation(t *testing.T) {
	rec := &entity.PayrollRecord{ID: "A001_11408", EmployeeID: "A001", BaseSalary: 300000}
	f := &fakeUpstream{payrolls: map[string]*entity.PayrollRecord{key("A001", 114, 8): rec}}
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Payroll(ctx, "A001", 114, 8, false)
	require.NoError(t, err)
	_, err = svc.Payroll(ctx, "A001", 114, 8, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.payrollCalls)

	// A write to the month drops the cached payslip.
	require.NoError(t, svc.UpdatePayroll(ctx, rec, 114, 8))
	_, err = svc.Payroll(ctx, "A001", 114, 8, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.payrollCalls)
}

func TestGetEmployeeMonthGracefulDegradation(t *testing.T) {
	leave := &entity.LeaveRecord{ID: "A001_11408", GrantedDays: 10}
	f := &fakeUpstream{
		payrolls: map[string]*entity.PayrollRecord{},
		leaves:   map[string]*entity.LeaveRecord{cache.LeaveKey("A001", 114, 8): leave},
	}
	f.failPayroll = errors.New("timeout")
	svc := newTestService(f)

	em := svc.GetEmployeeMonth(context.Background(), "A001", 114, 8, false)

	assert.Error(t, em.PayrollErr)
	assert.Nil(t, em.Payroll)
	require.NoError(t, em.LeaveErr)
	require.NotNil(t, em.Leave)
	assert.Equal(t, 10.0, em.Leave.GrantedDays)
}

func TestLastMonthPayrollStepsBackAndBypassesCache(t *testing.T) {
	prev := &entity.PayrollRecord{ID: "A001_11312", EmployeeID: "A001"}
	f := &fakeUpstream{payrolls: map[string]*entity.PayrollRecord{key("A001", 113, 12): prev}}
	svc := newTestService(f)
	ctx := context.Background()

	got, err := svc.LastMonthPayroll(ctx, "A001", 114, 1)
	require.NoError(t, err)
	assert.Equal(t, "A001_11312", got.ID)

	_, err = svc.LastMonthPayroll(ctx, "A001", 114, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.payrollCalls, "create-flow preview always refetches")
}

func TestCreateEmployeeInvalidatesRoster(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{{EmployeeID: "A001"}}}
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Employees(ctx, false)
	require.NoError(t, err)

	require.NoError(t, svc.CreateEmployee(ctx, entity.Employee{EmployeeID: "A003"}))

	_, err = svc.Employees(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.listCalls)
}

func TestDeletePayrollInvalidatesMonthList(t *testing.T) {
	f := &fakeUpstream{monthRecords: []entity.PayrollRecord{{ID: "A001_11408"}}}
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.MonthRecords(ctx, 114, 8, false)
	require.NoError(t, err)
	require.NoError(t, svc.DeletePayroll(ctx, "A001", 114, 8))

	_, err = svc.MonthRecords(ctx, 114, 8, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.monthCalls)
}

func TestResetDropsEverything(t *testing.T) {
	f := &fakeUpstream{employees: []entity.Employee{{EmployeeID: "A001"}}}
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Employees(ctx, false)
	require.NoError(t, err)

	svc.Reset()

	_, err = svc.Employees(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.listCalls)
}
