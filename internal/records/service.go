// Package records is the data access layer of the console: a cached
// read-through view of the sheet API plus invalidation on writes.
package records

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kylewu/payroll-console/internal/cache"
	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/minguo"
	"github.com/kylewu/payroll-console/internal/sheetapi"
)

// Upstream is the slice of the sheet API the service consumes. Tests
// substitute a fake.
type Upstream interface {
	ListEmployees(ctx context.Context) ([]entity.Employee, error)
	GetPayroll(ctx context.Context, employeeID string, year, month int) (*entity.PayrollRecord, error)
	GetLeave(ctx context.Context, employeeID string, year, month int) (*entity.LeaveRecord, error)
	ListRecords(ctx context.Context, year, month int) ([]entity.PayrollRecord, error)

	CreateEmployee(ctx context.Context, e entity.Employee) error
	UpdateEmployee(ctx context.Context, e entity.Employee) error
	DeleteEmployee(ctx context.Context, employeeID string) error
	CreatePayroll(ctx context.Context, r *entity.PayrollRecord) error
	UpdatePayroll(ctx context.Context, r *entity.PayrollRecord) error
	DeletePayroll(ctx context.Context, recordID string) error
	CreateLeave(ctx context.Context, r *entity.LeaveRecord) error
	UpdateLeave(ctx context.Context, r *entity.LeaveRecord) error
	DeleteLeave(ctx context.Context, recordID string) error
}

// Service serves roster and record reads cache-first and forwards writes,
// invalidating whatever the write made stale.
type Service struct {
	api    Upstream
	cache  *cache.Cache
	maxAge time.Duration
	logger *zap.Logger
}

// NewService wires the service. maxAge <= 0 falls back to the default
// ten-minute window.
func NewService(api Upstream, c *cache.Cache, maxAge time.Duration, logger *zap.Logger) *Service {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &Service{api: api, cache: c, maxAge: maxAge, logger: logger}
}

// Employees returns the roster, cache-first unless refresh is set.
func (s *Service) Employees(ctx context.Context, refresh bool) ([]entity.Employee, error) {
	key := cache.EmployeesKey()
	if !refresh {
		if v, ok := s.cache.Get(key, s.maxAge); ok {
			return v.([]entity.Employee), nil
		}
	}
	list, err := s.api.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, list)
	return list, nil
}

// Employee finds one roster entry by employee code, using the roster
// cache only; individual employees are not cached separately.
func (s *Service) Employee(ctx context.Context, employeeID string) (*entity.Employee, error) {
	list, err := s.Employees(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].EmployeeID == employeeID {
			e := list[i]
			return &e, nil
		}
	}
	return nil, sheetapi.ErrNotFound
}

// Payroll returns one employee-month payslip, cache-first unless refresh
// is set.
func (s *Service) Payroll(ctx context.Context, employeeID string, year, month int, refresh bool) (*entity.PayrollRecord, error) {
	key := cache.PayrollKey(employeeID, year, month)
	if !refresh {
		if v, ok := s.cache.Get(key, s.maxAge); ok {
			return v.(*entity.PayrollRecord), nil
		}
	}
	rec, err := s.api.GetPayroll(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, rec)
	return rec, nil
}

// Leave returns one employee-month leave record, cache-first unless
// refresh is set.
func (s *Service) Leave(ctx context.Context, employeeID string, year, month int, refresh bool) (*entity.LeaveRecord, error) {
	key := cache.LeaveKey(employeeID, year, month)
	if !refresh {
		if v, ok := s.cache.Get(key, s.maxAge); ok {
			return v.(*entity.LeaveRecord), nil
		}
	}
	rec, err := s.api.GetLeave(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, rec)
	return rec, nil
}

// MonthRecords returns every payslip for an ROC year-month.
func (s *Service) MonthRecords(ctx context.Context, year, month int, refresh bool) ([]entity.PayrollRecord, error) {
	key := cache.RecordsKey(year, month)
	if !refresh {
		if v, ok := s.cache.Get(key, s.maxAge); ok {
			return v.([]entity.PayrollRecord), nil
		}
	}
	list, err := s.api.ListRecords(ctx, year, month)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, list)
	return list, nil
}

// EmployeeMonth is the joined payroll+leave view for a detail page. The
// two fetches are independent: a failure on one side never suppresses
// data from the other.
type EmployeeMonth struct {
	Payroll    *entity.PayrollRecord
	PayrollErr error
	Leave      *entity.LeaveRecord
	LeaveErr   error
}

// GetEmployeeMonth dispatches the payroll and leave fetches together and
// joins their completions.
func (s *Service) GetEmployeeMonth(ctx context.Context, employeeID string, year, month int, refresh bool) EmployeeMonth {
	var em EmployeeMonth
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		em.Payroll, em.PayrollErr = s.Payroll(ctx, employeeID, year, month, refresh)
	}()
	go func() {
		defer wg.Done()
		em.Leave, em.LeaveErr = s.Leave(ctx, employeeID, year, month, refresh)
	}()
	wg.Wait()
	if em.PayrollErr != nil {
		s.logger.Warn("payroll fetch failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(em.PayrollErr))
	}
	if em.LeaveErr != nil {
		s.logger.Warn("leave fetch failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(em.LeaveErr))
	}
	return em
}

// LastMonthPayroll fetches the previous month's payslip for the
// create-flow preview, bypassing the cache so the projection starts from
// fresh actuals.
func (s *Service) LastMonthPayroll(ctx context.Context, employeeID string, year, month int) (*entity.PayrollRecord, error) {
	prevYear, prevMonth := minguo.PrevMonth(year, month)
	return s.Payroll(ctx, employeeID, prevYear, prevMonth, true)
}

// CreateEmployee forwards the write and drops the roster snapshot.
func (s *Service) CreateEmployee(ctx context.Context, e entity.Employee) error {
	if err := s.api.CreateEmployee(ctx, e); err != nil {
		return err
	}
	s.cache.Clear(cache.EmployeesKey())
	return nil
}

// UpdateEmployee forwards the write and drops the roster snapshot.
func (s *Service) UpdateEmployee(ctx context.Context, e entity.Employee) error {
	if err := s.api.UpdateEmployee(ctx, e); err != nil {
		return err
	}
	s.cache.Clear(cache.EmployeesKey())
	return nil
}

// DeleteEmployee forwards the delete and drops the roster snapshot.
func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) error {
	if err := s.api.DeleteEmployee(ctx, employeeID); err != nil {
		return err
	}
	s.cache.Clear(cache.EmployeesKey())
	return nil
}

func (s *Service) invalidateMonth(employeeID string, year, month int) {
	s.cache.Clear(cache.PayrollKey(employeeID, year, month))
	s.cache.Clear(cache.LeaveKey(employeeID, year, month))
	s.cache.Clear(cache.RecordsKey(year, month))
}

// CreatePayroll forwards the write and invalidates the affected month.
func (s *Service) CreatePayroll(ctx context.Context, r *entity.PayrollRecord, year, month int) error {
	if err := s.api.CreatePayroll(ctx, r); err != nil {
		return err
	}
	s.invalidateMonth(r.EmployeeID, year, month)
	return nil
}

// UpdatePayroll forwards the write and invalidates the affected month.
func (s *Service) UpdatePayroll(ctx context.Context, r *entity.PayrollRecord, year, month int) error {
	if err := s.api.UpdatePayroll(ctx, r); err != nil {
		return err
	}
	s.invalidateMonth(r.EmployeeID, year, month)
	return nil
}

// DeletePayroll forwards the delete and invalidates the affected month.
func (s *Service) DeletePayroll(ctx context.Context, employeeID string, year, month int) error {
	if err := s.api.DeletePayroll(ctx, minguo.RecordID(employeeID, year, month)); err != nil {
		return err
	}
	s.invalidateMonth(employeeID, year, month)
	return nil
}

// CreateLeave forwards the write and invalidates the affected month.
func (s *Service) CreateLeave(ctx context.Context, r *entity.LeaveRecord, employeeID string, year, month int) error {
	if err := s.api.CreateLeave(ctx, r); err != nil {
		return err
	}
	s.invalidateMonth(employeeID, year, month)
	return nil
}

// UpdateLeave forwards the write and invalidates the affected month.
func (s *Service) UpdateLeave(ctx context.Context, r *entity.LeaveRecord, employeeID string, year, month int) error {
	if err := s.api.UpdateLeave(ctx, r); err != nil {
		return err
	}
	s.invalidateMonth(employeeID, year, month)
	return nil
}

// DeleteLeave forwards the delete and invalidates the affected month.
func (s *Service) DeleteLeave(ctx context.Context, employeeID string, year, month int) error {
	if err := s.api.DeleteLeave(ctx, minguo.RecordID(employeeID, year, month)); err != nil {
		return err
	}
	s.invalidateMonth(employeeID, year, month)
	return nil
}

// Reset drops every cached snapshot. Called when the signed-in account
// changes so a different user never sees the previous session's data.
func (s *Service) Reset() {
	s.cache.ClearAll()
}
