package cache

import "fmt"

// Key builders. Two logically different resources must never share a key,
// and one resource must always map to the same key for the same parameters.

// EmployeesKey is the roster snapshot key.
func EmployeesKey() string {
	return "employees"
}

// PayrollKey keys one employee's payroll record for an ROC year-month.
func PayrollKey(employeeID string, year, month int) string {
	return fmt.Sprintf("payroll_%s_%d_%d", employeeID, year, month)
}

// LeaveKey keys one employee's leave record for an ROC year-month.
func LeaveKey(employeeID string, year, month int) string {
	return fmt.Sprintf("leave_%s_%d_%d", employeeID, year, month)
}

// RecordsKey keys the whole-month payroll record list.
func RecordsKey(year, month int) string {
	return fmt.Sprintf("records_%d_%d", year, month)
}
