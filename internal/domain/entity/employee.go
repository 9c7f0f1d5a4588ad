package entity

// Employee is a roster entry as held by the upstream sheet. EmployeeID is
// the human-assigned unique code used in composite record ids; ID is the
// sheet's own row number.
type Employee struct {
	ID          int64  `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name"`
	Email       string `json:"user_email"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}
