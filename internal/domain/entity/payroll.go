package entity

// CustomItem is one optional, user-named payroll line item. A slot is in
// use only when Name is non-empty.
type CustomItem struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// PayrollRecord is one employee's payslip for an ROC year-month,
// conceptually keyed by (employee_id, year, month) and identified upstream
// by the composite id from minguo.RecordID. Subtotals are computed by the
// upstream; Total derives from them.
//
// Each group carries up to MaxCustomItems custom items as a bounded list;
// the flat name/amount column pairs of the sheet exist only in the wire
// codec.
type PayrollRecord struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name"`
	Email       string `json:"user_email"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	PayDate     string `json:"pay_date"` // YYY-MM-DD display form

	BaseSalary    int64        `json:"base_salary"`
	MealAllowance int64        `json:"meal_allowance"`
	FixedCustom   []CustomItem `json:"fixed_custom"`
	SubtotalA     int64        `json:"subtotal_A"`

	OvertimeWeekday  int64        `json:"overtime_weekday"`
	OvertimeHoliday  int64        `json:"overtime_holiday"`
	OvertimeRestday  int64        `json:"overtime_restday"`
	OvertimeNational int64        `json:"overtime_national"`
	Bonus            int64        `json:"bonus"`
	VariableCustom   []CustomItem `json:"variable_custom"`
	SubtotalB        int64        `json:"subtotal_B"`

	LaborInsurance    int64        `json:"labor_insurance"`
	HealthInsurance   int64        `json:"health_insurance"`
	NationalInsurance int64        `json:"national_insurance"`
	AbsenceDeduction  int64        `json:"absence_deduction"`
	SickDeduction     int64        `json:"sick_deduction"`
	DeductCustom      []CustomItem `json:"deduct_custom"`
	SubtotalC         int64        `json:"subtotal_C"`
}

// Total is the pay actually disbursed: fixed plus variable minus
// deductions.
func (r *PayrollRecord) Total() int64 {
	return r.SubtotalA + r.SubtotalB - r.SubtotalC
}

// Amount returns the stored value of a predefined slot. Unknown slots
// read as zero.
func (r *PayrollRecord) Amount(s Slot) int64 {
	switch s {
	case SlotBaseSalary:
		return r.BaseSalary
	case SlotMealAllowance:
		return r.MealAllowance
	case SlotOvertimeWeekday:
		return r.OvertimeWeekday
	case SlotOvertimeHoliday:
		return r.OvertimeHoliday
	case SlotOvertimeRestday:
		return r.OvertimeRestday
	case SlotOvertimeNational:
		return r.OvertimeNational
	case SlotBonus:
		return r.Bonus
	case SlotLaborInsurance:
		return r.LaborInsurance
	case SlotHealthInsurance:
		return r.HealthInsurance
	case SlotNationalInsurance:
		return r.NationalInsurance
	case SlotAbsenceDeduction:
		return r.AbsenceDeduction
	case SlotSickDeduction:
		return r.SickDeduction
	default:
		return 0
	}
}

// CustomItems returns the group's custom item list.
func (r *PayrollRecord) CustomItems(g Group) []CustomItem {
	switch g {
	case GroupFixed:
		return r.FixedCustom
	case GroupVariable:
		return r.VariableCustom
	case GroupDeduction:
		return r.DeductCustom
	default:
		return nil
	}
}
