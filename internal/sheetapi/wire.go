package sheetapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kylewu/payroll-console/internal/domain/entity"
	"github.com/kylewu/payroll-console/internal/projection"
)

// The sheet backend is untyped: numeric columns occasionally arrive as
// strings and vice versa. The flex types absorb that at the boundary so
// the rest of the code sees clean Go values. Junk coerces to the zero
// value, never to an error.

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := string(data)
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = flexInt(math.Round(f))
	return nil
}

type flexFloat float64

func (n *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = flexFloat(f)
	return nil
}

type wireEmployee struct {
	ID          flexInt    `json:"id"`
	EmployeeID  flexString `json:"employee_id"`
	Name        flexString `json:"name"`
	Email       flexString `json:"user_email"`
	BankName    flexString `json:"bank_name"`
	BankAccount flexString `json:"bank_account"`
}

func (w wireEmployee) toEntity() entity.Employee {
	return entity.Employee{
		ID:          int64(w.ID),
		EmployeeID:  string(w.EmployeeID),
		Name:        string(w.Name),
		Email:       string(w.Email),
		BankName:    string(w.BankName),
		BankAccount: string(w.BankAccount),
	}
}

// wirePayroll mirrors the sheet's flat columns, custom slots encoded as
// three name/amount pairs per group. The bounded-list domain shape exists
// only on entity.PayrollRecord; this is the sole place the two meet.
type wirePayroll struct {
	ID          flexString `json:"id"`
	EmployeeID  flexString `json:"employee_id"`
	Name        flexString `json:"name"`
	Email       flexString `json:"user_email"`
	BankName    flexString `json:"bank_name"`
	BankAccount flexString `json:"bank_account"`
	PayDate     flexString `json:"pay_date"`

	BaseSalary        flexInt    `json:"base_salary"`
	MealAllowance     flexInt    `json:"meal_allowance"`
	FixedCustom1Name  flexString `json:"fixed_custom1_name"`
	FixedCustom1Amt   flexInt    `json:"fixed_custom1_amount"`
	FixedCustom2Name  flexString `json:"fixed_custom2_name"`
	FixedCustom2Amt   flexInt    `json:"fixed_custom2_amount"`
	FixedCustom3Name  flexString `json:"fixed_custom3_name"`
	FixedCustom3Amt   flexInt    `json:"fixed_custom3_amount"`
	SubtotalA         flexInt    `json:"subtotal_A"`
	OvertimeWeekday   flexInt    `json:"overtime_weekday"`
	OvertimeHoliday   flexInt    `json:"overtime_holiday"`
	OvertimeRestday   flexInt    `json:"overtime_restday"`
	OvertimeNational  flexInt    `json:"overtime_national"`
	Bonus             flexInt    `json:"bonus"`
	VarCustom1Name    flexString `json:"variable_custom1_name"`
	VarCustom1Amt     flexInt    `json:"variable_custom1_amount"`
	VarCustom2Name    flexString `json:"variable_custom2_name"`
	VarCustom2Amt     flexInt    `json:"variable_custom2_amount"`
	VarCustom3Name    flexString `json:"variable_custom3_name"`
	VarCustom3Amt     flexInt    `json:"variable_custom3_amount"`
	SubtotalB         flexInt    `json:"subtotal_B"`
	LaborInsurance    flexInt    `json:"labor_insurance"`
	HealthInsurance   flexInt    `json:"health_insurance"`
	NationalInsurance flexInt    `json:"national_insurance"`
	AbsenceDeduction  flexInt    `json:"absence_deduction"`
	SickDeduction     flexInt    `json:"sick_deduction"`
	DedCustom1Name    flexString `json:"deduct_custom1_name"`
	DedCustom1Amt     flexInt    `json:"deduct_custom1_amount"`
	DedCustom2Name    flexString `json:"deduct_custom2_name"`
	DedCustom2Amt     flexInt    `json:"deduct_custom2_amount"`
	DedCustom3Name    flexString `json:"deduct_custom3_name"`
	DedCustom3Amt     flexInt    `json:"deduct_custom3_amount"`
	SubtotalC         flexInt    `json:"subtotal_C"`
}

// customList packs three wire pairs into the bounded list, trimming
// trailing unused slots but keeping interior positions so slot ids stay
// stable.
func customList(pairs [entity.MaxCustomItems]entity.CustomItem) []entity.CustomItem {
	last := -1
	for i, item := range pairs {
		if item.Name != "" {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	out := make([]entity.CustomItem, last+1)
	copy(out, pairs[:last+1])
	return out
}

func (w wirePayroll) toEntity() *entity.PayrollRecord {
	return &entity.PayrollRecord{
		ID:          string(w.ID),
		EmployeeID:  string(w.EmployeeID),
		Name:        string(w.Name),
		Email:       string(w.Email),
		BankName:    string(w.BankName),
		BankAccount: string(w.BankAccount),
		PayDate:     string(w.PayDate),

		BaseSalary:    int64(w.BaseSalary),
		MealAllowance: int64(w.MealAllowance),
		FixedCustom: customList([entity.MaxCustomItems]entity.CustomItem{
			{Name: string(w.FixedCustom1Name), Amount: int64(w.FixedCustom1Amt)},
			{Name: string(w.FixedCustom2Name), Amount: int64(w.FixedCustom2Amt)},
			{Name: string(w.FixedCustom3Name), Amount: int64(w.FixedCustom3Amt)},
		}),
		SubtotalA: int64(w.SubtotalA),

		OvertimeWeekday:  int64(w.OvertimeWeekday),
		OvertimeHoliday:  int64(w.OvertimeHoliday),
		OvertimeRestday:  int64(w.OvertimeRestday),
		OvertimeNational: int64(w.OvertimeNational),
		Bonus:            int64(w.Bonus),
		VariableCustom: customList([entity.MaxCustomItems]entity.CustomItem{
			{Name: string(w.VarCustom1Name), Amount: int64(w.VarCustom1Amt)},
			{Name: string(w.VarCustom2Name), Amount: int64(w.VarCustom2Amt)},
			{Name: string(w.VarCustom3Name), Amount: int64(w.VarCustom3Amt)},
		}),
		SubtotalB: int64(w.SubtotalB),

		LaborInsurance:    int64(w.LaborInsurance),
		HealthInsurance:   int64(w.HealthInsurance),
		NationalInsurance: int64(w.NationalInsurance),
		AbsenceDeduction:  int64(w.AbsenceDeduction),
		SickDeduction:     int64(w.SickDeduction),
		DeductCustom: customList([entity.MaxCustomItems]entity.CustomItem{
			{Name: string(w.DedCustom1Name), Amount: int64(w.DedCustom1Amt)},
			{Name: string(w.DedCustom2Name), Amount: int64(w.DedCustom2Amt)},
			{Name: string(w.DedCustom3Name), Amount: int64(w.DedCustom3Amt)},
		}),
		SubtotalC: int64(w.SubtotalC),
	}
}

type wireLeave struct {
	ID                 flexString `json:"id"`
	LeaveStart         flexInt    `json:"leave_start"`
	LeaveEnd           flexInt    `json:"leave_end"`
	CarryoverDays      flexFloat  `json:"carryover_days"`
	GrantedDays        flexFloat  `json:"granted_days"`
	UsedDays           flexFloat  `json:"used_days"`
	RemainingDays      flexFloat  `json:"remaining_days"`
	ThisMonthLeaveDays flexString `json:"thismonth_leave_days"`
	CompExpiry         flexInt    `json:"comp_expiry"`
	CarryoverHours     flexFloat  `json:"carryover_hours"`
	GrantedHours       flexFloat  `json:"granted_hours"`
	UsedHours          flexFloat  `json:"used_hours"`
	CashoutHours       flexFloat  `json:"cashout_hours"`
	RemainingHours     flexFloat  `json:"remaining_hours"`
}

func (w wireLeave) toEntity() *entity.LeaveRecord {
	return &entity.LeaveRecord{
		ID:                 string(w.ID),
		LeaveStart:         int(w.LeaveStart),
		LeaveEnd:           int(w.LeaveEnd),
		CarryoverDays:      float64(w.CarryoverDays),
		GrantedDays:        float64(w.GrantedDays),
		UsedDays:           float64(w.UsedDays),
		RemainingDays:      float64(w.RemainingDays),
		ThisMonthLeaveDays: string(w.ThisMonthLeaveDays),
		CompExpiry:         int(w.CompExpiry),
		CarryoverHours:     float64(w.CarryoverHours),
		GrantedHours:       float64(w.GrantedHours),
		UsedHours:          float64(w.UsedHours),
		CashoutHours:       float64(w.CashoutHours),
		RemainingHours:     float64(w.RemainingHours),
	}
}

// Mutations go out form-encoded with every field flattened to a string
// pair, matching what the Apps Script expects.

func employeeForm(e entity.Employee) url.Values {
	v := url.Values{}
	if e.ID != 0 {
		v.Set("id", strconv.FormatInt(e.ID, 10))
	}
	v.Set("employee_id", e.EmployeeID)
	v.Set("name", e.Name)
	v.Set("user_email", e.Email)
	v.Set("bank_name", e.BankName)
	v.Set("bank_account", e.BankAccount)
	return v
}

func setCustomPairs(v url.Values, g entity.Group, items []entity.CustomItem) {
	for i := 0; i < entity.MaxCustomItems; i++ {
		var item entity.CustomItem
		if i < len(items) {
			item = items[i]
		}
		prefix := fmt.Sprintf("%s_custom%d", g, i+1)
		v.Set(prefix+"_name", item.Name)
		amount := ""
		if item.Name != "" {
			amount = strconv.FormatInt(item.Amount, 10)
		}
		v.Set(prefix+"_amount", amount)
	}
}

// payrollForm flattens a record for create/update. Subtotals are the
// upstream's to compute and are not submitted.
func payrollForm(r *entity.PayrollRecord) url.Values {
	v := url.Values{}
	v.Set("id", r.ID)
	v.Set("employee_id", r.EmployeeID)
	v.Set("user_email", r.Email)
	v.Set("name", r.Name)
	v.Set("bank_name", r.BankName)
	v.Set("bank_account", r.BankAccount)
	v.Set("pay_date", r.PayDate)

	v.Set("base_salary", strconv.FormatInt(r.BaseSalary, 10))
	v.Set("meal_allowance", strconv.FormatInt(r.MealAllowance, 10))
	setCustomPairs(v, entity.GroupFixed, r.FixedCustom)

	v.Set("overtime_weekday", strconv.FormatInt(r.OvertimeWeekday, 10))
	v.Set("overtime_holiday", strconv.FormatInt(r.OvertimeHoliday, 10))
	v.Set("overtime_restday", strconv.FormatInt(r.OvertimeRestday, 10))
	v.Set("overtime_national", strconv.FormatInt(r.OvertimeNational, 10))
	v.Set("bonus", strconv.FormatInt(r.Bonus, 10))
	setCustomPairs(v, entity.GroupVariable, r.VariableCustom)

	v.Set("labor_insurance", strconv.FormatInt(r.LaborInsurance, 10))
	v.Set("health_insurance", strconv.FormatInt(r.HealthInsurance, 10))
	v.Set("national_insurance", strconv.FormatInt(r.NationalInsurance, 10))
	v.Set("absence_deduction", strconv.FormatInt(r.AbsenceDeduction, 10))
	v.Set("sick_deduction", strconv.FormatInt(r.SickDeduction, 10))
	setCustomPairs(v, entity.GroupDeduction, r.DeductCustom)
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// leaveForm flattens a leave record. The remaining balances are derived
// from their inputs here, overriding whatever the caller put in the
// struct; this is the single choke point that keeps them non-editable.
func leaveForm(r *entity.LeaveRecord) url.Values {
	v := url.Values{}
	v.Set("id", r.ID)
	v.Set("leave_start", strconv.Itoa(r.LeaveStart))
	v.Set("leave_end", strconv.Itoa(r.LeaveEnd))
	v.Set("carryover_days", formatFloat(r.CarryoverDays))
	v.Set("granted_days", formatFloat(r.GrantedDays))
	v.Set("used_days", formatFloat(r.UsedDays))
	v.Set("remaining_days", formatFloat(projection.RemainingDays(r.CarryoverDays, r.GrantedDays, r.UsedDays)))
	v.Set("thismonth_leave_days", r.ThisMonthLeaveDays)
	v.Set("comp_expiry", strconv.Itoa(r.CompExpiry))
	v.Set("carryover_hours", formatFloat(r.CarryoverHours))
	v.Set("granted_hours", formatFloat(r.GrantedHours))
	v.Set("used_hours", formatFloat(r.UsedHours))
	v.Set("cashout_hours", formatFloat(r.CashoutHours))
	v.Set("remaining_hours", formatFloat(projection.RemainingHours(r.CarryoverHours, r.GrantedHours, r.UsedHours, r.CashoutHours)))
	return v
}
