package entity

import "fmt"

// MaxCustomItems bounds the optional named line items per payroll group.
const MaxCustomItems = 3

// Group identifies one of the three payroll line-item groups.
type Group int

const (
	GroupFixed Group = iota
	GroupVariable
	GroupDeduction
)

func (g Group) String() string {
	switch g {
	case GroupFixed:
		return "fixed"
	case GroupVariable:
		return "variable"
	case GroupDeduction:
		return "deduct"
	default:
		return "unknown"
	}
}

// Slot is a stable line-item identifier. Predefined slots are enumerated
// below; custom slots get positional ids per group. Rows are matched by
// slot, never by display label, so renaming a custom item mid-edit cannot
// break the match to its own value.
type Slot string

const (
	SlotBaseSalary        Slot = "base_salary"
	SlotMealAllowance     Slot = "meal_allowance"
	SlotOvertimeWeekday   Slot = "overtime_weekday"
	SlotOvertimeHoliday   Slot = "overtime_holiday"
	SlotOvertimeRestday   Slot = "overtime_restday"
	SlotOvertimeNational  Slot = "overtime_national"
	SlotBonus             Slot = "bonus"
	SlotLaborInsurance    Slot = "labor_insurance"
	SlotHealthInsurance   Slot = "health_insurance"
	SlotNationalInsurance Slot = "national_insurance"
	SlotAbsenceDeduction  Slot = "absence_deduction"
	SlotSickDeduction     Slot = "sick_deduction"
)

// CustomSlot returns the id of the n-th (1-based) custom slot in a group,
// e.g. "fixed_custom1".
func CustomSlot(g Group, n int) Slot {
	return Slot(fmt.Sprintf("%s_custom%d", g, n))
}

// Display labels as they appear on the payslip (zh-TW, matching the sheet).
var slotLabels = map[Slot]string{
	SlotBaseSalary:        "底薪",
	SlotMealAllowance:     "伙食津貼",
	SlotOvertimeWeekday:   "平日加班費",
	SlotOvertimeHoliday:   "休假日加班費",
	SlotOvertimeRestday:   "休息日加班費",
	SlotOvertimeNational:  "國定假日加班費",
	SlotBonus:             "獎金",
	SlotLaborInsurance:    "勞保費",
	SlotHealthInsurance:   "健保費",
	SlotNationalInsurance: "國保",
	SlotAbsenceDeduction:  "事假扣款",
	SlotSickDeduction:     "病假扣款",
}

// Label returns the immutable display label of a predefined slot. Custom
// slots carry their label on the row instead.
func (s Slot) Label() string {
	return slotLabels[s]
}

var groupSlots = map[Group][]Slot{
	GroupFixed: {SlotBaseSalary, SlotMealAllowance},
	GroupVariable: {
		SlotOvertimeWeekday,
		SlotOvertimeHoliday,
		SlotOvertimeRestday,
		SlotOvertimeNational,
		SlotBonus,
	},
	GroupDeduction: {
		SlotLaborInsurance,
		SlotHealthInsurance,
		SlotNationalInsurance,
		SlotAbsenceDeduction,
		SlotSickDeduction,
	},
}

// PredefinedSlots lists a group's always-present slots in payslip order.
func PredefinedSlots(g Group) []Slot {
	return groupSlots[g]
}
