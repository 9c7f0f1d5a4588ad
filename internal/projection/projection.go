// Package projection derives the "this month preview" for a payroll group
// from last month's actual values and this month's user-entered
// adjustments. It is pure arithmetic over client-held state: no I/O, no
// failure modes.
package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/kylewu/payroll-console/internal/domain/entity"
)

// Row is one labeled quantity in a payroll group. Predefined rows carry an
// immutable label from the slot; custom rows carry a user-editable label
// and count as unused while the label is empty. Value stays a raw string
// as entered; Amount coerces it when summing.
type Row struct {
	Slot   entity.Slot `json:"slot"`
	Label  string      `json:"label"`
	Value  string      `json:"value"`
	Custom bool        `json:"custom"`
}

// Amount coerces a raw row value to a whole amount. Empty or non-numeric
// input reads as zero; nothing here ever fails or yields NaN.
func Amount(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f))
}

// LastMonthRows builds the actuals for a group: every predefined slot,
// value as stored (possibly zero), plus each custom item whose name was
// non-empty last month.
func LastMonthRows(r *entity.PayrollRecord, g entity.Group) []Row {
	if r == nil {
		return nil
	}
	rows := make([]Row, 0, len(entity.PredefinedSlots(g))+entity.MaxCustomItems)
	for _, slot := range entity.PredefinedSlots(g) {
		rows = append(rows, Row{
			Slot:  slot,
			Label: slot.Label(),
			Value: strconv.FormatInt(r.Amount(slot), 10),
		})
	}
	for i, item := range r.CustomItems(g) {
		if i >= entity.MaxCustomItems {
			break
		}
		if item.Name == "" {
			continue
		}
		rows = append(rows, Row{
			Slot:   entity.CustomSlot(g, i+1),
			Label:  item.Name,
			Value:  strconv.FormatInt(item.Amount, 10),
			Custom: true,
		})
	}
	return rows
}

// AdjustmentRows seeds the editable adjustment set for a group: one blank
// row per predefined slot and three blank custom placeholders.
func AdjustmentRows(g entity.Group) []Row {
	rows := make([]Row, 0, len(entity.PredefinedSlots(g))+entity.MaxCustomItems)
	for _, slot := range entity.PredefinedSlots(g) {
		rows = append(rows, Row{Slot: slot, Label: slot.Label()})
	}
	for i := 1; i <= entity.MaxCustomItems; i++ {
		rows = append(rows, Row{Slot: entity.CustomSlot(g, i), Custom: true})
	}
	return rows
}

// Preview merges last month's actuals with this month's adjustments.
// Predefined rows add the adjustment to last month's value (a missing
// last-month row reads as zero); custom rows are point-in-time entries
// taken as typed. Rows with an empty label are unused slots and never
// appear in the result.
func Preview(lastMonth, adjustments []Row) []Row {
	byslot := make(map[entity.Slot]Row, len(lastMonth))
	for _, row := range lastMonth {
		if !row.Custom {
			byslot[row.Slot] = row
		}
	}
	result := make([]Row, 0, len(adjustments))
	for _, row := range adjustments {
		if row.Label == "" {
			continue
		}
		if row.Custom {
			result = append(result, row)
			continue
		}
		var last int64
		if lm, ok := byslot[row.Slot]; ok {
			last = Amount(lm.Value)
		}
		result = append(result, Row{
			Slot:  row.Slot,
			Label: row.Label,
			Value: strconv.FormatInt(last+Amount(row.Value), 10),
		})
	}
	return result
}

// Subtotal sums a group's row values with Amount coercion.
func Subtotal(rows []Row) int64 {
	var sum int64
	for _, row := range rows {
		sum += Amount(row.Value)
	}
	return sum
}

// Total combines the three group subtotals into the disbursed amount:
// fixed plus variable minus deductions.
func Total(fixed, variable, deduction int64) int64 {
	return fixed + variable - deduction
}
