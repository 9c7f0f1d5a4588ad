package entity

// LeaveRecord tracks one employee-month's special-leave day balance and
// compensatory-time-off hour balance. It shares the composite id scheme
// with PayrollRecord.
//
// RemainingDays and RemainingHours are derived quantities; they are stored
// here because the upstream sheet persists them, but any edit path must
// recompute them from their inputs (see projection.RemainingDays and
// projection.RemainingHours), never accept a typed-in value.
type LeaveRecord struct {
	ID string `json:"id"`

	// Special leave, in days. The leave window is the period the grant
	// may be taken in, as 7-digit ROC wire dates.
	LeaveStart         int     `json:"leave_start"`
	LeaveEnd           int     `json:"leave_end"`
	CarryoverDays      float64 `json:"carryover_days"`
	GrantedDays        float64 `json:"granted_days"`
	UsedDays           float64 `json:"used_days"`
	RemainingDays      float64 `json:"remaining_days"`
	ThisMonthLeaveDays string  `json:"thismonth_leave_days"` // free text, e.g. "8/20,8/5"

	// Comp time, in hours. CompExpiry is the agreed use-by wire date.
	CompExpiry     int     `json:"comp_expiry"`
	CarryoverHours float64 `json:"carryover_hours"`
	GrantedHours   float64 `json:"granted_hours"`
	UsedHours      float64 `json:"used_hours"`
	CashoutHours   float64 `json:"cashout_hours"`
	RemainingHours float64 `json:"remaining_hours"`
}
