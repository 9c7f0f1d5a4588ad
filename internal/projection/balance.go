package projection

// Leave balances are derived, never directly editable: any edit path must
// recompute them from their inputs.

// RemainingDays is the special-leave day balance:
// carryover + granted - used.
func RemainingDays(carryover, granted, used float64) float64 {
	return carryover + granted - used
}

// RemainingHours is the comp-time hour balance:
// carryover + granted - used - cashed out.
func RemainingHours(carryover, granted, used, cashout float64) float64 {
	return carryover + granted - used - cashout
}
