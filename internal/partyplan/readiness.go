package partyplan

// pointsPerCheck is the weight of each readiness check.
const pointsPerCheck = 20

// scoreReadiness evaluates the six readiness checks against the plan and the
// money received so far.
func scoreReadiness(plan Plan, totalPaid float64) (int, Breakdown) {
	var b Breakdown

	b.VendorConfirmed = plan.DJVendorID != "" || plan.DecorVendorID != "" ||
		plan.CateringVendorID != "" || len(plan.CustomVendors) > 0

	b.StaffScheduled = len(plan.StaffAssignments) > 0

	// Checklist counts as complete once half the timeline is done.
	if len(plan.TimelineTasks) > 0 {
		done := 0
		for _, t := range plan.TimelineTasks {
			if t.Status == TaskDone {
				done++
			}
		}
		b.ChecklistComplete = float64(done) >= float64(len(plan.TimelineTasks))*0.5
	}

	b.DepositReceived = totalPaid > 0
	b.InventoryConfirmed = len(plan.Inventory) > 0
	b.RunsheetGenerated = len(plan.TimelineTasks) >= 3

	score := 0
	for _, ok := range []bool{b.VendorConfirmed, b.StaffScheduled, b.ChecklistComplete,
		b.DepositReceived, b.InventoryConfirmed, b.RunsheetGenerated} {
		if ok {
			score += pointsPerCheck
		}
	}
	return score, b
}
