package partyplan

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/utsav-erp/utsav-erp/internal/booking"
)

type timelineSeed struct {
	offset    float64
	title     string
	owner     string
	ownerType string
}

// DefaultTimeline builds a run-of-show for the event type, anchored on the
// slot's working start hour. Offsets are hours relative to guest arrival.
func DefaultTimeline(eventType string, slot booking.SlotType, guestCount int) []TimelineTask {
	baseHour := 10.0
	if slot == booking.SlotNight {
		baseHour = 18.0
	}

	seeds := []timelineSeed{
		{-2, "Venue Setup Start", "Staff", "staff"},
		{-1, "Vendor Arrival Check", "Supervisor", "staff"},
		{-0.5, "Sound & Light Check", "DJ/Sound", "vendor"},
		{0, "Guest Arrival Begins", "Reception", "staff"},
	}

	switch eventType {
	case "wedding", "engagement":
		seeds = append(seeds,
			timelineSeed{0.5, "Welcome Ceremony", "Host", "other"},
			timelineSeed{1, "Ring Ceremony / Rituals", "Pandit/Host", "other"},
			timelineSeed{2, "Photo Session", "Photography", "vendor"},
			timelineSeed{3, "Dinner Service Start", "Catering", "vendor"},
			timelineSeed{4, "Dance/DJ Session", "DJ", "vendor"},
			timelineSeed{5, "Guest Departure", "Staff", "staff"},
			timelineSeed{5.5, "Cleanup & Close", "Staff", "staff"},
		)
	case "corporate":
		seeds = append(seeds,
			timelineSeed{0.5, "Registration Desk", "Reception", "staff"},
			timelineSeed{1, "Presentation/Session 1", "Client", "other"},
			timelineSeed{2, "Tea/Coffee Break", "Catering", "vendor"},
			timelineSeed{2.5, "Session 2 / Discussion", "Client", "other"},
			timelineSeed{3.5, "Lunch/Dinner Service", "Catering", "vendor"},
			timelineSeed{4.5, "Closing & Networking", "Client", "other"},
			timelineSeed{5, "Cleanup", "Staff", "staff"},
		)
	case "birthday":
		seeds = append(seeds,
			timelineSeed{0.5, "Welcome Activities", "Host", "other"},
			timelineSeed{1.5, "Games/Entertainment", "Entertainment", "vendor"},
			timelineSeed{2.5, "Cake Cutting", "Host", "other"},
			timelineSeed{3, "Dinner/Snacks Service", "Catering", "vendor"},
			timelineSeed{4, "Dance/Music", "DJ", "vendor"},
			timelineSeed{4.5, "Return Gifts", "Host", "other"},
			timelineSeed{5, "Cleanup", "Staff", "staff"},
		)
	default:
		seeds = append(seeds,
			timelineSeed{1, "Welcome/Greeting", "Host", "other"},
			timelineSeed{2, "Main Event", "Host", "other"},
			timelineSeed{3, "Dinner Service", "Catering", "vendor"},
			timelineSeed{4, "Entertainment", "DJ", "vendor"},
			timelineSeed{5, "Departure & Cleanup", "Staff", "staff"},
		)
	}

	tasks := make([]TimelineTask, 0, len(seeds))
	for _, seed := range seeds {
		hour := baseHour + seed.offset
		if hour >= 24 {
			hour -= 24
		}
		minute := int(math.Round((seed.offset - math.Floor(seed.offset)) * 60))
		tasks = append(tasks, TimelineTask{
			ID:        uuid.NewString(),
			Time:      fmt.Sprintf("%02d:%02d", int(hour), minute),
			Title:     seed.title,
			Owner:     seed.owner,
			OwnerType: seed.ownerType,
			Status:    TaskPending,
		})
	}
	return tasks
}

// SuggestStaff sizes the crew from the event type and expected guests.
func SuggestStaff(eventType string, guestCount int) []StaffAssignment {
	var suggestions []StaffAssignment

	waiterRatio := 20
	switch eventType {
	case "wedding", "reception", "engagement":
		waiterRatio = 25
	case "corporate":
		waiterRatio = 30
	}
	waiters := guestCount / waiterRatio
	if waiters < 2 {
		waiters = 2
	}
	suggestions = append(suggestions, StaffAssignment{
		Role: "waiter", Count: waiters, WageType: "fixed", Wage: 500,
		AssignedNames: []string{}, Attendance: "pending",
	})

	supervisors := 0
	switch {
	case guestCount > 300:
		supervisors = 2
	case guestCount > 150:
		supervisors = 1
	}
	if supervisors > 0 {
		suggestions = append(suggestions, StaffAssignment{
			Role: "supervisor", Count: supervisors, WageType: "fixed", Wage: 1000,
			AssignedNames: []string{}, Attendance: "pending",
		})
	}

	helpers := guestCount / 100
	if helpers < 1 {
		helpers = 1
	}
	suggestions = append(suggestions, StaffAssignment{
		Role: "helper", Count: helpers, WageType: "fixed", Wage: 400,
		AssignedNames: []string{}, Attendance: "pending",
	})

	if guestCount > 200 {
		suggestions = append(suggestions, StaffAssignment{
			Role: "chef", Count: 1, WageType: "fixed", Wage: 1500,
			AssignedNames: []string{}, Attendance: "pending",
		})
	}
	return suggestions
}
