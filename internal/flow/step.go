package flow

import "fmt"

// Step is one screen of the booking wizard.
type Step string

const (
	StepLoading       Step = "loading"
	StepBarber        Step = "barber"
	StepBarberDetail  Step = "barber-detail"
	StepAppointments  Step = "appointments-view"
	StepQueueJoin     Step = "queue-join"
	StepQueuePosition Step = "queue-position"
	StepService       Step = "service"
	StepDate          Step = "date"
	StepTime          Step = "time"
	StepConfirmation  Step = "confirmation"
	StepSuccess       Step = "success"
)

// Steps lists every step in display order.
func Steps() []Step {
	return []Step{
		StepLoading, StepBarber, StepBarberDetail, StepAppointments,
		StepQueueJoin, StepQueuePosition, StepService, StepDate,
		StepTime, StepConfirmation, StepSuccess,
	}
}

func (s Step) Valid() bool {
	_, ok := ordinals[s]
	return ok
}

// Event is what moves the wizard forward.
type Event string

const (
	EventTokenResolved      Event = "token-resolved"
	EventBarberPreselected  Event = "barber-preselected"
	EventBarberChosen       Event = "barber-chosen"
	EventBookChosen         Event = "book-chosen"
	EventAppointmentsChosen Event = "appointments-chosen"
	EventQueueChosen        Event = "queue-chosen"
	EventQueueJoined        Event = "queue-joined"
	EventQueueLeft          Event = "queue-left"
	EventServiceChosen      Event = "service-chosen"
	EventDateChosen         Event = "date-chosen"
	EventSlotChosen         Event = "slot-chosen"
	EventBookingSucceeded   Event = "booking-succeeded"
)

var transitions = map[Step]map[Event]Step{
	StepLoading: {
		EventTokenResolved:     StepBarber,
		EventBarberPreselected: StepBarberDetail,
	},
	StepBarber: {
		EventBarberChosen: StepBarberDetail,
	},
	StepBarberDetail: {
		EventBookChosen:         StepService,
		EventAppointmentsChosen: StepAppointments,
		EventQueueChosen:        StepQueueJoin,
	},
	StepAppointments: {
		EventBookChosen: StepService,
	},
	StepQueueJoin: {
		EventQueueJoined: StepQueuePosition,
	},
	StepQueuePosition: {
		EventQueueLeft: StepBarberDetail,
	},
	StepService: {
		EventServiceChosen: StepDate,
	},
	StepDate: {
		EventDateChosen: StepTime,
	},
	StepTime: {
		EventSlotChosen: StepConfirmation,
	},
	StepConfirmation: {
		EventBookingSucceeded: StepSuccess,
	},
}

// Queue position and success have no way back: the first must be left
// explicitly and the second is terminal.
var backTargets = map[Step]Step{
	StepBarberDetail: StepBarber,
	StepAppointments: StepBarberDetail,
	StepQueueJoin:    StepBarberDetail,
	StepService:      StepBarber,
	StepDate:         StepService,
	StepTime:         StepDate,
	StepConfirmation: StepTime,
}

// Transition returns the step reached from `from` on ev.
func Transition(from Step, ev Event) (Step, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, ev)
}

// Back returns the previous step of from.
func Back(from Step) (Step, error) {
	if to, ok := backTargets[from]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: no way back from %s", ErrInvalidTransition, from)
}

// ordinals drive the progress indicator. Every barber-stage screen counts as
// the first stage.
var ordinals = map[Step]int{
	StepLoading:       -1,
	StepBarber:        0,
	StepBarberDetail:  0,
	StepAppointments:  0,
	StepQueueJoin:     0,
	StepQueuePosition: 0,
	StepService:       1,
	StepDate:          2,
	StepTime:          3,
	StepConfirmation:  4,
	StepSuccess:       5,
}

// Ordinal is the progress stage of s, or -1 when it has none.
func Ordinal(s Step) int {
	if o, ok := ordinals[s]; ok {
		return o
	}
	return -1
}
