package order

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Event string

const (
	EventProcess        Event = "process"
	EventShip           Event = "ship"
	EventDeliver        Event = "deliver"
	EventCancel         Event = "cancel"
	EventRequestReturn  Event = "request_return"
	EventCompleteReturn Event = "complete_return"
	EventRejectReturn   Event = "reject_return"
)

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 30 * 24 * time.Hour

// transitions is the only place order lifecycle rules are defined.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventProcess: StatusProcessing,
		EventCancel:  StatusCancelled,
	},
	StatusProcessing: {
		EventShip:   StatusShipped,
		EventCancel: StatusCancelled,
	},
	StatusShipped: {
		EventDeliver: StatusDelivered,
	},
	StatusDelivered: {
		EventRequestReturn: StatusReturnRequested,
	},
	StatusReturnRequested: {
		EventCompleteReturn: StatusReturned,
		EventRejectReturn:   StatusDelivered,
	},
}

// eventOrder fixes the order AllowedEvents reports events in.
var eventOrder = []Event{
	EventProcess, EventShip, EventDeliver, EventCancel,
	EventRequestReturn, EventCompleteReturn, EventRejectReturn,
}

var statusLabelTR = map[Status]string{
	StatusPending:         "beklemede",
	StatusProcessing:      "hazırlanıyor",
	StatusShipped:         "kargoya verildi",
	StatusDelivered:       "teslim edildi",
	StatusCancelled:       "iptal edildi",
	StatusReturnRequested: "iade talep edildi",
	StatusReturned:        "iade edildi",
}

// TransitionError is returned when an event is not allowed for the order's
// current status. It always maps to HTTP 400.
type TransitionError struct {
	Status    int    `json:"-"`
	From      Status `json:"from"`
	Event     Event  `json:"event"`
	Message   string `json:"message"`
	MessageTR string `json:"messageTr"`
}

func (e *TransitionError) Error() string { return e.Message }

func ParseEvent(raw string) (Event, bool) {
	for _, ev := range eventOrder {
		if string(ev) == raw {
			return ev, true
		}
	}
	return "", false
}

// CanTransition reports whether ev is defined for from, ignoring guards.
func CanTransition(from Status, ev Event) bool {
	_, ok := transitions[from][ev]
	return ok
}

// AllowedEvents lists the events defined for from.
func AllowedEvents(from Status) []Event {
	out := make([]Event, 0, 2)
	for _, ev := range eventOrder {
		if CanTransition(from, ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Next returns the status o moves to on ev at time now, applying guards.
func Next(o Order, ev Event, now time.Time) (Status, error) {
	next, ok := transitions[o.Status][ev]
	if !ok {
		return "", rejected(o.Status, ev)
	}
	if ev == EventRequestReturn {
		if o.DeliveredAt == nil || now.Sub(*o.DeliveredAt) > ReturnWindow {
			return "", &TransitionError{
				Status:    fiber.StatusBadRequest,
				From:      o.Status,
				Event:     ev,
				Message:   "The 30 day return window for this order has expired",
				MessageTR: "Bu sipariş için 30 günlük iade süresi dolmuştur",
			}
		}
	}
	return next, nil
}

func rejected(from Status, ev Event) *TransitionError {
	err := &TransitionError{Status: fiber.StatusBadRequest, From: from, Event: ev}
	switch {
	case ev == EventCancel && from == StatusCancelled:
		err.Message = "Order is already cancelled"
		err.MessageTR = "Sipariş zaten iptal edilmiş"
	case ev == EventCancel:
		err.Message = "Order can no longer be cancelled because it has been " + string(from)
		err.MessageTR = "Sipariş " + statusLabelTR[from] + " olduğu için artık iptal edilemez"
	case ev == EventRequestReturn:
		err.Message = "Only delivered orders can be returned"
		err.MessageTR = "Yalnızca teslim edilmiş siparişler iade edilebilir"
	default:
		err.Message = fmt.Sprintf("Cannot %s an order that is %s", ev, from)
		err.MessageTR = fmt.Sprintf("Durumu %s olan siparişe bu işlem uygulanamaz", statusLabelTR[from])
	}
	return err
}
