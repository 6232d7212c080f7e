package bq28z610

import "time"

// EventKind classifies protocol events.
type EventKind uint8

const (
	EventCommand     EventKind = iota + 1 // word or bare register write
	EventWrite                            // register write with payload
	EventFrame                            // validated block frame
	EventFrameReject                      // block frame failed validation
	EventSettle                           // settle delay about to start
	EventBusError                         // bus primitive failed
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventWrite:
		return "write"
	case EventFrame:
		return "frame"
	case EventFrameReject:
		return "frame_reject"
	case EventSettle:
		return "settle"
	case EventBusError:
		return "bus_error"
	default:
		return "unknown"
	}
}

// Event describes one step of an exchange. Data aliases driver buffers and is
// only valid for the duration of Observe.
type Event struct {
	Kind  EventKind
	Reg   byte
	Sub   uint16
	Data  []byte
	Delay time.Duration
	Err   error
}

// Observer receives protocol events. Implementations must not call back into
// the Device.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

func (d *Device) emit(e Event) {
	if d.obs != nil {
		d.obs.Observe(e)
	}
}
