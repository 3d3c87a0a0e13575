package stack

import "fmt"

// EventKind discriminates stack events. The numeric values follow the
// radio stack's own enumeration and must not be reordered.
type EventKind uint16

const (
	// EventCentralConnect reports a new connection; Conn carries the
	// connection identifier.
	EventCentralConnect EventKind = 1

	// EventCentralDisconnect reports a closed connection; Conn carries the
	// connection identifier. Duplicate disconnects are possible.
	EventCentralDisconnect EventKind = 2

	// EventIndicateDone reports that a previously sent indication was
	// acknowledged or timed out; Handle and Status are set.
	EventIndicateDone EventKind = 20
)

// IndicateStatusOK is the Status value of a successfully acknowledged
// indication.
const IndicateStatusOK uint8 = 0

// Event is the tagged variant delivered to the registered EventHandler.
// Fields beyond Kind are populated per kind; unused fields are zero.
type Event struct {
	Kind   EventKind
	Conn   ConnID
	Handle ValueHandle
	Status uint8
}

func (k EventKind) String() string {
	switch k {
	case EventCentralConnect:
		return "central_connect"
	case EventCentralDisconnect:
		return "central_disconnect"
	case EventIndicateDone:
		return "indicate_done"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(k))
	}
}

func (e Event) String() string {
	switch e.Kind {
	case EventIndicateDone:
		return fmt.Sprintf("%s conn=%s handle=%d status=%d", e.Kind, e.Conn, e.Handle, e.Status)
	default:
		return fmt.Sprintf("%s conn=%s", e.Kind, e.Conn)
	}
}
