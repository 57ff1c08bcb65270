package nav

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
	// NoticeSessionExpired asks the user to log in again.
	NoticeSessionExpired
)

// SessionExpiredText is the message shown when the backend rejects the
// session token.
const SessionExpiredText = "Your session has expired. Please log in again."

// Notice is a message for the user.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Navigator receives navigation requests and notices from code that has no
// direct handle on the UI.
type Navigator interface {
	Navigate(RouteName)
	Notify(Notice)
}

// Event is one item on the Bus. Exactly one of Route or Notice is set.
type Event struct {
	Route  *RouteName
	Notice *Notice
}

// Bus is a buffered Navigator. Senders never block; when the buffer is full
// the event is dropped.
type Bus struct {
	ch chan Event
}

// DefaultBusSize is used when NewBus is given a non-positive size.
const DefaultBusSize = 16

// NewBus creates a Bus with room for size pending events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultBusSize
	}
	return &Bus{ch: make(chan Event, size)}
}

// Navigate implements Navigator.
func (b *Bus) Navigate(name RouteName) {
	b.send(Event{Route: &name})
}

// Notify implements Navigator.
func (b *Bus) Notify(n Notice) {
	b.send(Event{Notice: &n})
}

// Events is the receive side, drained by the UI.
func (b *Bus) Events() <-chan Event { return b.ch }

func (b *Bus) send(ev Event) {
	select {
	case b.ch <- ev:
	default:
	}
}

// Discard is a Navigator that drops everything.
var Discard Navigator = discard{}

type discard struct{}

func (discard) Navigate(RouteName) {}
func (discard) Notify(Notice)      {}
