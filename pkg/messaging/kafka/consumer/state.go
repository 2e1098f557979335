package consumer

// State is the connection state of a Loop.
//
//	Disconnected -> Connecting -> Subscribed -> Consuming
//	Consuming -> Connecting (broker loss)
//	any -> Stopped
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateConsuming
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateConsuming:
		return "consuming"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
