package client

// NotificationLevel classifies a user-facing notification.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelSuccess
	LevelError
)

// Notification is a transient, toast-style message for the UI layer.
type Notification struct {
	Level   NotificationLevel
	Message string
}

// Notifier fans notifications out to the UI over a buffered channel.
// Publishing never blocks; when the buffer is full the oldest entry is
// dropped, since a stale toast has no value.
type Notifier struct {
	events chan Notification
}

// NewNotifier creates a notifier with a small buffer.
func NewNotifier() *Notifier {
	return &Notifier{events: make(chan Notification, 16)}
}

// Events is the channel the UI layer consumes.
func (n *Notifier) Events() <-chan Notification {
	return n.events
}

// Info publishes an informational message.
func (n *Notifier) Info(message string) { n.publish(Notification{LevelInfo, message}) }

// Success publishes a success message.
func (n *Notifier) Success(message string) { n.publish(Notification{LevelSuccess, message}) }

// Error publishes an error message.
func (n *Notifier) Error(message string) { n.publish(Notification{LevelError, message}) }

func (n *Notifier) publish(event Notification) {
	for {
		select {
		case n.events <- event:
			return
		default:
			select {
			case <-n.events:
			default:
			}
		}
	}
}
