package board

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient, user-facing message.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
