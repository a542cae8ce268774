package common

// Status is the lifecycle state of a task. It is stored as int32 so tasks
// can read and write it atomically.
type Status int32

const (
	StatusWaiting Status = iota
	StatusDownloading
	StatusPaused
	StatusStopped
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusDownloading:
		return "downloading"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
