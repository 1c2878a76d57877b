package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	FileSkipped
	GroupStarted
	DuplicateFound
	CompareComplete
	DeleteFile
	DeleteFailed
)

var typeNames = [...]string{
	ScanStarted:     "ScanStarted",
	ScanComplete:    "ScanComplete",
	FileSkipped:     "FileSkipped",
	GroupStarted:    "GroupStarted",
	DuplicateFound:  "DuplicateFound",
	CompareComplete: "CompareComplete",
	DeleteFile:      "DeleteFile",
	DeleteFailed:    "DeleteFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine or reporter.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // canonical path of the file concerned
	Original  string // DuplicateFound: path the file duplicates
	Size      int64  // file size, or group file size for GroupStarted
	Total     int64  // ScanComplete: files scanned; GroupStarted: group members
	TotalSize int64  // ScanComplete: bytes scanned
	Error     error
}

// Emit sends e on ch without blocking, stamping the timestamp. A nil
// channel or a full buffer drops the event; progress is best-effort.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
