package ui

import "github.com/bamsammich/twins/internal/event"

// Event is re-exported for convenience.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted     = event.ScanStarted
	ScanComplete    = event.ScanComplete
	FileSkipped     = event.FileSkipped
	GroupStarted    = event.GroupStarted
	DuplicateFound  = event.DuplicateFound
	CompareComplete = event.CompareComplete
	DeleteFile      = event.DeleteFile
	DeleteFailed    = event.DeleteFailed
)
