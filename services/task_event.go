package services

import "errors"

// Event kinds recognized by the notification fan-out.
const (
	EventProgressUpdated   = "progress_updated"
	EventNoteAdded         = "note_added"
	EventFileUploaded      = "file_uploaded"
	EventTaskAssigned      = "task_assigned"
	EventTaskStatusChanged = "task_status_changed"
	EventTaskUpdated       = "task_updated"
)

// KnownEventKind reports whether the fan-out has recipient rules for kind.
func KnownEventKind(kind string) bool {
	switch kind {
	case EventProgressUpdated, EventNoteAdded, EventFileUploaded,
		EventTaskAssigned, EventTaskStatusChanged, EventTaskUpdated:
		return true
	}
	return false
}

// TaskEvent carries one task mutation into the fan-out. The actor is passed
// explicitly; the fan-out never reads identity from request-scoped state.
type TaskEvent struct {
	Kind      string
	TaskID    string
	ActorID   string // may be empty for superadmin actors without an employee row
	ActorRole string // employee|admin|superadmin
	ActorName string
	Message   string // caller-supplied base text, may be empty

	NotePreview *string // note_added only
	OldProgress *int    // progress_updated only
	NewProgress *int    // progress_updated only

	AttachedTo         *string
	AttachedToMultiple []string
	AssignedBy         *string
}

// Attachees returns the explicit attachee set, empty ids dropped.
func (e *TaskEvent) Attachees() []string {
	out := make([]string, 0, 1+len(e.AttachedToMultiple))
	if e.AttachedTo != nil && *e.AttachedTo != "" {
		out = append(out, *e.AttachedTo)
	}
	for _, id := range e.AttachedToMultiple {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// SpeciallyAttached reports whether the event names any explicit attachee.
func (e *TaskEvent) SpeciallyAttached() bool {
	return len(e.Attachees()) > 0
}

// ErrTaskNotFound is the only fan-out failure surfaced to callers.
var ErrTaskNotFound = errors.New("task not found")

// RecipientError records a per-recipient write failure. The fan-out keeps
// going; callers get the full list back.
type RecipientError struct {
	Recipient string
	Err       error
}

func (e RecipientError) Error() string {
	return "notify " + e.Recipient + ": " + e.Err.Error()
}

func (e RecipientError) Unwrap() error { return e.Err }

// FanoutResult summarizes one fan-out invocation.
type FanoutResult struct {
	Written int
	Skipped int
	Errors  []RecipientError
}
