package services

import (
	"fmt"
	"time"

	"erp-task-api/models"
)

const (
	messageDescriptionLimit = 50
	metaDescriptionLimit    = 100
)

// truncate cuts on rune boundaries so multi-byte text stays valid UTF-8.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FormatMessage builds the persisted message string and meta payload for
// one event against the task description read by the fan-out. now must be
// UTC; it becomes the meta timestamp.
func FormatMessage(event *TaskEvent, taskDescription string, now time.Time) (string, models.NotificationMeta) {
	shortDesc := truncate(taskDescription, messageDescriptionLimit)

	var message string
	switch event.Kind {
	case EventProgressUpdated:
		switch {
		case event.OldProgress != nil && event.NewProgress != nil:
			message = fmt.Sprintf("📊 Progress updated from %d%% to %d%% on task: %s...",
				*event.OldProgress, *event.NewProgress, shortDesc)
		case event.NewProgress != nil:
			message = fmt.Sprintf("📊 Progress updated to %d%% on task: %s...",
				*event.NewProgress, shortDesc)
		default:
			message = "📊 Progress updated"
		}
	case EventNoteAdded:
		message = fmt.Sprintf("📝 Note added to task: %s...", shortDesc)
	case EventFileUploaded:
		message = "📎 " + event.Message
	case EventTaskStatusChanged:
		message = "🔄 " + event.Message
	case EventTaskAssigned:
		message = "📋 " + event.Message
	case EventTaskUpdated:
		message = "✏️ " + event.Message
	default:
		message = event.Message
	}

	var notePreview *string
	if event.Kind == EventNoteAdded {
		notePreview = event.NotePreview
	}

	meta := models.NotificationMeta{
		TaskID:                   event.TaskID,
		TaskDescription:          truncate(taskDescription, metaDescriptionLimit),
		Type:                     event.Kind,
		AssignedBy:               event.AssignedBy,
		AddedBy:                  event.ActorName,
		UserRole:                 event.ActorRole,
		NotePreview:              notePreview,
		SpeciallyAttached:        event.SpeciallyAttached(),
		AttachedTo:               event.AttachedTo,
		AttachedToMultiple:       event.AttachedToMultiple,
		Timestamp:                now.UTC().Format(time.RFC3339),
		IsNoteNotification:       event.Kind == EventNoteAdded,
		IsAttachmentNotification: event.Kind == EventFileUploaded,
	}

	return message, meta
}
