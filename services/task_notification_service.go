package services

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"erp-task-api/models"
)

// SuperadminFallbackID is the synthetic principal used when the admin
// roster is empty or unreadable.
const SuperadminFallbackID = "superadmin-default"

const defaultDedupWindow = 2 * time.Minute

// TaskNotificationService fans one task event out into per-recipient
// notification rows. It runs synchronously on the mutating request and
// absorbs every failure except a missing task.
type TaskNotificationService struct {
	db              *gorm.DB
	window          time.Duration
	superadminEmail string
	now             func() time.Time
}

func NewTaskNotificationService(db *gorm.DB) *TaskNotificationService {
	window := defaultDedupWindow
	if raw := os.Getenv("NOTIFY_DEDUP_WINDOW_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			window = time.Duration(secs) * time.Second
		}
	}
	return &TaskNotificationService{
		db:              db,
		window:          window,
		superadminEmail: os.Getenv("SUPERADMIN_EMAIL"),
		now:             time.Now,
	}
}

type taskLite struct {
	TaskDescription    string            `gorm:"column:task_description"`
	AssignedTo         *string           `gorm:"column:assigned_to"`
	AssignedToMultiple models.StringList `gorm:"column:assigned_to_multiple"`
}

func (taskLite) TableName() string { return "tasks" }

type rosterLite struct {
	ID    string `gorm:"column:id"`
	Email string `gorm:"column:email"`
	Name  string `gorm:"column:name"`
	Role  string `gorm:"column:role"`
}

func (rosterLite) TableName() string { return "employees" }

// Fanout resolves recipients for event and writes one notification per
// surviving recipient. Only a missing task aborts; dedup-probe and write
// failures are logged and counted but never stop the remaining recipients.
func (s *TaskNotificationService) Fanout(ctx context.Context, event *TaskEvent) (*FanoutResult, error) {
	result := &FanoutResult{}

	if !KnownEventKind(event.Kind) {
		log.Printf("⚠️ Unknown notification event kind %q for task %s, skipping fan-out", event.Kind, event.TaskID)
		return result, nil
	}

	var task taskLite
	if err := s.db.WithContext(ctx).
		Select("task_description, assigned_to, assigned_to_multiple").
		First(&task, "id = ?", event.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	assignees := make([]string, 0, 1+len(task.AssignedToMultiple))
	if task.AssignedTo != nil && *task.AssignedTo != "" {
		assignees = append(assignees, *task.AssignedTo)
	}
	for _, id := range task.AssignedToMultiple {
		if id != "" {
			assignees = append(assignees, id)
		}
	}

	admins := s.adminRoster(ctx)

	recipients := ResolveRecipients(event.Kind, event.ActorRole, event.ActorID, assignees, event.Attachees(), admins)
	if len(recipients) == 0 {
		return result, nil
	}

	now := s.now().UTC()
	message, meta := FormatMessage(event, task.TaskDescription, now)

	for _, recipient := range recipients {
		if s.isDuplicate(ctx, event, recipient, now) {
			log.Printf("⏭️ Skipping duplicate notification for task %s, type %s, recipient %s",
				event.TaskID, event.Kind, recipient)
			result.Skipped++
			continue
		}

		notification := models.Notification{
			ID:         uuid.NewString(),
			ToEmployee: recipient,
			Channel:    models.NotificationChannelInApp,
			Message:    message,
			Meta:       meta,
			Priority:   models.NotificationPriorityNormal,
			IsRead:     false,
			CreatedAt:  now,
		}
		if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
			log.Printf("⚠️ Failed to write notification for recipient %s on task %s: %v",
				recipient, event.TaskID, err)
			result.Errors = append(result.Errors, RecipientError{Recipient: recipient, Err: err})
			continue
		}
		result.Written++
	}

	return result, nil
}

// adminRoster returns the ids of administrator principals. An empty or
// unreadable roster degrades to the synthetic superadmin identity so admin
// actions never go unnoticed.
func (s *TaskNotificationService) adminRoster(ctx context.Context) []string {
	var admins []rosterLite
	err := s.db.WithContext(ctx).
		Select("id, email, name, role").
		Where("role IN ? AND is_active = ?", []string{models.RoleAdmin, models.RoleSuperadmin}, true).
		Find(&admins).Error
	if err != nil {
		log.Printf("⚠️ Admin roster unavailable, falling back to %s (%s): %v",
			SuperadminFallbackID, s.superadminEmail, err)
		return []string{SuperadminFallbackID}
	}

	ids := make([]string, 0, len(admins))
	for _, admin := range admins {
		if admin.ID != "" {
			ids = append(ids, admin.ID)
		}
	}
	if len(ids) == 0 {
		return []string{SuperadminFallbackID}
	}
	return ids
}

// isDuplicate probes for a notification with the same (task, kind,
// recipient) inside the dedup window. Probe failures fail open: better a
// rare duplicate than a silently dropped notification.
func (s *TaskNotificationService) isDuplicate(ctx context.Context, event *TaskEvent, recipient string, now time.Time) bool {
	cutoff := now.Add(-s.window)

	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM notifications
		WHERE to_employee = ?
		  AND meta->>'$.task_id' = ?
		  AND meta->>'$.type' = ?
		  AND created_at >= ?
	`, recipient, event.TaskID, event.Kind, cutoff).Scan(&count).Error
	if err != nil {
		log.Printf("⚠️ Dedup probe failed for recipient %s on task %s, writing anyway: %v",
			recipient, event.TaskID, err)
		return false
	}
	return count > 0
}
