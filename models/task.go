package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a JSON-encoded list of ids stored in a single column,
// matching the assigned_to_multiple shape of the source schema.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// Task statuses.
const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusWaiting    = "waiting"
	TaskStatusCompleted  = "completed"
)

type Task struct {
	ID                   string     `gorm:"primaryKey;column:id" json:"id"`
	GoalID               *string    `gorm:"column:goal_id" json:"goal_id,omitempty"`
	TaskDescription      string     `gorm:"column:task_description" json:"task_description"`
	AssignedTo           *string    `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	AssignedToMultiple   StringList `gorm:"column:assigned_to_multiple;type:json" json:"assigned_to_multiple"`
	Status               string     `gorm:"column:status" json:"status"`
	CompletionPercentage int        `gorm:"column:completion_percentage" json:"completion_percentage"`
	Priority             *string    `gorm:"column:priority" json:"priority,omitempty"`
	DueDate              *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	EstimatedHours       *int       `gorm:"column:estimated_hours" json:"estimated_hours,omitempty"`
	Dependencies         StringList `gorm:"column:dependencies;type:json" json:"dependencies"`
	CreatedBy            *string    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
}

func (Task) TableName() string { return "tasks" }

// Assignees returns the primary assignee plus the additional assignee set,
// empty ids dropped.
func (t *Task) Assignees() []string {
	out := make([]string, 0, 1+len(t.AssignedToMultiple))
	if t.AssignedTo != nil && *t.AssignedTo != "" {
		out = append(out, *t.AssignedTo)
	}
	for _, id := range t.AssignedToMultiple {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
