package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationMeta is the structured payload stored in the meta JSON column.
// Field names match the persisted shape consumed by the frontend feed.
type NotificationMeta struct {
	TaskID                   string   `json:"task_id"`
	TaskDescription          string   `json:"task_description"`
	Type                     string   `json:"type"`
	AssignedBy               *string  `json:"assigned_by"`
	AddedBy                  string   `json:"added_by"`
	UserRole                 string   `json:"user_role"`
	NotePreview              *string  `json:"note_preview"`
	SpeciallyAttached        bool     `json:"specially_attached"`
	AttachedTo               *string  `json:"attached_to"`
	AttachedToMultiple       []string `json:"attached_to_multiple"`
	Timestamp                string   `json:"timestamp"`
	IsNoteNotification       bool     `json:"is_note_notification"`
	IsAttachmentNotification bool     `json:"is_attachment_notification"`
}

func (m NotificationMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *NotificationMeta) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = NotificationMeta{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into NotificationMeta", value)
	}
	return json.Unmarshal(data, m)
}

const (
	NotificationChannelInApp   = "in_app"
	NotificationPriorityNormal = "normal"
)

type Notification struct {
	ID         string           `gorm:"primaryKey;column:id" json:"id"`
	ToEmployee string           `gorm:"column:to_employee" json:"to_employee"`
	Channel    string           `gorm:"column:channel" json:"channel"`
	Message    string           `gorm:"column:message" json:"message"`
	Meta       NotificationMeta `gorm:"column:meta;type:json" json:"meta"`
	Priority   string           `gorm:"column:priority" json:"priority"`
	IsRead     bool             `gorm:"column:is_read" json:"is_read"`
	ReadAt     *time.Time       `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  *time.Time       `gorm:"column:updated_at" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
