package models

import "time"

// TaskUpdate is the note / progress history row written alongside every
// task mutation or note.
type TaskUpdate struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	TaskID      string    `gorm:"column:task_id" json:"task_id"`
	UpdatedBy   *string   `gorm:"column:updated_by" json:"updated_by,omitempty"`
	UpdatedName string    `gorm:"column:updated_name" json:"updated_name"`
	Progress    int       `gorm:"column:progress" json:"progress"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	CreateAt    time.Time `gorm:"column:create_at" json:"create_at"`
}

func (TaskUpdate) TableName() string { return "task_updates" }

// TaskAttachment represents an uploaded file tied to a task.
type TaskAttachment struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	TaskID       string    `gorm:"column:task_id" json:"task_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredPath   string    `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy   *string   `gorm:"column:uploaded_by" json:"uploaded_by,omitempty"`
	UploadedName string    `gorm:"column:uploaded_name" json:"uploaded_name"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`
}

func (TaskAttachment) TableName() string { return "task_attachments" }
