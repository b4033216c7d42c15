package models

import "time"

type Goal struct {
	ID          string     `gorm:"primaryKey;column:id" json:"id"`
	Title       string     `gorm:"column:title" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	GoalType    *string    `gorm:"column:goal_type" json:"goal_type,omitempty"` // delivery|sales|operations|custom
	TargetDate  *time.Time `gorm:"column:target_date" json:"target_date,omitempty"`
	Status      string     `gorm:"column:status" json:"status"`
	CreatedBy   *string    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
}

func (Goal) TableName() string { return "company_goals" }
