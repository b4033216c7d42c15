package models

import "time"

// Role values stored on employees and carried in JWT claims.
const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type Employee struct {
	ID         string     `gorm:"primaryKey;column:id" json:"id"`
	Name       string     `gorm:"column:name" json:"name"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	Role       string     `gorm:"column:role" json:"role"` // employee|admin|superadmin
	Department *string    `gorm:"column:department" json:"department,omitempty"`
	Title      *string    `gorm:"column:title" json:"title,omitempty"`
	Skills     StringList `gorm:"column:skills;type:json" json:"skills"`
	JDLink     *string    `gorm:"column:jd_link" json:"jd_link,omitempty"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at,omitempty"`
}

func (Employee) TableName() string { return "employees" }

// IsAdminRole reports whether a role string belongs to the admin side of
// the recipient rules.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}
