package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"erp-task-api/config"
	"erp-task-api/models"
	"erp-task-api/services"
)

func getDB() *gorm.DB { return config.DB }

func notifier() *services.TaskNotificationService {
	return services.NewTaskNotificationService(config.DB)
}

// actor holds the authenticated identity set by the auth middleware.
type actor struct {
	EmployeeID string
	Email      string
	Role       string
	Name       string
}

func currentActor(c *gin.Context) actor {
	a := actor{
		EmployeeID: c.GetString("employeeID"),
		Email:      c.GetString("email"),
		Role:       c.GetString("role"),
		Name:       c.GetString("displayName"),
	}
	if a.Name == "" {
		a.Name = "Unknown"
	}
	return a
}

// assignedByFor returns the assigned_by label carried in notification
// meta: populated only when an admin-side actor performed the change.
func assignedByFor(a actor) *string {
	if models.IsAdminRole(a.Role) {
		name := a.Name
		return &name
	}
	return nil
}
