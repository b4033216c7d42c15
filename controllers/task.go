package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"erp-task-api/models"
	"erp-task-api/services"
)

type createTaskReq struct {
	TaskDescription    string     `json:"task_description" binding:"required"`
	GoalID             *string    `json:"goal_id"`
	AssignedTo         *string    `json:"assigned_to"`
	AssignedToMultiple []string   `json:"assigned_to_multiple"`
	Priority           *string    `json:"priority"`
	DueDate            *time.Time `json:"due_date"`
	EstimatedHours     *int       `json:"estimated_hours"`
	Dependencies       []string   `json:"dependencies"`
}

type updateTaskReq struct {
	TaskDescription      *string    `json:"task_description"`
	AssignedTo           *string    `json:"assigned_to"`
	AssignedToMultiple   *[]string  `json:"assigned_to_multiple"`
	Status               *string    `json:"status"`
	CompletionPercentage *int       `json:"completion_percentage"`
	Priority             *string    `json:"priority"`
	DueDate              *time.Time `json:"due_date"`
	EstimatedHours       *int       `json:"estimated_hours"`
	Dependencies         *[]string  `json:"dependencies"`
}

// CreateTask creates a task; assignment at creation fires a task_assigned
// notification.
func CreateTask(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.TaskStatusNotStarted
	if len(req.Dependencies) > 0 {
		status = models.TaskStatusWaiting
	}

	createdBy := a.EmployeeID
	task := models.Task{
		ID:                 uuid.NewString(),
		GoalID:             req.GoalID,
		TaskDescription:    strings.TrimSpace(req.TaskDescription),
		AssignedTo:         req.AssignedTo,
		AssignedToMultiple: models.StringList(req.AssignedToMultiple),
		Status:             status,
		Priority:           req.Priority,
		DueDate:            req.DueDate,
		EstimatedHours:     req.EstimatedHours,
		Dependencies:       models.StringList(req.Dependencies),
		CreateAt:           time.Now().UTC(),
	}
	if createdBy != "" {
		task.CreatedBy = &createdBy
	}

	if err := db.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(task.Assignees()) > 0 {
		fireTaskEvent(c, &services.TaskEvent{
			Kind:       services.EventTaskAssigned,
			TaskID:     task.ID,
			ActorID:    a.EmployeeID,
			ActorRole:  a.Role,
			ActorName:  a.Name,
			Message:    fmt.Sprintf("New task assigned: %s...", shortDescription(task.TaskDescription)),
			AssignedBy: assignedByFor(a),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "task": task})
}

// GetTask returns a single task.
func GetTask(c *gin.Context) {
	var task models.Task
	if err := getDB().Where("id = ?", c.Param("id")).First(&task).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// GetTasks lists tasks with optional status / assignee / goal filters.
func GetTasks(c *gin.Context) {
	db := getDB()

	q := db.Model(&models.Task{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if goalID := c.Query("goal_id"); goalID != "" {
		q = q.Where("goal_id = ?", goalID)
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		q = q.Where("assigned_to = ? OR assigned_to_multiple LIKE ?", assignee, "%"+assignee+"%")
	}

	var tasks []models.Task
	if err := q.Order("create_at DESC").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "total": len(tasks)})
}

// GetEmployeeTasks lists tasks where the employee is primary or additional
// assignee.
func GetEmployeeTasks(c *gin.Context) {
	db := getDB()
	employeeID := c.Param("id")

	var tasks []models.Task
	if err := db.Where("assigned_to = ? OR assigned_to_multiple LIKE ?", employeeID, "%"+employeeID+"%").
		Order("create_at DESC").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "total": len(tasks)})
}

// UpdateTask applies field changes and emits the matching notification
// events: a separate progress event when completion changes, a status
// event on transitions, an assignment event when the assignee set actually
// changes, and a summarized update event for other significant edits.
func UpdateTask(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	var task models.Task
	if err := db.Where("id = ?", c.Param("id")).First(&task).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Employees may only update their own tasks; admins update any.
	if !models.IsAdminRole(a.Role) && !isAssignee(&task, a.EmployeeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not assigned to this task"})
		return
	}

	oldProgress := task.CompletionPercentage
	oldStatus := task.Status
	oldAssignees := toSet(task.Assignees())
	oldDescription := task.TaskDescription

	var changedFields []string
	if req.TaskDescription != nil && *req.TaskDescription != task.TaskDescription {
		task.TaskDescription = strings.TrimSpace(*req.TaskDescription)
		changedFields = append(changedFields, "description updated")
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		changedFields = append(changedFields, "due date changed")
	}
	if req.Priority != nil {
		task.Priority = req.Priority
		changedFields = append(changedFields, "priority changed")
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
		changedFields = append(changedFields, "estimated hours updated")
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.AssignedToMultiple != nil {
		task.AssignedToMultiple = models.StringList(*req.AssignedToMultiple)
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.CompletionPercentage != nil {
		if *req.CompletionPercentage < 0 || *req.CompletionPercentage > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "completion_percentage must be 0-100"})
			return
		}
		task.CompletionPercentage = *req.CompletionPercentage
	}
	if req.Dependencies != nil {
		task.Dependencies = models.StringList(*req.Dependencies)
		// Unfinished dependencies park the task.
		if len(*req.Dependencies) > 0 {
			task.Status = models.TaskStatusWaiting
		}
	}

	now := time.Now().UTC()
	task.UpdateAt = &now
	if err := db.Save(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	recordTaskUpdate(c, &task, a, "")

	// Separate progress notification.
	if req.CompletionPercentage != nil && task.CompletionPercentage != oldProgress {
		oldP, newP := oldProgress, task.CompletionPercentage
		fireTaskEvent(c, &services.TaskEvent{
			Kind:        services.EventProgressUpdated,
			TaskID:      task.ID,
			ActorID:     a.EmployeeID,
			ActorRole:   a.Role,
			ActorName:   a.Name,
			OldProgress: &oldP,
			NewProgress: &newP,
			AssignedBy:  assignedByFor(a),
		})
	}

	// Status change notification.
	if req.Status != nil && task.Status != oldStatus {
		statusDisplay := statusDisplayName(task.Status)
		fireTaskEvent(c, &services.TaskEvent{
			Kind:       services.EventTaskStatusChanged,
			TaskID:     task.ID,
			ActorID:    a.EmployeeID,
			ActorRole:  a.Role,
			ActorName:  a.Name,
			Message:    fmt.Sprintf("Status changed to %s: %s...", statusDisplay, shortDescription(oldDescription)),
			AssignedBy: assignedByFor(a),
		})
	}

	// Assignment notification, only when the assignee set actually moved.
	if req.AssignedTo != nil || req.AssignedToMultiple != nil {
		newAssignees := toSet(task.Assignees())
		if !sameSet(oldAssignees, newAssignees) {
			fireTaskEvent(c, &services.TaskEvent{
				Kind:       services.EventTaskAssigned,
				TaskID:     task.ID,
				ActorID:    a.EmployeeID,
				ActorRole:  a.Role,
				ActorName:  a.Name,
				Message:    fmt.Sprintf("Task assignment updated: %s...", shortDescription(oldDescription)),
				AssignedBy: assignedByFor(a),
			})
		}
	}

	// Other significant changes, one summarized event.
	if len(changedFields) > 0 {
		summary := strings.Join(changedFields, ", ")
		fireTaskEvent(c, &services.TaskEvent{
			Kind:       services.EventTaskUpdated,
			TaskID:     task.ID,
			ActorID:    a.EmployeeID,
			ActorRole:  a.Role,
			ActorName:  a.Name,
			Message:    fmt.Sprintf("Task updated (%s): %s...", summary, shortDescription(oldDescription)),
			AssignedBy: assignedByFor(a),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// DeleteTask removes a task.
func DeleteTask(c *gin.Context) {
	db := getDB()

	result := db.Where("id = ?", c.Param("id")).Delete(&models.Task{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

// GetTaskDashboard returns aggregate counts for the dashboard.
func GetTaskDashboard(c *gin.Context) {
	db := getDB()

	type statusCount struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var rows []statusCount
	if err := db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var total, completed, inProgress, pending int64
	for _, row := range rows {
		total += row.Count
		switch row.Status {
		case models.TaskStatusCompleted:
			completed += row.Count
		case models.TaskStatusInProgress:
			inProgress += row.Count
		default:
			pending += row.Count
		}
	}

	var overdue int64
	if err := db.Model(&models.Task{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", time.Now().UTC(), models.TaskStatusCompleted).
		Count(&overdue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_tasks":       total,
			"completed_tasks":   completed,
			"in_progress_tasks": inProgress,
			"pending_tasks":     pending,
			"overdue_tasks":     overdue,
		},
	})
}

/* ==========================
   Shared task helpers
   ========================== */

func isAssignee(task *models.Task, employeeID string) bool {
	if employeeID == "" {
		return false
	}
	for _, id := range task.Assignees() {
		if id == employeeID {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// statusDisplayName turns not_started into "Not Started".
func statusDisplayName(status string) string {
	words := strings.Split(status, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func shortDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return desc
}

// recordTaskUpdate appends a history row; history failures never block
// the mutation.
func recordTaskUpdate(c *gin.Context, task *models.Task, a actor, notes string) {
	entry := models.TaskUpdate{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		UpdatedName: a.Name,
		Progress:    task.CompletionPercentage,
		Notes:       notes,
		CreateAt:    time.Now().UTC(),
	}
	if a.EmployeeID != "" {
		id := a.EmployeeID
		entry.UpdatedBy = &id
	}
	if err := getDB().Create(&entry).Error; err != nil {
		log.Printf("⚠️ Failed to record task update for task %s: %v", task.ID, err)
	}
}

// fireTaskEvent runs the notification fan-out synchronously on the request
// path. Fan-out failures never fail the triggering mutation.
func fireTaskEvent(c *gin.Context, event *services.TaskEvent) {
	result, err := notifier().Fanout(c.Request.Context(), event)
	if err != nil {
		log.Printf("⚠️ Notification fan-out failed for task %s (%s): %v", event.TaskID, event.Kind, err)
		return
	}
	if len(result.Errors) > 0 {
		log.Printf("⚠️ Notification fan-out for task %s (%s): %d written, %d skipped, %d failed",
			event.TaskID, event.Kind, result.Written, result.Skipped, len(result.Errors))
	}
}
