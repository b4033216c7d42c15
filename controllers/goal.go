package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"erp-task-api/models"
	"erp-task-api/services"
)

type createGoalReq struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	GoalType    *string    `json:"goal_type"`
	TargetDate  *time.Time `json:"target_date"`
}

// GetGoals lists company goals, newest first.
func GetGoals(c *gin.Context) {
	var goals []models.Goal
	if err := getDB().Order("create_at DESC").Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goals": goals, "total": len(goals)})
}

// GetGoal returns one goal with its tasks.
func GetGoal(c *gin.Context) {
	db := getDB()

	var goal models.Goal
	if err := db.Where("id = ?", c.Param("id")).First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}

	var tasks []models.Task
	if err := db.Where("goal_id = ?", goal.ID).Order("create_at ASC").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "goal": goal, "tasks": tasks})
}

// CreateGoal stores a goal without AI classification.
func CreateGoal(c *gin.Context) {
	a := currentActor(c)

	var req createGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal := newGoalFrom(&req, a)
	if err := getDB().Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "goal": goal})
}

// ClassifyGoal creates a goal and breaks it into tasks via the AI
// classifier (rule-based fallback when the model is unreachable). The
// generated tasks are persisted unassigned; assignment later fires the
// usual notifications.
func ClassifyGoal(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	var req createGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal := newGoalFrom(&req, a)
	if err := db.Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	classifier := services.NewAIClassifierService(nil)
	generated := classifier.ClassifyGoal(c.Request.Context(), goal.Title, goal.Description, goal.TargetDate)

	tasks := make([]models.Task, 0, len(generated))
	for _, g := range generated {
		goalID := goal.ID
		task := models.Task{
			ID:              uuid.NewString(),
			GoalID:          &goalID,
			TaskDescription: strings.TrimSpace(g.TaskDescription),
			Status:          models.TaskStatusNotStarted,
			CreateAt:        time.Now().UTC(),
		}
		if g.Priority != "" {
			p := g.Priority
			task.Priority = &p
		}
		if g.EstimatedHours > 0 {
			h := g.EstimatedHours
			task.EstimatedHours = &h
		}
		if due, err := time.Parse("2006-01-02", g.DueDate); err == nil {
			task.DueDate = &due
		}
		if err := db.Create(&task).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		tasks = append(tasks, task)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "goal": goal, "tasks": tasks})
}

func newGoalFrom(req *createGoalReq, a actor) models.Goal {
	goal := models.Goal{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		GoalType:    req.GoalType,
		TargetDate:  req.TargetDate,
		Status:      "active",
		CreateAt:    time.Now().UTC(),
	}
	if a.EmployeeID != "" {
		id := a.EmployeeID
		goal.CreatedBy = &id
	}
	return goal
}
