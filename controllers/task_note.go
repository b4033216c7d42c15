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

type addNoteReq struct {
	Note               string   `json:"note" binding:"required"`
	AttachedTo         *string  `json:"attached_to"`
	AttachedToMultiple []string `json:"attached_to_multiple"`
}

const notePreviewLimit = 100

// AddTaskNote stores a note on the task history and fires a note_added
// notification carrying the preview and any explicit attachees.
func AddTaskNote(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	var task models.Task
	if err := db.Where("id = ?", c.Param("id")).First(&task).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note must not be empty"})
		return
	}

	entry := models.TaskUpdate{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		UpdatedName: a.Name,
		Progress:    task.CompletionPercentage,
		Notes:       note,
		CreateAt:    time.Now().UTC(),
	}
	if a.EmployeeID != "" {
		id := a.EmployeeID
		entry.UpdatedBy = &id
	}
	if err := db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	preview := note
	if runes := []rune(preview); len(runes) > notePreviewLimit {
		preview = string(runes[:notePreviewLimit])
	}

	fireTaskEvent(c, &services.TaskEvent{
		Kind:               services.EventNoteAdded,
		TaskID:             task.ID,
		ActorID:            a.EmployeeID,
		ActorRole:          a.Role,
		ActorName:          a.Name,
		NotePreview:        &preview,
		AttachedTo:         req.AttachedTo,
		AttachedToMultiple: req.AttachedToMultiple,
		AssignedBy:         assignedByFor(a),
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "note": entry})
}

// GetTaskNotes lists the note / progress history for a task, newest first.
func GetTaskNotes(c *gin.Context) {
	db := getDB()

	var notes []models.TaskUpdate
	if err := db.Where("task_id = ?", c.Param("id")).
		Order("create_at DESC").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notes": notes, "total": len(notes)})
}
