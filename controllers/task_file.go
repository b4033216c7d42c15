package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"erp-task-api/models"
	"erp-task-api/services"
)

func uploadBasePath() string {
	p := os.Getenv("UPLOAD_PATH")
	if p == "" {
		p = "./uploads"
	}
	return p
}

// UploadTaskFile stores a multipart file under UPLOAD_PATH and fires a
// file_uploaded notification. Attachees may be passed as form fields.
func UploadTaskFile(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	var task models.Task
	if err := db.Where("id = ?", c.Param("id")).First(&task).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	subDir := filepath.Join(uploadBasePath(), "tasks", task.ID)
	if err := os.MkdirAll(subDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}

	storedName := uuid.NewString() + "_" + filepath.Base(file.Filename)
	fullPath := filepath.Join(subDir, storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	attachment := models.TaskAttachment{
		ID:           uuid.NewString(),
		TaskID:       task.ID,
		OriginalName: file.Filename,
		StoredPath:   fullPath,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedName: a.Name,
		CreateAt:     time.Now().UTC(),
	}
	if a.EmployeeID != "" {
		id := a.EmployeeID
		attachment.UploadedBy = &id
	}
	if err := db.Create(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var attachedTo *string
	if v := c.PostForm("attached_to"); v != "" {
		attachedTo = &v
	}
	attachedToMultiple := c.PostFormArray("attached_to_multiple")

	fireTaskEvent(c, &services.TaskEvent{
		Kind:      services.EventFileUploaded,
		TaskID:    task.ID,
		ActorID:   a.EmployeeID,
		ActorRole: a.Role,
		ActorName: a.Name,
		Message: fmt.Sprintf("File '%s' uploaded to task: %s...",
			file.Filename, shortDescription(task.TaskDescription)),
		AttachedTo:         attachedTo,
		AttachedToMultiple: attachedToMultiple,
		AssignedBy:         assignedByFor(a),
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "attachment": attachment})
}

// GetTaskAttachments lists files uploaded to a task.
func GetTaskAttachments(c *gin.Context) {
	db := getDB()

	var attachments []models.TaskAttachment
	if err := db.Where("task_id = ?", c.Param("id")).
		Order("create_at DESC").Find(&attachments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "attachments": attachments, "total": len(attachments)})
}

// DownloadTaskAttachment streams a stored file back to the client.
func DownloadTaskAttachment(c *gin.Context) {
	db := getDB()

	var attachment models.TaskAttachment
	if err := db.Where("id = ? AND task_id = ?", c.Param("attachment_id"), c.Param("id")).
		First(&attachment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	if _, err := os.Stat(attachment.StoredPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File missing from storage"})
		return
	}

	c.FileAttachment(attachment.StoredPath, attachment.OriginalName)
}
