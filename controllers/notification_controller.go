package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"erp-task-api/models"
)

// GetNotifications lists the actor's feed, newest first. Supports
// unreadOnly, limit and offset query params.
func GetNotifications(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	if !models.IsAdminRole(a.Role) && a.EmployeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not identify user for notifications"})
		return
	}

	unreadOnly := strings.TrimSpace(c.Query("unreadOnly"))
	limit := 20
	offset := 0
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("offset"))); err == nil && v >= 0 {
		offset = v
	}

	q := db.Model(&models.Notification{})
	if !models.IsAdminRole(a.Role) {
		q = q.Where("to_employee = ?", a.EmployeeID)
	}
	if unreadOnly == "1" || strings.EqualFold(unreadOnly, "true") {
		q = q.Where("is_read = ?", false)
	}

	var items []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": items, "total": len(items)})
}

// GetNotificationCounter returns the unread count for the badge.
func GetNotificationCounter(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	q := db.Model(&models.Notification{}).Where("is_read = ?", false)
	if !models.IsAdminRole(a.Role) {
		if a.EmployeeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not identify user for notifications"})
			return
		}
		q = q.Where("to_employee = ?", a.EmployeeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unread_count": n})
}

// MarkNotificationRead marks one notification read; employees can only
// touch their own rows.
func MarkNotificationRead(c *gin.Context) {
	db := getDB()
	a := currentActor(c)
	id := c.Param("id")

	q := db.Model(&models.Notification{}).Where("id = ?", id)
	if !models.IsAdminRole(a.Role) {
		q = q.Where("to_employee = ?", a.EmployeeID)
	}

	now := time.Now().UTC()
	result := q.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks the actor's whole feed read.
func MarkAllNotificationsRead(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	q := db.Model(&models.Notification{}).Where("is_read = ?", false)
	if !models.IsAdminRole(a.Role) {
		if a.EmployeeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not identify user for notifications"})
			return
		}
		q = q.Where("to_employee = ?", a.EmployeeID)
	}

	now := time.Now().UTC()
	result := q.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "marked": result.RowsAffected})
}

// DeleteNotification removes a notification from the feed.
func DeleteNotification(c *gin.Context) {
	db := getDB()
	a := currentActor(c)
	id := c.Param("id")

	q := db.Where("id = ?", id)
	if !models.IsAdminRole(a.Role) {
		q = q.Where("to_employee = ?", a.EmployeeID)
	}

	result := q.Delete(&models.Notification{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted"})
}
