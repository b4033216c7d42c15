package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"erp-task-api/config"
	"erp-task-api/models"
	"erp-task-api/utils"
)

type createEmployeeReq struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Role       string   `json:"role" binding:"required"`
	Department *string  `json:"department"`
	Title      *string  `json:"title"`
	Skills     []string `json:"skills"`
	JDLink     *string  `json:"jd_link"`
}

type updateEmployeeReq struct {
	Name       *string   `json:"name"`
	Role       *string   `json:"role"`
	Department *string   `json:"department"`
	Title      *string   `json:"title"`
	Skills     *[]string `json:"skills"`
	JDLink     *string   `json:"jd_link"`
	IsActive   *bool     `json:"is_active"`
}

// GetEmployees lists the active roster. Admins may pass all=1 to include
// deactivated employees.
func GetEmployees(c *gin.Context) {
	db := getDB()
	a := currentActor(c)

	q := db.Model(&models.Employee{})
	includeAll := c.Query("all") == "1" && models.IsAdminRole(a.Role)
	if !includeAll {
		q = q.Where("is_active = ?", true)
	}

	var employees []models.Employee
	if err := q.Order("name ASC").Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"employees": employees, "total": len(employees)})
}

// GetEmployee returns one roster entry.
func GetEmployee(c *gin.Context) {
	var employee models.Employee
	if err := getDB().Where("id = ?", c.Param("id")).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

// CreateEmployee adds a roster entry with a generated temp password and
// mails the credentials.
func CreateEmployee(c *gin.Context) {
	db := getDB()

	var req createEmployeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := strings.TrimSpace(req.Role)
	if role != models.RoleEmployee && role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be employee or admin"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidateEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	var existing models.Employee
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Employee with this email already exists"})
		return
	}

	tempPassword := utils.GenerateTempPassword(12)
	hashed, err := HashPassword(tempPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	employee := models.Employee{
		ID:         uuid.NewString(),
		Name:       utils.SanitizeInput(req.Name),
		Email:      email,
		Password:   hashed,
		Role:       role,
		Department: req.Department,
		Title:      req.Title,
		Skills:     models.StringList(req.Skills),
		JDLink:     req.JDLink,
		IsActive:   true,
		CreateAt:   time.Now().UTC(),
	}
	if err := db.Create(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go sendCredentialsMail(employee.Email, employee.Name, tempPassword)

	c.JSON(http.StatusCreated, gin.H{"employee": employee, "temp_password": tempPassword})
}

// UpdateEmployee edits roster fields.
func UpdateEmployee(c *gin.Context) {
	db := getDB()

	var employee models.Employee
	if err := db.Where("id = ?", c.Param("id")).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	var req updateEmployeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		employee.Name = utils.SanitizeInput(*req.Name)
	}
	if req.Role != nil {
		if *req.Role != models.RoleEmployee && *req.Role != models.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be employee or admin"})
			return
		}
		employee.Role = *req.Role
	}
	if req.Department != nil {
		employee.Department = req.Department
	}
	if req.Title != nil {
		employee.Title = req.Title
	}
	if req.Skills != nil {
		employee.Skills = models.StringList(*req.Skills)
	}
	if req.JDLink != nil {
		employee.JDLink = req.JDLink
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	now := time.Now().UTC()
	employee.UpdateAt = &now
	if err := db.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

// DeleteEmployee deactivates an employee. The row stays so historical
// notifications and task assignments keep resolving.
func DeleteEmployee(c *gin.Context) {
	db := getDB()

	var employee models.Employee
	if err := db.Where("id = ?", c.Param("id")).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	now := time.Now().UTC()
	employee.IsActive = false
	employee.UpdateAt = &now
	if err := db.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deactivated"})
}

// ResetEmployeePassword issues a new temp password and mails it.
func ResetEmployeePassword(c *gin.Context) {
	db := getDB()

	var employee models.Employee
	if err := db.Where("id = ?", c.Param("id")).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	tempPassword := utils.GenerateTempPassword(12)
	hashed, err := HashPassword(tempPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now().UTC()
	employee.Password = hashed
	employee.UpdateAt = &now
	if err := db.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go sendCredentialsMail(employee.Email, employee.Name, tempPassword)

	c.JSON(http.StatusOK, gin.H{"message": "Password reset", "temp_password": tempPassword})
}

func sendCredentialsMail(email, name, tempPassword string) {
	subject := "Your ERP account credentials"
	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your temporary password is: <strong>%s</strong></p>
<p>Please sign in and change it immediately.</p>`, name, tempPassword)
	if err := config.SendMail([]string{email}, subject, html); err != nil {
		log.Printf("credentials email send failed (to=%s): %v", email, err)
	}
}
