// Migration script to hash legacy plain-text employee passwords
// cmd/hash-passwords/main.go
package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"erp-task-api/config"
	"erp-task-api/models"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	// Get all employees
	var employees []models.Employee
	if err := config.DB.Find(&employees).Error; err != nil {
		log.Fatal("Failed to fetch employees:", err)
	}

	// Update passwords
	for _, employee := range employees {
		// Skip if already hashed (bcrypt hashes start with $2)
		if strings.HasPrefix(employee.Password, "$2") {
			log.Printf("Employee %s already has hashed password, skipping\n", employee.Email)
			continue
		}

		// Hash password
		hashed, err := bcrypt.GenerateFromPassword([]byte(employee.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for employee %s: %v\n", employee.Email, err)
			continue
		}

		// Update in database
		if err := config.DB.Model(&employee).Update("password", string(hashed)).Error; err != nil {
			log.Printf("Failed to update password for employee %s: %v\n", employee.Email, err)
			continue
		}

		log.Printf("Successfully updated password for employee %s\n", employee.Email)
	}

	log.Println("Password migration completed!")
}
