package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/change-password", func(c *gin.Context) {
		c.Set("employeeID", "emp-1")
		c.Next()
	}, ChangePassword)

	body := `{"current_password":"old-password","new_password":"short"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/change-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "at least 8 characters") {
		t.Errorf("body = %s, want password strength message", w.Body.String())
	}
}
