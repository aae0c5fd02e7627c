package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/middleware"
	"github.com/01moynul/calibration-catalog/internal/models"
)

// --- Admin Login ---

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	// 2. --- Find the account ---
	// Unknown email and wrong password get the same answer.
	var admin models.AdminUser
	err := h.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondInternal(c, "Failed to log in", err)
		return
	}

	// 3. --- Check the password ---
	// Use the 'Matches' method from 'models/user_types.go'
	password := models.Password{Hash: admin.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		respondInternal(c, "Failed to log in", err)
		return
	}
	if !match {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// 4. --- Issue the token ---
	token, err := h.Tokens.GenerateToken(admin.ID, admin.Email)
	if err != nil {
		respondInternal(c, "Failed to generate token", err)
		return
	}

	// Gin respects the 'json:"-"' tag on PasswordHash.
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"admin":   admin,
	})
}

// Me handles GET /api/auth/me: the admin behind the token.
func (h *Handlers) Me(c *gin.Context) {
	id := c.GetUint(middleware.ContextAdminID)
	var admin models.AdminUser
	if err := h.DB.WithContext(c.Request.Context()).First(&admin, id).Error; err != nil {
		// The account was removed after the token was issued.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		respondInternal(c, "Failed to load account", err)
		return
	}
	c.JSON(http.StatusOK, admin)
}
