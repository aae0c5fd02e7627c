package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/storage"
)

// ListTeam handles GET /api/team, in display order.
func (h *Handlers) ListTeam(c *gin.Context) {
	listAll[models.TeamMember](h, c, "team members", "sort_rank ASC, id ASC")
}

// GetTeamMember handles GET /api/team/:id
func (h *Handlers) GetTeamMember(c *gin.Context) {
	getByID[models.TeamMember](h, c, "Team member")
}

// CreateTeamMember handles POST /api/team (multipart, optional "photo")
func (h *Handlers) CreateTeamMember(c *gin.Context) {
	var form models.TeamForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}

	// 1. Save the photo
	photo, err := h.saveFile(c, "photo", storage.KindTeamPhoto)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	// 2. Insert
	var m models.TeamMember
	form.Apply(&m)
	m.PhotoURL = optional(photo)
	if err := h.DB.WithContext(c.Request.Context()).Create(&m).Error; err != nil {
		h.Files.RemoveAll(photo)
		respondInternal(c, "Failed to create team member", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Team member created", "member": m})
}

// UpdateTeamMember handles PUT /api/team/:id (multipart)
// A new photo replaces the old one; removePhoto=true clears it.
func (h *Handlers) UpdateTeamMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var form models.TeamForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}

	// 1. Load the member
	db := h.DB.WithContext(c.Request.Context())
	var m models.TeamMember
	if err := db.First(&m, id).Error; err != nil {
		respondStoreError(c, err, "Team member")
		return
	}

	// 2. Save the new photo, if any
	photo, err := h.saveFile(c, "photo", storage.KindTeamPhoto)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	var stale string
	if m.PhotoURL != nil && (photo != "" || form.RemovePhoto) {
		stale = *m.PhotoURL
	}
	if photo != "" || form.RemovePhoto {
		m.PhotoURL = optional(photo)
	}

	// 3. Save
	form.Apply(&m)
	if err := db.Save(&m).Error; err != nil {
		h.Files.RemoveAll(photo)
		respondInternal(c, "Failed to update team member", err)
		return
	}
	h.Files.RemoveAll(stale)

	c.JSON(http.StatusOK, gin.H{"message": "Team member updated", "member": m})
}

// DeleteTeamMember handles DELETE /api/team/:id
func (h *Handlers) DeleteTeamMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	var m models.TeamMember
	if err := db.First(&m, id).Error; err != nil {
		respondStoreError(c, err, "Team member")
		return
	}
	if err := db.Delete(&m).Error; err != nil {
		respondInternal(c, "Failed to delete team member", err)
		return
	}
	if m.PhotoURL != nil {
		h.Files.RemoveAll(*m.PhotoURL)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team member deleted"})
}
