package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/storage"
)

// --- Gallery ---

// ListGallery handles GET /api/gallery, newest first.
func (h *Handlers) ListGallery(c *gin.Context) {
	listAll[models.GalleryItem](h, c, "gallery", "created_at DESC, id DESC")
}

// CreateGalleryItems handles POST /api/gallery (multipart)
// Every file posted as "images" (or a single "image") becomes one item.
func (h *Handlers) CreateGalleryItems(c *gin.Context) {
	// 1. Save the files
	urls, err := h.saveFiles(c, "images", storage.KindGallery)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	single, err := h.saveFile(c, "image", storage.KindGallery)
	if err != nil {
		h.Files.RemoveAll(urls...)
		respondUploadError(c, err)
		return
	}
	if single != "" {
		urls = append(urls, single)
	}
	if len(urls) == 0 {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	// 2. Insert one row per file
	title := strings.TrimSpace(c.PostForm("title"))
	items := make([]models.GalleryItem, 0, len(urls))
	for _, u := range urls {
		items = append(items, models.GalleryItem{Title: title, ImageURL: u})
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&items).Error; err != nil {
		h.Files.RemoveAll(urls...)
		respondInternal(c, "Failed to save gallery items", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Gallery updated", "items": items})
}

// DeleteGalleryItem handles DELETE /api/gallery/:id
func (h *Handlers) DeleteGalleryItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	var item models.GalleryItem
	if err := db.First(&item, id).Error; err != nil {
		respondStoreError(c, err, "Gallery item")
		return
	}
	if err := db.Delete(&item).Error; err != nil {
		respondInternal(c, "Failed to delete gallery item", err)
		return
	}
	h.Files.RemoveAll(item.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "Gallery item deleted"})
}

// --- Media settings ---

// GetSettings handles GET /api/settings
// The response is a key -> value map, which is what the site reads.
// ?full=true returns the rows with their descriptions instead.
func (h *Handlers) GetSettings(c *gin.Context) {
	settings := []models.Setting{}
	if err := h.DB.WithContext(c.Request.Context()).Order("setting_key ASC").Find(&settings).Error; err != nil {
		respondInternal(c, "Failed to fetch settings", err)
		return
	}
	if c.Query("full") == "true" {
		c.JSON(http.StatusOK, settings)
		return
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	c.JSON(http.StatusOK, out)
}

// UpdateSettings handles PUT /api/settings (admin)
// The body is an array of {key, value, description}; keys are upserted.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var input []models.SettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}
	if len(input) == 0 {
		respondError(c, http.StatusBadRequest, "No settings provided")
		return
	}
	for i, in := range input {
		if strings.TrimSpace(in.Key) == "" {
			respondError(c, http.StatusBadRequest, "Validation failed", fmt.Sprintf("settings[%d].key is required", i))
			return
		}
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, in := range input {
			s := models.Setting{Key: strings.TrimSpace(in.Key), Value: in.Value, Description: in.Description}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "description", "updated_at"}),
			}).Create(&s).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondInternal(c, "Failed to update settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}
