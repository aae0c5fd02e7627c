package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// --- Category Handlers ---

// GetAllCategories (Public - Returns Tree Structure)
func (h *Handlers) GetAllCategories(c *gin.Context) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to fetch categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory (Public)
func (h *Handlers) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cat, err := h.Store.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// CreateCategory (Admin Only)
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	cat, err := h.Store.CreateCategory(c.Request.Context(), input)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}

	// Return the full tree so the UI can update immediately
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

// UpdateCategory (Admin Only)
// The submitted tree replaces the stored one; products follow their node.
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	cat, err := h.Store.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": cat})
}

// DeleteCategory (Admin Only)
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteCategory(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// DeleteSubcategory (Admin Only)
// Removes the node together with everything below it.
func (h *Handlers) DeleteSubcategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	removed, err := h.Store.DeleteSubcategory(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Subcategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted", "removed": removed})
}
