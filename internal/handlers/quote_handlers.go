package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// CreateQuote handles POST /api/quotes
// The product lines are stored as submitted, so later catalog edits do not
// change what the customer asked for.
func (h *Handlers) CreateQuote(c *gin.Context) {
	var input models.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	q := models.QuoteRequest{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    optional(input.Phone),
		Company:  optional(input.Company),
		Message:  input.Message,
		Products: input.Products,
		Status:   models.QuoteNew,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&q).Error; err != nil {
		respondInternal(c, "Failed to submit quote request", err)
		return
	}

	h.notify(c, "quote", func(ctx context.Context, n Notifier) error {
		return n.QuoteSubmitted(ctx, &q)
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quote request submitted successfully",
		"quote":   q,
	})
}

// ListQuotes handles GET /api/quotes (admin), newest first.
// An optional ?status= narrows the list.
func (h *Handlers) ListQuotes(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context()).Order("created_at DESC, id DESC")
	if raw := c.Query("status"); raw != "" {
		status := models.QuoteStatus(raw)
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "Invalid status", raw)
			return
		}
		db = db.Where("status = ?", status)
	}

	quotes := []models.QuoteRequest{}
	if err := db.Find(&quotes).Error; err != nil {
		respondInternal(c, "Failed to fetch quotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// GetQuote handles GET /api/quotes/:id (admin)
func (h *Handlers) GetQuote(c *gin.Context) {
	getByID[models.QuoteRequest](h, c, "Quote")
}

// UpdateQuoteStatus handles PUT /api/quotes/:id/status (admin)
// Statuses move New -> Contacted -> Closed, one step at a time.
func (h *Handlers) UpdateQuoteStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.QuoteStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	// 1. Load the current status
	db := h.DB.WithContext(c.Request.Context())
	var q models.QuoteRequest
	if err := db.First(&q, id).Error; err != nil {
		respondStoreError(c, err, "Quote")
		return
	}

	// 2. Check the transition
	if !q.Status.CanMoveTo(input.Status) {
		respondError(c, http.StatusBadRequest, "Invalid status transition",
			fmt.Sprintf("cannot move from %s to %s", q.Status, input.Status))
		return
	}
	if q.Status == input.Status {
		c.JSON(http.StatusOK, gin.H{"message": "Status unchanged", "quote": q})
		return
	}

	// 3. Save
	if err := db.Model(&q).Update("status", input.Status).Error; err != nil {
		respondInternal(c, "Failed to update quote status", err)
		return
	}
	q.Status = input.Status
	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "quote": q})
}

// DeleteQuote handles DELETE /api/quotes/:id (admin)
func (h *Handlers) DeleteQuote(c *gin.Context) {
	deleteByID[models.QuoteRequest](h, c, "Quote")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
