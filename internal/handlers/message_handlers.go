package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// CreateMessage handles POST /api/messages (contact form)
func (h *Handlers) CreateMessage(c *gin.Context) {
	var input models.MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	m := models.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: input.Message,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&m).Error; err != nil {
		respondInternal(c, "Failed to send message", err)
		return
	}

	h.notify(c, "contact message", func(ctx context.Context, n Notifier) error {
		return n.MessageReceived(ctx, &m)
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent successfully", "data": m})
}

// ListMessages handles GET /api/messages (admin), newest first.
// ?replied=true|false narrows the list.
func (h *Handlers) ListMessages(c *gin.Context) {
	db := h.DB.WithContext(c.Request.Context()).Order("created_at DESC, id DESC")
	switch c.Query("replied") {
	case "":
	case "true":
		db = db.Where("replied = ?", true)
	case "false":
		db = db.Where("replied = ?", false)
	default:
		respondError(c, http.StatusBadRequest, "Invalid replied flag", c.Query("replied"))
		return
	}

	messages := []models.ContactMessage{}
	if err := db.Find(&messages).Error; err != nil {
		respondInternal(c, "Failed to fetch messages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkMessageReplied handles PUT /api/messages/:id/replied (admin)
// Setting the flag to the value it already has is not an error.
func (h *Handlers) MarkMessageReplied(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// 1. An empty body means "replied"
	var input models.RepliedInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		respondValidation(c, err)
		return
	}
	replied := input.Replied == nil || *input.Replied

	// 2. Load and update
	db := h.DB.WithContext(c.Request.Context())
	var m models.ContactMessage
	if err := db.First(&m, id).Error; err != nil {
		respondStoreError(c, err, "Message")
		return
	}
	if m.Replied != replied {
		if err := db.Model(&m).Update("replied", replied).Error; err != nil {
			respondInternal(c, "Failed to update message", err)
			return
		}
		m.Replied = replied
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message updated", "data": m})
}

// DeleteMessage handles DELETE /api/messages/:id (admin)
func (h *Handlers) DeleteMessage(c *gin.Context) {
	deleteByID[models.ContactMessage](h, c, "Message")
}
