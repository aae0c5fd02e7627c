package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/chatbot"
	"github.com/01moynul/calibration-catalog/internal/models"
)

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	SessionID string `json:"sessionId" binding:"max=64"`
	Message   string `json:"message" binding:"required,max=2000"`
}

// ChatBot handles POST /api/chatbot
// An empty or expired sessionId starts a new conversation; the reply carries
// the id to send next time.
func (h *Handlers) ChatBot(c *gin.Context) {
	// 1. Parse Input
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, err)
		return
	}

	// 2. Advance the conversation
	reply, err := h.Chatbot.Reply(c.Request.Context(), input.SessionID, input.Message)
	if err != nil {
		if errors.Is(err, chatbot.ErrEmptyMessage) {
			respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
			return
		}
		respondInternal(c, "Assistant unavailable", err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// LeadRecorder stores chatbot leads as contact messages so they show up in
// the admin inbox, and announces them like any other message.
type LeadRecorder struct {
	DB       *gorm.DB
	Notifier Notifier
}

func (r *LeadRecorder) SaveLead(ctx context.Context, lead chatbot.Lead) error {
	m := models.ContactMessage{
		Name:    lead.Name,
		Email:   lead.Email,
		Subject: "Chatbot lead",
		Message: fmt.Sprintf("Interested in: %s\n(chat session %s)", lead.Interest, lead.SessionID),
	}
	if err := r.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("save chatbot lead: %w", err)
	}
	if r.Notifier == nil {
		return nil
	}
	// The lead is stored; announcing it is best-effort and bounded.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := r.Notifier.MessageReceived(notifyCtx, &m); err != nil {
		log.Printf("WARNING: chatbot lead notification failed: %v", err)
	}
	return nil
}
