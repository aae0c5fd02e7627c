package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/auth"
	"github.com/01moynul/calibration-catalog/internal/chatbot"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/storage"
	"github.com/01moynul/calibration-catalog/internal/store"
)

// Notifier announces new submissions to the sales team.
type Notifier interface {
	QuoteSubmitted(ctx context.Context, q *models.QuoteRequest) error
	MessageReceived(ctx context.Context, m *models.ContactMessage) error
	ApplicationReceived(ctx context.Context, a *models.JobApplication) error
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB       *gorm.DB         // simple single-table CRUD
	Store    *store.Store     // catalog and multi-step mutations
	Files    *storage.Local   // uploads
	Notifier Notifier         // optional
	Chatbot  *chatbot.Service // website assistant
	Tokens   *auth.Issuer     // admin sessions
}
