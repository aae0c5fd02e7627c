package models

import "time"

// ContactMessage is the model for the 'contact_messages' table.
type ContactMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null"`
	Email     string    `json:"email" gorm:"size:191;not null"`
	Subject   string    `json:"subject" gorm:"size:255"`
	Message   string    `json:"message" gorm:"type:text"`
	Replied   bool      `json:"replied" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageInput is the body of POST /api/messages.
type MessageInput struct {
	Name    string `json:"name" binding:"required,max=150"`
	Email   string `json:"email" binding:"required,email,max=191"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required"`
}

// RepliedInput is the body of PUT /api/messages/:id/replied.
// A missing body marks the message as replied.
type RepliedInput struct {
	Replied *bool `json:"replied"`
}
