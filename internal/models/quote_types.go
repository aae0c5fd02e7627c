package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuoteStatus is the lifecycle state of a quote request.
type QuoteStatus string

const (
	QuoteNew       QuoteStatus = "New"
	QuoteContacted QuoteStatus = "Contacted"
	QuoteClosed    QuoteStatus = "Closed"
)

var quoteStatusOrder = map[QuoteStatus]int{
	QuoteNew:       0,
	QuoteContacted: 1,
	QuoteClosed:    2,
}

// Valid reports whether s is a known status.
func (s QuoteStatus) Valid() bool {
	_, ok := quoteStatusOrder[s]
	return ok
}

// CanMoveTo reports whether a quote in status s may be set to next.
// Statuses only move one step forward; repeating the current status is allowed.
func (s QuoteStatus) CanMoveTo(next QuoteStatus) bool {
	from, ok := quoteStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := quoteStatusOrder[next]
	if !ok {
		return false
	}
	return to == from || to == from+1
}

// QuoteItem is one line of a quote request, snapshotted at submission time.
type QuoteItem struct {
	ProductID uint   `json:"productId" binding:"required"`
	Name      string `json:"name" binding:"required,max=200"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Category  string `json:"category,omitempty"`
	Image     string `json:"image,omitempty"`
}

// QuoteRequest is the model for the 'quote_requests' table.
type QuoteRequest struct {
	ID        uint                           `json:"id" gorm:"primaryKey"`
	Name      string                         `json:"name" gorm:"size:150;not null"`
	Email     string                         `json:"email" gorm:"size:191;not null"`
	Phone     *string                        `json:"phone,omitempty" gorm:"size:50"`
	Company   *string                        `json:"company,omitempty" gorm:"size:200"`
	Message   string                         `json:"message" gorm:"type:text"`
	Products  datatypes.JSONSlice[QuoteItem] `json:"products"`
	Status    QuoteStatus                    `json:"status" gorm:"size:20;not null;default:New;index"`
	CreatedAt time.Time                      `json:"createdAt"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// QuoteInput is the body of POST /api/quotes.
type QuoteInput struct {
	Name     string      `json:"name" binding:"required,max=150"`
	Email    string      `json:"email" binding:"required,email,max=191"`
	Phone    string      `json:"phone" binding:"max=50"`
	Company  string      `json:"company" binding:"max=200"`
	Message  string      `json:"message" binding:"required"`
	Products []QuoteItem `json:"products" binding:"required,min=1,dive"`
}

// QuoteStatusInput is the body of PUT /api/quotes/:id/status.
type QuoteStatusInput struct {
	Status QuoteStatus `json:"status" binding:"required,oneof=New Contacted Closed"`
}
