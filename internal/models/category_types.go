package models

import "time"

// Category defines the struct for the 'categories' table.
// A category owns a forest of Subcategory rows.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"size:160;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subcategory is one node of a category tree. ParentID is nil for root nodes.
type Subcategory struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	Name       string       `json:"name" gorm:"size:150;not null"`
	CategoryID uint         `json:"categoryId" gorm:"not null;index"`
	Category   *Category    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ParentID   *uint        `json:"parentId,omitempty" gorm:"index"`
	Parent     *Subcategory `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`

	// Position keeps sibling order as submitted by the admin UI.
	Position int `json:"position" gorm:"not null;default:0"`
}

// SubcategoryNode is one node of a submitted tree.
// ID is set when the node already exists and is being resubmitted.
type SubcategoryNode struct {
	ID       *uint             `json:"id,omitempty"`
	Name     string            `json:"name" binding:"required,max=150"`
	Children []SubcategoryNode `json:"children,omitempty" binding:"omitempty,dive"`
}

// CategoryInput is the body of create and update category requests.
type CategoryInput struct {
	Name          string            `json:"name" binding:"required,max=150"`
	Subcategories []SubcategoryNode `json:"subcategories" binding:"omitempty,dive"`
}
