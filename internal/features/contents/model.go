package contents

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content type constants
const (
	TypeKnowledge = "knowledge"
	TypePersona   = "persona"
)

// Visibility state constants. Every submission starts pending; the
// review pipeline (or a human moderator) moves it to public or rejected.
const (
	StatusPending  = "pending"
	StatusPublic   = "public"
	StatusRejected = "rejected"
)

// File is an attachment stored in Cloudinary and referenced by URL
type File struct {
	Name     string `bson:"name" json:"name"`
	Mime     string `bson:"mime" json:"mime"`
	Size     int64  `bson:"size" json:"size"`
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// Content is one submitted item: a knowledge article or a persona card
type Content struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Type            string             `bson:"type" json:"type"` // "knowledge", "persona"
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Body            string             `bson:"body" json:"body"`
	Files           []File             `bson:"files,omitempty" json:"files,omitempty"`
	Status          string             `bson:"status" json:"status"` // "pending", "public", "rejected"
	RejectionReason string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
	ReviewedAt      *time.Time         `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

func (c *Content) IsPending() bool {
	return c.Status == StatusPending
}

func (c *Content) IsPublic() bool {
	return c.Status == StatusPublic
}

// Request DTOs

type CreateContentRequest struct {
	Type        string `json:"type" binding:"required,oneof=knowledge persona"`
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Body        string `json:"body" binding:"max=500000"`
}

type ContentListQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
	Status string `form:"status" binding:"omitempty,oneof=pending public rejected"`
}
