package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type constants
const (
	TypeReviewDecision = "review_decision"
)

// Notification represents a user notification
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipientId" json:"recipientId"`
	Type        string              `bson:"type" json:"type"`
	Title       string              `bson:"title" json:"title"`
	Message     string              `bson:"message" json:"message"`
	ContentID   *primitive.ObjectID `bson:"contentId,omitempty" json:"contentId,omitempty"`
	ReportID    *primitive.ObjectID `bson:"reportId,omitempty" json:"reportId,omitempty"`
	ExtraData   map[string]string   `bson:"extraData,omitempty" json:"extraData,omitempty"`
	IsRead      bool                `bson:"isRead" json:"isRead"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// DecisionMessage carries everything needed to notify a content owner
// about a terminal review decision.
type DecisionMessage struct {
	ContentID   primitive.ObjectID
	ReportID    primitive.ObjectID
	ContentName string
	Decision    string
	Rendered    string
}

// Request DTOs

type NotificationListQuery struct {
	Page       int  `form:"page,default=1" binding:"min=1"`
	Limit      int  `form:"limit,default=20" binding:"min=1,max=50"`
	UnreadOnly bool `form:"unreadOnly"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// Response DTOs

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkAllReadResponse struct {
	MarkedCount int64 `json:"markedCount"`
}
