package review

import (
	"time"

	"github.com/openlore/lorebase/internal/moderation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Terminal review decisions
const (
	DecisionAutoApproved  = "auto_approved"
	DecisionAutoRejected  = "auto_rejected"
	DecisionPendingManual = "pending_manual"
)

// Terminal no-op reasons. These are normal results, not errors, and are
// never retried.
const (
	ReasonContentNotFound    = "content_not_found"
	ReasonContentNotPending  = "content_not_pending"
	ReasonServiceUnavailable = "moderation_service_unavailable"
)

var reasonMessages = map[string]string{
	ReasonContentNotFound:    "Content not found",
	ReasonContentNotPending:  "Content is not pending review",
	ReasonServiceUnavailable: "Moderation service is unavailable",
}

// ReasonMessage returns the human message for a terminal reason code.
func ReasonMessage(reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	return reason
}

// Part type constants
const (
	PartTypeField = "field"
	PartTypeFile  = "file"
)

// Segment is one classified slice of an attachment's extracted text
type Segment struct {
	Index   int                `bson:"index" json:"index"`
	Preview string             `bson:"preview" json:"preview"`
	Verdict moderation.Verdict `bson:"verdict" json:"verdict"`
}

// Part is one reviewed unit of a content item: a text field or a file.
// File parts keep their segment-level verdicts for the audit trail.
type Part struct {
	Name     string             `bson:"name" json:"name"`
	Type     string             `bson:"type" json:"type"` // "field", "file"
	Verdict  moderation.Verdict `bson:"verdict" json:"verdict"`
	Segments []Segment          `bson:"segments,omitempty" json:"segments,omitempty"`
}

// Report is the immutable audit record of one completed review run.
// It is created exactly once and never updated.
type Report struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ContentID       primitive.ObjectID `bson:"contentId" json:"contentId"`
	ContentType     string             `bson:"contentType" json:"contentType"`
	ContentName     string             `bson:"contentName" json:"contentName"`
	Decision        string             `bson:"decision" json:"decision"`
	FinalConfidence float64            `bson:"finalConfidence" json:"finalConfidence"`
	ViolationTypes  []string           `bson:"violationTypes,omitempty" json:"violationTypes,omitempty"`
	Parts           []Part             `bson:"parts" json:"parts"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Outcome is the result of one orchestration run. Either Reason is set
// (terminal no-op, content untouched) or Decision and ReportID are.
type Outcome struct {
	Reason     string             `json:"reason,omitempty"`
	Decision   string             `json:"decision,omitempty"`
	ReportID   primitive.ObjectID `json:"reportId,omitempty"`
	Confidence float64            `json:"confidence"`
}

// Terminal reports whether the run was a no-op with a reason code.
func (o *Outcome) Terminal() bool {
	return o.Reason != ""
}

// Request DTOs

type BatchReviewRequest struct {
	ContentIDs  []string `json:"contentIds" binding:"required,min=1,max=100"`
	ContentType string   `json:"contentType" binding:"required,oneof=knowledge persona"`
}

// Response DTOs

type TaskResponse struct {
	TaskID    string `json:"taskId"`
	ContentID string `json:"contentId"`
	Status    string `json:"status"`
}

type BatchReviewResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}
