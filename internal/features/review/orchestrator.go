package review

import (
	"context"
	"strings"

	"github.com/openlore/lorebase/internal/features/contents"
	"github.com/openlore/lorebase/internal/features/notifications"
	"github.com/openlore/lorebase/internal/moderation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const segmentPreviewLen = 80

// ContentStore is the slice of the contents repository the orchestrator
// needs. Narrow on purpose so tests can substitute it.
type ContentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*contents.Content, error)
	SetApproved(ctx context.Context, id primitive.ObjectID) (bool, error)
	SetRejected(ctx context.Context, id primitive.ObjectID, reason string) (bool, error)
}

// ReportStore persists completed review reports, append-only.
type ReportStore interface {
	CreateReport(ctx context.Context, report *Report) error
}

// Moderator classifies one unit of text.
type Moderator interface {
	Moderate(ctx context.Context, text string, rctx moderation.Context) (moderation.Verdict, error)
}

// TextExtractor pulls reviewable text out of a stored attachment.
type TextExtractor interface {
	Text(ctx context.Context, url, mime string) (string, error)
}

// Notifier delivers the terminal decision to the content owner.
type Notifier interface {
	ReviewDecided(ctx context.Context, recipientID primitive.ObjectID, msg notifications.DecisionMessage) error
}

// DecisionPolicy maps an aggregate violation confidence to a decision.
// Bounds are inclusive: exactly ApproveBelow or RejectAbove lands in
// manual review.
type DecisionPolicy struct {
	ApproveBelow float64
	RejectAbove  float64
}

func DefaultPolicy() DecisionPolicy {
	return DecisionPolicy{ApproveBelow: 0.5, RejectAbove: 0.8}
}

func (p DecisionPolicy) Decide(confidence float64) string {
	switch {
	case confidence < p.ApproveBelow:
		return DecisionAutoApproved
	case confidence > p.RejectAbove:
		return DecisionAutoRejected
	default:
		return DecisionPendingManual
	}
}

// Orchestrator drives one content item through segmentation,
// classification, aggregation, the decision policy, state mutation,
// report persistence and notification.
type Orchestrator struct {
	contents      ContentStore
	reports       ReportStore
	classifier    Moderator
	extractor     TextExtractor
	notifier      Notifier
	policy        DecisionPolicy
	maxSegmentLen int
	log           *zap.Logger
}

func NewOrchestrator(store ContentStore, reports ReportStore, classifier Moderator, extractor TextExtractor, notifier Notifier, policy DecisionPolicy, maxSegmentLen int, log *zap.Logger) *Orchestrator {
	if maxSegmentLen < 1 {
		maxSegmentLen = 4000
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		contents:      store,
		reports:       reports,
		classifier:    classifier,
		extractor:     extractor,
		notifier:      notifier,
		policy:        policy,
		maxSegmentLen: maxSegmentLen,
		log:           log,
	}
}

// ExecuteReview runs one complete review. Terminal no-ops (content
// missing, content not pending, classifier not configured) come back as
// an Outcome with a reason code and leave content untouched. A returned
// error means the attempt failed before any state mutation and, if
// transient, may be retried by the task runner.
func (o *Orchestrator) ExecuteReview(ctx context.Context, contentID primitive.ObjectID, contentType string) (*Outcome, error) {
	if o.classifier == nil {
		return &Outcome{Reason: ReasonServiceUnavailable}, nil
	}

	content, err := o.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content == nil || (contentType != "" && content.Type != contentType) {
		return &Outcome{Reason: ReasonContentNotFound}, nil
	}
	if !content.IsPending() {
		return &Outcome{Reason: ReasonContentNotPending}, nil
	}

	rctx := moderation.Context(content.Type)

	// Classify every unit before touching any state: a failed attempt
	// must leave the content exactly as it was.
	var parts []Part
	var units []moderation.Verdict

	fields := []struct {
		name string
		text string
	}{
		{"title", content.Title},
		{"description", content.Description},
		{"body", content.Body},
	}

	for _, field := range fields {
		if strings.TrimSpace(field.text) == "" {
			// Empty fields are not classified parts at all.
			continue
		}

		var verdicts []moderation.Verdict
		for _, seg := range moderation.Split(field.text, o.maxSegmentLen) {
			verdict, err := o.classifier.Moderate(ctx, seg, rctx)
			if err != nil {
				return nil, err
			}
			verdicts = append(verdicts, verdict)
		}
		units = append(units, verdicts...)

		confidence, violations := moderation.Aggregate(verdicts)
		parts = append(parts, Part{
			Name: field.name,
			Type: PartTypeField,
			Verdict: moderation.Verdict{
				Decision:       worstDecision(verdicts),
				Confidence:     confidence,
				ViolationTypes: violations,
			},
		})
	}

	for _, file := range content.Files {
		part, verdicts, err := o.reviewFile(ctx, file, rctx)
		if err != nil {
			return nil, err
		}
		units = append(units, verdicts...)
		parts = append(parts, part)
	}

	finalConfidence, violationTypes := moderation.Aggregate(units)
	decision := o.policy.Decide(finalConfidence)

	// Apply the decision. The repository refuses the update if the item
	// is no longer pending, which closes the race with a concurrent
	// re-submission of the same content.
	switch decision {
	case DecisionAutoApproved:
		ok, err := o.contents.SetApproved(ctx, content.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Outcome{Reason: ReasonContentNotPending}, nil
		}
	case DecisionAutoRejected:
		ok, err := o.contents.SetRejected(ctx, content.ID, rejectionReason(violationTypes))
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Outcome{Reason: ReasonContentNotPending}, nil
		}
	case DecisionPendingManual:
		// The item stays pending for a human moderator.
	}

	report := &Report{
		ContentID:       content.ID,
		ContentType:     content.Type,
		ContentName:     content.Title,
		Decision:        decision,
		FinalConfidence: finalConfidence,
		ViolationTypes:  violationTypes,
		Parts:           parts,
	}
	if err := o.reports.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	o.log.Info("review completed",
		zap.String("contentId", content.ID.Hex()),
		zap.String("contentType", content.Type),
		zap.String("decision", decision),
		zap.Float64("confidence", finalConfidence),
		zap.Strings("violations", violationTypes),
	)

	o.notify(ctx, content.OwnerID, report)

	return &Outcome{
		Decision:   decision,
		ReportID:   report.ID,
		Confidence: finalConfidence,
	}, nil
}

// reviewFile extracts, segments and classifies one attachment. A file
// with no reviewable text still yields a Part, carrying the neutral
// verdict and no segments.
func (o *Orchestrator) reviewFile(ctx context.Context, file contents.File, rctx moderation.Context) (Part, []moderation.Verdict, error) {
	var text string
	if o.extractor != nil {
		extracted, err := o.extractor.Text(ctx, file.URL, file.Mime)
		if err != nil {
			// Extraction is best effort; an unreadable file reviews as
			// having no text.
			o.log.Warn("attachment text extraction failed",
				zap.String("file", file.Name), zap.Error(err))
		} else {
			text = extracted
		}
	}

	if strings.TrimSpace(text) == "" {
		return Part{
			Name:    file.Name,
			Type:    PartTypeFile,
			Verdict: moderation.SafeVerdict(),
		}, nil, nil
	}

	var verdicts []moderation.Verdict
	var segments []Segment
	for i, seg := range moderation.Split(text, o.maxSegmentLen) {
		verdict, err := o.classifier.Moderate(ctx, seg, rctx)
		if err != nil {
			return Part{}, nil, err
		}
		verdicts = append(verdicts, verdict)
		segments = append(segments, Segment{
			Index:   i,
			Preview: preview(seg),
			Verdict: verdict,
		})
	}

	confidence, violations := moderation.Aggregate(verdicts)
	return Part{
		Name: file.Name,
		Type: PartTypeFile,
		Verdict: moderation.Verdict{
			Decision:       worstDecision(verdicts),
			Confidence:     confidence,
			ViolationTypes: violations,
		},
		Segments: segments,
	}, verdicts, nil
}

func (o *Orchestrator) notify(ctx context.Context, ownerID primitive.ObjectID, report *Report) {
	if o.notifier == nil {
		return
	}

	// Notification failure must never surface out of the orchestrator:
	// the decision and the report are already committed.
	err := o.notifier.ReviewDecided(ctx, ownerID, notifications.DecisionMessage{
		ContentID:   report.ContentID,
		ReportID:    report.ID,
		ContentName: report.ContentName,
		Decision:    report.Decision,
		Rendered:    RenderReport(report),
	})
	if err != nil {
		o.log.Warn("review notification failed",
			zap.String("contentId", report.ContentID.Hex()), zap.Error(err))
	}
}

// worstDecision summarizes a part: any unsafe unit makes the part
// unsafe, otherwise any uncertain unit makes it uncertain.
func worstDecision(verdicts []moderation.Verdict) moderation.Decision {
	decision := moderation.DecisionSafe
	for _, v := range verdicts {
		switch v.Decision {
		case moderation.DecisionUnsafe:
			return moderation.DecisionUnsafe
		case moderation.DecisionUncertain:
			decision = moderation.DecisionUncertain
		}
	}
	return decision
}

// rejectionReason picks the recorded reason deterministically: the
// first violation type of the sorted union.
func rejectionReason(violationTypes []string) string {
	if len(violationTypes) > 0 {
		return violationTypes[0]
	}
	return moderation.ViolationOther
}

func preview(segment string) string {
	trimmed := strings.TrimSpace(segment)
	if len(trimmed) <= segmentPreviewLen {
		return trimmed
	}
	return trimmed[:segmentPreviewLen] + "..."
}
