package notifications

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Pusher is the optional push-delivery channel behind the inbox.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type Service struct {
	repo   *Repository
	pusher Pusher
	log    *zap.Logger
}

func NewService(repo *Repository, pusher Pusher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		pusher: pusher,
		log:    log,
	}
}

var decisionTitles = map[string]string{
	"auto_approved":  "Your content is now public",
	"auto_rejected":  "Your content was rejected",
	"pending_manual": "Your content is awaiting manual review",
}

// ReviewDecided informs a content owner about a review decision. The
// inbox write and the push are both best effort; the review itself is
// already committed, so nothing here may fail the caller.
func (s *Service) ReviewDecided(ctx context.Context, recipientID primitive.ObjectID, msg DecisionMessage) error {
	title, ok := decisionTitles[msg.Decision]
	if !ok {
		title = "Your content was reviewed"
	}

	notification := &Notification{
		RecipientID: recipientID,
		Type:        TypeReviewDecision,
		Title:       title,
		Message:     msg.Rendered,
		ContentID:   &msg.ContentID,
		ReportID:    &msg.ReportID,
		ExtraData: map[string]string{
			"decision":    msg.Decision,
			"contentName": msg.ContentName,
		},
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.log.Warn("failed to store review notification",
			zap.String("contentId", msg.ContentID.Hex()), zap.Error(err))
		return err
	}

	s.push(ctx, recipientID, title, msg)
	return nil
}

func (s *Service) push(ctx context.Context, recipientID primitive.ObjectID, title string, msg DecisionMessage) {
	if s.pusher == nil {
		return
	}

	tokens, err := s.repo.DeviceTokens(ctx, recipientID)
	if err != nil {
		s.log.Warn("failed to load device tokens", zap.Error(err))
		return
	}

	data := map[string]string{
		"type":      TypeReviewDecision,
		"contentId": msg.ContentID.Hex(),
		"reportId":  msg.ReportID.Hex(),
		"decision":  msg.Decision,
	}

	for _, t := range tokens {
		if err := s.pusher.Send(ctx, t, title, msg.ContentName, data); err != nil {
			s.log.Warn("push delivery failed", zap.Error(err))
		}
	}
}
