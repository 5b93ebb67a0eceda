package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/openlore/lorebase/internal/features/contents"
	"github.com/openlore/lorebase/internal/features/notifications"
	"github.com/openlore/lorebase/internal/moderation"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Test fakes

type fakeContentStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*contents.Content
}

func newFakeContentStore(items ...*contents.Content) *fakeContentStore {
	store := &fakeContentStore{items: make(map[primitive.ObjectID]*contents.Content)}
	for _, item := range items {
		store.items[item.ID] = item
	}
	return store
}

func (s *fakeContentStore) GetByID(_ context.Context, id primitive.ObjectID) (*contents.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	return &clone, nil
}

func (s *fakeContentStore) SetApproved(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Status != contents.StatusPending {
		return false, nil
	}
	item.Status = contents.StatusPublic
	return true, nil
}

func (s *fakeContentStore) SetRejected(_ context.Context, id primitive.ObjectID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Status != contents.StatusPending {
		return false, nil
	}
	item.Status = contents.StatusRejected
	item.RejectionReason = reason
	return true, nil
}

func (s *fakeContentStore) get(id primitive.ObjectID) contents.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[id]
}

type fakeReportStore struct {
	mu      sync.Mutex
	reports []*Report
}

func (s *fakeReportStore) CreateReport(_ context.Context, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.ID = primitive.NewObjectID()
	s.reports = append(s.reports, report)
	return nil
}

func (s *fakeReportStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type fakeModerator struct {
	mu    sync.Mutex
	calls int
	fn    func(text string) (moderation.Verdict, error)
}

func (m *fakeModerator) Moderate(_ context.Context, text string, _ moderation.Context) (moderation.Verdict, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(text)
}

func (m *fakeModerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func constantModerator(confidence float64, violations ...string) *fakeModerator {
	decision := moderation.DecisionSafe
	if confidence >= 0.5 {
		decision = moderation.DecisionUnsafe
	}
	return &fakeModerator{fn: func(string) (moderation.Verdict, error) {
		return moderation.Verdict{Decision: decision, Confidence: confidence, ViolationTypes: violations}, nil
	}}
}

func failingModerator() *fakeModerator {
	return &fakeModerator{fn: func(string) (moderation.Verdict, error) {
		return moderation.Verdict{}, fmt.Errorf("%w: connection refused", moderation.ErrUnavailable)
	}}
}

type fakeExtractor struct {
	texts map[string]string
}

func (e *fakeExtractor) Text(_ context.Context, url, _ string) (string, error) {
	if e.texts == nil {
		return "", nil
	}
	if text, ok := e.texts[url]; ok {
		return text, nil
	}
	return "", errors.New("fetch failed")
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notifications.DecisionMessage
	err      error
}

func (n *fakeNotifier) ReviewDecided(_ context.Context, _ primitive.ObjectID, msg notifications.DecisionMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func pendingContent() *contents.Content {
	return &contents.Content{
		ID:      primitive.NewObjectID(),
		OwnerID: primitive.NewObjectID(),
		Type:    contents.TypeKnowledge,
		Title:   "Herb lore",
		Body:    "A long treatise on herbs.",
		Status:  contents.StatusPending,
	}
}

func newTestOrchestrator(store ContentStore, reports ReportStore, mod Moderator, ext TextExtractor, notifier Notifier) *Orchestrator {
	return NewOrchestrator(store, reports, mod, ext, notifier, DefaultPolicy(), 4000, nil)
}

// Tests

func TestDecisionPolicy_Boundaries(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		confidence float64
		want       string
	}{
		{0.0, DecisionAutoApproved},
		{0.49999, DecisionAutoApproved},
		{0.5, DecisionPendingManual},
		{0.8, DecisionPendingManual},
		{0.80001, DecisionAutoRejected},
		{1.0, DecisionAutoRejected},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, policy.Decide(tc.confidence), "confidence %v", tc.confidence)
	}
}

func TestExecuteReview_AutoApproves(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	notifier := &fakeNotifier{}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, notifier)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.False(t, outcome.Terminal())
	require.Equal(t, DecisionAutoApproved, outcome.Decision)

	require.Equal(t, contents.StatusPublic, store.get(content.ID).Status)
	require.Equal(t, 1, reports.count())

	report := reports.reports[0]
	require.Equal(t, content.ID, report.ContentID)
	require.Equal(t, DecisionAutoApproved, report.Decision)
	require.Equal(t, 0.1, report.FinalConfidence)
	// title + body reviewed; the empty description is not a part
	require.Len(t, report.Parts, 2)
	require.Equal(t, "title", report.Parts[0].Name)
	require.Equal(t, "body", report.Parts[1].Name)

	require.Len(t, notifier.messages, 1)
	require.Equal(t, DecisionAutoApproved, notifier.messages[0].Decision)
	require.NotEmpty(t, notifier.messages[0].Rendered)
}

func TestExecuteReview_AutoRejectsWithDeterministicReason(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports,
		constantModerator(0.95, moderation.ViolationPolitical, moderation.ViolationAbusive), nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionAutoRejected, outcome.Decision)

	updated := store.get(content.ID)
	require.Equal(t, contents.StatusRejected, updated.Status)
	// First violation type of the sorted union
	require.Equal(t, moderation.ViolationAbusive, updated.RejectionReason)

	require.Equal(t, []string{moderation.ViolationAbusive, moderation.ViolationPolitical},
		reports.reports[0].ViolationTypes)
}

func TestExecuteReview_PendingManualLeavesContentPending(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, constantModerator(0.6, moderation.ViolationOther), nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionPendingManual, outcome.Decision)

	// No visibility mutation: a human moderator takes it from here.
	require.Equal(t, contents.StatusPending, store.get(content.ID).Status)
	require.Equal(t, 1, reports.count())
}

func TestExecuteReview_NoOpOnMissingContent(t *testing.T) {
	store := newFakeContentStore()
	reports := &fakeReportStore{}
	mod := constantModerator(0.9)

	o := newTestOrchestrator(store, reports, mod, nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), primitive.NewObjectID(), contents.TypeKnowledge)
	require.NoError(t, err)
	require.True(t, outcome.Terminal())
	require.Equal(t, ReasonContentNotFound, outcome.Reason)
	require.Zero(t, mod.callCount())
	require.Zero(t, reports.count())
}

func TestExecuteReview_NoOpOnNonPendingContent(t *testing.T) {
	content := pendingContent()
	content.Status = contents.StatusPublic
	before := *content

	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	mod := constantModerator(0.9)

	o := newTestOrchestrator(store, reports, mod, nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.True(t, outcome.Terminal())
	require.Equal(t, ReasonContentNotPending, outcome.Reason)

	// Nothing about the content may change on a no-op.
	require.Equal(t, before, store.get(content.ID))
	require.Zero(t, mod.callCount())
	require.Zero(t, reports.count())
}

func TestExecuteReview_ServiceUnavailableWithoutClassifier(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, nil, nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, ReasonServiceUnavailable, outcome.Reason)
	require.Equal(t, contents.StatusPending, store.get(content.ID).Status)
}

func TestExecuteReview_TransientFailureLeavesStateUntouched(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, failingModerator(), nil, nil)
	_, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.Error(t, err)
	require.True(t, moderation.IsTransient(err))

	require.Equal(t, contents.StatusPending, store.get(content.ID).Status)
	require.Zero(t, reports.count())
}

func TestExecuteReview_SecondRunIsNoOp(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, nil)

	first, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, first.Decision)

	second, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, ReasonContentNotPending, second.Reason)
	require.Equal(t, 1, reports.count())
}

func TestExecuteReview_FilesGetSegmentDetail(t *testing.T) {
	content := pendingContent()
	content.Body = ""
	content.Files = []contents.File{
		{Name: "notes.txt", Mime: "text/plain", URL: "https://files.test/notes"},
		{Name: "image.png", Mime: "image/png", URL: "https://files.test/image"},
	}

	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	extractor := &fakeExtractor{texts: map[string]string{
		"https://files.test/notes": "first paragraph\n\nsecond paragraph",
		"https://files.test/image": "",
	}}

	o := NewOrchestrator(store, reports, constantModerator(0.2), extractor, nil, DefaultPolicy(), 20, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, outcome.Decision)

	report := reports.reports[0]
	require.Len(t, report.Parts, 3) // title + two files

	notes := report.Parts[1]
	require.Equal(t, "notes.txt", notes.Name)
	require.Equal(t, PartTypeFile, notes.Type)
	require.Len(t, notes.Segments, 2)
	require.Equal(t, 0, notes.Segments[0].Index)
	require.NotEmpty(t, notes.Segments[0].Preview)

	// A file with no reviewable text is still a part, with the neutral
	// verdict and no segments.
	image := report.Parts[2]
	require.Equal(t, "image.png", image.Name)
	require.Equal(t, moderation.SafeVerdict(), image.Verdict)
	require.Empty(t, image.Segments)
}

func TestExecuteReview_NoClassifiedUnitsMeansSafe(t *testing.T) {
	content := pendingContent()
	content.Title = "   "
	content.Body = "\n\n"
	content.Description = ""

	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	mod := constantModerator(0.99)

	o := newTestOrchestrator(store, reports, mod, nil, nil)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, outcome.Decision)
	require.Equal(t, 0.0, outcome.Confidence)
	require.Zero(t, mod.callCount())
}

func TestExecuteReview_NotifierFailureIsSwallowed(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	notifier := &fakeNotifier{err: errors.New("push exploded")}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, notifier)
	outcome, err := o.ExecuteReview(context.Background(), content.ID, contents.TypeKnowledge)
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, outcome.Decision)
	require.Equal(t, contents.StatusPublic, store.get(content.ID).Status)
}
