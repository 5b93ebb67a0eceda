package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlore/lorebase/internal/features/contents"
	"github.com/openlore/lorebase/internal/moderation"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func waitFor(t *testing.T, handle *TaskHandle) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, handle.Wait(ctx))
}

func TestRunner_Succeeds(t *testing.T) {
	content := pendingContent()
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, nil)
	runner := NewRunner(o, 2, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	handle := runner.Submit(content.ID, contents.TypeKnowledge)
	waitFor(t, handle)

	require.False(t, handle.Failed())
	require.Equal(t, TaskStatusSucceeded, handle.Status())

	outcome, err := handle.Result()
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, outcome.Decision)
	require.Equal(t, contents.StatusPublic, store.get(content.ID).Status)

	got, ok := runner.Task(handle.ID)
	require.True(t, ok)
	require.Same(t, handle, got)
}

func TestRunner_RetryCap(t *testing.T) {
	content := pendingContent()
	content.Description = ""
	content.Body = "" // single segment, one classifier call per attempt
	store := newFakeContentStore(content)
	reports := &fakeReportStore{}
	mod := failingModerator()

	o := newTestOrchestrator(store, reports, mod, nil, nil)
	runner := NewRunner(o, 1, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	handle := runner.Submit(content.ID, contents.TypeKnowledge)
	waitFor(t, handle)

	require.True(t, handle.Failed())
	require.Equal(t, TaskStatusFailed, handle.Status())
	require.Equal(t, 3, mod.callCount())

	_, err := handle.Result()
	require.True(t, moderation.IsTransient(err))

	// A failed task must leave the content exactly as submitted.
	require.Equal(t, contents.StatusPending, store.get(content.ID).Status)
	require.Zero(t, reports.count())
}

func TestRunner_NonTransientErrorNotRetried(t *testing.T) {
	content := pendingContent()
	content.Description = ""
	content.Body = ""
	store := newFakeContentStore(content)
	mod := &fakeModerator{fn: func(string) (moderation.Verdict, error) {
		return moderation.Verdict{}, errors.New("boom")
	}}

	o := newTestOrchestrator(store, &fakeReportStore{}, mod, nil, nil)
	runner := NewRunner(o, 1, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	handle := runner.Submit(content.ID, contents.TypeKnowledge)
	waitFor(t, handle)

	require.True(t, handle.Failed())
	require.Equal(t, 1, mod.callCount())
}

func TestRunner_TerminalOutcomeNotRetried(t *testing.T) {
	store := newFakeContentStore()
	mod := constantModerator(0.1)

	o := newTestOrchestrator(store, &fakeReportStore{}, mod, nil, nil)
	runner := NewRunner(o, 1, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	handle := runner.Submit(primitive.NewObjectID(), contents.TypeKnowledge)
	waitFor(t, handle)

	require.False(t, handle.Failed())
	outcome, err := handle.Result()
	require.NoError(t, err)
	require.True(t, outcome.Terminal())
	require.Equal(t, ReasonContentNotFound, outcome.Reason)
	require.Zero(t, mod.callCount())
}

func TestRunner_BatchFanOut(t *testing.T) {
	items := []*contents.Content{pendingContent(), pendingContent(), pendingContent(), pendingContent()}
	store := newFakeContentStore(items...)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, nil)
	runner := NewRunner(o, 2, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	handles := runner.SubmitBatch(ids, contents.TypeKnowledge)
	require.Len(t, handles, 4)

	seen := make(map[string]struct{})
	for _, handle := range handles {
		waitFor(t, handle)
		require.False(t, handle.Failed())
		seen[handle.ID] = struct{}{}
	}
	require.Len(t, seen, 4)

	for _, item := range items {
		require.Equal(t, contents.StatusPublic, store.get(item.ID).Status)
	}
	require.Equal(t, 4, reports.count())
}

func TestRunner_BatchIndependentFailure(t *testing.T) {
	good := pendingContent()
	alreadyPublic := pendingContent()
	alreadyPublic.Status = contents.StatusPublic
	store := newFakeContentStore(good, alreadyPublic)
	reports := &fakeReportStore{}

	o := newTestOrchestrator(store, reports, constantModerator(0.1), nil, nil)
	runner := NewRunner(o, 2, RetryPolicy{MaxAttempts: 3, Delay: 0}, nil)

	handles := runner.SubmitBatch(
		[]primitive.ObjectID{good.ID, alreadyPublic.ID, primitive.NewObjectID()},
		contents.TypeKnowledge,
	)
	require.Len(t, handles, 3)
	for _, handle := range handles {
		waitFor(t, handle)
	}

	okOutcome, err := handles[0].Result()
	require.NoError(t, err)
	require.Equal(t, DecisionAutoApproved, okOutcome.Decision)

	skipped, _ := handles[1].Result()
	require.Equal(t, ReasonContentNotPending, skipped.Reason)

	missing, _ := handles[2].Result()
	require.Equal(t, ReasonContentNotFound, missing.Reason)

	require.Equal(t, 1, reports.count())
	runner.Wait()
}
