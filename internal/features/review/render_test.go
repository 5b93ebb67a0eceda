package review

import (
	"testing"

	"github.com/openlore/lorebase/internal/moderation"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRenderReport(t *testing.T) {
	report := &Report{
		ContentID:       primitive.NewObjectID(),
		ContentType:     "knowledge",
		ContentName:     "Herb lore",
		Decision:        DecisionAutoRejected,
		FinalConfidence: 0.93,
		ViolationTypes:  []string{moderation.ViolationAbusive, moderation.ViolationPolitical},
		Parts: []Part{
			{
				Name: "title",
				Type: PartTypeField,
				Verdict: moderation.Verdict{
					Decision:   moderation.DecisionSafe,
					Confidence: 0.05,
				},
			},
			{
				Name: "notes.txt",
				Type: PartTypeFile,
				Verdict: moderation.Verdict{
					Decision:       moderation.DecisionUnsafe,
					Confidence:     0.93,
					ViolationTypes: []string{moderation.ViolationAbusive, moderation.ViolationPolitical},
				},
				Segments: []Segment{
					{Index: 0, Preview: "first paragraph", Verdict: moderation.Verdict{Decision: moderation.DecisionSafe, Confidence: 0.05}},
					{Index: 1, Preview: "second paragraph", Verdict: moderation.Verdict{Decision: moderation.DecisionUnsafe, Confidence: 0.93}},
				},
			},
		},
	}

	rendered := RenderReport(report)

	require.Contains(t, rendered, "Herb lore")
	require.Contains(t, rendered, report.ContentID.Hex())
	require.Contains(t, rendered, "Decision: Rejected automatically")
	require.Contains(t, rendered, "Confidence: 0.93")
	require.Contains(t, rendered, "notes.txt")
	require.Contains(t, rendered, "segment 1:")
	require.Contains(t, rendered, "segment 2:")
	require.Contains(t, rendered, `"second paragraph"`)

	// Rendering is a pure function of the report.
	require.Equal(t, rendered, RenderReport(report))
}

func TestRenderReport_NoViolations(t *testing.T) {
	report := &Report{
		ContentID:       primitive.NewObjectID(),
		ContentType:     "comment",
		ContentName:     "A comment",
		Decision:        DecisionAutoApproved,
		FinalConfidence: 0.0,
	}

	rendered := RenderReport(report)
	require.Contains(t, rendered, "Decision: Approved automatically")
	require.Contains(t, rendered, "Violations: none")
	require.Contains(t, rendered, "No reviewable parts.")
}

func TestDecisionLabel_UnknownPassesThrough(t *testing.T) {
	require.Equal(t, "something_else", DecisionLabel("something_else"))
}
