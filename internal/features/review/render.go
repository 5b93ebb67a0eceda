package review

import (
	"fmt"
	"strings"

	"github.com/openlore/lorebase/internal/moderation"
)

var decisionLabels = map[string]string{
	DecisionAutoApproved:  "Approved automatically",
	DecisionAutoRejected:  "Rejected automatically",
	DecisionPendingManual: "Escalated to manual review",
}

// DecisionLabel returns the display label for a decision code.
func DecisionLabel(decision string) string {
	if label, ok := decisionLabels[decision]; ok {
		return label
	}
	return decision
}

// RenderReport builds the human-readable form of a report. Everything
// in the output derives from the report alone, so the text can be
// regenerated at any time for notifications or the moderation UI.
func RenderReport(r *Report) string {
	var b strings.Builder

	b.WriteString("=== Content Review Report ===\n")
	fmt.Fprintf(&b, "Content: %s (%s, %s)\n", r.ContentName, r.ContentType, r.ContentID.Hex())
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Reviewed at: %s\n", r.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(&b, "Decision: %s\n", DecisionLabel(r.Decision))
	fmt.Fprintf(&b, "Confidence: %.2f\n", r.FinalConfidence)
	fmt.Fprintf(&b, "Violations: %s\n", violationList(r.ViolationTypes))

	if len(r.Parts) == 0 {
		b.WriteString("\nNo reviewable parts.\n")
		return b.String()
	}

	b.WriteString("\nParts:\n")
	for _, part := range r.Parts {
		fmt.Fprintf(&b, "- %s [%s]: %s, confidence %.2f, violations: %s\n",
			part.Name, part.Type, part.Verdict.Decision, part.Verdict.Confidence,
			violationList(part.Verdict.ViolationTypes))

		for _, seg := range part.Segments {
			fmt.Fprintf(&b, "    segment %d: %s, confidence %.2f, %q\n",
				seg.Index+1, seg.Verdict.Decision, seg.Verdict.Confidence, seg.Preview)
		}
	}

	return b.String()
}

func violationList(tokens []string) string {
	if len(tokens) == 0 {
		return "none"
	}

	labels := make([]string, len(tokens))
	for i, t := range tokens {
		labels[i] = moderation.ViolationLabel(t)
	}
	return strings.Join(labels, ", ")
}
