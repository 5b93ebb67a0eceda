package moderation

import (
	"fmt"
	"sort"
)

// Decision is the per-unit classification outcome.
type Decision string

const (
	DecisionSafe      Decision = "safe"
	DecisionUnsafe    Decision = "unsafe"
	DecisionUncertain Decision = "uncertain"
)

// Violation type vocabulary. This is configuration, not domain logic:
// the classifier is instructed to use exactly these tokens and anything
// else fails verdict validation.
const (
	ViolationPornographic = "pornographic"
	ViolationAbusive      = "abusive"
	ViolationPolitical    = "political"
	ViolationOther        = "other"
)

// ViolationTypes lists every token the classifier may return.
var ViolationTypes = []string{
	ViolationPornographic,
	ViolationAbusive,
	ViolationPolitical,
	ViolationOther,
}

var violationLabels = map[string]string{
	ViolationPornographic: "Pornographic content",
	ViolationAbusive:      "Abusive or harassing content",
	ViolationPolitical:    "Sensitive political content",
	ViolationOther:        "Other policy violation",
}

// ViolationLabel returns the human-readable label for a violation token.
// Unknown tokens are returned as-is so rendering never drops information.
func ViolationLabel(token string) string {
	if label, ok := violationLabels[token]; ok {
		return label
	}
	return token
}

// Verdict is the classification outcome for a single unit of text.
// Confidence is the probability of a policy violation, in [0, 1].
type Verdict struct {
	Decision       Decision `bson:"decision" json:"decision"`
	Confidence     float64  `bson:"confidence" json:"confidence"`
	ViolationTypes []string `bson:"violationTypes,omitempty" json:"violationTypes,omitempty"`
}

// DefaultVerdict is what callers substitute when the classifier response
// cannot be trusted: maximally uncertain, no claimed violations.
func DefaultVerdict() Verdict {
	return Verdict{Decision: DecisionUncertain, Confidence: 0.5}
}

// SafeVerdict is the neutral verdict for units that carry no reviewable
// text and are never sent to the classifier.
func SafeVerdict() Verdict {
	return Verdict{Decision: DecisionSafe, Confidence: 0}
}

// Validate rejects any verdict whose decision is outside the enum, whose
// confidence is outside [0, 1], or whose violation types contain tokens
// not in the vocabulary. Verdicts coming off the wire must pass this
// before anything downstream trusts them.
func (v Verdict) Validate() error {
	switch v.Decision {
	case DecisionSafe, DecisionUnsafe, DecisionUncertain:
	default:
		return fmt.Errorf("invalid decision %q", v.Decision)
	}

	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", v.Confidence)
	}

	for _, token := range v.ViolationTypes {
		if _, ok := violationLabels[token]; !ok {
			return fmt.Errorf("unknown violation type %q", token)
		}
	}

	return nil
}

// Aggregate combines per-unit verdicts into the overall review outcome:
// the maximum confidence (worst case dominates) and the sorted union of
// violation types. Both operations are order-independent, so unit
// evaluation order never changes the result. Zero units aggregate to
// (0, nil), i.e. safe.
func Aggregate(verdicts []Verdict) (float64, []string) {
	var confidence float64
	seen := make(map[string]struct{})

	for _, v := range verdicts {
		if v.Confidence > confidence {
			confidence = v.Confidence
		}
		for _, token := range v.ViolationTypes {
			seen[token] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return confidence, nil
	}

	union := make([]string, 0, len(seen))
	for token := range seen {
		union = append(union, token)
	}
	sort.Strings(union)

	return confidence, union
}
