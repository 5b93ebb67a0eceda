package moderation

// Context tells the classifier what kind of platform content it is
// looking at, so the instruction can carry context-specific rules.
type Context string

const (
	ContextKnowledge Context = "knowledge"
	ContextPersona   Context = "persona"
	ContextComment   Context = "comment"
)

const baseInstruction = `You are the automated content reviewer for a public content platform.
Judge whether the submitted text complies with the platform policy.

Respond with a single JSON object and nothing else, with exactly these fields:
  "decision": "true" if the text complies with policy, "false" if it violates policy, "unknown" if you cannot tell
  "confidence": a number between 0.0 and 1.0, the probability that the text violates policy
  "violation_types": an array containing only tokens from: "pornographic", "abusive", "political", "other"

`

var contextRules = map[Context]string{
	ContextKnowledge: `The text is part of a knowledge article shared with other users.
Educational or encyclopedic discussion of sensitive topics is acceptable;
instructions that enable harm, explicit sexual material and targeted
harassment are not.`,
	ContextPersona: `The text describes a fictional persona card (name, personality, example
dialogue). Fictional villainy is acceptable; personas built to produce
explicit sexual content, glorify abuse or push political propaganda are not.`,
	ContextComment: `The text is a user comment. Blunt criticism is acceptable; harassment,
slurs, sexual content and spammy political agitation are not.`,
}

const genericRules = `The text is user-submitted content. Flag explicit sexual material,
harassment or abuse, sensitive political agitation, and anything else that
violates the platform policy.`

// buildInstruction assembles the system instruction for one review
// context, falling back to the generic rules for anything unrecognized.
func buildInstruction(ctx Context) string {
	rules, ok := contextRules[ctx]
	if !ok {
		rules = genericRules
	}
	return baseInstruction + rules
}
