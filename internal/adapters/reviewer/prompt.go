package reviewer

import (
	"fmt"
	"strings"

	"github.com/mikey/mail-sentinel/internal/core"
)

// PromptFormat is the instruction shared by every reviewer provider. The
// reviewer may only recommend escalation; it can never approve a block or
// widen the agent's autonomy.
const PromptFormat = `You are an escalation reviewer for an automated email-handling agent.
The deterministic policy engine decided the agent may reply to the email below
automatically, but at least one risk category scored close to its escalation
threshold. Decide whether a human should handle it instead.
Respond with a JSON object containing:
- escalate: boolean (true if a human should review the email)
- confidence: number between 0 and 1 (how confident you are)
- reason: string (brief justification)

Signals:
%s

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// ReviewResponse is the structured response expected from every provider
type ReviewResponse struct {
	Escalate   bool    `json:"escalate"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// SummarizeBundle renders the signal bundle for the prompt
func SummarizeBundle(bundle core.SignalBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "sender domain class: %s\n", bundle.DomainClass)
	for _, intent := range core.Intents {
		fmt.Fprintf(&b, "%s score: %.1f\n", intent, bundle.Scores[intent])
	}
	for _, cue := range bundle.Cues {
		fmt.Fprintf(&b, "cue %s: %s\n", cue.Type, cue.Text)
	}

	return b.String()
}

// ExtractJSON pulls the first JSON object out of a model response that may
// carry extra prose around it.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
