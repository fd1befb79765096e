package core

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	urlPattern   = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
)

// SignalExtractor turns an email and its filter flags into a SignalBundle:
// weighted per-intent scores, entity cues, and the sender domain class.
type SignalExtractor struct {
	weights           map[Intent]map[string]float64
	subjectMultiplier float64
	roleTerms         []string
	urgencyTerms      []string
	classifier        DomainClassifier
	logger            *zap.Logger
}

// NewSignalExtractor creates a signal extractor from the rule set
func NewSignalExtractor(rules RuleSet, classifier DomainClassifier, logger *zap.Logger) *SignalExtractor {
	weights := make(map[Intent]map[string]float64, len(rules.IntentWeights))
	for intent, table := range rules.IntentWeights {
		lowered := make(map[string]float64, len(table))
		for pattern, weight := range table {
			lowered[strings.ToLower(pattern)] = weight
		}
		weights[intent] = lowered
	}

	return &SignalExtractor{
		weights:           weights,
		subjectMultiplier: rules.SubjectMultiplier,
		roleTerms:         lowerTerms(rules.RoleTerms),
		urgencyTerms:      lowerTerms(rules.UrgencyTerms),
		classifier:        classifier,
		logger:            logger,
	}
}

// Extract builds the signal bundle for an email. Missing subject or body is
// treated as empty text and a malformed sender classifies as UNKNOWN; no
// input ever produces an error.
func (e *SignalExtractor) Extract(email *Email, flags FilterFlags) SignalBundle {
	bundle := SignalBundle{
		Scores:      e.scoreIntents(email.Subject, email.Body),
		Cues:        e.extractCues(email.Subject, email.Body),
		DomainClass: e.classifier.Classify(email.From),
		Flags:       flags,
	}

	e.logger.Debug("Extracted signals",
		zap.String("sender", email.From),
		zap.String("domain_class", string(bundle.DomainClass)),
		zap.Int("cue_count", len(bundle.Cues)))

	return bundle
}

// scoreIntents sums the weights of all distinct matching patterns per
// intent. A pattern found in the subject scores at the subject multiplier;
// absence of evidence never drops a score below 0.
func (e *SignalExtractor) scoreIntents(subject, body string) IntentScores {
	subjectText := strings.ToLower(subject)
	bodyText := strings.ToLower(body)
	scores := NewIntentScores()

	for intent, table := range e.weights {
		for pattern, weight := range table {
			switch {
			case strings.Contains(subjectText, pattern):
				scores[intent] += weight * e.subjectMultiplier
			case strings.Contains(bodyText, pattern):
				scores[intent] += weight
			}
		}
	}

	return scores
}

// extractCues scans subject+body for role mentions, phone-shaped numbers,
// URLs, and urgency terms. Cues are deduplicated by (type, normalized text)
// and ordered by the position of their first match.
func (e *SignalExtractor) extractCues(subject, body string) []EntityCue {
	text := subject + "\n" + body
	lowered := strings.ToLower(text)

	var cues []EntityCue
	seen := make(map[string]bool)

	add := func(t CueType, matched string, pos int) {
		key := string(t) + "\x00" + strings.ToLower(strings.TrimSpace(matched))
		if seen[key] {
			return
		}
		seen[key] = true
		cues = append(cues, EntityCue{Type: t, Text: matched, Position: pos})
	}

	for _, term := range e.roleTerms {
		if pos := strings.Index(lowered, term); pos >= 0 {
			add(CueRoleMention, text[pos:pos+len(term)], pos)
		}
	}
	for _, term := range e.urgencyTerms {
		if pos := strings.Index(lowered, term); pos >= 0 {
			add(CueUrgencyTerm, text[pos:pos+len(term)], pos)
		}
	}
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		add(CuePhoneNumber, text[loc[0]:loc[1]], loc[0])
	}
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		add(CueURL, text[loc[0]:loc[1]], loc[0])
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Position < cues[j].Position
	})

	return cues
}
