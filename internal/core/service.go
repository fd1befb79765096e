package core

import (
	"context"

	"go.uber.org/zap"
)

// SentinelService runs the full autonomy decision pipeline for one email:
// pattern filtering, signal extraction, and the escalation policy, plus the
// optional reviewer consult for near-threshold automatic replies.
type SentinelService struct {
	filter       *PatternFilter
	extractor    *SignalExtractor
	policy       *PolicyEngine
	thresholds   map[Intent]float64
	reviewer     Reviewer
	reviewMargin float64
	logger       *zap.Logger
}

// NewSentinelService creates the decision pipeline from a validated rule
// set. reviewer may be nil; reviewMargin is the band below a threshold
// within which an AUTO_REPLY decision is offered for review.
func NewSentinelService(
	rules RuleSet,
	classifier DomainClassifier,
	reviewer Reviewer,
	reviewMargin float64,
	logger *zap.Logger,
) *SentinelService {
	return &SentinelService{
		filter:       NewPatternFilter(rules),
		extractor:    NewSignalExtractor(rules, classifier, logger),
		policy:       NewPolicyEngine(rules),
		thresholds:   rules.Thresholds,
		reviewer:     reviewer,
		reviewMargin: reviewMargin,
		logger:       logger,
	}
}

// Evaluate decides the autonomy action for one email. It never fails: every
// input yields a decision, and the system resolves uncertainty toward
// escalation rather than silent automatic action.
func (s *SentinelService) Evaluate(ctx context.Context, email *Email) DecisionResult {
	_, decision := s.EvaluateWithSignals(ctx, email)
	return decision
}

// EvaluateWithSignals is Evaluate exposing the intermediate signal bundle,
// used by callers that report scores and cues alongside the decision.
func (s *SentinelService) EvaluateWithSignals(ctx context.Context, email *Email) (SignalBundle, DecisionResult) {
	flags := s.filter.Flags(email.Subject, email.Body)
	bundle := s.extractor.Extract(email, flags)
	decision := s.policy.Decide(bundle)

	if decision.Action == ActionAutoReply && s.reviewer != nil && s.nearThreshold(bundle) {
		decision = s.consultReviewer(ctx, email, bundle, decision)
	}

	s.logger.Info("Email evaluated",
		zap.String("sender", email.From),
		zap.String("action", string(decision.Action)),
		zap.Float64("confidence", decision.Confidence),
		zap.Strings("triggered_rules", decision.TriggeredRules))

	return bundle, decision
}

// nearThreshold reports whether any intent score sits within the review
// margin below its escalation threshold.
func (s *SentinelService) nearThreshold(bundle SignalBundle) bool {
	if s.reviewMargin <= 0 {
		return false
	}
	for _, intent := range Intents {
		score := bundle.Scores[intent]
		threshold := s.thresholds[intent]
		if score > 0 && score < threshold && threshold-score <= s.reviewMargin {
			return true
		}
	}
	return false
}

// consultReviewer asks the reviewer whether an ambiguous AUTO_REPLY should
// be escalated. Reviewer failure is logged and ignored; the deterministic
// decision stands.
func (s *SentinelService) consultReviewer(ctx context.Context, email *Email, bundle SignalBundle, decision DecisionResult) DecisionResult {
	verdict, err := s.reviewer.Review(ctx, email, bundle)
	if err != nil {
		s.logger.Warn("Reviewer consult failed, keeping policy decision",
			zap.Error(err),
			zap.String("sender", email.From))
		return decision
	}
	if verdict == nil || !verdict.Escalate {
		return decision
	}

	decision.Action = ActionEscalateHuman
	decision.TriggeredRules = append(decision.TriggeredRules, RuleReviewerOverride)
	decision.Rationale = "reviewer escalated a near-threshold decision: " + verdict.Reason
	if verdict.Confidence > decision.Confidence {
		decision.Confidence = verdict.Confidence
	}

	s.logger.Info("Reviewer override applied",
		zap.String("sender", email.From),
		zap.String("reason", verdict.Reason))

	return decision
}
