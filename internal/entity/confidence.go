package entity

import "strings"

// Confidence levels for the non-AI extraction tiers. The AI path gets the
// weighted presence formula in Score; labeled and heuristic tiers carry
// fixed levels since their reliability is structural, not field-driven.
const (
	LabeledConfidence   = 0.9
	HeuristicConfidence = 0.5
	FallbackConfidence  = 0.4
)

// Score computes the AI-assisted extraction confidence: a weighted
// presence-of-field sum capped at 1.0. The individual weights are tunable;
// the shape (base + per-field bonuses, capped) is relied on by callers.
func Score(name, phone, email, address, rawText string) float64 {
	score := 0.3
	if len(strings.TrimSpace(name)) >= 3 {
		score += 0.3
	}
	if strings.TrimSpace(phone) != "" {
		score += 0.15
	}
	if strings.TrimSpace(email) != "" {
		score += 0.15
	}
	if strings.TrimSpace(address) != "" {
		score += 0.1
	}
	if HasBusinessSuffix(rawText) {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
