package domain

type Recommendation string

const (
	RecommendationAccept Recommendation = "ACCEPT"
	RecommendationReject Recommendation = "REJECT"
)

const DefaultAcceptanceThreshold = 85

// RubricDetails carries the per-subsection scores of the evaluation rubric.
// Caps: attribute fidelity 35, pose/expression/culture 15, style 20,
// rendering 15, composition 10.
type RubricDetails struct {
	AttributeFidelity     int `json:"attribute_fidelity"`
	PoseExpressionCulture int `json:"pose_expression_culture"`
	StyleCompliance       int `json:"style_compliance"`
	RenderingQuality      int `json:"rendering_quality"`
	CompositionBalance    int `json:"composition_balance"`
}

// QualityVerdict is the evaluator's judgement of one rendered artifact.
type QualityVerdict struct {
	HardRulesPassed bool           `json:"hardRulesPassed"`
	HardRulesFailed []string       `json:"hardRulesFailed"`
	Score           int            `json:"score"`
	Passed          bool           `json:"passed"`
	Details         *RubricDetails `json:"details,omitempty"`
	Issues          []string       `json:"issues"`
	Recommendation  Recommendation `json:"recommendation"`
}

// ClampScore bounds a model-reported total to [0,100]. Consistency with the
// subsection sums is deliberately not enforced.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// FailedVerdict synthesizes the verdict used when evaluation itself fails.
// Evaluation failures never propagate as errors; they become a zero-score
// rejection that still participates in best-so-far selection.
func FailedVerdict(reason string) *QualityVerdict {
	return &QualityVerdict{
		HardRulesPassed: false,
		HardRulesFailed: []string{reason},
		Score:           0,
		Passed:          false,
		Issues:          []string{reason},
		Recommendation:  RecommendationReject,
	}
}
