package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/prompt"
)

// Evaluator grades a rendered artifact against the rubric. It never returns
// an error: any failure of the evaluation itself becomes a zero-score
// rejection so the orchestrator can keep going.
type Evaluator struct {
	vision    VisionInvoker
	threshold int
	logger    *zap.Logger
}

func NewEvaluator(vision VisionInvoker, acceptanceThreshold int, logger *zap.Logger) *Evaluator {
	if acceptanceThreshold <= 0 {
		acceptanceThreshold = domain.DefaultAcceptanceThreshold
	}
	return &Evaluator{
		vision:    vision,
		threshold: acceptanceThreshold,
		logger:    logger,
	}
}

// evaluationResponse is the JSON shape the rubric prompt demands.
type evaluationResponse struct {
	HardRulesPassed bool                  `json:"hard_rules_passed"`
	HardRulesFailed []string              `json:"hard_rules_failed"`
	TotalScore      int                   `json:"total_score"`
	Details         *domain.RubricDetails `json:"details"`
	Issues          []string              `json:"issues"`
	Recommendation  string                `json:"recommendation"`
}

func (e *Evaluator) Evaluate(ctx context.Context, artifact *domain.GenerationArtifact, desc domain.AppearanceDescription) *domain.QualityVerdict {
	raw, err := e.vision.CompleteVision(ctx, prompt.BuildEvaluationPrompt(desc), VisionImageFromArtifact(artifact))
	if err != nil {
		e.logger.Error("Evaluation call failed", zap.Error(err))
		return domain.FailedVerdict(fmt.Sprintf("evaluation transport failure: %v", err))
	}

	if strings.TrimSpace(raw) == "" {
		return domain.FailedVerdict("evaluation returned no content")
	}

	span, err := prompt.ExtractJSONSpan(raw)
	if err != nil {
		return domain.FailedVerdict("evaluation response contained no JSON")
	}

	var parsed evaluationResponse
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		e.logger.Error("Evaluation response is not valid JSON", zap.Error(err))
		return domain.FailedVerdict("evaluation response could not be parsed")
	}

	verdict := e.buildVerdict(parsed)

	e.logger.Info("Artifact evaluated",
		zap.Int("score", verdict.Score),
		zap.Bool("hard_rules_passed", verdict.HardRulesPassed),
		zap.Bool("passed", verdict.Passed),
		zap.Int("issues", len(verdict.Issues)),
	)

	return verdict
}

func (e *Evaluator) buildVerdict(parsed evaluationResponse) *domain.QualityVerdict {
	hardRulesPassed := parsed.HardRulesPassed
	// a listed violation vetoes regardless of what the flag claims
	if len(parsed.HardRulesFailed) > 0 {
		hardRulesPassed = false
	}

	score := domain.ClampScore(parsed.TotalScore)
	passed := hardRulesPassed && score >= e.threshold

	recommendation := domain.RecommendationReject
	if strings.EqualFold(strings.TrimSpace(parsed.Recommendation), string(domain.RecommendationAccept)) {
		recommendation = domain.RecommendationAccept
	}

	failed := parsed.HardRulesFailed
	if failed == nil {
		failed = []string{}
	}
	issues := parsed.Issues
	if issues == nil {
		issues = []string{}
	}

	return &domain.QualityVerdict{
		HardRulesPassed: hardRulesPassed,
		HardRulesFailed: failed,
		Score:           score,
		Passed:          passed,
		Details:         parsed.Details,
		Issues:          issues,
		Recommendation:  recommendation,
	}
}
