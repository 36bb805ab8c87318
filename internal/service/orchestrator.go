package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/prompt"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

// PhotoAnalyzer extracts an appearance description from a photo.
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, photo *domain.Photo) (domain.AppearanceDescription, error)
}

// ImageGenerator renders one artifact from a prompt, transient retries
// included.
type ImageGenerator interface {
	Generate(ctx context.Context, promptText string) (*domain.GenerationArtifact, error)
}

// QualityEvaluator grades an artifact; it never fails.
type QualityEvaluator interface {
	Evaluate(ctx context.Context, artifact *domain.GenerationArtifact, desc domain.AppearanceDescription) *domain.QualityVerdict
}

const (
	renderRetryDelay  = 2 * time.Second
	interAttemptDelay = time.Second
)

// Orchestrator runs one request through analyze -> compose ->
// (render -> evaluate) up to maxAttempts times, keeping the best-scoring
// candidate and returning early on a passing verdict.
type Orchestrator struct {
	analyzer    PhotoAnalyzer
	generator   ImageGenerator
	evaluator   QualityEvaluator
	maxAttempts int
	logger      *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(analyzer PhotoAnalyzer, generator ImageGenerator, evaluator QualityEvaluator, maxAttempts int, logger *zap.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Orchestrator{
		analyzer:    analyzer,
		generator:   generator,
		evaluator:   evaluator,
		maxAttempts: maxAttempts,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// bestCandidate owns the best {artifact, verdict} pair of one request.
// Ties go to the newer candidate.
type bestCandidate struct {
	artifact *domain.GenerationArtifact
	verdict  *domain.QualityVerdict
}

func (b *bestCandidate) offer(artifact *domain.GenerationArtifact, verdict *domain.QualityVerdict) {
	if b.verdict == nil || verdict.Score >= b.verdict.Score {
		b.artifact = artifact
		b.verdict = verdict
	}
}

func (b *bestCandidate) exists() bool {
	return b.verdict != nil
}

func (b *bestCandidate) result(attempts int) *domain.GenerationResult {
	return &domain.GenerationResult{
		Artifact: b.artifact,
		Verdict:  b.verdict,
		Attempts: attempts,
	}
}

// Generate is the single inbound operation of the pipeline.
func (o *Orchestrator) Generate(ctx context.Context, photo *domain.Photo) (*domain.GenerationResult, error) {
	desc, err := o.analyzer.Analyze(ctx, photo)
	if err != nil {
		return nil, err
	}

	promptText := prompt.BuildGenerationPrompt(desc)
	best := &bestCandidate{}

	attempts := 0
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		attempts = attempt

		artifact, err := o.generator.Generate(ctx, promptText)
		if err != nil {
			o.logger.Warn("Render attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", o.maxAttempts),
				zap.Error(err),
			)
			if attempt < o.maxAttempts {
				if serr := o.sleep(ctx, renderRetryDelay); serr != nil {
					return o.settle(best, attempts, serr)
				}
				continue
			}
			return o.settle(best, attempts, err)
		}

		verdict := o.evaluator.Evaluate(ctx, artifact, desc)
		best.offer(artifact, verdict)

		if verdict.Passed {
			o.logger.Info("Render accepted",
				zap.Int("attempt", attempt),
				zap.Int("score", verdict.Score),
			)
			return best.result(attempt), nil
		}

		o.logger.Info("Render rejected",
			zap.Int("attempt", attempt),
			zap.Int("score", verdict.Score),
			zap.Strings("hard_rules_failed", verdict.HardRulesFailed),
		)

		if attempt < o.maxAttempts {
			if serr := o.sleep(ctx, interAttemptDelay); serr != nil {
				return o.settle(best, attempts, serr)
			}
		}
	}

	// at least one render succeeded, otherwise the loop returned above
	return o.settle(best, attempts, apperrors.NewGenerationExhaustedError(attempts, nil))
}

// settle prefers returning a best-so-far over surfacing an error.
func (o *Orchestrator) settle(best *bestCandidate, attempts int, err error) (*domain.GenerationResult, error) {
	if best.exists() {
		o.logger.Info("Returning best-effort result",
			zap.Int("attempts", attempts),
			zap.Int("score", best.verdict.Score),
			zap.Bool("passed", best.verdict.Passed),
		)
		return best.result(attempts), nil
	}
	return nil, err
}
