package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

const (
	generatorMaxAttempts = 3
	generatorBackoffBase = 3 * time.Second
	generatorJitterCap   = time.Second
)

// Generator renders one illustration from a prompt. Transient provider
// failures are retried here with exponential backoff and jitter; the
// orchestrator never sees them.
type Generator struct {
	image  ImageInvoker
	logger *zap.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

func NewGenerator(image ImageInvoker, logger *zap.Logger) *Generator {
	return &Generator{
		image:  image,
		logger: logger,
		sleep:  sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(generatorJitterCap)))
		},
	}
}

func (g *Generator) Generate(ctx context.Context, promptText string) (*domain.GenerationArtifact, error) {
	var lastErr error

	for attempt := 1; attempt <= generatorMaxAttempts; attempt++ {
		artifact, err := g.image.GenerateImage(ctx, promptText)
		if err == nil {
			return artifact, nil
		}
		lastErr = err

		// a response without an inline image is a model problem, not an
		// infrastructure one
		var genErr *apperrors.GenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}

		if !isRetryableGenerationError(err) {
			return nil, apperrors.NewGenerationTransportError(err)
		}

		if attempt < generatorMaxAttempts {
			delay := generatorBackoffBase<<(attempt-1) + g.jitter()
			g.logger.Warn("Transient image generation failure, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if err := g.sleep(ctx, delay); err != nil {
				return nil, apperrors.NewGenerationTransportError(err)
			}
		}
	}

	return nil, apperrors.NewGenerationExhaustedError(generatorMaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
