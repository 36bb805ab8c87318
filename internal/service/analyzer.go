package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/prompt"
	"github.com/sankalpa/vivah-portrait-go/internal/util"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

// Analyzer turns an uploaded photo into an AppearanceDescription using the
// vision model. Every failure is terminal for the request; the analyzer does
// not retry.
type Analyzer struct {
	vision VisionInvoker
	logger *zap.Logger
}

func NewAnalyzer(vision VisionInvoker, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		vision: vision,
		logger: logger,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, photo *domain.Photo) (domain.AppearanceDescription, error) {
	raw, err := a.vision.CompleteVision(ctx, prompt.BuildAnalysisPrompt(), VisionImageFromPhoto(photo))
	if err != nil {
		return nil, apperrors.NewAnalysisTransportError(err)
	}

	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewAnalysisEmptyError()
	}

	if prompt.IsRefusal(raw) {
		a.logger.Warn("Vision model refused photo analysis",
			zap.String("response_preview", raw[:util.Min(len(raw), 120)]),
		)
		return nil, apperrors.NewAnalysisRefusedError(raw)
	}

	span, err := prompt.ExtractJSONSpan(raw)
	if err != nil {
		return nil, apperrors.NewAnalysisParseError(raw, err)
	}

	var desc domain.AppearanceDescription
	if err := json.Unmarshal([]byte(span), &desc); err != nil {
		return nil, apperrors.NewAnalysisParseError(raw, err)
	}

	// older prompt revisions used coloring/body_type; downstream only sees
	// the canonical schema
	desc.Normalize()

	if err := desc.Validate(); err != nil {
		return nil, apperrors.NewAnalysisParseError(raw, err)
	}

	a.logger.Info("Photo analyzed",
		zap.Int("bride_attributes", len(desc[domain.RoleBride.String()])),
		zap.Int("groom_attributes", len(desc[domain.RoleGroom.String()])),
	)

	return desc, nil
}
