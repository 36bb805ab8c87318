package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/prompt"
)

// HeadcountProbe counts the people visible in an uploaded photo so obviously
// unusable uploads can be rejected before the pipeline spends model calls.
type HeadcountProbe struct {
	vision VisionInvoker
	logger *zap.Logger
}

func NewHeadcountProbe(vision VisionInvoker, logger *zap.Logger) *HeadcountProbe {
	return &HeadcountProbe{
		vision: vision,
		logger: logger,
	}
}

type headcountResponse struct {
	Count int `json:"count"`
}

func (h *HeadcountProbe) CountSubjects(ctx context.Context, photo *domain.Photo) (int, error) {
	raw, err := h.vision.CompleteVision(ctx, prompt.BuildHeadcountPrompt(), VisionImageFromPhoto(photo))
	if err != nil {
		return 0, fmt.Errorf("headcount probe failed: %w", err)
	}

	span, err := prompt.ExtractJSONSpan(raw)
	if err != nil {
		return 0, fmt.Errorf("headcount probe returned no JSON")
	}

	var parsed headcountResponse
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return 0, fmt.Errorf("headcount probe response could not be parsed: %w", err)
	}
	if parsed.Count < 0 {
		return 0, fmt.Errorf("headcount probe reported a negative count")
	}

	h.logger.Debug("Headcount probe", zap.Int("count", parsed.Count))
	return parsed.Count, nil
}
