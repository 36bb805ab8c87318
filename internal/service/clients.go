package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/util"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

// VisionImage is an inline image attached to a vision chat call.
type VisionImage struct {
	MimeType string
	Base64   string
}

func VisionImageFromPhoto(p *domain.Photo) VisionImage {
	return VisionImage{
		MimeType: p.MimeType,
		Base64:   base64.StdEncoding.EncodeToString(p.Data),
	}
}

func VisionImageFromArtifact(a *domain.GenerationArtifact) VisionImage {
	return VisionImage{
		MimeType: a.MimeType,
		Base64:   a.ImageBase64,
	}
}

func (v VisionImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", v.MimeType, v.Base64)
}

// VisionInvoker is the vision chat endpoint used by the analyzer, the
// evaluator and the headcount probe.
type VisionInvoker interface {
	CompleteVision(ctx context.Context, promptText string, image VisionImage) (string, error)
}

// ImageInvoker is a single call to the image model. Retry lives in the
// Generator, not here.
type ImageInvoker interface {
	GenerateImage(ctx context.Context, promptText string) (*domain.GenerationArtifact, error)
}

const (
	breakerFailureThreshold    = 5
	breakerResetTimeout        = 2 * time.Minute
	breakerHealthCheckInterval = 30 * time.Second
	visionMaxCompletionTokens  = 2048
)

// ModelClients owns the two process-wide provider clients. Created once at
// startup; the clients themselves are safe for concurrent use.
type ModelClients struct {
	openaiClient *openai.Client
	geminiClient *genai.Client
	visionModel  string
	imageModel   string
	imageSeed    int32
	logger       *zap.Logger
	breaker      *util.CircuitBreaker
}

type ModelClientsConfig struct {
	OpenAIAPIKey string
	GeminiAPIKey string
	VisionModel  string
	ImageModel   string
	ImageSeed    int
}

func NewModelClients(ctx context.Context, cfg ModelClientsConfig, logger *zap.Logger) (*ModelClients, error) {
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	mc := &ModelClients{
		openaiClient: &openaiClient,
		geminiClient: geminiClient,
		visionModel:  cfg.VisionModel,
		imageModel:   cfg.ImageModel,
		imageSeed:    int32(cfg.ImageSeed),
		logger:       logger,
	}

	mc.breaker = util.NewCircuitBreaker(
		breakerFailureThreshold,
		breakerResetTimeout,
		breakerHealthCheckInterval,
		mc.healthCheckPing,
		logger,
	)

	logger.Info("Model clients initialized",
		zap.String("vision_model", cfg.VisionModel),
		zap.String("image_model", cfg.ImageModel),
		zap.Int("image_seed", cfg.ImageSeed),
	)

	return mc, nil
}

func (mc *ModelClients) Breaker() *util.CircuitBreaker {
	return mc.breaker
}

// CompleteVision sends one text+image chat completion and returns the raw
// text of the first choice.
func (mc *ModelClients) CompleteVision(ctx context.Context, promptText string, image VisionImage) (string, error) {
	if !mc.breaker.CanExecute() {
		return "", fmt.Errorf("model providers unavailable (circuit open)")
	}

	resp, err := mc.openaiClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(mc.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(promptText),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: image.DataURL(),
				}),
			}),
		},
		MaxCompletionTokens: openai.Int(visionMaxCompletionTokens),
		Temperature:         openai.Float(0),
	})
	if err != nil {
		mc.logger.Error("Vision completion failed", zap.Error(err))
		mc.recordOutcome(err)
		return "", err
	}
	mc.recordOutcome(nil)

	if len(resp.Choices) == 0 {
		return "", nil
	}

	text := resp.Choices[0].Message.Content
	mc.logger.Debug("Vision response received", zap.Int("length", len(text)))
	return text, nil
}

// GenerateImage performs one low-creativity, seeded image generation call and
// extracts the first inline image part.
func (mc *ModelClients) GenerateImage(ctx context.Context, promptText string) (*domain.GenerationArtifact, error) {
	if !mc.breaker.CanExecute() {
		return nil, fmt.Errorf("model providers unavailable (circuit open)")
	}

	temperature := float32(0)
	topP := float32(0)
	seed := mc.imageSeed

	config := &genai.GenerateContentConfig{
		Temperature:        &temperature,
		TopP:               &topP,
		Seed:               &seed,
		CandidateCount:     1,
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := mc.geminiClient.Models.GenerateContent(ctx, mc.imageModel, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: promptText},
			},
		},
	}, config)
	if err != nil {
		mc.logger.Error("Image generation failed", zap.Error(err))
		mc.recordOutcome(err)
		return nil, err
	}
	mc.recordOutcome(nil)

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mc.logger.Debug("Image received from Gemini",
					zap.Int("bytes", len(part.InlineData.Data)),
					zap.String("mime_type", part.InlineData.MIMEType),
				)
				encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
				return domain.NewGenerationArtifact(encoded, part.InlineData.MIMEType), nil
			}
		}
	}

	return nil, apperrors.NewGenerationNoImageError()
}

// recordOutcome feeds the circuit breaker. Only infrastructure failures
// count; nil and non-service errors reset the failure streak.
func (mc *ModelClients) recordOutcome(err error) {
	if err == nil {
		mc.breaker.RecordSuccess()
		return
	}
	if isServiceFailure(err) {
		timeout := breakerResetTimeout
		if isRateLimitError(err) {
			timeout = 5 * time.Minute
		}
		mc.breaker.RecordFailure(timeout)
	}
}

func (mc *ModelClients) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var openaiOK, geminiOK bool
	var wg conc.WaitGroup
	wg.Go(func() { openaiOK = mc.pingOpenAI(ctx) })
	wg.Go(func() { geminiOK = mc.pingGemini(ctx) })
	wg.Wait()

	mc.logger.Info("Health check result",
		zap.Bool("openai", openaiOK),
		zap.Bool("gemini", geminiOK),
	)

	// the pipeline needs both providers
	return openaiOK && geminiOK
}

func (mc *ModelClients) pingOpenAI(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := mc.openaiClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(mc.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		mc.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}
	return len(resp.Choices) > 0
}

func (mc *ModelClients) pingGemini(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	temperature := float32(0)
	maxTokens := int32(10)

	resp, err := mc.geminiClient.Models.GenerateContent(ctx, mc.imageModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		mc.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}
	return len(resp.Candidates) > 0
}
