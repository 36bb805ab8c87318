package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodePipelineError       = "PIPELINE_ERROR"
	CodeAnalysisTransport   = "ANALYSIS_TRANSPORT_ERROR"
	CodeAnalysisEmpty       = "ANALYSIS_EMPTY_ERROR"
	CodeAnalysisParse       = "ANALYSIS_PARSE_ERROR"
	CodeAnalysisRefused     = "ANALYSIS_REFUSED_ERROR"
	CodeGenerationTransport = "GENERATION_TRANSPORT_ERROR"
	CodeGenerationExhausted = "GENERATION_EXHAUSTED_ERROR"
	CodeGenerationNoImage   = "GENERATION_NO_IMAGE_ERROR"
	CodeValidation          = "VALIDATION_ERROR"
	CodeCache               = "CACHE_ERROR"
)

type PipelineError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewPipelineError(message, code string, statusCode int, context map[string]any) *PipelineError {
	return &PipelineError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// AnalysisError covers every terminal failure of the photo analysis stage.
// RawResponse carries at most the first 300 characters of the model output.
type AnalysisError struct {
	*PipelineError
	RawResponse string
}

const rawResponseLimit = 300

func truncateRaw(raw string) string {
	if len(raw) > rawResponseLimit {
		return raw[:rawResponseLimit]
	}
	return raw
}

func newAnalysisError(message, code string, raw string, cause error) *AnalysisError {
	raw = truncateRaw(raw)
	return &AnalysisError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       code,
			StatusCode: 502,
			Context: map[string]any{
				"raw_response": raw,
			},
			Cause: cause,
		},
		RawResponse: raw,
	}
}

func NewAnalysisTransportError(cause error) *AnalysisError {
	return newAnalysisError("vision analysis request failed", CodeAnalysisTransport, "", cause)
}

func NewAnalysisEmptyError() *AnalysisError {
	return newAnalysisError("vision analysis returned no content", CodeAnalysisEmpty, "", nil)
}

func NewAnalysisParseError(raw string, cause error) *AnalysisError {
	return newAnalysisError("vision analysis response is not valid JSON", CodeAnalysisParse, raw, cause)
}

func NewAnalysisRefusedError(raw string) *AnalysisError {
	e := newAnalysisError("vision model refused to analyze the photo", CodeAnalysisRefused, raw, nil)
	e.StatusCode = 422
	return e
}

type GenerationError struct {
	*PipelineError
	Attempts int
}

func NewGenerationTransportError(cause error) *GenerationError {
	return &GenerationError{
		PipelineError: &PipelineError{
			Message:    "image generation request failed",
			Code:       CodeGenerationTransport,
			StatusCode: 502,
			Cause:      cause,
		},
	}
}

func NewGenerationExhaustedError(attempts int, cause error) *GenerationError {
	return &GenerationError{
		PipelineError: &PipelineError{
			Message:    "image generation attempts exhausted",
			Code:       CodeGenerationExhausted,
			StatusCode: 502,
			Context: map[string]any{
				"attempts": attempts,
			},
			Cause: cause,
		},
		Attempts: attempts,
	}
}

func NewGenerationNoImageError() *GenerationError {
	return &GenerationError{
		PipelineError: &PipelineError{
			Message:    "image model response contained no inline image",
			Code:       CodeGenerationNoImage,
			StatusCode: 502,
		},
	}
}

type ValidationError struct {
	*PipelineError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// Describe maps any pipeline error onto its code and HTTP status. Unknown
// errors land on 500.
func Describe(err error) (code string, statusCode int) {
	var analysisErr *AnalysisError
	if stderrors.As(err, &analysisErr) {
		return analysisErr.Code, analysisErr.StatusCode
	}
	var generationErr *GenerationError
	if stderrors.As(err, &generationErr) {
		return generationErr.Code, generationErr.StatusCode
	}
	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.Code, validationErr.StatusCode
	}
	var cacheErr *CacheError
	if stderrors.As(err, &cacheErr) {
		return cacheErr.Code, cacheErr.StatusCode
	}
	var pipelineErr *PipelineError
	if stderrors.As(err, &pipelineErr) {
		return pipelineErr.Code, pipelineErr.StatusCode
	}
	return CodePipelineError, 500
}

type CacheError struct {
	*PipelineError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}
