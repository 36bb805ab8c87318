package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/util"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

type generateResponse struct {
	Image    string                 `json:"image"`
	MimeType string                 `json:"mimeType"`
	Verdict  *domain.QualityVerdict `json:"verdict"`
	Attempts int                    `json:"attempts"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Breaker != nil && !s.deps.Breaker.CanExecute() {
		writeError(w, http.StatusServiceUnavailable, apperrors.CodePipelineError, "model providers are unavailable, try again shortly")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "multipart field \"photo\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "uploaded photo is empty")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !domain.IsSupportedPhotoType(mimeType) {
		writeError(w, http.StatusUnsupportedMediaType, apperrors.CodeValidation, "unsupported photo type: "+mimeType)
		return
	}

	photo := &domain.Photo{
		Data:     data,
		MimeType: mimeType,
		Size:     header.Size,
	}

	ctx := r.Context()

	if s.deps.SubjectPrecheck && s.deps.Headcount != nil {
		// probe failure is non-fatal; the pipeline decides on its own
		if count, err := s.deps.Headcount.CountSubjects(ctx, photo); err != nil {
			s.logger.Warn("Subject pre-check failed, continuing", zap.Error(err))
		} else if count == 0 {
			writeError(w, http.StatusUnprocessableEntity, apperrors.CodeValidation, "no people detected in the uploaded photo")
			return
		}
	}

	result, err := s.deps.Generator.Generate(ctx, photo)
	if err != nil {
		code, status := apperrors.Describe(err)
		s.logger.Error("Generation request failed",
			zap.String("code", code),
			zap.Error(err),
		)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Image:    result.Artifact.ImageBase64,
		MimeType: result.Artifact.MimeType,
		Verdict:  result.Verdict,
		Attempts: result.Attempts,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if s.deps.Breaker != nil {
		breakerStatus := s.deps.Breaker.GetStatus()
		if breakerStatus.State == util.CircuitStateOpen {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
