package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/util"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

type fakeGenerator struct {
	result *domain.GenerationResult
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ *domain.Photo) (*domain.GenerationResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeCounter) CountSubjects(_ context.Context, _ *domain.Photo) (int, error) {
	f.calls++
	return f.count, f.err
}

func okResult() *domain.GenerationResult {
	return &domain.GenerationResult{
		Artifact: domain.NewGenerationArtifact("aW1hZ2U=", "image/png"),
		Verdict: &domain.QualityVerdict{
			HardRulesPassed: true,
			Score:           91,
			Passed:          true,
			Recommendation:  domain.RecommendationAccept,
		},
		Attempts: 1,
	}
}

func newTestServer(gen *fakeGenerator, counter *fakeCounter) *Server {
	deps := &Dependencies{
		Generator:       gen,
		MaxUploadBytes:  10 << 20,
		SubjectPrecheck: counter != nil,
		Logger:          zap.NewNop(),
	}
	if counter != nil {
		deps.Headcount = counter
	}
	return New(0, deps)
}

func photoRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="couple.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes() []byte {
	return []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
}

func TestHandleGenerateHappyPath(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	s := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", pngBytes()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Image != "aW1hZ2U=" || resp.MimeType != "image/png" {
		t.Errorf("artifact not carried through: %+v", resp)
	}
	if resp.Verdict == nil || !resp.Verdict.Passed || resp.Verdict.Score != 91 {
		t.Errorf("verdict not carried through: %+v", resp.Verdict)
	}
	if resp.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", resp.Attempts)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestHandleGenerateMissingPhotoField(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	s := newTestServer(gen, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "no photo here")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if gen.calls != 0 {
		t.Error("generator must not run without a photo")
	}
}

func TestHandleGenerateRejectsUnsupportedType(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	s := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "application/pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
	if gen.calls != 0 {
		t.Error("generator must not run for unsupported uploads")
	}
}

func TestHandleGenerateRejectsEmptyUpload(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	s := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGenerateBlocksWhenNoPeopleDetected(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	counter := &fakeCounter{count: 0}
	s := newTestServer(gen, counter)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", pngBytes()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if counter.calls != 1 {
		t.Errorf("counter called %d times, want 1", counter.calls)
	}
	if gen.calls != 0 {
		t.Error("generator must not run when the photo has no people")
	}
}

func TestHandleGeneratePrecheckFailureIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	counter := &fakeCounter{err: errors.New("vision timeout")}
	s := newTestServer(gen, counter)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", pngBytes()))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gen.calls != 1 {
		t.Error("generator should still run when the pre-check errors")
	}
}

func TestHandleGenerateMapsPipelineErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"refusal", apperrors.NewAnalysisRefusedError("I'm sorry"), http.StatusUnprocessableEntity, apperrors.CodeAnalysisRefused},
		{"exhausted", apperrors.NewGenerationExhaustedError(3, errors.New("429")), http.StatusBadGateway, apperrors.CodeGenerationExhausted},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperrors.CodePipelineError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tc.err}
			s := newTestServer(gen, nil)

			rec := httptest.NewRecorder()
			s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", pngBytes()))

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestHandleGenerateFailsFastWhenCircuitOpen(t *testing.T) {
	gen := &fakeGenerator{result: okResult()}
	s := newTestServer(gen, nil)

	breaker := util.NewCircuitBreaker(1, time.Minute, time.Minute, nil, zap.NewNop())
	breaker.RecordFailure(0)
	s.deps.Breaker = breaker

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, photoRequest(t, "image/png", pngBytes()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if gen.calls != 0 {
		t.Error("generator must not run while the circuit is open")
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeGenerator{result: okResult()}, nil)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}
