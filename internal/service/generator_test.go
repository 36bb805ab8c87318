package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

type fakeImageInvoker struct {
	errs     []error
	artifact *domain.GenerationArtifact
	calls    int
}

func (f *fakeImageInvoker) GenerateImage(_ context.Context, _ string) (*domain.GenerationArtifact, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if f.artifact != nil {
		return f.artifact, nil
	}
	return domain.NewGenerationArtifact("aW1n", ""), nil
}

func newTestGenerator(invoker *fakeImageInvoker) (*Generator, *[]time.Duration) {
	g := NewGenerator(invoker, zap.NewNop())
	sleeps := &[]time.Duration{}
	g.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	g.jitter = func() time.Duration { return 0 }
	return g, sleeps
}

func TestGeneratorRetriesTransientFailures(t *testing.T) {
	invoker := &fakeImageInvoker{errs: []error{
		errors.New("503 service unavailable"),
		errors.New("model is overloaded, try again later"),
	}}
	g, sleeps := newTestGenerator(invoker)

	artifact, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact == nil {
		t.Fatal("expected an artifact")
	}
	if invoker.calls != 3 {
		t.Errorf("invoker called %d times, want 3", invoker.calls)
	}

	// exponential schedule: base, then doubled
	want := []time.Duration{3 * time.Second, 6 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
}

func TestGeneratorDoesNotRetryNonTransientErrors(t *testing.T) {
	invoker := &fakeImageInvoker{errs: []error{errors.New("400 invalid argument")}}
	g, sleeps := newTestGenerator(invoker)

	_, err := g.Generate(context.Background(), "prompt")
	var genErr *apperrors.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Code != apperrors.CodeGenerationTransport {
		t.Errorf("code = %s, want %s", genErr.Code, apperrors.CodeGenerationTransport)
	}
	if invoker.calls != 1 {
		t.Errorf("invoker called %d times, want 1", invoker.calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no sleeps, got %v", *sleeps)
	}
}

func TestGeneratorDoesNotRetryMissingImage(t *testing.T) {
	invoker := &fakeImageInvoker{errs: []error{apperrors.NewGenerationNoImageError()}}
	g, _ := newTestGenerator(invoker)

	_, err := g.Generate(context.Background(), "prompt")
	var genErr *apperrors.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Code != apperrors.CodeGenerationNoImage {
		t.Errorf("code = %s, want %s", genErr.Code, apperrors.CodeGenerationNoImage)
	}
	if invoker.calls != 1 {
		t.Errorf("invoker called %d times, want 1", invoker.calls)
	}
}

func TestGeneratorExhaustsAfterMaxAttempts(t *testing.T) {
	transient := errors.New("429 resource exhausted")
	invoker := &fakeImageInvoker{errs: []error{transient, transient, transient}}
	g, _ := newTestGenerator(invoker)

	_, err := g.Generate(context.Background(), "prompt")
	var genErr *apperrors.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Code != apperrors.CodeGenerationExhausted {
		t.Errorf("code = %s, want %s", genErr.Code, apperrors.CodeGenerationExhausted)
	}
	if genErr.Attempts != generatorMaxAttempts {
		t.Errorf("attempts = %d, want %d", genErr.Attempts, generatorMaxAttempts)
	}
	if !errors.Is(err, transient) {
		t.Error("exhausted error should wrap the last transient failure")
	}
}

func TestIsRetryableGenerationError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", errors.New("429 too many requests"), true},
		{"unavailable", errors.New("503 service unavailable"), true},
		{"overloaded", errors.New("model overloaded"), true},
		{"overloaded uppercase", errors.New("the model is OVERLOADED"), true},
		{"bad request", errors.New("400 invalid argument"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableGenerationError(tc.err); got != tc.want {
				t.Errorf("isRetryableGenerationError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
