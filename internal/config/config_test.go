package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("max upload = %d, want 10 MiB", cfg.Server.MaxUploadBytes)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want 3", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.AcceptanceThreshold != 85 {
		t.Errorf("threshold = %d, want 85", cfg.Pipeline.AcceptanceThreshold)
	}
	if !cfg.Pipeline.SubjectPrecheck {
		t.Error("subject pre-check should default on")
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without REDIS_HOST")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("ACCEPTANCE_THRESHOLD", "70")
	t.Setenv("SUBJECT_PRECHECK", "false")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pipeline.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.AcceptanceThreshold != 70 {
		t.Errorf("threshold = %d, want 70", cfg.Pipeline.AcceptanceThreshold)
	}
	if cfg.Pipeline.SubjectPrecheck {
		t.Error("subject pre-check should be off")
	}
	if !cfg.Redis.Enabled() {
		t.Error("redis should be enabled with REDIS_HOST set")
	}
}

func TestValidateRejectsMissingKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing OPENAI_API_KEY")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("ACCEPTANCE_THRESHOLD", "130")

	if _, err := Load(); err == nil {
		t.Error("expected error for threshold above 100")
	}
}

func TestValidateRejectsZeroAttempts(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("MAX_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for zero attempts")
	}
}
