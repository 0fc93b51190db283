package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"growthkit/internal/apperr"
	"growthkit/internal/config"
)

func TestNewClientNoAPIKey(t *testing.T) {
	originalKey := os.Getenv("GEMINI_API_KEY")
	_ = os.Unsetenv("GEMINI_API_KEY")
	defer func() {
		if originalKey != "" {
			_ = os.Setenv("GEMINI_API_KEY", originalKey)
		}
	}()

	_, err := NewClient(context.Background(), config.Gemini{})
	if err == nil {
		t.Fatal("expected error when no API key is available")
	}
	if !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got: %v", err)
	}
}

func TestNewClientDefaultModel(t *testing.T) {
	// Integration-only: requires a real key.
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := NewClient(context.Background(), config.Gemini{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Model() != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, client.Model())
	}
}
