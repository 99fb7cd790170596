package asr

import (
	"context"
	"strings"
	"testing"
)

func TestFactoryUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("acme"), "test-key", Options{})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "acme") {
		t.Errorf("error should name the provider, got: %v", err)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	providers := []Provider{ProviderOpenAI, ProviderGemini, ProviderElevenLabs}
	for _, p := range providers {
		t.Run(string(p), func(t *testing.T) {
			_, err := Factory(context.Background(), p, "", Options{})
			if err == nil {
				t.Errorf("expected error for empty API key with provider %s", p)
			}
		})
	}
}

func TestFactoryDispatch(t *testing.T) {
	tests := []struct {
		provider Provider
		wantType string
	}{
		{ProviderOpenAI, "*asr.OpenAITranscriber"},
		{ProviderGemini, "*asr.GeminiTranscriber"},
		{ProviderElevenLabs, "*asr.ElevenLabsTranscriber"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			tr, err := Factory(context.Background(), tt.provider, "test-key", Options{})
			if err != nil {
				t.Fatalf("Factory(%s) error: %v", tt.provider, err)
			}
			if tr == nil {
				t.Fatalf("Factory(%s) returned nil transcriber", tt.provider)
			}
			switch tt.provider {
			case ProviderOpenAI:
				if _, ok := tr.(*OpenAITranscriber); !ok {
					t.Errorf("got %T, want %s", tr, tt.wantType)
				}
			case ProviderGemini:
				if _, ok := tr.(*GeminiTranscriber); !ok {
					t.Errorf("got %T, want %s", tr, tt.wantType)
				}
			case ProviderElevenLabs:
				if _, ok := tr.(*ElevenLabsTranscriber); !ok {
					t.Errorf("got %T, want %s", tr, tt.wantType)
				}
			}
		})
	}
}
