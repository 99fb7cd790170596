package transform

import (
	"context"
	"strings"
	"testing"
)

func TestFactoryReturnsOpenAITransformer(t *testing.T) {
	tr, err := Factory(context.Background(), ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := tr.(*OpenAITransformer); !ok {
		t.Errorf("expected *OpenAITransformer, got %T", tr)
	}
}

func TestFactoryReturnsGeminiTransformer(t *testing.T) {
	tr, err := Factory(context.Background(), ProviderGemini, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := tr.(*GeminiTransformer); !ok {
		t.Errorf("expected *GeminiTransformer, got %T", tr)
	}
}

func TestFactoryReturnsAnthropicTransformer(t *testing.T) {
	tr, err := Factory(context.Background(), ProviderAnthropic, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := tr.(*AnthropicTransformer); !ok {
		t.Errorf("expected *AnthropicTransformer, got %T", tr)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", Options{})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	providers := []Provider{ProviderOpenAI, ProviderGemini, ProviderAnthropic}
	for _, p := range providers {
		t.Run(string(p), func(t *testing.T) {
			if _, err := Factory(context.Background(), p, "", Options{}); err == nil {
				t.Errorf("expected error for empty API key with provider %s", p)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	items := []Item{
		{ID: "1", Text: "⟦0⟧Hello⟦1⟧"},
		{ID: "d2", Text: "world"},
	}

	prompt := BuildPrompt("Translate to French.", items)

	if !strings.HasPrefix(prompt, "Translate to French.") {
		t.Errorf("prompt should lead with the instructions: %q", prompt)
	}
	for _, needle := range []string{`"id": "1"`, `"id": "d2"`, "⟦0⟧Hello⟦1⟧", "'id' and 'text'"} {
		if !strings.Contains(prompt, needle) {
			t.Errorf("prompt missing %q", needle)
		}
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Errorf("prompt should demand a JSON array: %q", prompt)
	}
}

func TestTranslationInstructions(t *testing.T) {
	got := TranslationInstructions("English", "Japanese", "")
	if !strings.Contains(got, "English") || !strings.Contains(got, "Japanese") {
		t.Errorf("instructions = %q", got)
	}

	got = TranslationInstructions("", "Spanish", "Keep it casual.")
	if strings.Contains(got, "  ") {
		t.Errorf("unexpected double space in %q", got)
	}
	if !strings.Contains(got, "Spanish") || !strings.Contains(got, "Keep it casual.") {
		t.Errorf("instructions = %q", got)
	}
}

func TestCorrectionInstructions(t *testing.T) {
	got := CorrectionInstructions("German", "")
	if !strings.Contains(got, "German") {
		t.Errorf("instructions = %q", got)
	}
	if !strings.Contains(got, "Correct") {
		t.Errorf("instructions = %q", got)
	}
}
