package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiAliases(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // pinned ID passes through
	}
	for _, tt := range tests {
		if got := resolveModel(tt.name, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGeminiSchema_StageDecision(t *testing.T) {
	got := geminiSchema(stageDecisionSchema().Definition)

	if got.Type != genai.TypeObject {
		t.Fatalf("type = %v, want object", got.Type)
	}
	label, ok := got.Properties["label"]
	if !ok {
		t.Fatal("label property missing")
	}
	if label.Type != genai.TypeString {
		t.Fatalf("label type = %v, want string", label.Type)
	}
	if len(label.Enum) != 3 {
		t.Fatalf("label enum = %v, want the three stages", label.Enum)
	}
	if len(got.Required) != 1 || got.Required[0] != "label" {
		t.Fatalf("required = %v", got.Required)
	}
}

func TestGeminiSchema_NestedShapes(t *testing.T) {
	def := map[string]any{
		"type":        "object",
		"description": "per-utterance decisions",
		"properties": map[string]any{
			"match": map[string]any{"type": "boolean"},
			"votes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label": map[string]any{"type": "string"},
					},
					"required": []any{"label"},
				},
			},
		},
		"required": []any{"match", "votes"},
	}

	got := geminiSchema(def)

	if got.Description != "per-utterance decisions" {
		t.Fatalf("description = %q", got.Description)
	}
	if got.Properties["match"].Type != genai.TypeBoolean {
		t.Fatalf("match type = %v, want boolean", got.Properties["match"].Type)
	}
	votes := got.Properties["votes"]
	if votes.Type != genai.TypeArray {
		t.Fatalf("votes type = %v, want array", votes.Type)
	}
	if votes.Items == nil || votes.Items.Type != genai.TypeObject {
		t.Fatal("votes items should be an object schema")
	}
	if len(votes.Items.Required) != 1 {
		t.Fatalf("votes item required = %v", votes.Items.Required)
	}
	if len(got.Required) != 2 {
		t.Fatalf("required = %v", got.Required)
	}
}

func TestGeminiStopReason(t *testing.T) {
	truncated := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: "MAX_TOKENS"}},
	}
	if got := geminiStopReason(truncated); got != StopMaxTokens {
		t.Fatalf("stop reason = %q, want %q", got, StopMaxTokens)
	}

	clean := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: "STOP"}},
	}
	if got := geminiStopReason(clean); got != StopEnd {
		t.Fatalf("stop reason = %q, want %q", got, StopEnd)
	}

	empty := &genai.GenerateContentResponse{}
	if got := geminiStopReason(empty); got != StopEnd {
		t.Fatalf("stop reason = %q, want %q", got, StopEnd)
	}
}
