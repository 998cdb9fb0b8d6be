package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func openaiTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newChatCompletionProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/v1",
	})
}

func openaiChatBody(content, finishReason string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     280,
			"completion_tokens": 7,
			"total_tokens":      287,
		},
	}
}

func TestOpenAIGenerate_LevelDecision(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openaiChatBody(`{"label":"L2"}`, "stop"))
	}

	p := openaiTestProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You classify classroom utterances.",
		Messages:  []Message{{Role: RoleUser, Content: "Utterance: Why do you think the ice melted faster this time?"}},
		Schema:    levelDecisionSchema(),
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"label":"L2"}` {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 280 || resp.Usage.OutputTokens != 7 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Fatalf("stop reason = %q, want %q", resp.StopReason, StopEnd)
	}
}

func TestOpenAIGenerate_LengthStop(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openaiChatBody(`{"label":"L1"}`, "length"))
	}

	p := openaiTestProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Utterance: test"}},
		Schema:    levelDecisionSchema(),
		MaxTokens: 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != StopMaxTokens {
		t.Fatalf("stop reason = %q, want %q", resp.StopReason, StopMaxTokens)
	}
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{},
		})
	}

	p := openaiTestProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Utterance: test"}},
		MaxTokens: 64,
	})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIGenerate_RateLimited(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "tokens",
				"message": "Rate limit exceeded",
				"code":    "rate_limit_exceeded",
			},
		})
	}

	p := openaiTestProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Utterance: test"}},
		MaxTokens: 64,
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestOpenAIGenerate_Outage(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "server_error", "message": "Internal server error"},
		})
	}

	p := openaiTestProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Utterance: test"}},
		MaxTokens: 64,
	})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func TestOpenAIMessages_SystemFirst(t *testing.T) {
	msgs := openaiMessages(Request{
		System: "You classify classroom utterances.",
		Messages: []Message{
			{Role: RoleUser, Content: "Utterance: Open your books."},
			{Role: RoleAssistant, Content: `{"label":"introduction"}`},
		},
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first role = %q", msgs[0].Role)
	}
	if msgs[2].Role != openai.ChatMessageRoleAssistant {
		t.Fatalf("third role = %q", msgs[2].Role)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	t.Run("alias resolves", func(t *testing.T) {
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gpt-4o-mini" {
			t.Fatalf("ModelID() = %q", p.ModelID())
		}
	})

	t.Run("base URL override", func(t *testing.T) {
		p, err := NewOpenAIProvider(OpenAIConfig{
			APIKey:  "test-key",
			Model:   "gpt-4o",
			BaseURL: "https://proxy.example.com/v1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gpt-4o" {
			t.Fatalf("ModelID() = %q", p.ModelID())
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o-mini"}); err == nil {
			t.Fatal("expected error for missing API key")
		}
	})
}
