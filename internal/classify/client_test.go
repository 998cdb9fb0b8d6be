package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lectio/internal/checklist"
	"lectio/internal/llm"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

func testUtterance() transcript.Utterance {
	return transcript.Utterance{
		ID:        "u-0001",
		Text:      "Yesterday we learned about fractions; today we'll add them.",
		Timestamp: 12.5,
		Speaker:   "teacher",
	}
}

// scriptedHandler answers every call deterministically from the request
// itself: fixed stage and level labels, and a yes/no per context label.
func scriptedHandler(stage, level string, contexts map[string]bool) func(llm.Request) (*llm.Response, error) {
	return func(req llm.Request) (*llm.Response, error) {
		var content string
		switch req.Schema.Name {
		case "classify-stage":
			content = fmt.Sprintf(`{"label":%q}`, stage)
		case "classify-level":
			content = fmt.Sprintf(`{"label":%q}`, level)
		case "context-check":
			match := false
			for label, yes := range contexts {
				if yes && strings.Contains(req.Messages[0].Content, "Function in question: "+label) {
					match = true
				}
			}
			content = fmt.Sprintf(`{"match":%v}`, match)
		default:
			return nil, fmt.Errorf("unexpected schema %q", req.Schema.Name)
		}
		return &llm.Response{
			Content:    json.RawMessage(content),
			Model:      "mock",
			StopReason: llm.StopEnd,
		}, nil
	}
}

func TestBuildSingleLabelPromptIncludesCriteria(t *testing.T) {
	repo := checklist.NewRepository()
	u := testUtterance()

	var candidates []*checklist.Checklist
	for _, label := range taxonomy.Labels(taxonomy.DimensionStage) {
		c, err := repo.Get(taxonomy.DimensionStage, label)
		if err != nil {
			t.Fatalf("Get(stage, %s): %v", label, err)
		}
		candidates = append(candidates, c)
	}

	prompt, err := buildSingleLabelPrompt(u, taxonomy.DimensionStage, candidates)
	if err != nil {
		t.Fatalf("buildSingleLabelPrompt: %v", err)
	}

	if !strings.Contains(prompt, u.Text) {
		t.Error("prompt missing utterance text")
	}
	for _, c := range candidates {
		if !strings.Contains(prompt, "## "+c.Label) {
			t.Errorf("prompt missing candidate %q", c.Label)
		}
		for _, item := range c.Items {
			if !strings.Contains(prompt, item.Question) {
				t.Errorf("prompt missing question %q", item.ID)
			}
			for _, ex := range item.PositiveExamples {
				if !strings.Contains(prompt, ex) {
					t.Errorf("prompt missing positive example %q", ex)
				}
			}
		}
	}
}

func TestBuildBinaryCheckPromptNamesLabel(t *testing.T) {
	repo := checklist.NewRepository()
	c, err := repo.Get(taxonomy.DimensionContext, "feedback")
	if err != nil {
		t.Fatalf("Get(context, feedback): %v", err)
	}

	prompt, err := buildBinaryCheckPrompt(testUtterance(), c)
	if err != nil {
		t.Fatalf("buildBinaryCheckPrompt: %v", err)
	}
	if !strings.Contains(prompt, "Function in question: feedback") {
		t.Error("prompt missing function label")
	}
	if !strings.Contains(prompt, c.Items[0].Question) {
		t.Error("prompt missing criterion question")
	}
}

func TestClassifyLabelParsesFencedJSON(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage("```json\n{\"label\":\"development\",\"reason\":\"mid-lesson work\"}\n```"),
	})
	c := NewClient(provider, checklist.NewRepository(), DefaultConfig())

	label, err := c.ClassifyLabel(context.Background(), testUtterance(), taxonomy.DimensionStage)
	if err != nil {
		t.Fatalf("ClassifyLabel: %v", err)
	}
	if label != "development" {
		t.Errorf("label = %q, want development", label)
	}
}

func TestClassifyLabelRejectsUnknownLabel(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"label":"warmup"}`),
	})
	c := NewClient(provider, checklist.NewRepository(), DefaultConfig())

	_, err := c.ClassifyLabel(context.Background(), testUtterance(), taxonomy.DimensionStage)
	if err == nil {
		t.Fatal("expected error for out-of-vocabulary label")
	}
	if !strings.Contains(err.Error(), "warmup") {
		t.Errorf("error %q does not name the bad label", err)
	}
}

func TestClassifyLabelPropagatesProviderError(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")},
	})
	c := NewClient(provider, checklist.NewRepository(), DefaultConfig())

	_, err := c.ClassifyLabel(context.Background(), testUtterance(), taxonomy.DimensionLevel)
	var unavailable *llm.ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("error type = %T, want *llm.ErrProviderUnavailable", err)
	}
}

func TestCheckContext(t *testing.T) {
	provider := &llm.MockProvider{
		Handler: scriptedHandler("introduction", "L1", map[string]bool{"explanation": true}),
	}
	c := NewClient(provider, checklist.NewRepository(), DefaultConfig())

	match, err := c.CheckContext(context.Background(), testUtterance(), "explanation")
	if err != nil {
		t.Fatalf("CheckContext(explanation): %v", err)
	}
	if !match {
		t.Error("expected explanation to match")
	}

	match, err = c.CheckContext(context.Background(), testUtterance(), "management")
	if err != nil {
		t.Fatalf("CheckContext(management): %v", err)
	}
	if match {
		t.Error("expected management not to match")
	}
}

func TestCheckContextUnknownLabelIsConfigError(t *testing.T) {
	provider := llm.NewMockProvider()
	c := NewClient(provider, checklist.NewRepository(), DefaultConfig())

	_, err := c.CheckContext(context.Background(), testUtterance(), "encouragement")
	var cfgErr *checklist.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *checklist.ConfigError", err)
	}
	if provider.CallCount() != 0 {
		t.Error("no model call should be made for an undefined label")
	}
}
