package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lectio/internal/checklist"
	"lectio/internal/llm"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

// Config tunes the per-vote model calls.
type Config struct {
	// Votes is N, the redundant samples per utterance/dimension.
	Votes int

	// MaxTokens caps one decision response.
	MaxTokens int

	// Temperature stays above zero on purpose: redundant sampling only
	// buys reliability when runs can disagree.
	Temperature float64
}

// DefaultConfig returns the defaults used by the CLI and server.
func DefaultConfig() Config {
	return Config{
		Votes:       3,
		MaxTokens:   256,
		Temperature: 0.7,
	}
}

// Client performs one checklist-guided decision per call. Retries of
// transient failures ride the provider's retry decorator; an error out
// of Client means the call is spent.
type Client struct {
	provider llm.Provider
	repo     *checklist.Repository
	cfg      Config
}

// NewClient creates a classification client.
func NewClient(provider llm.Provider, repo *checklist.Repository, cfg Config) *Client {
	return &Client{provider: provider, repo: repo, cfg: cfg}
}

// singleLabelDecision is the raw model response for a single-label call.
type singleLabelDecision struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// binaryDecision is the raw model response for one context check.
type binaryDecision struct {
	Match  bool   `json:"match"`
	Reason string `json:"reason"`
}

// ClassifyLabel performs one single-label decision for dim. The prompt
// carries every candidate label's checklist; the response is constrained
// to the dimension's closed enum.
func (c *Client) ClassifyLabel(ctx context.Context, u transcript.Utterance, dim taxonomy.Dimension) (string, error) {
	ctx = llm.WithPurpose(ctx, "classify:"+string(dim))

	labels := taxonomy.Labels(dim)
	candidates := make([]*checklist.Checklist, 0, len(labels))
	for _, label := range labels {
		cl, err := c.repo.Get(dim, label)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, cl)
	}

	userMsg, err := buildSingleLabelPrompt(u, dim, candidates)
	if err != nil {
		return "", err
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      systemPrompt(dim),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      decisionSchema(dim),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	var raw singleLabelDecision
	if err := decodeDecision(resp.Content, &raw); err != nil {
		return "", fmt.Errorf("parse %s decision: %w", dim, err)
	}

	if !inVocabulary(dim, raw.Label) {
		// The model stepped outside the closed enum. The vote is spent,
		// not the utterance: the tally records it as failed.
		return "", fmt.Errorf("%s decision: label %q not in vocabulary", dim, raw.Label)
	}
	return raw.Label, nil
}

// CheckContext performs one independent yes/no vote on a single context
// label.
func (c *Client) CheckContext(ctx context.Context, u transcript.Utterance, label string) (bool, error) {
	ctx = llm.WithPurpose(ctx, "classify:context/"+label)

	cl, err := c.repo.Get(taxonomy.DimensionContext, label)
	if err != nil {
		return false, err
	}

	userMsg, err := buildBinaryCheckPrompt(u, cl)
	if err != nil {
		return false, err
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      systemPrompt(taxonomy.DimensionContext),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      contextCheckSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return false, err
	}

	var raw binaryDecision
	if err := decodeDecision(resp.Content, &raw); err != nil {
		return false, fmt.Errorf("parse context check for %q: %w", label, err)
	}
	return raw.Match, nil
}

// decodeDecision parses model output defensively: markdown code fences
// are stripped and unknown fields tolerated. Models that ignore the
// structured-output instruction still tend to produce fenced JSON.
func decodeDecision(raw json.RawMessage, v any) error {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	return json.Unmarshal([]byte(s), v)
}

func inVocabulary(dim taxonomy.Dimension, label string) bool {
	for _, l := range taxonomy.Labels(dim) {
		if l == label {
			return true
		}
	}
	return false
}
