// Package llm abstracts the hosted language models that back utterance
// classification. Callers build a Request, attach the JSON schema the
// answer must satisfy, and get validated JSON back regardless of which
// vendor serves the call.
package llm

import (
	"context"
	"encoding/json"
)

// StopReason values, normalized across vendors.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopError     = "error"
)

// Provider is one hosted model behind a uniform generate call.
type Provider interface {
	// Generate performs a single billable model call. When req.Schema is
	// set the returned Content is JSON already validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the model this provider is configured to call.
	ModelID() string
}

// Request is a single generation request.
type Request struct {
	// System sets the model's role and output constraints.
	System string

	// Messages is the conversation. Classification is single-turn, so
	// this is almost always one user message.
	Messages []Message

	// Schema, when set, switches the provider to its native structured
	// output mode and gates the response through schema validation.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0,1]. Zero means deterministic sampling where the
	// vendor supports it.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the model output must conform to.
type Schema struct {
	// Name keys the compiled-schema cache and doubles as the vendor-side
	// schema/tool name. Kebab-case.
	Name string

	// Description tells the model what the structure represents.
	Description string

	// Definition is the JSON Schema as a plain map.
	Definition map[string]any
}

// Response is the normalized result of one model call.
type Response struct {
	// Content is the model output. Validated JSON when the request
	// carried a schema, raw text otherwise.
	Content json.RawMessage

	// Usage is the token consumption the vendor reported.
	Usage Usage

	// Model is the model that actually served the call.
	Model string

	// StopReason is one of the Stop* constants.
	StopReason string
}

// Usage is per-call token accounting.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
