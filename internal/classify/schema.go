package classify

import (
	"fmt"

	"lectio/internal/llm"
	"lectio/internal/taxonomy"
)

// singleLabelSchema builds the decision schema for one single-label
// dimension: the label field is a closed enum over the dimension's
// vocabulary. Schema names key the provider-side compile cache, so one
// schema per dimension, built once.
func singleLabelSchema(dim taxonomy.Dimension) *llm.Schema {
	labels := taxonomy.Labels(dim)
	enum := make([]any, len(labels))
	for i, l := range labels {
		enum[i] = l
	}

	return &llm.Schema{
		Name:        fmt.Sprintf("classify-%s", dim),
		Description: fmt.Sprintf("Single-label %s classification of one teacher utterance", dim),
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"label": map[string]any{
					"type":        "string",
					"enum":        enum,
					"description": "The single best-fitting label from the candidate list",
				},
				"reason": map[string]any{
					"type":        "string",
					"description": "Brief one-sentence justification",
				},
			},
			"required":             []any{"label"},
			"additionalProperties": false,
		},
	}
}

var stageSchema = singleLabelSchema(taxonomy.DimensionStage)
var levelSchema = singleLabelSchema(taxonomy.DimensionLevel)

// contextCheckSchema is the decision schema for one independent yes/no
// context check. Shared across all five candidate labels; the label
// under test lives in the prompt, not the schema.
var contextCheckSchema = &llm.Schema{
	Name:        "context-check",
	Description: "Binary decision: does the utterance serve one specific pedagogical function",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"match": map[string]any{
				"type":        "boolean",
				"description": "true if the utterance serves the function in question",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Brief one-sentence justification",
			},
		},
		"required":             []any{"match"},
		"additionalProperties": false,
	},
}

// decisionSchema returns the schema for a single-label dimension.
func decisionSchema(dim taxonomy.Dimension) *llm.Schema {
	switch dim {
	case taxonomy.DimensionStage:
		return stageSchema
	case taxonomy.DimensionLevel:
		return levelSchema
	}
	return nil
}
