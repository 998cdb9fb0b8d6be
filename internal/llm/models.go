package llm

// Friendly model aliases per vendor. An analysis run spends three
// dimensions times N votes in calls per utterance, so the aliases point
// at each vendor's cheap fast tier and get repinned when vendors rotate
// model IDs.
var (
	anthropicModels = map[string]string{
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-20250514",
	}

	openaiModels = map[string]string{
		"gpt-4o":      "gpt-4o",
		"gpt-4o-mini": "gpt-4o-mini",
	}

	geminiModels = map[string]string{
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.0-pro",
	}
)

// resolveModel turns a friendly alias into a pinned model ID. Anything
// not in the alias table is treated as a pinned ID and passed through,
// which is how OpenRouter slugs and preview models get used.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
