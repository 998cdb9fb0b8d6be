package classify

import (
	"bytes"
	"fmt"
	"text/template"

	"lectio/internal/checklist"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

const stageSystemPrompt = `You are an expert classroom observation analyst. You classify a single teacher utterance by its instructional stage: where in the lesson's arc it belongs.

Instructions:
- Judge the utterance against each stage's criteria below. The positive examples match the criterion; the negative examples do not.
- Pick exactly ONE stage label from the candidates. Do NOT invent labels.
- Keep reasoning to one sentence.`

const levelSystemPrompt = `You are an expert classroom observation analyst. You classify a single teacher utterance by the cognitive demand it places on students: L1 (recall, understand), L2 (apply, analyze), L3 (synthesize, evaluate).

Instructions:
- Judge the utterance against each level's criteria below. The positive examples match the criterion; the negative examples do not.
- Pick exactly ONE level label from the candidates. Do NOT invent labels.
- Keep reasoning to one sentence.`

const contextSystemPrompt = `You are an expert classroom observation analyst. You decide whether a single teacher utterance serves ONE specific pedagogical function. An utterance can serve several functions; you are only asked about this one.

Instructions:
- Judge the utterance against the criteria below. The positive examples match the criterion; the negative examples do not.
- Answer true if the utterance serves the function, false otherwise.
- Keep reasoning to one sentence.`

// systemPrompt returns the system prompt for a dimension's decision.
func systemPrompt(dim taxonomy.Dimension) string {
	switch dim {
	case taxonomy.DimensionStage:
		return stageSystemPrompt
	case taxonomy.DimensionLevel:
		return levelSystemPrompt
	case taxonomy.DimensionContext:
		return contextSystemPrompt
	}
	return ""
}

var singleLabelTemplate = template.Must(template.New("single-label").Parse(`Teacher utterance: "{{.Text}}"

Candidate {{.Dimension}} labels:
{{range .Candidates}}
## {{.Label}}
{{range .Items}}- {{.Question}}
{{range .PositiveExamples}}    matches: "{{.}}"
{{end}}{{range .NegativeExamples}}    does not match: "{{.}}"
{{end}}{{end}}{{end}}
Pick the single best-fitting {{.Dimension}} label.`))

var binaryCheckTemplate = template.Must(template.New("binary-check").Parse(`Teacher utterance: "{{.Text}}"

Function in question: {{.Label}}

Criteria:
{{range .Items}}- {{.Question}}
{{range .PositiveExamples}}    matches: "{{.}}"
{{end}}{{range .NegativeExamples}}    does not match: "{{.}}"
{{end}}{{end}}
Does the utterance serve the "{{.Label}}" function?`))

type singleLabelPromptData struct {
	Text       string
	Dimension  taxonomy.Dimension
	Candidates []*checklist.Checklist
}

// buildSingleLabelPrompt renders the user message for a single-label
// decision: the utterance plus every candidate label's full checklist
// with few-shot examples on both sides.
func buildSingleLabelPrompt(u transcript.Utterance, dim taxonomy.Dimension, candidates []*checklist.Checklist) (string, error) {
	var buf bytes.Buffer
	err := singleLabelTemplate.Execute(&buf, singleLabelPromptData{
		Text:       u.Text,
		Dimension:  dim,
		Candidates: candidates,
	})
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", dim, err)
	}
	return buf.String(), nil
}

type binaryCheckPromptData struct {
	Text  string
	Label string
	Items []checklist.CheckItem
}

// buildBinaryCheckPrompt renders the user message for one independent
// context check: the utterance plus the single candidate's checklist.
func buildBinaryCheckPrompt(u transcript.Utterance, c *checklist.Checklist) (string, error) {
	var buf bytes.Buffer
	err := binaryCheckTemplate.Execute(&buf, binaryCheckPromptData{
		Text:  u.Text,
		Label: c.Label,
		Items: c.Items,
	})
	if err != nil {
		return "", fmt.Errorf("render context check prompt: %w", err)
	}
	return buf.String(), nil
}
