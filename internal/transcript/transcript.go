// Package transcript defines the utterance model and parses transcript
// files produced by external transcription tools.
package transcript

import (
	"fmt"
	"strings"
)

// Utterance is a single timestamped unit of teacher speech.
// Immutable once ingested.
type Utterance struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"` // seconds from session start
	Speaker   string  `json:"speaker,omitempty"`
}

// Validate checks a parsed utterance list before any work is scheduled.
func Validate(utterances []Utterance) error {
	if len(utterances) == 0 {
		return fmt.Errorf("transcript contains no utterances")
	}

	seen := make(map[string]struct{}, len(utterances))
	for i, u := range utterances {
		if u.ID == "" {
			return fmt.Errorf("utterance %d: missing id", i)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("utterance %d: duplicate id %q", i, u.ID)
		}
		seen[u.ID] = struct{}{}

		if strings.TrimSpace(u.Text) == "" {
			return fmt.Errorf("utterance %q: empty text", u.ID)
		}
		if u.Timestamp < 0 {
			return fmt.Errorf("utterance %q: negative timestamp", u.ID)
		}
	}
	return nil
}
