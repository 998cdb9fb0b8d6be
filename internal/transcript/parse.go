package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxSpeakerPrefix bounds how far into a plain-text line a "Name:" prefix
// may reach before it is treated as utterance text instead.
const maxSpeakerPrefix = 32

// ParseFile reads a transcript file, dispatching on extension.
// Supported: .json (array of utterances), .jsonl (one object per line),
// .txt (one utterance per non-blank line).
func ParseFile(path string) ([]Utterance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(data)
	case ".jsonl":
		return parseJSONL(data)
	case ".txt", "":
		return parseText(data)
	default:
		return nil, fmt.Errorf("unsupported transcript format %q", filepath.Ext(path))
	}
}

func parseJSON(data []byte) ([]Utterance, error) {
	var utterances []Utterance
	if err := json.Unmarshal(data, &utterances); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	fillIDs(utterances)
	return utterances, nil
}

func parseJSONL(data []byte) ([]Utterance, error) {
	var utterances []Utterance

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var u Utterance
		if err := json.Unmarshal([]byte(text), &u); err != nil {
			return nil, fmt.Errorf("parse transcript jsonl line %d: %w", line, err)
		}
		utterances = append(utterances, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	fillIDs(utterances)
	return utterances, nil
}

// parseText handles plain transcripts. Each non-blank line is one
// utterance. Two optional prefixes are recognized:
//
//	[12.5] Teacher: Let's review yesterday's lesson.
//
// A leading "[seconds]" becomes the timestamp and a short "Name:" prefix
// becomes the speaker.
func parseText(data []byte) ([]Utterance, error) {
	var utterances []Utterance

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var u Utterance

		if strings.HasPrefix(line, "[") {
			if end := strings.IndexByte(line, ']'); end > 0 {
				ts, err := strconv.ParseFloat(strings.TrimSpace(line[1:end]), 64)
				if err == nil {
					u.Timestamp = ts
					line = strings.TrimSpace(line[end+1:])
				}
			}
		}

		if idx := strings.Index(line, ": "); idx > 0 && idx < maxSpeakerPrefix {
			speaker := line[:idx]
			if !strings.ContainsAny(speaker, ".?!") {
				u.Speaker = strings.TrimSpace(speaker)
				line = strings.TrimSpace(line[idx+2:])
			}
		}

		u.Text = line
		utterances = append(utterances, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	fillIDs(utterances)
	return utterances, nil
}

// fillIDs assigns sequential ids to utterances that arrived without one.
func fillIDs(utterances []Utterance) {
	for i := range utterances {
		if utterances[i].ID == "" {
			utterances[i].ID = fmt.Sprintf("u-%04d", i+1)
		}
	}
}
