package checklist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lectio/internal/taxonomy"
)

// LoadDir merges YAML checklist documents over the seed. One document per
// file:
//
//	dimension: context
//	label: question
//	criteria:
//	  - id: ctx-question-solicit
//	    question: "Does the utterance ask the class a question?"
//	    positive_examples: ["What is 7 x 8?"]
//	    negative_examples: ["Open your books."]
//
// A document replaces the seeded checklist for its dimension/label pair.
// Files are applied in name order so overrides are deterministic.
func (r *Repository) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("read dir %s", dir), Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.loadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("read %s", filepath.Base(path)), Err: err}
	}

	var c Checklist
	if err := yaml.Unmarshal(data, &c); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("parse %s", filepath.Base(path)), Err: err}
	}

	dim, ok := taxonomy.ParseDimension(string(c.Dimension))
	if !ok {
		return &ConfigError{Label: c.Label, Reason: fmt.Sprintf("%s: unknown dimension %q", filepath.Base(path), c.Dimension)}
	}
	if !validLabel(dim, c.Label) {
		return &ConfigError{Dimension: dim, Label: c.Label, Reason: fmt.Sprintf("%s: label not in vocabulary", filepath.Base(path))}
	}
	if len(c.Items) == 0 {
		return &ConfigError{Dimension: dim, Label: c.Label, Reason: fmt.Sprintf("%s: no criteria", filepath.Base(path))}
	}

	r.put(&c)
	return nil
}

func validLabel(dim taxonomy.Dimension, label string) bool {
	for _, l := range taxonomy.Labels(dim) {
		if l == label {
			return true
		}
	}
	return false
}
