// Package checklist holds the per-dimension, per-label classification
// criteria that guide every model prompt. Criteria are seeded at compile
// time and may be overridden by YAML documents; after loading they are
// read-only and shared across all concurrent classification work.
package checklist

import (
	"fmt"

	"lectio/internal/taxonomy"
)

// CheckItem is one criterion inside a checklist: a yes/no question with
// few-shot examples on both sides.
type CheckItem struct {
	ID               string   `yaml:"id"`
	Question         string   `yaml:"question"`
	PositiveExamples []string `yaml:"positive_examples"`
	NegativeExamples []string `yaml:"negative_examples"`
}

// Checklist is the ordered criteria set for one dimension/label pair.
type Checklist struct {
	Dimension taxonomy.Dimension `yaml:"dimension"`
	Label     string             `yaml:"label"`
	Items     []CheckItem        `yaml:"criteria"`
}

// ConfigError reports a missing or malformed checklist definition.
// Fatal at startup: classification must never run with partial criteria.
type ConfigError struct {
	Dimension taxonomy.Dimension
	Label     string
	Reason    string
	Err       error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("checklist %s/%s: %s", e.Dimension, e.Label, e.Reason)
	if e.Dimension == "" && e.Label == "" {
		msg = fmt.Sprintf("checklist: %s", e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Repository resolves checklists by dimension and label. Construct with
// NewRepository, optionally layer LoadDir on top, then treat as immutable.
type Repository struct {
	checklists map[taxonomy.Dimension]map[string]*Checklist
}

// NewRepository returns a repository seeded with the built-in criteria
// for every votable label.
func NewRepository() *Repository {
	r := &Repository{
		checklists: make(map[taxonomy.Dimension]map[string]*Checklist, 3),
	}
	for i := range seedChecklists {
		c := &seedChecklists[i]
		r.put(c)
	}
	return r
}

func (r *Repository) put(c *Checklist) {
	byLabel, ok := r.checklists[c.Dimension]
	if !ok {
		byLabel = make(map[string]*Checklist)
		r.checklists[c.Dimension] = byLabel
	}
	byLabel[c.Label] = c
}

// Get returns the checklist for a dimension/label pair. Undefined pairs
// fail with *ConfigError.
func (r *Repository) Get(dim taxonomy.Dimension, label string) (*Checklist, error) {
	if byLabel, ok := r.checklists[dim]; ok {
		if c, ok := byLabel[label]; ok {
			return c, nil
		}
	}
	return nil, &ConfigError{Dimension: dim, Label: label, Reason: "not defined"}
}

// Labels returns the votable labels of a dimension in canonical order.
func (r *Repository) Labels(dim taxonomy.Dimension) []string {
	return taxonomy.Labels(dim)
}

// Validate checks that every votable label of every dimension has a
// checklist with at least one criterion. Call after loading, before any
// classification is scheduled.
func (r *Repository) Validate() error {
	for _, dim := range taxonomy.Dimensions() {
		for _, label := range taxonomy.Labels(dim) {
			c, err := r.Get(dim, label)
			if err != nil {
				return err
			}
			if len(c.Items) == 0 {
				return &ConfigError{Dimension: dim, Label: label, Reason: "no criteria"}
			}
			for i, item := range c.Items {
				if item.ID == "" {
					return &ConfigError{Dimension: dim, Label: label, Reason: fmt.Sprintf("criterion %d missing id", i)}
				}
				if item.Question == "" {
					return &ConfigError{Dimension: dim, Label: label, Reason: fmt.Sprintf("criterion %q missing question", item.ID)}
				}
			}
		}
	}
	return nil
}
