package usecase

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

//go:embed clarification_patterns.yaml
var defaultPatterns []byte

type clarifyLocale struct {
	MainResponse string   `yaml:"main_response"`
	FollowUp     string   `yaml:"follow_up"`
	Options      []string `yaml:"options"`
}

type clarifyCategory struct {
	Name     string         `yaml:"name"`
	Keywords []string       `yaml:"keywords"`
	FR       *clarifyLocale `yaml:"fr"`
	AR       *clarifyLocale `yaml:"ar"`
}

type clarifyTable struct {
	CompanyForms []string          `yaml:"company_forms"`
	Categories   []clarifyCategory `yaml:"categories"`
	Fallback     struct {
		FR *clarifyLocale `yaml:"fr"`
		AR *clarifyLocale `yaml:"ar"`
	} `yaml:"fallback"`
}

// ClarificationTable decides whether a question is too vague to answer
// directly and, when it is, produces the follow-up question to send back.
// Category order in the table is significant: the first matching category
// wins.
type ClarificationTable struct {
	table clarifyTable
}

// NewClarificationTable loads the embedded pattern table. When path is
// non-empty the file at path replaces the embedded defaults.
func NewClarificationTable(path string) (*ClarificationTable, error) {
	raw := defaultPatterns
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read clarification patterns: %w", err)
		}
		raw = data
	}

	var t clarifyTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse clarification patterns: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, fmt.Errorf("parse clarification patterns: no categories")
	}
	return &ClarificationTable{table: t}, nil
}

// Analyze reports whether query is vague and the category it matched.
// A query that names a concrete company form is specific enough to answer
// regardless of keywords.
func (c *ClarificationTable) Analyze(query string) (string, bool) {
	lowered := strings.ToLower(query)

	for _, form := range c.table.CompanyForms {
		if strings.Contains(lowered, form) {
			return "", false
		}
	}

	for _, cat := range c.table.Categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lowered, kw) {
				return cat.Name, true
			}
		}
	}
	return "", false
}

// Clarification builds the follow-up payload for a matched category in the
// requested language. Categories without an Arabic localisation fall back to
// the generic Arabic prompt so the user never receives a mixed-language
// clarification.
func (c *ClarificationTable) Clarification(category string, language domain.Language) domain.Clarification {
	var loc *clarifyLocale
	for _, cat := range c.table.Categories {
		if cat.Name != category {
			continue
		}
		if language == domain.LanguageArabic {
			loc = cat.AR
		} else {
			loc = cat.FR
		}
		break
	}
	if loc == nil {
		if language == domain.LanguageArabic {
			loc = c.table.Fallback.AR
		} else {
			loc = c.table.Fallback.FR
		}
	}
	if loc == nil {
		loc = &clarifyLocale{}
	}

	return domain.Clarification{
		Category:         category,
		MainResponse:     loc.MainResponse,
		FollowUpQuestion: loc.FollowUp,
		Options:          append([]string(nil), loc.Options...),
	}
}
