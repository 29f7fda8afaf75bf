// Package textprep implements the normalization and tokenization pipeline
// used by the lexical index at build and query time.
package textprep

import (
	"regexp"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

var (
	urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

	// Arabic text keeps only Arabic-script runes and whitespace; digits and
	// Latin letters are discarded.
	nonArabic = regexp.MustCompile(`[^\x{0600}-\x{06FF}\s]`)

	// Non-Arabic text keeps word characters, whitespace, and the Latin
	// accented range.
	nonLatin = regexp.MustCompile(`[^\w\s\x{00C0}-\x{017F}]`)

	whitespace = regexp.MustCompile(`\s+`)
)

// Preparer turns raw text into a stopword-filtered token sequence. Pure
// function of (text, language); no external state.
type Preparer struct {
	stopwords map[domain.Language]map[string]struct{}
}

func NewPreparer() *Preparer {
	return &Preparer{
		stopwords: map[domain.Language]map[string]struct{}{
			domain.LanguageFrench: frenchStopwords,
			domain.LanguageArabic: arabicStopwords,
		},
	}
}

func (p *Preparer) Prepare(text string, language domain.Language) []string {
	normalized := p.Normalize(text, language)
	if normalized == "" {
		return nil
	}
	tokens := strings.Split(normalized, " ")
	return p.removeStopwords(tokens, language)
}

// Normalize strips URLs, filters by script, and collapses whitespace.
func (p *Preparer) Normalize(text string, language domain.Language) string {
	text = urlPattern.ReplaceAllString(text, "")
	if language == domain.LanguageArabic {
		text = nonArabic.ReplaceAllString(text, " ")
	} else {
		text = nonLatin.ReplaceAllString(text, " ")
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func (p *Preparer) removeStopwords(tokens []string, language domain.Language) []string {
	set, ok := p.stopwords[language]
	if !ok {
		// Unknown language: pass tokens through unchanged.
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		key := token
		if language == domain.LanguageFrench {
			key = strings.ToLower(token)
		}
		if _, stop := set[key]; stop {
			continue
		}
		out = append(out, token)
	}
	return out
}
