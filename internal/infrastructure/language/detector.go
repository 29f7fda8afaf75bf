package language

import (
	"regexp"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// arabicScript covers the Arabic block plus the supplement and extended-A
// ranges used by Maghrebi text.
var arabicScript = regexp.MustCompile(`[\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}]`)

// Detector decides between the two corpus languages from script content.
// Detection never fails: inputs too short to judge, or without any Arabic
// script, resolve to the default language.
type Detector struct {
	defaultLanguage domain.Language
}

func NewDetector(defaultLanguage domain.Language) *Detector {
	if !defaultLanguage.Supported() {
		defaultLanguage = domain.LanguageFrench
	}
	return &Detector{defaultLanguage: defaultLanguage}
}

func (d *Detector) Detect(text string) domain.Language {
	if len(strings.TrimSpace(text)) < 2 {
		return d.defaultLanguage
	}
	if arabicScript.MatchString(text) {
		return domain.LanguageArabic
	}
	return d.defaultLanguage
}
