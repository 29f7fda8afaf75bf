package language

import (
	"testing"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

func TestDetectArabicScript(t *testing.T) {
	d := NewDetector(domain.LanguageFrench)
	if got := d.Detect("شنوة الوثائق المطلوبة؟"); got != domain.LanguageArabic {
		t.Fatalf("Detect() = %s, want ar", got)
	}
}

func TestDetectLatinDefaultsToFrench(t *testing.T) {
	d := NewDetector(domain.LanguageFrench)
	if got := d.Detect("Quel est le capital minimum ?"); got != domain.LanguageFrench {
		t.Fatalf("Detect() = %s, want fr", got)
	}
}

func TestDetectShortInputFallsBack(t *testing.T) {
	d := NewDetector(domain.LanguageFrench)
	if got := d.Detect(" a "); got != domain.LanguageFrench {
		t.Fatalf("Detect() = %s, want default fr", got)
	}
}

func TestDetectMixedScriptPrefersArabic(t *testing.T) {
	d := NewDetector(domain.LanguageFrench)
	if got := d.Detect("SARL باش نعمل"); got != domain.LanguageArabic {
		t.Fatalf("Detect() = %s, want ar", got)
	}
}

func TestNewDetectorRejectsUnsupportedDefault(t *testing.T) {
	d := NewDetector(domain.Language("en"))
	if got := d.Detect("hello world"); got != domain.LanguageFrench {
		t.Fatalf("Detect() = %s, want fr fallback", got)
	}
}
