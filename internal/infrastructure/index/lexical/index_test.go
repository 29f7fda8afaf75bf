package lexical

import (
	"testing"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/infrastructure/language"
	"github.com/rnechat/rne-assistant/internal/infrastructure/textprep"
)

func newTestIndex() *Index {
	return New(textprep.NewPreparer(), language.NewDetector(domain.LanguageFrench))
}

func buildBilingualCorpus(idx *Index) {
	texts := []string{
		"immatriculation SARL capital minimum société",
		"délai création personne physique commerçant",
		"تأسيس شركة مسؤولية محدودة رأس مال",
	}
	docs := []domain.Document{
		{ID: "rne1_fr", Language: domain.LanguageFrench},
		{ID: "rne2_fr", Language: domain.LanguageFrench},
		{ID: "rne1_ar", Language: domain.LanguageArabic},
	}
	idx.Build(texts, docs)
}

func TestSearchReturnsMatchingPartitionOnly(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	results := idx.Search("capital minimum SARL", 5, domain.LanguageFrench)
	if len(results) == 0 {
		t.Fatalf("expected french results")
	}
	if results[0].Document.ID != "rne1_fr" {
		t.Fatalf("expected rne1_fr first, got %s", results[0].Document.ID)
	}
	for _, r := range results {
		if r.Document.Language != domain.LanguageFrench {
			t.Fatalf("cross-language leak: %s", r.Document.ID)
		}
	}
}

func TestSearchLanguagePartitionIsolation(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	// The token SARL exists in the french partition; requesting arabic must
	// never surface the french document.
	results := idx.Search("SARL", 5, domain.LanguageArabic)
	for _, r := range results {
		if r.Document.ID == "rne1_fr" {
			t.Fatalf("french document returned under arabic search")
		}
	}
}

func TestSearchDetectsLanguageWhenUnset(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	results := idx.Search("تأسيس شركة", 3, "")
	if len(results) == 0 {
		t.Fatalf("expected arabic results via detection")
	}
	if results[0].Document.ID != "rne1_ar" {
		t.Fatalf("expected rne1_ar, got %s", results[0].Document.ID)
	}
}

func TestSearchExcludesNonPositiveScores(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	results := idx.Search("hydraulique aéronautique", 5, domain.LanguageFrench)
	if len(results) != 0 {
		t.Fatalf("expected no matches for unrelated terms, got %d", len(results))
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	idx := newTestIndex()
	idx.Build(nil, nil)
	if results := idx.Search("capital", 3, domain.LanguageFrench); len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestBuildEmptyPartitionYieldsNoResults(t *testing.T) {
	idx := newTestIndex()
	idx.Build(
		[]string{"immatriculation société"},
		[]domain.Document{{ID: "only_fr", Language: domain.LanguageFrench}},
	)
	if results := idx.Search("شركة", 3, domain.LanguageArabic); len(results) != 0 {
		t.Fatalf("expected empty arabic partition, got %d results", len(results))
	}
}

func TestSearchRanksAreSequential(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	results := idx.Search("création société capital", 5, domain.LanguageFrench)
	for i, r := range results {
		if r.Rank != i+1 {
			t.Fatalf("rank at %d is %d", i, r.Rank)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	idx := newTestIndex()
	buildBilingualCorpus(idx)

	data, err := idx.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	restored := newTestIndex()
	if err := restored.Restore(data); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	want := idx.Search("capital minimum SARL", 3, domain.LanguageFrench)
	got := restored.Search("capital minimum SARL", 3, domain.LanguageFrench)
	if len(want) != len(got) {
		t.Fatalf("restored result count %d, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i].Document.ID != got[i].Document.ID || want[i].Score != got[i].Score {
			t.Fatalf("restored result %d differs: %+v vs %+v", i, got[i], want[i])
		}
	}
}
