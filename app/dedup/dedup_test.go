package dedup

import (
	"testing"

	"newsbrief/app/collector"
)

func emptyCorpus() Corpus {
	return Corpus{URLs: map[string]string{}}
}

func TestDeduplicator_Run_AcceptsDistinctItems(t *testing.T) {
	d := NewDeduplicator(0.85)

	batch := []collector.Item{
		{Title: "Chipmaker posts record earnings", URL: "https://example.com/chips"},
		{Title: "Protocol upgrade ships on mainnet", URL: "https://example.com/protocol"},
	}

	decisions := d.Run(batch, emptyCorpus())

	if len(decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(decisions))
	}
	for i, decision := range decisions {
		if decision.Duplicate {
			t.Errorf("Decision %d should not be a duplicate: %s", i, decision.Reason)
		}
	}
}

func TestDeduplicator_Run_ExactURLMatchAgainstCorpus(t *testing.T) {
	d := NewDeduplicator(0.85)

	corpus := Corpus{URLs: map[string]string{"example.com/story": "stored-1"}}

	batch := []collector.Item{
		{Title: "A completely different headline", URL: "https://www.example.com/story/?utm_source=feed"},
	}

	decisions := d.Run(batch, corpus)

	if !decisions[0].Duplicate {
		t.Fatal("Expected duplicate by canonical URL")
	}
	if decisions[0].Reason != "duplicate URL" {
		t.Errorf("Unexpected reason: %q", decisions[0].Reason)
	}
	if decisions[0].DuplicateOfID != "stored-1" {
		t.Errorf("Expected duplicate of stored-1, got %q", decisions[0].DuplicateOfID)
	}
	if !decisions[0].AlreadyStored {
		t.Error("Stored-URL match should be flagged as already stored")
	}
}

func TestDeduplicator_Run_SameURLWithinBatch(t *testing.T) {
	d := NewDeduplicator(0.85)

	batch := []collector.Item{
		{Title: "Vendor raises a funding round", URL: "https://example.com/round"},
		{Title: "Totally different wording here", URL: "https://example.com/round?fbclid=xyz"},
	}

	decisions := d.Run(batch, emptyCorpus())

	if decisions[0].Duplicate {
		t.Error("First item with a URL should be accepted")
	}
	if !decisions[1].Duplicate {
		t.Fatal("Second item with the same canonical URL should be a duplicate")
	}
	if decisions[1].DuplicateOfURL != "example.com/round" {
		t.Errorf("Batch-local duplicate should reference the canonical URL, got %q", decisions[1].DuplicateOfURL)
	}
	if decisions[1].DuplicateOfID != "" {
		t.Errorf("Batch-local duplicate has no store ID yet, got %q", decisions[1].DuplicateOfID)
	}
	if decisions[1].AlreadyStored {
		t.Error("Batch-local duplicate is not an already-stored URL")
	}
}

func TestDeduplicator_Run_SimilarTitleAgainstWindow(t *testing.T) {
	d := NewDeduplicator(0.85)

	corpus := Corpus{
		URLs: map[string]string{},
		Titles: []KnownTitle{
			{ID: "stored-7", Title: "OpenAI releases new flagship reasoning model today"},
		},
	}

	batch := []collector.Item{
		{Title: "OpenAI releases new flagship reasoning model", URL: "https://another.com/coverage"},
	}

	decisions := d.Run(batch, corpus)

	if !decisions[0].Duplicate {
		t.Fatal("Near-identical title should be a duplicate")
	}
	if decisions[0].DuplicateOfID != "stored-7" {
		t.Errorf("Expected duplicate of stored-7, got %q", decisions[0].DuplicateOfID)
	}
}

func TestDeduplicator_Run_DissimilarTitleAccepted(t *testing.T) {
	d := NewDeduplicator(0.85)

	corpus := Corpus{
		URLs: map[string]string{},
		Titles: []KnownTitle{
			{ID: "stored-1", Title: "Central bank holds interest rates steady"},
		},
	}

	batch := []collector.Item{
		{Title: "New zero-knowledge rollup reaches mainnet", URL: "https://example.com/zk"},
	}

	decisions := d.Run(batch, corpus)

	if decisions[0].Duplicate {
		t.Errorf("Unrelated title should be accepted, got reason %q", decisions[0].Reason)
	}
}

func TestDeduplicator_Run_FirstInBatchWinsTies(t *testing.T) {
	d := NewDeduplicator(0.85)

	batch := []collector.Item{
		{Title: "Exchange lists a new token pair", URL: "https://first.com/a"},
		{Title: "Exchange lists a new token pair", URL: "https://second.com/b"},
		{Title: "Exchange lists a new token pair", URL: "https://third.com/c"},
	}

	decisions := d.Run(batch, emptyCorpus())

	if decisions[0].Duplicate {
		t.Error("First item should win the tie")
	}
	for i := 1; i < 3; i++ {
		if !decisions[i].Duplicate {
			t.Errorf("Item %d should lose to the first batch entry", i)
		}
		if decisions[i].DuplicateOfURL != "first.com/a" {
			t.Errorf("Item %d should reference the first entry, got %q", i, decisions[i].DuplicateOfURL)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"https://www.Example.com/Story/", "example.com/Story"},
		{"http://example.com/a?utm_source=x&utm_medium=y", "example.com/a"},
		{"https://example.com/a?id=7&utm_campaign=z", "example.com/a?id=7"},
		{"https://example.com/a#section", "example.com/a"},
		{"https://example.com/a?fbclid=abc&gclid=def&ref=tw", "example.com/a"},
	}

	for _, tc := range cases {
		if got := CanonicalURL(tc.raw); got != tc.expected {
			t.Errorf("CanonicalURL(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestCanonicalURL_Idempotent(t *testing.T) {
	raw := "https://www.example.com/story?utm_source=x&id=3#top"
	once := CanonicalURL(raw)
	twice := CanonicalURL(once)
	if once != twice {
		t.Errorf("Canonicalization should be idempotent: %q != %q", once, twice)
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"Breaking: Markets Rally After Fed Decision - Reuters", "markets rally after fed decision"},
		{"Update: protocol   upgrade LIVE!", "protocol upgrade live"},
		{"Plain headline", "plain headline"},
	}

	for _, tc := range cases {
		if got := NormalizeTitle(tc.raw); got != tc.expected {
			t.Errorf("NormalizeTitle(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("openai releases new model", "openai releases new model"); s < 0.999 {
		t.Errorf("Identical strings should score 1.0, got %f", s)
	}

	if s := Similarity("openai releases new model", "central bank holds rates"); s > 0.3 {
		t.Errorf("Unrelated strings should score low, got %f", s)
	}

	a := "openai releases new flagship model today"
	b := "openai releases new flagship model"
	if s := Similarity(a, b); s < 0.85 {
		t.Errorf("Near-identical strings should clear the threshold, got %f", s)
	}
}
