package digest

import (
	"context"
	"strings"
	"testing"
	"time"

	"newsbrief/app/database"
)

type stubAnnotationRepo struct {
	candidates []database.DigestCandidate
	minScore   int
}

func (r *stubAnnotationRepo) InsertAnnotation(context.Context, database.Annotation) (string, error) {
	return "", nil
}

func (r *stubAnnotationRepo) GetDigestCandidates(_ context.Context, minScore int, _ time.Time) ([]database.DigestCandidate, error) {
	r.minScore = minScore
	var out []database.DigestCandidate
	for _, c := range r.candidates {
		if c.TotalScore >= minScore {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubAnnotationRepo) SetApproval(context.Context, string, bool) error {
	return nil
}

func (r *stubAnnotationRepo) GetAnnotationCount(context.Context) (int, error) {
	return len(r.candidates), nil
}

type stubDigestRepo struct {
	stored        *database.Digest
	annotationIDs []string
}

func (r *stubDigestRepo) UpsertDigest(_ context.Context, date time.Time, title, body string, annotationIDs []string) (*database.Digest, error) {
	r.annotationIDs = annotationIDs
	r.stored = &database.Digest{
		ID:         "digest-1",
		DigestDate: date,
		Title:      title,
		Body:       body,
		Status:     database.DigestStatusDraft,
	}
	return r.stored, nil
}

func (r *stubDigestRepo) GetDigestByDate(context.Context, time.Time) (*database.Digest, error) {
	return r.stored, nil
}

func (r *stubDigestRepo) PublishDigest(context.Context, time.Time) error {
	return nil
}

func (r *stubDigestRepo) GetDigestCount(context.Context) (int, error) {
	return 0, nil
}

func candidate(id, title, category, url string, total int, published time.Time) database.DigestCandidate {
	return database.DigestCandidate{
		Annotation: database.Annotation{
			ID:         id,
			Summary:    "Summary for " + title,
			TotalScore: total,
		},
		CanonicalURL: url,
		ItemTitle:    title,
		ItemCategory: category,
		PublishedAt:  published,
	}
}

func testDate() time.Time {
	return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
}

func TestAssembler_Assemble_ThresholdBoundary(t *testing.T) {
	now := time.Now().UTC()
	annotations := &stubAnnotationRepo{candidates: []database.DigestCandidate{
		candidate("a-1", "Above threshold", "ai", "a.com/1", 20, now),
		candidate("a-2", "At threshold", "ai", "a.com/2", 15, now),
		candidate("a-3", "Below threshold", "ai", "a.com/3", 14, now),
	}}
	digests := &stubDigestRepo{}

	assembler := NewAssembler(annotations, digests, Options{MinScore: 15, MaxItems: 20, WindowHours: 24})

	if _, err := assembler.Assemble(context.Background(), testDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(digests.annotationIDs) != 2 {
		t.Fatalf("Expected 2 items at or above threshold, got %d", len(digests.annotationIDs))
	}
	if strings.Contains(digests.stored.Body, "Below threshold") {
		t.Error("Item below threshold should not appear in the digest")
	}
	if !strings.Contains(digests.stored.Body, "At threshold") {
		t.Error("Item exactly at threshold should appear in the digest")
	}
}

func TestAssembler_Assemble_CapsAndOrders(t *testing.T) {
	now := time.Now().UTC()
	annotations := &stubAnnotationRepo{candidates: []database.DigestCandidate{
		candidate("a-1", "Lowest scorer", "ai", "a.com/1", 16, now),
		candidate("a-2", "Top scorer", "ai", "a.com/2", 28, now),
		candidate("a-3", "Middle scorer", "ai", "a.com/3", 22, now),
	}}
	digests := &stubDigestRepo{}

	assembler := NewAssembler(annotations, digests, Options{MinScore: 15, MaxItems: 2, WindowHours: 24})

	if _, err := assembler.Assemble(context.Background(), testDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(digests.annotationIDs) != 2 {
		t.Fatalf("Expected cap of 2 items, got %d", len(digests.annotationIDs))
	}
	if digests.annotationIDs[0] != "a-2" || digests.annotationIDs[1] != "a-3" {
		t.Errorf("Expected top two scorers in order, got %v", digests.annotationIDs)
	}
}

func TestAssembler_Assemble_TieBreaksDeterministic(t *testing.T) {
	published := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	annotations := &stubAnnotationRepo{candidates: []database.DigestCandidate{
		candidate("a-1", "Same score later URL", "ai", "b.com/story", 20, published),
		candidate("a-2", "Same score earlier URL", "ai", "a.com/story", 20, published),
	}}
	digests := &stubDigestRepo{}

	assembler := NewAssembler(annotations, digests, Options{MinScore: 15, MaxItems: 20, WindowHours: 24})

	if _, err := assembler.Assemble(context.Background(), testDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if digests.annotationIDs[0] != "a-2" {
		t.Errorf("Equal score and time should order by URL, got %v", digests.annotationIDs)
	}
}

func TestAssembler_Assemble_CategoryPriorityOrder(t *testing.T) {
	now := time.Now().UTC()
	annotations := &stubAnnotationRepo{candidates: []database.DigestCandidate{
		candidate("a-1", "Web3 story", "web3", "a.com/1", 20, now),
		candidate("a-2", "Robotics story", "robotics", "a.com/2", 26, now),
		candidate("a-3", "AI story", "ai", "a.com/3", 18, now),
	}}
	digests := &stubDigestRepo{}

	assembler := NewAssembler(annotations, digests, Options{
		MinScore:         15,
		MaxItems:         20,
		WindowHours:      24,
		CategoryPriority: []string{"ai", "investment", "web3"},
	})

	if _, err := assembler.Assemble(context.Background(), testDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := digests.stored.Body
	aiIdx := strings.Index(body, "## AI")
	web3Idx := strings.Index(body, "## Web3")
	roboticsIdx := strings.Index(body, "## Robotics")

	if aiIdx < 0 || web3Idx < 0 || roboticsIdx < 0 {
		t.Fatalf("Expected all three sections in body:\n%s", body)
	}
	if !(aiIdx < web3Idx && web3Idx < roboticsIdx) {
		t.Errorf("Expected priority categories first, then unknown ones: ai=%d web3=%d robotics=%d", aiIdx, web3Idx, roboticsIdx)
	}
}

func TestAssembler_Assemble_EmptyDigestStillCreated(t *testing.T) {
	annotations := &stubAnnotationRepo{}
	digests := &stubDigestRepo{}

	assembler := NewAssembler(annotations, digests, Options{MinScore: 15, MaxItems: 20, WindowHours: 24})

	doc, err := assembler.Assemble(context.Background(), testDate())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc == nil {
		t.Fatal("Empty digest should still be created")
	}
	if !strings.Contains(doc.Body, "No qualifying items") {
		t.Errorf("Empty digest should say so, got:\n%s", doc.Body)
	}
	if len(digests.annotationIDs) != 0 {
		t.Errorf("Empty digest should reference no annotations, got %d", len(digests.annotationIDs))
	}
}

func TestAssembler_Assemble_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)
	candidates := []database.DigestCandidate{
		candidate("a-1", "First story", "ai", "a.com/1", 21, now),
		candidate("a-2", "Second story", "web3", "a.com/2", 19, now),
	}

	var bodies []string
	for i := 0; i < 2; i++ {
		digests := &stubDigestRepo{}
		assembler := NewAssembler(&stubAnnotationRepo{candidates: candidates}, digests, Options{
			MinScore: 15, MaxItems: 20, WindowHours: 24, CategoryPriority: []string{"ai", "web3"},
		})
		if _, err := assembler.Assemble(context.Background(), testDate()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		bodies = append(bodies, digests.stored.Body)
	}

	if bodies[0] != bodies[1] {
		t.Error("Assembling the same input twice should produce identical bodies")
	}
}

func TestRenderMarkdown_IncludesLinksAndContents(t *testing.T) {
	sections := []Section{
		{Category: "ai", Items: []database.DigestCandidate{
			candidate("a-1", "Model launch", "ai", "example.com/launch", 20, time.Now()),
		}},
	}

	body := renderMarkdown("News Digest 2026-03-14", sections)

	if !strings.Contains(body, "# News Digest 2026-03-14") {
		t.Error("Body should open with the digest title")
	}
	if !strings.Contains(body, "## Contents") {
		t.Error("Body should include a table of contents")
	}
	if !strings.Contains(body, "[example.com](https://example.com/launch)") {
		t.Errorf("Body should link the source host:\n%s", body)
	}
	if !strings.Contains(body, "1. **Model launch**") {
		t.Error("Items should be numbered within a section")
	}
}
