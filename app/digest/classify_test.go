package digest

import (
	"context"
	"strings"
	"testing"
	"time"

	"newsbrief/app/database"
)

func TestClassifyByKeywords(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		keywords []string
		expected string
	}{
		{"ai by title", "OpenAI ships a new reasoning model", nil, "ai"},
		{"investment by title", "Startup closes series b funding round", nil, "investment"},
		{"web3 by keywords", "Network upgrade goes live", []string{"Ethereum", "DeFi"}, "web3"},
		{"no match", "Weather delays product launch", nil, "general"},
		{"tie falls back", "Machine learning startup", []string{"funding", "llm"}, "general"},
	}

	for _, tc := range cases {
		got := classifyByKeywords(tc.title, tc.keywords)
		if got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestAssembler_Assemble_HintlessItemRoutedByKeywords(t *testing.T) {
	published := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)

	hintless := candidate("a1", "Anthropic releases new Claude model", "", "example.com/claude", 24, published)
	hintless.Keywords = []string{"Anthropic", "LLM"}

	repo := &stubAnnotationRepo{candidates: []database.DigestCandidate{
		hintless,
		candidate("a2", "Token exchange hacked", "web3", "example.com/hack", 20, published),
	}}
	digests := &stubDigestRepo{}

	a := NewAssembler(repo, digests, Options{MinScore: 15, CategoryPriority: []string{"ai", "investment", "web3"}})

	result, err := a.Assemble(context.Background(), published)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	aiIdx := strings.Index(result.Body, "## AI")
	if aiIdx == -1 {
		t.Fatal("Hint-less AI item should produce an AI section")
	}
	if strings.Contains(result.Body, "General") {
		t.Errorf("No item should land in the general section:\n%s", result.Body)
	}
	web3Idx := strings.Index(result.Body, "## Web3")
	if web3Idx == -1 {
		t.Fatal("Expected a Web3 section")
	}
	if aiIdx > web3Idx {
		t.Error("AI section should precede Web3 per category priority")
	}
}
