package llm

import (
	"testing"
)

func TestDecodeJSON_PlainObject(t *testing.T) {
	var target map[string]int
	if err := DecodeJSON(`{"relevance": 8}`, &target); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target["relevance"] != 8 {
		t.Errorf("Expected relevance 8, got %d", target["relevance"])
	}
}

func TestDecodeJSON_CodeFence(t *testing.T) {
	var target []string
	raw := "```json\n[\"one\", \"two\"]\n```"
	if err := DecodeJSON(raw, &target); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(target) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(target))
	}
}

func TestDecodeJSON_BareFence(t *testing.T) {
	var target map[string]float64
	raw := "```\n{\"quality\": 6.5}\n```"
	if err := DecodeJSON(raw, &target); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target["quality"] != 6.5 {
		t.Errorf("Expected quality 6.5, got %f", target["quality"])
	}
}

func TestDecodeJSON_SurroundingProse(t *testing.T) {
	var target map[string]int
	raw := `Here are the scores you asked for: {"relevance": 7, "quality": 5, "timeliness": 6}. Let me know!`
	if err := DecodeJSON(raw, &target); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if target["relevance"] != 7 {
		t.Errorf("Expected relevance 7, got %d", target["relevance"])
	}
}

func TestDecodeJSON_Empty(t *testing.T) {
	var target map[string]int
	if err := DecodeJSON("   ", &target); err == nil {
		t.Fatal("Empty payload should return an error")
	}
}

func TestDecodeJSON_NoJSONPresent(t *testing.T) {
	var target map[string]int
	if err := DecodeJSON("the item is quite relevant", &target); err == nil {
		t.Fatal("Prose without JSON should return an error")
	}
}
