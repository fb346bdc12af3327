package cfg

import (
	"testing"
)

func validCfg() *Cfg {
	return &Cfg{
		LLMAPIKey:        "key",
		BatchSize:        20,
		SummaryMaxLength: 100,
		DedupSimilarity:  0.85,
		DigestMaxItems:   20,
		DigestHour:       6,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validCfg().Validate(); err != nil {
		t.Errorf("Valid configuration should pass, got %v", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	c := validCfg()
	c.LLMAPIKey = ""
	if err := c.Validate(); err == nil {
		t.Error("Missing LLM API key should fail validation")
	}
}

func TestValidate_Ranges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Cfg)
	}{
		{"zero batch size", func(c *Cfg) { c.BatchSize = 0 }},
		{"summary cap below minimum", func(c *Cfg) { c.SummaryMaxLength = 3 }},
		{"similarity above one", func(c *Cfg) { c.DedupSimilarity = 1.5 }},
		{"zero similarity", func(c *Cfg) { c.DedupSimilarity = 0 }},
		{"zero max items", func(c *Cfg) { c.DigestMaxItems = 0 }},
		{"digest hour out of range", func(c *Cfg) { c.DigestHour = 24 }},
	}

	for _, tc := range cases {
		c := validCfg()
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("ai, investment ,web3,,")
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %v", len(got), got)
	}
	if got[0] != "ai" || got[1] != "investment" || got[2] != "web3" {
		t.Errorf("Unexpected entries: %v", got)
	}
}

func TestGet_PanicsWhenUnloaded(t *testing.T) {
	prev := globalCfg
	globalCfg = nil
	defer func() {
		globalCfg = prev
		if r := recover(); r == nil {
			t.Error("Get without Load should panic")
		}
	}()
	Get()
}
