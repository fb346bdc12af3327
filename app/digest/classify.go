package digest

import (
	"strings"
)

// fallbackCategory is used when neither the source hint nor the keyword
// match picks a category.
const fallbackCategory = "general"

var categoryKeywords = map[string][]string{
	"ai": {
		"ai", "artificial intelligence", "machine learning", "deep learning",
		"llm", "gpt", "chatgpt", "claude", "gemini", "openai", "anthropic",
		"neural network", "nlp", "computer vision", "transformer",
	},
	"investment": {
		"funding", "investment", "vc", "venture capital", "series a", "series b",
		"ipo", "startup", "unicorn", "valuation", "acquisition", "merger",
	},
	"web3": {
		"web3", "blockchain", "crypto", "bitcoin", "ethereum", "defi", "nft",
		"smart contract", "dao", "wallet", "token", "coin",
	},
}

var categoryOrder = []string{"ai", "investment", "web3"}

// classifyByKeywords routes an item without a source category hint by
// counting keyword matches in its title and extracted keywords. No match,
// or a tie between categories, falls back to the general section.
func classifyByKeywords(title string, keywords []string) string {
	text := strings.ToLower(title)
	if len(keywords) > 0 {
		text += " " + strings.ToLower(strings.Join(keywords, " "))
	}

	best := fallbackCategory
	bestScore := 0
	tied := false
	for _, category := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(text, kw) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best = category
			bestScore = score
			tied = false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return fallbackCategory
	}
	return best
}
