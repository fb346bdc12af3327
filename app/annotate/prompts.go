package annotate

import (
	"fmt"
)

const (
	filterBodyLimit  = 1000
	summaryBodyLimit = 2000
	scoreBodyLimit   = 1000
)

const systemPromptRelevance = `You are a news triage assistant deciding whether an item is worth reporting.

Coverage areas:
1. AI technology: machine learning, LLMs, model releases, research breakthroughs
2. AI investment: funding rounds, VC activity, startups, IPOs
3. Web3: cryptocurrency, blockchain, DeFi, regulation

Keep an item only when it is newsworthy (a new product, a major update,
funding, a policy change, a breakthrough), not a tutorial, an opinion piece,
or marketing copy.

Answer strictly with YES or NO.`

const systemPromptSummary = `You are a news editor writing one-sentence synopses.

Requirements:
- at most 100 characters
- lead with the most important fact
- neutral, professional tone
- no quotes or markdown`

const systemPromptKeywords = `You extract key terms from news items.

Requirements:
- return 3 to 5 keywords
- keywords reflect the core subject: companies, technologies, products
- respond with a JSON array of strings and nothing else`

const systemPromptScore = `You rate news items on three independent axes, each an integer from 1 to 10:
- relevance: how closely the item concerns AI, AI investment, or Web3
- quality: substance and originality of the content
- timeliness: how fresh and time-sensitive the news is

Respond with a JSON object: {"relevance": n, "quality": n, "timeliness": n}
and nothing else.`

func relevancePrompt(title, body string) string {
	return fmt.Sprintf("Decide whether this news item is worth reporting:\n\nTitle: %s\n\nContent: %s\n\nAnswer YES or NO only.",
		title, truncate(body, filterBodyLimit))
}

func summaryPrompt(title, body string) string {
	return fmt.Sprintf("Write a one-sentence synopsis (at most 100 characters) for this news item:\n\nTitle: %s\n\nContent: %s\n\nSynopsis:",
		title, truncate(body, summaryBodyLimit))
}

func keywordsPrompt(title, body string) string {
	return fmt.Sprintf("Extract 3 to 5 keywords from this news item:\n\nTitle: %s\n\nContent: %s\n\nRespond with a JSON array, for example: [\"OpenAI\", \"GPT-5\", \"release\"]",
		title, truncate(body, filterBodyLimit))
}

func scorePrompt(title, body string) string {
	return fmt.Sprintf("Rate this news item:\n\nTitle: %s\n\nContent: %s\n\nRespond with the JSON object only.",
		title, truncate(body, scoreBodyLimit))
}

func truncate(s string, limit int) string {
	if s == "" {
		return "(no content)"
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
