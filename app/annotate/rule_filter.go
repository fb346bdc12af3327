package annotate

import (
	"regexp"
)

// Verdict of the rule-based pre-filter on a title.
type Verdict int

const (
	// VerdictPass means no rule matched; the model decides relevance.
	VerdictPass Verdict = iota
	// VerdictDiscard means a blacklist rule matched; skip the model entirely.
	VerdictDiscard
	// VerdictKeep means a whitelist rule matched; the item is treated as
	// relevant without a model call.
	VerdictKeep
)

var titleBlacklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsponsor(ed)?\b`),
	regexp.MustCompile(`(?i)\badvertisement\b`),
	regexp.MustCompile(`(?i)\bpromoted\b`),
	regexp.MustCompile(`(?i)\bhow\s+to\b`),
	regexp.MustCompile(`(?i)\btutorial\b`),
	regexp.MustCompile(`(?i)\bhiring\b`),
	regexp.MustCompile(`(?i)\bjobs?\b`),
	regexp.MustCompile(`(?i)\bweekly\s+roundup\b`),
	regexp.MustCompile(`(?i)\bnewsletter\b`),
	regexp.MustCompile(`(?i)\bpodcast\b`),
	regexp.MustCompile(`(?i)\bepisode\b`),
	regexp.MustCompile(`(?i)\brecap\b`),
}

var titleWhitelist = []*regexp.Regexp{
	regexp.MustCompile(`\bOpenAI\b`),
	regexp.MustCompile(`\bAnthropic\b`),
	regexp.MustCompile(`\bDeepMind\b`),
	regexp.MustCompile(`\bNVIDIA\b`),
	regexp.MustCompile(`\bEthereum\b`),
	regexp.MustCompile(`\bBitcoin\b`),
	regexp.MustCompile(`(?i)\bfunding\b`),
	regexp.MustCompile(`(?i)\bacquires?\b`),
	regexp.MustCompile(`(?i)\blaunches?\b`),
}

// RuleFilter is a cheap pre-filter that keeps obvious noise away from the
// model and fast-tracks obviously newsworthy titles.
type RuleFilter struct{}

func NewRuleFilter() *RuleFilter {
	return &RuleFilter{}
}

// Evaluate returns the verdict for a title and, for discards, the matched
// pattern as the reason. Blacklist rules are checked before whitelist rules
// so sponsored content mentioning a major vendor is still dropped.
func (f *RuleFilter) Evaluate(title string) (Verdict, string) {
	for _, pattern := range titleBlacklist {
		if pattern.MatchString(title) {
			return VerdictDiscard, "title matches " + pattern.String()
		}
	}
	for _, pattern := range titleWhitelist {
		if pattern.MatchString(title) {
			return VerdictKeep, ""
		}
	}
	return VerdictPass, ""
}
