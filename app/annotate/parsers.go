package annotate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"newsbrief/app/llm"
)

// Sub-score bounds per the scoring rubric.
const (
	scoreMin = 1
	scoreMax = 10
)

// parseRelevance expects a bare YES or NO. Anything else is a malformed
// response, never a silent default.
func parseRelevance(raw string) (bool, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `."'`)))
	switch {
	case strings.HasPrefix(cleaned, "YES"):
		return true, nil
	case strings.HasPrefix(cleaned, "NO"):
		return false, nil
	default:
		return false, &llm.MalformedResponseError{Stage: "relevance", Raw: raw, Err: errors.New("expected YES or NO")}
	}
}

// parseSummary trims the response and enforces the hard length cap.
func parseSummary(raw string, maxLength int) (string, error) {
	summary := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if summary == "" {
		return "", &llm.MalformedResponseError{Stage: "summary", Raw: raw, Err: errors.New("empty summary")}
	}

	runes := []rune(summary)
	if len(runes) > maxLength {
		if maxLength > 3 {
			summary = string(runes[:maxLength-3]) + "..."
		} else {
			summary = string(runes[:maxLength])
		}
	}

	return summary, nil
}

// parseKeywords expects a JSON array of 3-5 short labels. Fewer than three
// usable entries is malformed (and retryable); extras beyond five are
// dropped in order.
func parseKeywords(raw string) ([]string, error) {
	var parsed []string
	if err := llm.DecodeJSON(raw, &parsed); err != nil {
		return nil, &llm.MalformedResponseError{Stage: "keywords", Raw: raw, Err: err}
	}

	keywords := make([]string, 0, len(parsed))
	for _, k := range parsed {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}

	if len(keywords) < 3 {
		return nil, &llm.MalformedResponseError{Stage: "keywords", Raw: raw, Err: fmt.Errorf("expected 3-5 keywords, got %d", len(keywords))}
	}
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	return keywords, nil
}

type scorePayload struct {
	Relevance  float64 `json:"relevance"`
	Quality    float64 `json:"quality"`
	Timeliness float64 `json:"timeliness"`
}

// parseScores expects three numeric sub-scores. Values outside [1,10] are
// clamped to the nearest bound rather than rejected; only an unparseable
// payload is malformed.
func parseScores(raw string) (relevance, quality, timeliness int, err error) {
	var parsed scorePayload
	if err := llm.DecodeJSON(raw, &parsed); err != nil {
		return 0, 0, 0, &llm.MalformedResponseError{Stage: "score", Raw: raw, Err: err}
	}

	return clampScore(parsed.Relevance), clampScore(parsed.Quality), clampScore(parsed.Timeliness), nil
}

func clampScore(value float64) int {
	score := int(math.Round(value))
	if score < scoreMin {
		return scoreMin
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}
