package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// limitKeywords are the cues that mean the user wants a bounded result. The
// scan is a heuristic over literal phrasing, not a parse of intent.
var limitKeywords = []string{"limit", "top", "first", "show only"}

var limitNumberPattern = regexp.MustCompile(`(?i)(?:limit|top|first|show only)\s*(\d+)`)

// LimitHint is the row cap derived from the question. Requested false means
// the user asked for everything and any LIMIT the backend adds must go.
type LimitHint struct {
	Requested bool
	Value     int
}

// ExtractLimit scans the question for limit phrasing. A keyword with an
// adjacent integer yields that integer; a keyword alone yields fallback; no
// keyword yields an unrequested hint. Only the first match counts.
func ExtractLimit(question string, fallback int) LimitHint {
	lowered := strings.ToLower(question)
	found := false
	for _, keyword := range limitKeywords {
		if strings.Contains(lowered, keyword) {
			found = true
			break
		}
	}
	if !found {
		return LimitHint{}
	}

	hint := LimitHint{Requested: true, Value: fallback}
	if match := limitNumberPattern.FindStringSubmatch(question); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			hint.Value = value
		}
	}
	return hint
}

var limitClausePattern = regexp.MustCompile(`(?i)\s*LIMIT\s+\d+`)

// ReconcileLimit enforces the hint on the synthesized statement. When no limit
// was requested, any LIMIT clause the backend emitted is stripped; the prompt
// already told it not to add one, but that instruction is not trusted. When a
// limit was requested the statement passes through untouched.
func ReconcileLimit(sqlText string, hint LimitHint) string {
	if hint.Requested {
		return sqlText
	}
	return strings.TrimSpace(limitClausePattern.ReplaceAllString(sqlText, ""))
}
