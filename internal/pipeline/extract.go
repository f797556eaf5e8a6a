package pipeline

import (
	"regexp"
	"strings"
)

var sqlFencePattern = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")

const sqlQueryPrefix = "SQLQuery:"

// ExtractSQL isolates the SQL candidate from raw generated text. Precedence:
// the interior of a ```sql fence, then text with an "SQLQuery:" prefix
// stripped, then the whole trimmed text. A single trailing semicolon is
// removed. The result is a candidate only; validation happens separately.
func ExtractSQL(generated string) string {
	candidate := strings.TrimSpace(generated)
	if match := sqlFencePattern.FindStringSubmatch(generated); match != nil {
		candidate = strings.TrimSpace(match[1])
	} else if strings.HasPrefix(candidate, sqlQueryPrefix) {
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, sqlQueryPrefix))
	}
	candidate = strings.TrimSuffix(candidate, ";")
	return strings.TrimSpace(candidate)
}

// allowedVerbs is the read-only statement allow-list. Anything whose leading
// keyword is not in this set is rejected before it can reach the database.
var allowedVerbs = []string{"SELECT", "SHOW", "DESCRIBE"}

// ValidStatement reports whether the candidate's first whitespace-delimited
// token, uppercased, is an allowed read-only verb. An empty candidate is
// invalid. This is a shape filter, not a parser: a semicolon-joined second
// statement after a valid SELECT is not caught here.
func ValidStatement(sqlText string) bool {
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToUpper(fields[0])
	for _, allowed := range allowedVerbs {
		if verb == allowed {
			return true
		}
	}
	return false
}
