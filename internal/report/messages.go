package report

import "strings"

// mergePrefixes is the merge-commit heuristic: a message starting with any of
// these (case-insensitive) contributes nothing to file history or narratives.
var mergePrefixes = []string{
	"merge commit",
	"merge pull request",
	"merge branch",
	"merge remote-tracking",
}

// IsMergeMessage reports whether the commit message looks like a merge commit.
func IsMergeMessage(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, p := range mergePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// noiseMarkers are stripped wherever they appear in a message.
var noiseMarkers = []string{
	"[skip ci]",
	"[ci skip]",
	"[no ci]",
}

// noiseLinePrefixes drop whole trailer lines from a message.
var noiseLinePrefixes = []string{
	"signed-off-by:",
	"co-authored-by:",
	"reviewed-by:",
}

// CleanMessage collapses a commit message into one line: trailer lines and CI
// markers are stripped, remaining whitespace and newlines collapse to single
// spaces. Returns "" when nothing meaningful is left.
func CleanMessage(message string) string {
	var kept []string
	for _, line := range strings.Split(message, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		drop := false
		for _, p := range noiseLinePrefixes {
			if strings.HasPrefix(lower, p) {
				drop = true
				break
			}
		}
		if !drop && trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	joined := strings.Join(kept, " ")
	for _, m := range noiseMarkers {
		joined = removeFold(joined, m)
	}

	return strings.Join(strings.Fields(joined), " ")
}

// removeFold removes every case-insensitive occurrence of marker from s.
func removeFold(s, marker string) string {
	lower := strings.ToLower(s)
	marker = strings.ToLower(marker)
	for {
		i := strings.Index(lower, marker)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(marker):]
		lower = lower[:i] + lower[i+len(marker):]
	}
}
