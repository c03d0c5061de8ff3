package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// Activity aggregates a filtered commit set for narrative generation. The
// same aggregate feeds both the generator prompt and the local fallback.
type Activity struct {
	RepositoryName    string
	Authors           []string // distinct author names, sorted
	Start             time.Time
	End               time.Time
	TotalCommits      int
	TotalFilesChanged int
	Messages          []string // deduplicated non-merge messages, bounded
}

// BuildActivity computes the narrative aggregate. Commits must be ordered
// ascending by commit date. When since/until are nil the observed min/max
// commit dates bound the range. maxSamples bounds the message sample.
func BuildActivity(repoName string, commits []domain.Commit, since, until *time.Time, maxSamples int) Activity {
	a := Activity{
		RepositoryName: repoName,
		TotalCommits:   len(commits),
	}
	if len(commits) == 0 {
		return a
	}

	a.Start = commits[0].CommitDate
	a.End = commits[len(commits)-1].CommitDate
	if since != nil {
		a.Start = *since
	}
	if until != nil {
		a.End = *until
	}

	authors := make(map[string]struct{})
	seen := make(map[string]struct{})
	for _, c := range commits {
		authors[c.AuthorName] = struct{}{}
		a.TotalFilesChanged += c.FilesChanged

		if IsMergeMessage(c.Message) {
			continue
		}
		msg := CleanMessage(c.Message)
		if msg == "" {
			continue
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		if maxSamples <= 0 || len(a.Messages) < maxSamples {
			a.Messages = append(a.Messages, msg)
		}
	}

	for name := range authors {
		a.Authors = append(a.Authors, name)
	}
	sort.Strings(a.Authors)
	return a
}

// NarrativePrompt builds the system and user prompts for the progress
// narrative.
func (a Activity) NarrativePrompt() (system, user string) {
	system = "You are a technical writer. Summarize the development activity below " +
		"as a short plain-text progress report for stakeholders. Mention what was " +
		"worked on and by whom. Do not invent work that is not listed."

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", a.RepositoryName)
	fmt.Fprintf(&b, "Period: %s to %s\n", a.Start.Format("2006-01-02"), a.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Authors: %s\n", strings.Join(a.Authors, ", "))
	fmt.Fprintf(&b, "Total commits: %d\n", a.TotalCommits)
	fmt.Fprintf(&b, "Total files changed: %d\n", a.TotalFilesChanged)
	b.WriteString("Commit messages:\n")
	for _, m := range a.Messages {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	return system, b.String()
}

// FallbackNarrative builds a deterministic plain-text summary from the
// aggregate alone, used whenever the generator is unavailable, throttled, or
// returns nothing. It always carries the full author list, the date range,
// and the exact commit and file-changed totals.
func (a Activity) FallbackNarrative() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Development summary for %s\n", a.RepositoryName)
	fmt.Fprintf(&b, "Period: %s to %s\n", a.Start.Format("2006-01-02"), a.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Authors: %s\n", strings.Join(a.Authors, ", "))
	fmt.Fprintf(&b, "Total commits: %d\n", a.TotalCommits)
	fmt.Fprintf(&b, "Total files changed: %d\n", a.TotalFilesChanged)
	if len(a.Messages) > 0 {
		b.WriteString("Highlights:\n")
		for _, m := range a.Messages {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	return b.String()
}
