package report

import (
	"sort"

	"github.com/gitdocai/gitdoc/internal/domain"
)

// DateGroup is one day's worth of change notes for a file, in commit order.
type DateGroup struct {
	Date  string // YYYY-MM-DD
	Notes []string
}

// FileEntry is the change history of one file: date groups newest first.
type FileEntry struct {
	Path  string
	Dates []DateGroup
}

// BuildFileHistory maps each changed file to its per-date change notes.
// Commits must be ordered ascending by commit date; merge commits are skipped
// entirely, and messages that clean down to nothing contribute nothing.
// Output: files alphabetical, date groups within a file newest first, notes
// within a date in commit order.
func BuildFileHistory(commits []domain.Commit) []FileEntry {
	type bucket struct {
		order []string // dates in first-seen (ascending) order
		notes map[string][]string
	}
	files := make(map[string]*bucket)

	for _, c := range commits {
		if IsMergeMessage(c.Message) {
			continue
		}
		note := CleanMessage(c.Message)
		if note == "" {
			continue
		}
		date := c.CommitDate.Format("2006-01-02")

		for _, path := range c.ChangedPaths {
			b, ok := files[path]
			if !ok {
				b = &bucket{notes: make(map[string][]string)}
				files[path] = b
			}
			if _, seen := b.notes[date]; !seen {
				b.order = append(b.order, date)
			}
			b.notes[date] = append(b.notes[date], "- "+note)
		}
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	entries := make([]FileEntry, 0, len(paths))
	for _, path := range paths {
		b := files[path]
		entry := FileEntry{Path: path}
		// Dates were collected ascending; emit newest first.
		for i := len(b.order) - 1; i >= 0; i-- {
			date := b.order[i]
			entry.Dates = append(entry.Dates, DateGroup{Date: date, Notes: b.notes[date]})
		}
		entries = append(entries, entry)
	}
	return entries
}
