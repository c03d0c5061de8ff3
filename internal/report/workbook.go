package report

import (
	"fmt"
	"strings"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/xuri/excelize/v2"
)

// RepoSection holds the per-repository material going into the workbook.
// Commits must be ordered ascending by commit date.
type RepoSection struct {
	RepositoryName string
	Commits        []domain.Commit
	Files          []FileEntry
	Narrative      string
}

var commitHeader = []interface{}{
	"Date", "Title", "Message", "SHA", "Files Changed", "Changed Paths", "Ticket", "Author",
}

// BuildWorkbook serializes the sections into a single xlsx workbook: per
// repository one commit sheet and one file-history sheet, plus a shared
// summary sheet. Any serialization failure aborts the whole workbook.
func BuildWorkbook(sections []RepoSection) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	summary := SanitizeSheetName("Summary", used)
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summary, "A1", &[]interface{}{"Repository", "Summary"}); err != nil {
		return nil, fmt.Errorf("summary header: %w", err)
	}

	for i, sec := range sections {
		if err := writeCommitSheet(f, sec, used); err != nil {
			return nil, err
		}
		if err := writeFileSheet(f, sec, used); err != nil {
			return nil, err
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summary, cell, &[]interface{}{sec.RepositoryName, sec.Narrative}); err != nil {
			return nil, fmt.Errorf("summary row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCommitSheet(f *excelize.File, sec RepoSection, used map[string]bool) error {
	name := SanitizeSheetName(sec.RepositoryName+" Commits", used)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &commitHeader); err != nil {
		return fmt.Errorf("commit header: %w", err)
	}

	// Rows newest first.
	row := 2
	for i := len(sec.Commits) - 1; i >= 0; i-- {
		c := sec.Commits[i]
		values := []interface{}{
			c.CommitDate.Format("2006-01-02 15:04:05"),
			c.MessageTitle,
			c.Message,
			c.ShortSHA(),
			c.FilesChanged,
			strings.Join(c.ChangedPaths, "\n"),
			c.TicketURL,
			c.AuthorLine(),
		}
		if err := f.SetSheetRow(name, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("commit row %d: %w", row, err)
		}
		row++
	}
	return nil
}

func writeFileSheet(f *excelize.File, sec RepoSection, used map[string]bool) error {
	name := SanitizeSheetName(sec.RepositoryName+" Files", used)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &[]interface{}{"File", "Date", "Changes"}); err != nil {
		return fmt.Errorf("file header: %w", err)
	}

	row := 2
	for _, entry := range sec.Files {
		for _, group := range entry.Dates {
			values := []interface{}{entry.Path, group.Date, strings.Join(group.Notes, "\n")}
			if err := f.SetSheetRow(name, fmt.Sprintf("A%d", row), &values); err != nil {
				return fmt.Errorf("file row %d: %w", row, err)
			}
			row++
		}
	}
	return nil
}

// sheetNameInvalid are the characters xlsx forbids in sheet names.
const sheetNameInvalid = `:\/?*[]`

// SanitizeSheetName strips forbidden characters, enforces the 31-character
// limit, and de-duplicates against used (which it updates). The limit is
// counted in characters, so multi-byte names are never cut mid-rune.
func SanitizeSheetName(name string, used map[string]bool) string {
	var b strings.Builder
	for _, r := range name {
		if !strings.ContainsRune(sheetNameInvalid, r) {
			b.WriteRune(r)
		}
	}
	base := strings.TrimSpace(b.String())
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, 31)

	name = base
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[name] = true
	return name
}

// truncateRunes cuts s to at most max characters, trimming any whitespace
// the cut exposes.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
