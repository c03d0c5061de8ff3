package service

import (
	"context"
	"testing"
	"time"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/stretchr/testify/require"
)

func newIngestFixture(t *testing.T) (*IngestService, *fakeRepoStore, *fakeJobStore, *fakeCommitStore, string) {
	t.Helper()
	repos := newFakeRepoStore(testRepo())
	jobs := newFakeJobStore()
	commits := newFakeCommitStore()
	svc := NewIngestService(repos, jobs, commits, "https://jira.acme.io")

	job := &domain.AnalysisJob{ID: "job-1", RepositoryID: "repo-1", Status: domain.JobStatusPending}
	require.NoError(t, jobs.CreateJob(context.Background(), job))
	return svc, repos, jobs, commits, job.ID
}

func record(sha, email string, date time.Time, message string, paths ...string) CommitRecord {
	return CommitRecord{
		SHA:          sha,
		AuthorName:   "Dev",
		AuthorEmail:  email,
		CommitDate:   date,
		Message:      message,
		ChangedPaths: paths,
	}
}

func TestIngestCommitIsIdempotent(t *testing.T) {
	svc, _, _, commits, jobID := newIngestFixture(t)
	ctx := context.Background()

	rec := record("aaa1111", "a@x.com", time.Now(), "fix overflow", "main.go")

	inserted, err := svc.IngestCommit(ctx, jobID, rec)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = svc.IngestCommit(ctx, jobID, rec)
	require.NoError(t, err)
	require.False(t, inserted)

	all, err := commits.ListAllCommits(ctx, domain.CommitFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, domain.SummaryStatusPending, all[0].SummaryStatus)
}

func TestIngestCommitExtractsTicket(t *testing.T) {
	svc, _, _, commits, jobID := newIngestFixture(t)
	ctx := context.Background()

	_, err := svc.IngestCommit(ctx, jobID, record("bbb2222", "a@x.com", time.Now(), "PROJ-123: fix overflow", "main.go"))
	require.NoError(t, err)

	all, err := commits.ListAllCommits(ctx, domain.CommitFilter{})
	require.NoError(t, err)
	require.Equal(t, "PROJ-123", all[0].TicketKey)
	require.Equal(t, "https://jira.acme.io/browse/PROJ-123", all[0].TicketURL)
	require.Equal(t, "PROJ-123: fix overflow", all[0].MessageTitle)
}

func TestIngestCommitWithoutTicket(t *testing.T) {
	svc, _, _, commits, jobID := newIngestFixture(t)
	ctx := context.Background()

	_, err := svc.IngestCommit(ctx, jobID, record("ccc3333", "a@x.com", time.Now(), "general cleanup", "main.go"))
	require.NoError(t, err)

	all, err := commits.ListAllCommits(ctx, domain.CommitFilter{})
	require.NoError(t, err)
	require.Empty(t, all[0].TicketKey)
	require.Empty(t, all[0].TicketURL)
}

func TestExtractTicketKey(t *testing.T) {
	cases := []struct {
		title, message, want string
	}{
		{"PROJ-123: fix overflow", "PROJ-123: fix overflow", "PROJ-123"},
		{"general cleanup", "general cleanup", ""},
		{"fix things", "fix things\n\nrelates to proj-7", "PROJ-7"},
		{"ABC-1 then DEF-2", "irrelevant", "ABC-1"},
		{"no key here", "body mentions OPS-42 later", "OPS-42"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ExtractTicketKey(tc.title, tc.message), "title=%q", tc.title)
	}
}

func TestIngestProgressIsMonotonic(t *testing.T) {
	svc, _, jobs, _, jobID := newIngestFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkCloning(ctx, jobID))
	require.NoError(t, svc.MarkParsing(ctx, jobID, 5))

	now := time.Now()
	rec3 := record("sha3", "a@x.com", now, "third")
	rec3.Processed = 3
	_, err := svc.IngestCommit(ctx, jobID, rec3)
	require.NoError(t, err)

	// A late-arriving earlier progress report never rolls the counter back.
	rec1 := record("sha1", "a@x.com", now, "first")
	rec1.Processed = 1
	_, err = svc.IngestCommit(ctx, jobID, rec1)
	require.NoError(t, err)

	job, err := jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusParsing, job.Status)
	require.Equal(t, 5, job.TotalCommits)
	require.Equal(t, 3, job.ProcessedCommits)

	// Progress never exceeds the total.
	rec9 := record("sha9", "a@x.com", now, "ninth")
	rec9.Processed = 9
	_, err = svc.IngestCommit(ctx, jobID, rec9)
	require.NoError(t, err)

	job, err = jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, 5, job.ProcessedCommits)
}

func TestIngestProgressMonotonicBeforeTotalKnown(t *testing.T) {
	svc, _, jobs, _, jobID := newIngestFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkCloning(ctx, jobID))

	// Progress callbacks can land before the PARSING callback records the
	// total. An unknown total must not cap the counter and a late lower
	// report must not roll it back.
	now := time.Now()
	rec5 := record("sha5", "a@x.com", now, "fifth")
	rec5.Processed = 5
	_, err := svc.IngestCommit(ctx, jobID, rec5)
	require.NoError(t, err)

	rec3 := record("sha3", "a@x.com", now, "third")
	rec3.Processed = 3
	_, err = svc.IngestCommit(ctx, jobID, rec3)
	require.NoError(t, err)

	job, err := jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, 0, job.TotalCommits)
	require.Equal(t, 5, job.ProcessedCommits)

	// Once the total arrives the cap applies to later reports only.
	require.NoError(t, svc.MarkParsing(ctx, jobID, 8))
	rec9 := record("sha9", "a@x.com", now, "ninth")
	rec9.Processed = 9
	_, err = svc.IngestCommit(ctx, jobID, rec9)
	require.NoError(t, err)

	job, err = jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, 8, job.ProcessedCommits)
}

func TestIngestLifecycleCompletion(t *testing.T) {
	svc, repos, jobs, _, jobID := newIngestFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkCloning(ctx, jobID))
	require.NoError(t, svc.MarkParsing(ctx, jobID, 1))
	require.NoError(t, svc.MarkCompleted(ctx, jobID))

	job, err := jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCompleted, job.Status)
	require.Equal(t, 1, repos.syncs["repo-1"])

	// Terminal jobs stay terminal.
	require.NoError(t, svc.MarkFailed(ctx, jobID, "too late"))
	job, err = jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCompleted, job.Status)
	require.Empty(t, job.Error)
}

func TestIngestFailureRecordsError(t *testing.T) {
	svc, repos, jobs, _, jobID := newIngestFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkCloning(ctx, jobID))
	require.NoError(t, svc.MarkFailed(ctx, jobID, "authentication failed"))

	job, err := jobs.GetJob(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, job.Status)
	require.Equal(t, "authentication failed", job.Error)
	require.Zero(t, repos.syncs["repo-1"])
}

func TestIngestCommitOnTerminalJobIsNoop(t *testing.T) {
	svc, _, _, commits, jobID := newIngestFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.MarkCompleted(ctx, jobID))

	inserted, err := svc.IngestCommit(ctx, jobID, record("ddd4444", "a@x.com", time.Now(), "late commit"))
	require.NoError(t, err)
	require.False(t, inserted)

	all, err := commits.ListAllCommits(ctx, domain.CommitFilter{})
	require.NoError(t, err)
	require.Empty(t, all)
}
