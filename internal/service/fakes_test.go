package service

import (
	"context"
	"sort"
	"sync"

	"github.com/gitdocai/gitdoc/internal/domain"
	"github.com/gitdocai/gitdoc/internal/port"
)

// In-memory fakes implementing the store and external ports, mirroring the
// Postgres adapter's contract (terminal-job guard, monotonic progress,
// atomic claim).

type fakeRepoStore struct {
	mu    sync.Mutex
	repos map[string]*domain.Repository
	syncs map[string]int
}

func newFakeRepoStore(repos ...*domain.Repository) *fakeRepoStore {
	s := &fakeRepoStore{repos: make(map[string]*domain.Repository), syncs: make(map[string]int)}
	for _, r := range repos {
		s.repos[r.ID] = r
	}
	return s
}

func (s *fakeRepoStore) GetRepositoryByID(_ context.Context, id string) (*domain.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repos[id]
	if !ok {
		return nil, port.ErrRepoNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRepoStore) ListRepositoriesByIDs(_ context.Context, ids []string) ([]domain.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Repository
	if len(ids) == 0 {
		for _, r := range s.repos {
			out = append(out, *r)
		}
	} else {
		for _, id := range ids {
			if r, ok := s.repos[id]; ok {
				out = append(out, *r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeRepoStore) TouchLastSync(_ context.Context, repoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs[repoID]++
	return nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.AnalysisJob
	seq  []string
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*domain.AnalysisJob)}
}

func (s *fakeJobStore) CreateJob(_ context.Context, j *domain.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
	s.seq = append(s.seq, j.ID)
	return nil
}

func (s *fakeJobStore) GetJob(_ context.Context, id string) (*domain.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, port.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *fakeJobStore) ListJobs(_ context.Context, limit int) ([]domain.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AnalysisJob
	for i := len(s.seq) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.jobs[s.seq[i]])
	}
	return out, nil
}

func (s *fakeJobStore) mutate(id string, fn func(*domain.AnalysisJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return port.ErrJobNotFound
	}
	if j.Terminal() {
		return nil
	}
	fn(j)
	return nil
}

func (s *fakeJobStore) SetJobStatus(_ context.Context, id, status string) error {
	return s.mutate(id, func(j *domain.AnalysisJob) { j.Status = status })
}

func (s *fakeJobStore) SetJobTotal(_ context.Context, id string, total int) error {
	return s.mutate(id, func(j *domain.AnalysisJob) { j.TotalCommits = total })
}

func (s *fakeJobStore) BumpJobProgress(_ context.Context, id string, processed int) error {
	return s.mutate(id, func(j *domain.AnalysisJob) {
		// Mirrors the SQL: cap the incoming value at the total only once
		// the total is known, then never let the counter move backwards.
		if j.TotalCommits > 0 && processed > j.TotalCommits {
			processed = j.TotalCommits
		}
		if processed > j.ProcessedCommits {
			j.ProcessedCommits = processed
		}
	})
}

func (s *fakeJobStore) CompleteJob(_ context.Context, id string) error {
	return s.mutate(id, func(j *domain.AnalysisJob) { j.Status = domain.JobStatusCompleted })
}

func (s *fakeJobStore) FailJob(_ context.Context, id, message string) error {
	return s.mutate(id, func(j *domain.AnalysisJob) {
		j.Status = domain.JobStatusFailed
		j.Error = message
	})
}

type fakeCommitStore struct {
	mu      sync.Mutex
	commits map[string]*domain.Commit
	seq     []string
}

func newFakeCommitStore() *fakeCommitStore {
	return &fakeCommitStore{commits: make(map[string]*domain.Commit)}
}

func (s *fakeCommitStore) UpsertCommit(_ context.Context, c *domain.Commit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.commits {
		if existing.RepositoryID == c.RepositoryID && existing.SHA == c.SHA {
			return false, nil
		}
	}
	cp := *c
	s.commits[c.ID] = &cp
	s.seq = append(s.seq, c.ID)
	return true, nil
}

func matchesFilter(c *domain.Commit, f domain.CommitFilter) bool {
	if len(f.RepositoryIDs) > 0 && !contains(f.RepositoryIDs, c.RepositoryID) {
		return false
	}
	if len(f.AuthorEmails) > 0 && !contains(f.AuthorEmails, c.AuthorEmail) {
		return false
	}
	if f.Since != nil && c.CommitDate.Before(*f.Since) {
		return false
	}
	if f.Until != nil && c.CommitDate.After(*f.Until) {
		return false
	}
	if f.SummaryStatus != "" && c.SummaryStatus != f.SummaryStatus {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *fakeCommitStore) matching(f domain.CommitFilter) []domain.Commit {
	var out []domain.Commit
	for _, id := range s.seq {
		c := s.commits[id]
		if matchesFilter(c, f) {
			out = append(out, *c)
		}
	}
	return out
}

func (s *fakeCommitStore) QueryCommits(_ context.Context, f domain.CommitFilter, page, limit int) ([]domain.Commit, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.matching(f)
	sort.Slice(all, func(i, j int) bool { return all[i].CommitDate.After(all[j].CommitDate) })
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *fakeCommitStore) ListAllCommits(_ context.Context, f domain.CommitFilter) ([]domain.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.matching(f)
	sort.Slice(all, func(i, j int) bool { return all[i].CommitDate.Before(all[j].CommitDate) })
	return all, nil
}

func (s *fakeCommitStore) ListDistinctAuthors(_ context.Context, repositoryID string) ([]domain.AuthorStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]*domain.AuthorStat)
	for _, c := range s.commits {
		if repositoryID != "" && c.RepositoryID != repositoryID {
			continue
		}
		a, ok := counts[c.AuthorEmail]
		if !ok {
			a = &domain.AuthorStat{Email: c.AuthorEmail, Name: c.AuthorName}
			counts[c.AuthorEmail] = a
		}
		a.CommitCount++
	}
	var out []domain.AuthorStat
	for _, a := range counts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommitCount > out[j].CommitCount })
	return out, nil
}

func (s *fakeCommitStore) ClaimForSummary(_ context.Context, limit int, repositoryID string) ([]domain.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var eligible []*domain.Commit
	for _, c := range s.commits {
		if repositoryID != "" && c.RepositoryID != repositoryID {
			continue
		}
		if c.SummaryStatus == domain.SummaryStatusPending || c.SummaryStatus == domain.SummaryStatusFailed {
			eligible = append(eligible, c)
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].CommitDate.After(eligible[j].CommitDate) })
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	var claimed []domain.Commit
	for _, c := range eligible {
		c.SummaryStatus = domain.SummaryStatusProcessing
		claimed = append(claimed, *c)
	}
	return claimed, nil
}

func (s *fakeCommitStore) setStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commits[id]
	if !ok {
		return port.ErrCommitNotFound
	}
	c.SummaryStatus = status
	return nil
}

func (s *fakeCommitStore) CompleteSummary(_ context.Context, commitID, summary string) error {
	s.mu.Lock()
	c, ok := s.commits[commitID]
	if ok {
		c.Summary = summary
	}
	s.mu.Unlock()
	if !ok {
		return port.ErrCommitNotFound
	}
	return s.setStatus(commitID, domain.SummaryStatusCompleted)
}

func (s *fakeCommitStore) FailSummary(_ context.Context, commitID string) error {
	return s.setStatus(commitID, domain.SummaryStatusFailed)
}

func (s *fakeCommitStore) ReleaseSummary(_ context.Context, commitID string) error {
	return s.setStatus(commitID, domain.SummaryStatusPending)
}

func (s *fakeCommitStore) get(id string) domain.Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.commits[id]
}

type fakeExtractor struct {
	mu       sync.Mutex
	requests []port.ExtractionRequest
	err      error
	done     chan struct{}
}

func newFakeExtractor(err error) *fakeExtractor {
	return &fakeExtractor{err: err, done: make(chan struct{}, 8)}
}

func (e *fakeExtractor) Dispatch(_ context.Context, req port.ExtractionRequest) error {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	e.done <- struct{}{}
	return e.err
}

func (e *fakeExtractor) dispatched() []port.ExtractionRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]port.ExtractionRequest(nil), e.requests...)
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	prompts  []string
	generate func(call int, system, user string) (string, error)
}

func (g *fakeGenerator) ModelName() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.prompts = append(g.prompts, user)
	g.mu.Unlock()
	return g.generate(call, system, user)
}

type fakeBlobStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{files: make(map[string][]byte)}
}

func (b *fakeBlobStore) Put(_ context.Context, name string, data []byte) (domain.ExportFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[name] = data
	return domain.ExportFile{Name: name, Size: int64(len(data))}, nil
}

type fakeExportStore struct {
	mu      sync.Mutex
	records []domain.ExportJob
}

func (s *fakeExportStore) InsertExportJob(_ context.Context, j *domain.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *j)
	return nil
}
