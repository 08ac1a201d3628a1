package tracker

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage"
	"linkedin-job-tracker/internal/storage/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)

type memRepo struct {
	jobs    map[string]*models.Job
	index   []models.IndexEntry
	saveErr error
	finds   int
}

func newMemRepo(jobs ...*models.Job) *memRepo {
	r := &memRepo{jobs: make(map[string]*models.Job)}
	for _, j := range jobs {
		r.jobs[j.ID()] = j
	}
	return r
}

func (r *memRepo) Get(_ context.Context, id string) (*models.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return job, nil
}

func (r *memRepo) Save(_ context.Context, job *models.Job) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.jobs[job.ID()] = job
	return nil
}

func (r *memRepo) List(_ context.Context) ([]*models.Job, error) {
	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	jobs := make([]*models.Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, r.jobs[id])
	}
	return jobs, nil
}

func (r *memRepo) SaveIndex(_ context.Context, index []models.IndexEntry) error {
	r.index = index
	return nil
}

type finderRepo struct {
	*memRepo
}

func (r finderRepo) Find(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	r.finds++
	jobs, _ := r.List(ctx)
	var out []*models.Job
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out, nil
}

func job(id, company, title string, status models.Status, score int) *models.Job {
	app := models.NewApplication()
	app.Status = status

	return &models.Job{
		Title:       title,
		Description: "Description of " + title,
		DetailURL:   "https://www.linkedin.com/jobs/view/" + id + "/",
		Location:    "Milan, Italy",
		CompanyName: company,
		CreatedAt:   testNow.AddDate(0, 0, -10),
		ScrapedAt:   testNow.AddDate(0, 0, -9),
		Application: app,
		Relevance:   &models.Relevance{Score: score, Keywords: []string{}},
	}
}

func countIndexer(jobs []*models.Job) []models.IndexEntry {
	index := make([]models.IndexEntry, 0, len(jobs))
	for _, j := range jobs {
		index = append(index, models.IndexEntry{JobID: j.ID(), Status: models.JobStatus(j)})
	}
	return index
}

func newTracker(repo Repository) *Tracker {
	return New(repo, zap.NewNop(),
		WithIndexer(countIndexer),
		WithClock(func() time.Time { return testNow }),
	)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(job("1", "Acme", "Angular Dev", models.StatusNotApplied, 3))
	tr := newTracker(repo)

	got, err := tr.UpdateStatus(ctx, "1", models.StatusApplied, "sent CV", nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApplied, got.Application.Status)
	require.NotNil(t, got.Application.AppliedDate)
	assert.True(t, testNow.Equal(*got.Application.AppliedDate))
	assert.Equal(t, "2026-03-20: sent CV", got.Application.Notes)

	require.Len(t, repo.index, 1)
	assert.Equal(t, models.StatusApplied, repo.index[0].Status)
}

func TestUpdateStatusAppliedAt(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(job("1", "Acme", "Dev", models.StatusNotApplied, 0))
	tr := newTracker(repo)

	applied := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := tr.UpdateStatus(ctx, "1", models.StatusApplied, "", &applied)
	require.NoError(t, err)
	assert.True(t, applied.Equal(*got.Application.AppliedDate))
	assert.Empty(t, got.Application.Notes)
}

func TestUpdateStatusErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown job", func(t *testing.T) {
		tr := newTracker(newMemRepo())
		_, err := tr.UpdateStatus(ctx, "404", models.StatusApplied, "", nil)
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := newMemRepo(job("1", "Acme", "Dev", models.StatusNotApplied, 0))
		repo.saveErr = errors.New("disk full")

		tr := newTracker(repo)
		_, err := tr.UpdateStatus(ctx, "1", models.StatusApplied, "", nil)
		assert.ErrorContains(t, err, "disk full")
		assert.Nil(t, repo.index)
	})
}

func TestUpdateStatusCreatesApplication(t *testing.T) {
	j := job("1", "Acme", "Dev", models.StatusNotApplied, 0)
	j.Application = nil

	tr := newTracker(newMemRepo(j))
	got, err := tr.UpdateStatus(context.Background(), "1", models.StatusInterview, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterview, got.Application.Status)
	assert.NotNil(t, got.Application.InterviewDate)
	assert.Equal(t, models.LevelMedium, got.Application.Priority)
}

func TestAddNote(t *testing.T) {
	tr := newTracker(newMemRepo(job("1", "Acme", "Dev", models.StatusApplied, 0)))

	_, err := tr.AddNote(context.Background(), "1", "first")
	require.NoError(t, err)
	got, err := tr.AddNote(context.Background(), "1", "second")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-20: first\n\n2026-03-20: second", got.Application.Notes)
	assert.Equal(t, models.StatusApplied, got.Application.Status)
}

func TestSetPriority(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(job("1", "Acme", "Dev", models.StatusApplied, 0))
	tr := newTracker(repo)

	got, err := tr.SetPriority(ctx, "1", models.LevelHigh, "")
	require.NoError(t, err)
	assert.Equal(t, models.LevelHigh, got.Application.Priority)
	assert.Equal(t, models.LevelMedium, got.Application.InterestLevel)
	require.Len(t, repo.index, 1)

	got, err = tr.SetPriority(ctx, "1", "", models.LevelLow)
	require.NoError(t, err)
	assert.Equal(t, models.LevelHigh, got.Application.Priority)
	assert.Equal(t, models.LevelLow, got.Application.InterestLevel)

	_, err = tr.SetPriority(ctx, "404", models.LevelLow, "")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSetReminderAndDueFollowUps(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(
		job("1", "Acme", "Dev", models.StatusApplied, 0),
		job("2", "Globex", "Ops", models.StatusInterview, 0),
		job("3", "Initech", "QA", models.StatusApplied, 0),
		job("4", "Umbrella", "SRE", models.StatusApplied, 0),
	)
	tr := newTracker(repo)

	due, err := tr.SetReminder(ctx, "1", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, 7), due)

	earlier := testNow.AddDate(0, 0, -2)
	_, err = tr.SetReminder(ctx, "2", &earlier, 0)
	require.NoError(t, err)

	laterToday := time.Date(2026, 3, 20, 23, 0, 0, 0, time.UTC)
	_, err = tr.SetReminder(ctx, "3", &laterToday, 0)
	require.NoError(t, err)

	_, err = tr.SetReminder(ctx, "404", nil, 3)
	assert.ErrorIs(t, err, ErrJobNotFound)

	followUps, err := tr.DueFollowUps(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, followUps, 2)
	assert.Equal(t, "2", followUps[0].JobID)
	assert.Equal(t, models.StatusInterview, followUps[0].Status)
	assert.Equal(t, "3", followUps[1].JobID)

	assert.Contains(t, repo.jobs["1"].Application.Notes, "Follow-up reminder set for 2026-03-27")
}

func TestBulkUpdate(t *testing.T) {
	repo := newMemRepo(
		job("1", "Acme", "Dev", models.StatusNotApplied, 0),
		job("2", "Globex", "Ops", models.StatusApplied, 0),
	)
	tr := newTracker(repo)

	results := tr.BulkUpdate(context.Background(), map[string]models.Status{
		"1":   models.StatusApplied,
		"2":   models.StatusRejected,
		"404": models.StatusOffer,
	})

	require.Len(t, results, 3)
	assert.NoError(t, results["1"])
	assert.NoError(t, results["2"])
	assert.ErrorIs(t, results["404"], ErrJobNotFound)

	assert.Equal(t, models.StatusApplied, repo.jobs["1"].Application.Status)
	assert.NotNil(t, repo.jobs["2"].Application.RejectionDate)
	assert.Len(t, repo.index, 2)
}

func TestFilter(t *testing.T) {
	applied := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a := job("1", "Acme Corp", "Senior Angular Developer", models.StatusApplied, 6)
	a.Application.AppliedDate = &applied
	b := job("2", "Globex", "React Developer", models.StatusNotApplied, 4)
	c := job("3", "ACME Labs", "Backend Engineer", models.StatusApplied, 1)
	c.Location = "Rome"
	d := job("4", "Initech", "Angular Engineer", models.StatusInterview, 6)

	tests := []struct {
		name   string
		filter models.JobFilter
		want   []string
	}{
		{name: "empty", filter: models.JobFilter{}, want: []string{"1", "4", "2", "3"}},
		{name: "status", filter: models.JobFilter{Status: models.StatusApplied}, want: []string{"1", "3"}},
		{name: "company substring", filter: models.JobFilter{Company: "acme"}, want: []string{"1", "3"}},
		{name: "title", filter: models.JobFilter{Title: "ANGULAR"}, want: []string{"1", "4"}},
		{name: "location", filter: models.JobFilter{Location: "rome"}, want: []string{"3"}},
		{name: "min relevance", filter: models.JobFilter{MinRelevance: 4}, want: []string{"1", "4", "2"}},
		{name: "applied after", filter: models.JobFilter{AppliedAfter: models.TimePtr(applied.AddDate(0, 0, -1))}, want: []string{"1"}},
		{name: "applied before", filter: models.JobFilter{AppliedBefore: models.TimePtr(applied.AddDate(0, 0, -1))}, want: []string{}},
	}

	tr := newTracker(newMemRepo(a, b, c, d))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := tr.Filter(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := []string{}
			for _, j := range jobs {
				ids = append(ids, j.ID())
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterUsesFinder(t *testing.T) {
	repo := finderRepo{newMemRepo(job("1", "Acme", "Dev", models.StatusApplied, 0))}
	tr := newTracker(repo)

	jobs, err := tr.Filter(context.Background(), models.JobFilter{Status: models.StatusApplied})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, repo.finds)
}

func TestStats(t *testing.T) {
	appliedAt := func(days int) *time.Time { return models.TimePtr(testNow.AddDate(0, 0, -days)) }

	jobs := []*models.Job{
		job("1", "Acme", "A", models.StatusNotApplied, 3),
		job("2", "Acme", "B", models.StatusApplied, 1),
		job("3", "Globex", "C", models.StatusInterview, 4),
		job("4", "Initech", "D", models.StatusOffer, 4),
		job("5", "Acme", "E", models.StatusRejected, 0),
		job("6", "Umbrella", "F", models.StatusScreening, 0),
	}
	jobs[2].Application.AppliedDate = appliedAt(10)
	jobs[3].Application.AppliedDate = appliedAt(20)
	jobs[4].Application.AppliedDate = appliedAt(6)

	tr := newTracker(newMemRepo(jobs...))
	s, err := tr.Stats(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 5, s.Applied)
	assert.Equal(t, 2, s.Interviews)
	assert.Equal(t, 1, s.Offers)
	assert.InDelta(t, 40.0, s.InterviewRate, 0.001)
	assert.InDelta(t, 20.0, s.OfferRate, 0.001)
	assert.InDelta(t, 2.0, s.AverageRelevance, 0.001)
	assert.InDelta(t, 12.0, s.AverageResponseDays, 0.001)
	assert.Equal(t, 1, s.ByStatus[models.StatusOffer])
	assert.Equal(t, 0, s.ByStatus[models.StatusWithdrawn])
	assert.Equal(t, CompanyCount{Company: "Acme", Count: 3}, s.TopCompanies[0])
	assert.Len(t, s.TopCompanies, 4)
}

func TestStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, testNow)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.InterviewRate)
	assert.Empty(t, s.TopCompanies)
	assert.Len(t, s.ByStatus, len(models.AllStatuses))
}

func TestTrackerWithJSONFiles(t *testing.T) {
	ctx := context.Background()

	store, err := jsonfile.New(t.TempDir(), "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, job("77", "Acme", "Angular Dev", models.StatusNotApplied, 3)))

	tr := newTracker(store)
	_, err = tr.UpdateStatus(ctx, "77", models.StatusScreening, "recruiter call", nil)
	require.NoError(t, err)

	reloaded, err := store.Get(ctx, "77")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScreening, reloaded.Application.Status)
	assert.NotNil(t, reloaded.Application.ResponseDate)

	index, err := store.LoadIndex(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, models.StatusScreening, index[0].Status)

	_, err = tr.Get(ctx, "78")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
