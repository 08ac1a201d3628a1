// Package tracker manages the application side of stored job records:
// status changes, notes, follow-up reminders, filtering and statistics.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage"

	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("job not found")

// Repository is implemented by every storage backend.
type Repository interface {
	Get(ctx context.Context, jobID string) (*models.Job, error)
	Save(ctx context.Context, job *models.Job) error
	List(ctx context.Context) ([]*models.Job, error)
}

// IndexWriter is implemented by backends that keep a separate jobs index.
type IndexWriter interface {
	SaveIndex(ctx context.Context, index []models.IndexEntry) error
}

// Finder is implemented by backends that can filter without loading every
// record.
type Finder interface {
	Find(ctx context.Context, f models.JobFilter) ([]*models.Job, error)
}

// Indexer turns the stored records into index entries.
type Indexer func(jobs []*models.Job) []models.IndexEntry

type Tracker struct {
	repo    Repository
	indexer Indexer
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Tracker)

// WithIndexer makes every change rewrite the index of backends that keep one.
func WithIndexer(indexer Indexer) Option {
	return func(t *Tracker) { t.indexer = indexer }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(repo Repository, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get loads a job, mapping a missing record to ErrJobNotFound.
func (t *Tracker) Get(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := t.repo.Get(ctx, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	if job.Application == nil {
		job.Application = models.NewApplication()
	}
	return job, nil
}

// UpdateStatus moves a job to status, appends note when given and refreshes
// the index. appliedAt overrides the applied date on a move to Applied.
func (t *Tracker) UpdateStatus(ctx context.Context, jobID string, status models.Status, note string, appliedAt *time.Time) (*models.Job, error) {
	job, err := t.update(ctx, jobID, func(job *models.Job, now time.Time) {
		enrich.UpdateStatus(job.Application, status, note, appliedAt, now)
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("application status updated",
		zap.String("job_id", jobID),
		zap.String("status", string(status)),
	)

	t.refreshIndex(ctx)
	return job, nil
}

// SetPriority changes the priority and interest levels. An empty level is
// left unchanged.
func (t *Tracker) SetPriority(ctx context.Context, jobID string, priority, interest models.Level) (*models.Job, error) {
	job, err := t.update(ctx, jobID, func(job *models.Job, _ time.Time) {
		if priority != "" {
			job.Application.Priority = priority
		}
		if interest != "" {
			job.Application.InterestLevel = interest
		}
	})
	if err != nil {
		return nil, err
	}

	t.refreshIndex(ctx)
	return job, nil
}

// AddNote appends a dated note without touching the status.
func (t *Tracker) AddNote(ctx context.Context, jobID, note string) (*models.Job, error) {
	return t.update(ctx, jobID, func(job *models.Job, now time.Time) {
		enrich.AppendNote(job.Application, note, now)
	})
}

// SetReminder schedules a follow-up at, or days from now when at is nil.
func (t *Tracker) SetReminder(ctx context.Context, jobID string, at *time.Time, days int) (time.Time, error) {
	var due time.Time

	_, err := t.update(ctx, jobID, func(job *models.Job, now time.Time) {
		due = enrich.SetFollowUp(job.Application, at, days, now)
	})
	if err != nil {
		return time.Time{}, err
	}

	t.logger.Info("follow-up reminder set",
		zap.String("job_id", jobID),
		zap.Time("due", due),
	)

	return due, nil
}

// DueFollowUps returns jobs whose follow-up date falls on now's day or
// earlier, oldest first.
func (t *Tracker) DueFollowUps(ctx context.Context, now time.Time) ([]models.FollowUp, error) {
	jobs, err := t.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	y, m, d := now.Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	var due []models.FollowUp
	for _, job := range jobs {
		if job.Application == nil || job.Application.FollowUpDate == nil {
			continue
		}

		at := *job.Application.FollowUpDate
		if !at.Before(endOfDay) {
			continue
		}

		due = append(due, models.FollowUp{
			JobID:        job.ID(),
			Title:        job.Title,
			Company:      job.CompanyName,
			Status:       models.JobStatus(job),
			FollowUpDate: at,
		})
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].FollowUpDate.Before(due[j].FollowUpDate)
	})

	return due, nil
}

// BulkUpdate applies each status in updates. The returned map holds one
// entry per job id, nil on success. The index is rewritten once at the end.
func (t *Tracker) BulkUpdate(ctx context.Context, updates map[string]models.Status) map[string]error {
	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make(map[string]error, len(updates))
	updated := 0

	for _, id := range ids {
		status := updates[id]
		_, err := t.update(ctx, id, func(job *models.Job, now time.Time) {
			enrich.UpdateStatus(job.Application, status, "", nil, now)
		})
		results[id] = err

		if err != nil {
			t.logger.Warn("bulk update failed", zap.String("job_id", id), zap.Error(err))
			continue
		}
		updated++
	}

	t.logger.Info("bulk update finished",
		zap.Int("requested", len(updates)),
		zap.Int("updated", updated),
	)

	if updated > 0 {
		t.refreshIndex(ctx)
	}
	return results
}

// Filter returns the jobs matching f, most relevant first.
func (t *Tracker) Filter(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	if finder, ok := t.repo.(Finder); ok {
		jobs, err := finder.Find(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("filter jobs: %w", err)
		}
		return jobs, nil
	}

	jobs, err := t.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	matched := make([]*models.Job, 0, len(jobs))
	for _, job := range jobs {
		if f.Match(job) {
			matched = append(matched, job)
		}
	}

	SortByRelevance(matched)
	return matched, nil
}

// RefreshIndex rebuilds the index from the stored records.
func (t *Tracker) RefreshIndex(ctx context.Context) ([]models.IndexEntry, error) {
	if t.indexer == nil {
		return nil, fmt.Errorf("refresh index: no indexer configured")
	}

	jobs, err := t.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	index := t.indexer(jobs)

	if w, ok := t.repo.(IndexWriter); ok {
		if err := w.SaveIndex(ctx, index); err != nil {
			return nil, err
		}
	}

	return index, nil
}

// SortByRelevance orders jobs by relevance, then by job id.
func SortByRelevance(jobs []*models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ri, rj := models.JobRelevance(jobs[i]), models.JobRelevance(jobs[j])
		if ri != rj {
			return ri > rj
		}
		return jobs[i].ID() < jobs[j].ID()
	})
}

func (t *Tracker) update(ctx context.Context, jobID string, change func(job *models.Job, now time.Time)) (*models.Job, error) {
	job, err := t.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	change(job, t.now())

	if err := t.repo.Save(ctx, job); err != nil {
		t.logger.Error("failed to save job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("save job %s: %w", jobID, err)
	}

	return job, nil
}

func (t *Tracker) refreshIndex(ctx context.Context) {
	if t.indexer == nil {
		return
	}
	if _, ok := t.repo.(IndexWriter); !ok {
		return
	}

	if _, err := t.RefreshIndex(ctx); err != nil {
		t.logger.Warn("failed to refresh index", zap.Error(err))
	}
}
