// Package scraper runs a scrape batch: it discovers job ids, fetches and
// extracts each posting, normalizes and enriches the record, and hands the
// valid ones to storage.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/report"
	"linkedin-job-tracker/internal/schema"
	"linkedin-job-tracker/internal/storage"
	"linkedin-job-tracker/internal/storage/jsonfile"
	"linkedin-job-tracker/internal/tracker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoJobID = errors.New("no job id in url")

// Fetcher is the part of the LinkedIn client the pipeline depends on.
type Fetcher interface {
	FetchJobPosting(ctx context.Context, jobID string) ([]byte, error)
	FetchJobPage(ctx context.Context, jobID string) ([]byte, error)
	SearchJobIDs(ctx context.Context, searchURL string, maxJobs int) ([]string, error)
}

type Extractor interface {
	Extract(ctx context.Context, body []byte, detailURL string) (*models.RawJob, error)
}

// BatchSaver is implemented by backends that can store a whole batch at once.
type BatchSaver interface {
	SaveAll(ctx context.Context, jobs []*models.Job) error
}

// Result is the outcome of one batch. Attempted holds every record that was
// extracted; Valid and Excluded split it by validation.
type Result struct {
	RunID     string
	Attempted []*models.Job
	Valid     []*models.Job
	Excluded  []*models.Job
	Failed    []string
}

type Pipeline struct {
	fetcher    Fetcher
	extractor  Extractor
	normalizer *schema.Normalizer
	validator  *schema.Validator
	enricher   *enrich.Enricher
	repo       tracker.Repository
	logger     *zap.Logger

	maxJobs int
	now     func() time.Time
}

type Option func(*Pipeline)

// WithRepository makes the pipeline look up known records, so their
// application state survives a rescrape, and lets Persist store the batch.
func WithRepository(repo tracker.Repository) Option {
	return func(p *Pipeline) { p.repo = repo }
}

func WithMaxJobs(n int) Option {
	return func(p *Pipeline) { p.maxJobs = n }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(fetcher Fetcher, extractor Extractor, enricher *enrich.Enricher, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		enricher:  enricher,
		validator: schema.NewValidator(logger),
		logger:    logger,
		maxJobs:   100,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizer = schema.NewNormalizer(p.now)
	return p
}

// ScrapeJob scrapes the single posting jobURL points at.
func (p *Pipeline) ScrapeJob(ctx context.Context, jobURL string) (*Result, error) {
	jobID := models.JobIDFromURL(jobURL)
	if jobID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoJobID, jobURL)
	}

	return p.run(ctx, []string{jobID}), nil
}

// ScrapeSearch collects ids from the search result pages of searchURL and
// scrapes them in discovery order. A cancelled context stops the batch
// between postings; the partial result is returned with the context error.
func (p *Pipeline) ScrapeSearch(ctx context.Context, searchURL string) (*Result, error) {
	ids, err := p.fetcher.SearchJobIDs(ctx, searchURL, p.maxJobs)
	if err != nil && len(ids) == 0 {
		p.logger.Error("search failed", zap.String("url", searchURL), zap.Error(err))
		return nil, fmt.Errorf("search job ids: %w", err)
	}

	p.logger.Info("job ids collected",
		zap.Int("count", len(ids)),
		zap.String("url", searchURL),
	)

	res := p.run(ctx, ids)
	return res, ctx.Err()
}

func (p *Pipeline) run(ctx context.Context, ids []string) *Result {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", res.RunID))

	for i, id := range ids {
		if ctx.Err() != nil {
			logger.Warn("batch cancelled", zap.Int("remaining", len(ids)-i))
			break
		}

		job, err := p.scrape(ctx, id)
		if err != nil {
			logger.Error("failed to scrape job",
				zap.String("job_id", id),
				zap.Error(err),
			)
			res.Failed = append(res.Failed, id)
			continue
		}

		p.classify(res, job)

		logger.Info("job processed",
			zap.Int("n", i+1),
			zap.Int("of", len(ids)),
			zap.String("job_id", id),
			zap.String("title", job.Title),
			zap.Int("relevance", models.JobRelevance(job)),
		)
	}

	logSummary(logger, res)

	return res
}

// Normalize runs records read back from a batch or record file through
// normalization, enrichment and validation. Records carrying an application
// keep it; the others are looked up in the repository like scraped ones.
func (p *Pipeline) Normalize(ctx context.Context, raws []*models.RawJob) *Result {
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", res.RunID))

	for _, raw := range raws {
		if raw == nil {
			continue
		}

		job := p.normalizer.Normalize(raw)
		if job.Application != nil {
			p.enricher.Merge(job)
		} else {
			p.enrich(ctx, job)
		}
		p.classify(res, job)
	}

	logSummary(logger, res)

	return res
}

func (p *Pipeline) classify(res *Result, job *models.Job) {
	res.Attempted = append(res.Attempted, job)
	if p.validator.Validate(job) {
		res.Valid = append(res.Valid, job)
	} else {
		res.Excluded = append(res.Excluded, job)
	}
}

func logSummary(logger *zap.Logger, res *Result) {
	logger.Info("batch finished",
		zap.Int("attempted", len(res.Attempted)),
		zap.Int("valid", len(res.Valid)),
		zap.Int("excluded", len(res.Excluded)),
		zap.Int("failed", len(res.Failed)),
	)
}

func (p *Pipeline) scrape(ctx context.Context, jobID string) (*models.Job, error) {
	detailURL := models.JobURL(jobID)

	raw, err := p.fetchPosting(ctx, jobID, detailURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		p.logger.Warn("job posting endpoint failed, trying job page",
			zap.String("job_id", jobID),
			zap.Error(err),
		)

		raw, err = p.fetchPage(ctx, jobID, detailURL)
		if err != nil {
			return nil, err
		}
	}

	job := p.normalizer.Normalize(raw)
	p.enrich(ctx, job)

	return job, nil
}

func (p *Pipeline) fetchPosting(ctx context.Context, jobID, detailURL string) (*models.RawJob, error) {
	body, err := p.fetcher.FetchJobPosting(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job posting: %w", err)
	}
	return p.extractor.Extract(ctx, body, detailURL)
}

func (p *Pipeline) fetchPage(ctx context.Context, jobID, detailURL string) (*models.RawJob, error) {
	body, err := p.fetcher.FetchJobPage(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job page: %w", err)
	}
	return p.extractor.Extract(ctx, body, detailURL)
}

// enrich keeps the application of a record already in storage and attaches
// a fresh one otherwise.
func (p *Pipeline) enrich(ctx context.Context, job *models.Job) {
	if p.repo == nil {
		p.enricher.Enrich(job)
		return
	}

	known, err := p.repo.Get(ctx, job.ID())
	switch {
	case err == nil:
		job.Application = known.Application
		p.enricher.Merge(job)
	case errors.Is(err, storage.ErrNotFound):
		p.enricher.Enrich(job)
	default:
		p.logger.Warn("failed to look up stored job",
			zap.String("job_id", job.ID()),
			zap.Error(err),
		)
		p.enricher.Enrich(job)
	}
}

// Persist stores the valid records and rebuilds the index of backends that
// keep one.
func (p *Pipeline) Persist(ctx context.Context, res *Result) error {
	if p.repo == nil {
		return fmt.Errorf("persist: no repository configured")
	}
	if len(res.Valid) == 0 {
		return nil
	}

	if batch, ok := p.repo.(BatchSaver); ok {
		if err := batch.SaveAll(ctx, res.Valid); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
	} else {
		for _, job := range res.Valid {
			if err := p.repo.Save(ctx, job); err != nil {
				p.logger.Error("failed to save job",
					zap.String("job_id", job.ID()),
					zap.Error(err),
				)
				return fmt.Errorf("save job %s: %w", job.ID(), err)
			}
		}
	}

	if _, ok := p.repo.(tracker.IndexWriter); ok {
		t := tracker.New(p.repo, p.logger, tracker.WithIndexer(report.BuildIndex), tracker.WithClock(p.now))
		index, err := t.RefreshIndex(ctx)
		if err != nil {
			return fmt.Errorf("refresh index: %w", err)
		}
		p.logger.Info("index refreshed", zap.Int("entries", len(index)))
	}

	p.logger.Info("batch persisted",
		zap.String("run_id", res.RunID),
		zap.Int("saved", len(res.Valid)),
	)
	return nil
}

// WriteOutput writes the valid records to path as one JSON array. With
// keepAttempted the attempted records also go to AttemptedPath(path).
func WriteOutput(res *Result, path string, keepAttempted bool) error {
	valid := res.Valid
	if valid == nil {
		valid = []*models.Job{}
	}
	if err := jsonfile.WriteBatch(path, valid); err != nil {
		return err
	}

	if keepAttempted {
		attempted := res.Attempted
		if attempted == nil {
			attempted = []*models.Job{}
		}
		if err := jsonfile.WriteBatch(AttemptedPath(path), attempted); err != nil {
			return err
		}
	}
	return nil
}

// AttemptedPath names the attempted-records file next to output:
// jobs.json becomes jobs.attempted.json.
func AttemptedPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".attempted.json"
}
