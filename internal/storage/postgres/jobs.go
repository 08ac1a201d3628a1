package postgres

import (
	"context"
	"errors"
	"fmt"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

const upsertJob = `
	INSERT INTO jobs (
		id, title, company, location, detail_url, status, relevance,
		posted_at, applied_at, follow_up_at, record, scraped_at, updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		company = EXCLUDED.company,
		location = EXCLUDED.location,
		detail_url = EXCLUDED.detail_url,
		status = EXCLUDED.status,
		relevance = EXCLUDED.relevance,
		posted_at = EXCLUDED.posted_at,
		applied_at = EXCLUDED.applied_at,
		follow_up_at = EXCLUDED.follow_up_at,
		record = EXCLUDED.record,
		scraped_at = EXCLUDED.scraped_at,
		updated_at = EXCLUDED.updated_at
`

func (s *Store) Save(ctx context.Context, job *models.Job) error {
	return s.save(ctx, s.sess, job)
}

// SaveAll upserts jobs in one transaction.
func (s *Store) SaveAll(ctx context.Context, jobs []*models.Job) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	for _, job := range jobs {
		if err := s.save(ctx, tx, job); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit jobs", zap.Int("count", len(jobs)), zap.Error(err))
		return fmt.Errorf("commit jobs: %w", err)
	}

	return nil
}

func (s *Store) save(ctx context.Context, runner dbr.SessionRunner, job *models.Job) error {
	row, err := models.NewJobRow(job)
	if err != nil {
		return err
	}
	if row.ID == "" {
		return fmt.Errorf("save job %q: no job id in detail url", job.DetailURL)
	}

	_, err = runner.
		InsertBySql(upsertJob,
			row.ID,
			row.Title,
			row.Company,
			row.Location,
			row.DetailURL,
			row.Status,
			row.Relevance,
			row.PostedAt,
			row.AppliedAt,
			row.FollowUpAt,
			string(row.Record),
			row.ScrapedAt,
			s.now(),
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to save job",
			zap.String("job_id", row.ID),
			zap.Error(err),
		)
		return fmt.Errorf("save job: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var row models.JobRow

	err := s.sess.
		Select("*").
		From("jobs").
		Where("id = ?", jobID).
		LoadOneContext(ctx, &row)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		s.logger.Error("failed to get job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get job: %w", err)
	}

	return row.Job()
}

// List returns every job, most relevant first.
func (s *Store) List(ctx context.Context) ([]*models.Job, error) {
	return s.Find(ctx, models.JobFilter{})
}

func (s *Store) Delete(ctx context.Context, jobID string) error {
	result, err := s.sess.
		DeleteFrom("jobs").
		Where("id = ?", jobID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("delete job: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func decodeRows(rows []models.JobRow) ([]*models.Job, error) {
	jobs := make([]*models.Job, 0, len(rows))
	for i := range rows {
		job, err := rows[i].Job()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
