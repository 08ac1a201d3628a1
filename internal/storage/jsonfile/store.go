// Package jsonfile keeps job records as one JSON file per posting, plus the
// jobs index, in a single directory.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage"

	"go.uber.org/zap"
)

type Store struct {
	dir       string
	indexFile string
	logger    *zap.Logger
}

// New creates dir if needed. indexFile is relative to dir unless absolute.
func New(dir, indexFile string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if indexFile == "" {
		indexFile = "jobs_index.json"
	}
	if !filepath.IsAbs(indexFile) {
		indexFile = filepath.Join(dir, indexFile)
	}

	return &Store{
		dir:       dir,
		indexFile: indexFile,
		logger:    logger,
	}, nil
}

func (s *Store) IndexPath() string {
	return s.indexFile
}

// Save writes job to its record file, replacing the previous file of the same
// job even when company or title changed.
func (s *Store) Save(ctx context.Context, job *models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	jobID := job.ID()
	if jobID == "" {
		return fmt.Errorf("save job %q: no job id in detail url", job.DetailURL)
	}

	path := filepath.Join(s.dir, FileName(jobID, job.CompanyName, job.Title))

	existing, err := s.find(jobID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if existing != "" && existing != path {
		if err := os.Remove(existing); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale record %s: %w", existing, err)
		}
	}

	if err := writeJSON(path, job); err != nil {
		s.logger.Error("failed to save job",
			zap.String("job_id", jobID),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("save job %s: %w", jobID, err)
	}

	s.logger.Debug("job saved", zap.String("job_id", jobID), zap.String("path", path))
	return nil
}

// Get loads the record for jobID or returns storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.find(jobID)
	if err != nil {
		return nil, err
	}

	job, err := readJob(path)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return job, nil
}

// List loads every record file in the directory. Files that are not single
// job records (the index, batch arrays, foreign files) are skipped.
func (s *Store) List(ctx context.Context) ([]*models.Job, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var jobs []*models.Job
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, e.Name())
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || path == s.indexFile {
			continue
		}

		job, err := readJob(path)
		if err != nil {
			s.logger.Debug("skipping file", zap.String("path", path), zap.Error(err))
			continue
		}
		if job.ID() == "" {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// SaveIndex replaces the index file.
func (s *Store) SaveIndex(_ context.Context, index []models.IndexEntry) error {
	if index == nil {
		index = []models.IndexEntry{}
	}
	if err := writeJSON(s.indexFile, index); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	s.logger.Info("index written", zap.String("path", s.indexFile), zap.Int("entries", len(index)))
	return nil
}

// LoadIndex reads the index file. A missing index is an empty one.
func (s *Store) LoadIndex(_ context.Context) ([]models.IndexEntry, error) {
	data, err := os.ReadFile(s.indexFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index []models.IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return index, nil
}

// find returns the record file of jobID.
func (s *Store) find(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\*?[`) {
		return "", storage.ErrNotFound
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, jobID+"_*.json"))
	if err != nil {
		return "", fmt.Errorf("find job %s: %w", jobID, err)
	}
	if len(matches) == 0 {
		return "", storage.ErrNotFound
	}

	sort.Strings(matches)
	return matches[0], nil
}

// WriteBatch writes jobs as a single JSON array, creating parent directories.
func WriteBatch(path string, jobs any) error {
	if err := writeJSON(path, jobs); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	return nil
}

// ReadRecords decodes a record file holding either one job or an array of
// them, without normalization.
func ReadRecords(path string) ([]*models.RawJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []*models.RawJob
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode records %s: %w", path, err)
		}
		return raws, nil
	}

	var raw models.RawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return []*models.RawJob{&raw}, nil
}

func readJob(path string) (*models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%s is not a job record", path)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &job, nil
}

// writeJSON writes v with two-space indentation through a temp file so a
// crash never leaves a truncated record.
func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
