package postgres

import (
	"context"
	"fmt"
	"strings"

	"linkedin-job-tracker/internal/models"

	"go.uber.org/zap"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Find pushes f down to SQL. Results are ordered by relevance, then id.
func (s *Store) Find(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	stmt := s.sess.
		Select("*").
		From("jobs")

	if f.Status != "" {
		stmt.Where("status = ?", string(f.Status))
	}
	if f.Company != "" {
		stmt.Where("company ILIKE ?", contains(f.Company))
	}
	if f.Title != "" {
		stmt.Where("title ILIKE ?", contains(f.Title))
	}
	if f.Location != "" {
		stmt.Where("location ILIKE ?", contains(f.Location))
	}
	if f.MinRelevance > 0 {
		stmt.Where("relevance >= ?", f.MinRelevance)
	}
	if f.AppliedAfter != nil {
		stmt.Where("applied_at >= ?", *f.AppliedAfter)
	}
	if f.AppliedBefore != nil {
		stmt.Where("applied_at <= ?", *f.AppliedBefore)
	}

	var rows []models.JobRow
	_, err := stmt.
		OrderDesc("relevance").
		OrderAsc("id").
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to find jobs",
			zap.Any("filter", f),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find jobs: %w", err)
	}

	return decodeRows(rows)
}

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
