package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (s *Store) MarkSeen(ctx context.Context, chatID int64, jobIDs ...string) error {
	query := `
		INSERT INTO seen_jobs (chat_id, job_id, seen_at)
		SELECT ?, unnest(?::text[]), NOW()
		ON CONFLICT (chat_id, job_id) DO NOTHING
	`

	if len(jobIDs) == 0 {
		return nil
	}

	_, err := s.sess.
		InsertBySql(query, chatID, pq.Array(jobIDs)).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark jobs as seen",
			zap.Int64("chat_id", chatID),
			zap.Int("count", len(jobIDs)),
			zap.Error(err),
		)
		return fmt.Errorf("mark jobs as seen: %w", err)
	}

	return nil
}

// Unseen returns the ids from jobIDs that were never marked for chatID,
// keeping their order.
func (s *Store) Unseen(ctx context.Context, chatID int64, jobIDs []string) ([]string, error) {
	if len(jobIDs) == 0 {
		return []string{}, nil
	}

	var seenIDs []string
	_, err := s.sess.
		Select("job_id").
		From("seen_jobs").
		Where("chat_id = ? AND job_id = ANY(?)", chatID, pq.Array(jobIDs)).
		LoadContext(ctx, &seenIDs)

	if err != nil {
		s.logger.Error("failed to get unseen jobs",
			zap.Int64("chat_id", chatID),
			zap.Int("total_jobs", len(jobIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get unseen jobs: %w", err)
	}

	seen := make(map[string]bool, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = true
	}

	unseen := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		if !seen[id] {
			unseen = append(unseen, id)
		}
	}

	s.logger.Debug("unseen jobs",
		zap.Int64("chat_id", chatID),
		zap.Int("total", len(jobIDs)),
		zap.Int("unseen", len(unseen)),
	)

	return unseen, nil
}

func (s *Store) CleanOldSeen(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.sess.
		DeleteFrom("seen_jobs").
		Where("seen_at < NOW() - make_interval(days => ?)", daysOld).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old seen jobs",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old seen jobs: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old seen jobs cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
