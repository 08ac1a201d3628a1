package scheduler

import (
	"context"
	"fmt"
	"time"

	"linkedin-job-tracker/internal/bot/utils"
	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/scraper"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	startDelay    = 30 * time.Second
	checkTimeout  = 30 * time.Minute
	seenRetention = 90
)

// Scraper runs one batch and stores it.
type Scraper interface {
	ScrapeSearch(ctx context.Context, searchURL string) (*scraper.Result, error)
	Persist(ctx context.Context, res *scraper.Result) error
}

// SeenStore remembers which jobs a chat was already told about.
type SeenStore interface {
	MarkSeen(ctx context.Context, chatID int64, jobIDs ...string) error
	Unseen(ctx context.Context, chatID int64, jobIDs []string) ([]string, error)
}

// seenCleaner is implemented by seen stores without key expiry.
type seenCleaner interface {
	CleanOldSeen(ctx context.Context, daysOld int) (int64, error)
}

// Sender is satisfied by *tele.Bot.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Options struct {
	ChatID       int64
	SearchURL    string
	Interval     time.Duration
	MinRelevance int
}

type JobChecker struct {
	sender  Sender
	scraper Scraper
	seen    SeenStore
	opts    Options
	logger  *zap.Logger

	startDelay time.Duration
	pause      time.Duration
}

func New(sender Sender, s Scraper, seen SeenStore, opts Options, logger *zap.Logger) *JobChecker {
	return &JobChecker{
		sender:     sender,
		scraper:    s,
		seen:       seen,
		opts:       opts,
		logger:     logger,
		startDelay: startDelay,
		pause:      500 * time.Millisecond,
	}
}

func (jc *JobChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(jc.opts.Interval)
	defer ticker.Stop()

	jc.logger.Info("job checker started",
		zap.Duration("interval", jc.opts.Interval),
		zap.Int64("chat_id", jc.opts.ChatID),
	)

	select {
	case <-ctx.Done():
		jc.logger.Info("job checker stopped")
		return
	case <-time.After(jc.startDelay):
	}
	jc.runCheck(ctx)

	for {
		select {
		case <-ctx.Done():
			jc.logger.Info("job checker stopped")
			return
		case <-ticker.C:
			jc.runCheck(ctx)
		}
	}
}

func (jc *JobChecker) runCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := jc.Check(checkCtx); err != nil {
		jc.logger.Error("job check failed", zap.Error(err))
	}
}

// Check scrapes the configured search, stores the batch and notifies the
// chat about relevant jobs it has not seen yet.
func (jc *JobChecker) Check(ctx context.Context) error {
	jc.logger.Info("starting job check")

	res, err := jc.scraper.ScrapeSearch(ctx, jc.opts.SearchURL)
	if res == nil {
		return fmt.Errorf("scrape search: %w", err)
	}
	if err != nil {
		jc.logger.Warn("scrape interrupted, keeping partial batch", zap.Error(err))
	}

	if err := jc.scraper.Persist(ctx, res); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}

	candidates := jc.relevant(res.Valid)
	if len(candidates) == 0 {
		jc.logger.Debug("no relevant jobs in batch", zap.String("run_id", res.RunID))
		return nil
	}

	ids := make([]string, len(candidates))
	for i, job := range candidates {
		ids[i] = job.ID()
	}

	unseenIDs, err := jc.seen.Unseen(ctx, jc.opts.ChatID, ids)
	if err != nil {
		return fmt.Errorf("get unseen jobs: %w", err)
	}
	if len(unseenIDs) == 0 {
		jc.logger.Debug("no new jobs", zap.String("run_id", res.RunID))
		return nil
	}

	unseenMap := make(map[string]bool, len(unseenIDs))
	for _, id := range unseenIDs {
		unseenMap[id] = true
	}

	var newJobs []*models.Job
	for _, job := range candidates {
		if unseenMap[job.ID()] {
			newJobs = append(newJobs, job)
		}
	}

	sent, err := jc.sendNotifications(newJobs)
	if len(sent) > 0 {
		if markErr := jc.seen.MarkSeen(ctx, jc.opts.ChatID, sent...); markErr != nil {
			jc.logger.Error("failed to mark jobs as seen",
				zap.Int64("chat_id", jc.opts.ChatID),
				zap.Error(markErr),
			)
		}
	}
	if err != nil {
		return fmt.Errorf("send notifications: %w", err)
	}

	jc.cleanSeen(ctx)

	jc.logger.Info("sent new jobs to chat",
		zap.String("run_id", res.RunID),
		zap.Int64("chat_id", jc.opts.ChatID),
		zap.Int("count", len(sent)),
	)

	return nil
}

func (jc *JobChecker) relevant(jobs []*models.Job) []*models.Job {
	var out []*models.Job
	for _, job := range jobs {
		if job.ID() != "" && models.JobRelevance(job) >= jc.opts.MinRelevance {
			out = append(out, job)
		}
	}
	return out
}

// sendNotifications returns the ids that were delivered.
func (jc *JobChecker) sendNotifications(jobs []*models.Job) ([]string, error) {
	recipient := &tele.Chat{ID: jc.opts.ChatID}

	if _, err := jc.sender.Send(recipient, utils.FormatNewJobsSummary(len(jobs)), tele.ModeMarkdownV2); err != nil {
		return nil, fmt.Errorf("send summary: %w", err)
	}

	var sent []string
	for i, job := range jobs {
		message := utils.FormatJob(job)
		keyboard := utils.InlineJobKeyboard(job.ID(), job.DetailURL)

		if _, err := jc.sender.Send(recipient, message, keyboard, tele.ModeMarkdownV2); err != nil {
			jc.logger.Error("failed to send job notification",
				zap.Int64("chat_id", jc.opts.ChatID),
				zap.String("job_id", job.ID()),
				zap.Error(err),
			)
			continue
		}
		sent = append(sent, job.ID())

		if i < len(jobs)-1 && jc.pause > 0 {
			time.Sleep(jc.pause)
		}
	}

	return sent, nil
}

func (jc *JobChecker) cleanSeen(ctx context.Context) {
	cleaner, ok := jc.seen.(seenCleaner)
	if !ok {
		return
	}

	removed, err := cleaner.CleanOldSeen(ctx, seenRetention)
	if err != nil {
		jc.logger.Warn("failed to clean old seen jobs", zap.Error(err))
		return
	}
	if removed > 0 {
		jc.logger.Debug("old seen jobs removed", zap.Int64("count", removed))
	}
}
