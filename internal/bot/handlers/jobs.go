package handlers

import (
	"errors"
	"strings"

	"linkedin-job-tracker/internal/bot/utils"
	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/report"
	"linkedin-job-tracker/internal/tracker"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const jobListLimit = 10

// /jobs [status]
func HandleJobs(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		var filter models.JobFilter
		if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
			status, err := models.ParseStatus(payload)
			if err != nil {
				return c.Reply("❌ Unknown status. Send /help for the list of statuses.")
			}
			filter.Status = status
		}

		dbCtx, cancel := storeContext()
		defer cancel()

		jobs, err := ctx.Tracker.Filter(dbCtx, filter)
		if err != nil {
			ctx.Logger.Error("failed to list jobs", zap.Error(err))
			return c.Reply("😔 Failed to load jobs")
		}

		if len(jobs) == 0 {
			return c.Send(utils.FormatNoJobsMessage(), tele.ModeMarkdownV2)
		}

		index := report.BuildIndex(jobs)
		shown := index
		if len(shown) > jobListLimit {
			shown = shown[:jobListLimit]
		}

		return c.Send(utils.FormatJobList(shown, len(index)), tele.ModeMarkdownV2)
	}
}

// /job <id>
func HandleJob(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Reply("Usage: /job <id>")
		}

		dbCtx, cancel := storeContext()
		defer cancel()

		job, err := ctx.Tracker.Get(dbCtx, args[0])
		if err != nil {
			return replyLoadError(ctx, c, args[0], err)
		}

		return sendJob(c, job)
	}
}

func sendJob(c tele.Context, job *models.Job) error {
	return c.Send(
		utils.FormatJob(job),
		utils.InlineJobKeyboard(job.ID(), job.DetailURL),
		tele.ModeMarkdownV2,
	)
}

func replyLoadError(ctx *Context, c tele.Context, jobID string, err error) error {
	if errors.Is(err, tracker.ErrJobNotFound) {
		return c.Reply("🔍 Job " + jobID + " not found")
	}

	ctx.Logger.Error("failed to load job",
		zap.String("job_id", jobID),
		zap.Error(err),
	)
	return c.Reply("😔 Failed to load the job. Try again later.")
}
