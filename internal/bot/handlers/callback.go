package handlers

import (
	"linkedin-job-tracker/internal/bot/utils"
	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// HandleStatusButton applies the status carried by an inline job button and
// redraws the card.
func HandleStatusButton(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		args := c.Args()
		if len(args) != 2 {
			ctx.Logger.Warn("invalid callback format", zap.Strings("args", args))
			return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid button"})
		}

		jobID := args[0]
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Unknown status"})
		}

		dbCtx, cancel := storeContext()
		defer cancel()

		job, err := ctx.Tracker.UpdateStatus(dbCtx, jobID, status, "", nil)
		if err != nil {
			ctx.Logger.Error("failed to update status from button",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
			return c.Respond(&tele.CallbackResponse{Text: "😔 Update failed"})
		}

		if err := c.Edit(
			utils.FormatJob(job),
			utils.InlineJobKeyboard(jobID, job.DetailURL),
			tele.ModeMarkdownV2,
		); err != nil {
			ctx.Logger.Warn("failed to redraw job card", zap.String("job_id", jobID), zap.Error(err))
		}

		return c.Respond(&tele.CallbackResponse{Text: "Status: " + string(status)})
	}
}

func HandleRemindButton(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		args := c.Args()
		if len(args) != 1 || args[0] == "" {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid button"})
		}

		dbCtx, cancel := storeContext()
		defer cancel()

		due, err := ctx.Tracker.SetReminder(dbCtx, args[0], nil, enrich.DefaultFollowUpDays)
		if err != nil {
			ctx.Logger.Error("failed to set reminder from button",
				zap.String("job_id", args[0]),
				zap.Error(err),
			)
			return c.Respond(&tele.CallbackResponse{Text: "😔 Reminder failed"})
		}

		return c.Respond(&tele.CallbackResponse{Text: "⏰ Follow-up on " + due.Format("2006-01-02")})
	}
}
