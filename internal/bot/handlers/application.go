package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"linkedin-job-tracker/internal/bot/utils"
	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var (
	errUsage     = errors.New("usage")
	errBadStatus = errors.New("unknown status")
)

// /status <id> <status> [note]
func HandleStatus(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		jobID, status, note, err := parseStatusArgs(c.Args())
		switch {
		case errors.Is(err, errBadStatus):
			return c.Reply("❌ Unknown status. Send /help for the list of statuses.")
		case err != nil:
			return c.Reply("Usage: /status <id> <status> [note]")
		}

		dbCtx, cancel := storeContext()
		defer cancel()

		job, err := ctx.Tracker.UpdateStatus(dbCtx, jobID, status, note, nil)
		if err != nil {
			return replyLoadError(ctx, c, jobID, err)
		}

		ctx.Logger.Info("status updated from chat",
			zap.Int64("user_id", c.Sender().ID),
			zap.String("job_id", jobID),
			zap.String("status", string(status)),
		)

		return sendJob(c, job)
	}
}

// /note <id> <text>
func HandleNote(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		args := c.Args()
		if len(args) < 2 {
			return c.Reply("Usage: /note <id> <text>")
		}
		jobID, note := args[0], strings.Join(args[1:], " ")

		dbCtx, cancel := storeContext()
		defer cancel()

		if _, err := ctx.Tracker.AddNote(dbCtx, jobID, note); err != nil {
			return replyLoadError(ctx, c, jobID, err)
		}

		return c.Reply("📝 Note added to " + jobID)
	}
}

// /remind <id> [days]
func HandleRemind(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		jobID, days, err := parseRemindArgs(c.Args())
		if err != nil {
			return c.Reply("Usage: /remind <id> [days]")
		}

		return remind(ctx, c, jobID, days)
	}
}

func remind(ctx *Context, c tele.Context, jobID string, days int) error {
	dbCtx, cancel := storeContext()
	defer cancel()

	due, err := ctx.Tracker.SetReminder(dbCtx, jobID, nil, days)
	if err != nil {
		return replyLoadError(ctx, c, jobID, err)
	}

	return c.Send(
		fmt.Sprintf("⏰ Follow\\-up for `%s` set to *%s*", jobID, utils.EscapeMarkdown(due.Format("2006-01-02"))),
		tele.ModeMarkdownV2,
	)
}

// parseStatusArgs accepts two-word statuses ("Not Applied") as well as the
// compact forms. Everything after the status is the note.
func parseStatusArgs(args []string) (jobID string, status models.Status, note string, err error) {
	if len(args) < 2 {
		return "", "", "", errUsage
	}
	jobID = args[0]

	if len(args) >= 3 {
		if st, perr := models.ParseStatus(args[1] + " " + args[2]); perr == nil {
			return jobID, st, strings.Join(args[3:], " "), nil
		}
	}

	status, err = models.ParseStatus(args[1])
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %s", errBadStatus, args[1])
	}

	return jobID, status, strings.Join(args[2:], " "), nil
}

func parseRemindArgs(args []string) (jobID string, days int, err error) {
	switch len(args) {
	case 1:
		return args[0], enrich.DefaultFollowUpDays, nil
	case 2:
		days, err = strconv.Atoi(args[1])
		if err != nil || days <= 0 {
			return "", 0, errUsage
		}
		return args[0], days, nil
	}
	return "", 0, errUsage
}
