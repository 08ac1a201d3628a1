package handlers

import (
	"linkedin-job-tracker/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /followups
func HandleFollowUps(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		dbCtx, cancel := storeContext()
		defer cancel()

		due, err := ctx.Tracker.DueFollowUps(dbCtx, ctx.now())
		if err != nil {
			ctx.Logger.Error("failed to get follow-ups", zap.Error(err))
			return c.Reply("😔 Failed to load follow-ups")
		}

		return c.Send(utils.FormatFollowUps(due), tele.ModeMarkdownV2)
	}
}

// /stats
func HandleStats(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		dbCtx, cancel := storeContext()
		defer cancel()

		stats, err := ctx.Tracker.Stats(dbCtx, ctx.now())
		if err != nil {
			ctx.Logger.Error("failed to compute stats", zap.Error(err))
			return c.Reply("😔 Failed to compute statistics")
		}

		if stats.Total == 0 {
			return c.Send(utils.FormatNoJobsMessage(), tele.ModeMarkdownV2)
		}

		return c.Send(utils.FormatStats(stats), tele.ModeMarkdownV2)
	}
}
