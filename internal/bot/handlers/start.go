package handlers

import (
	"linkedin-job-tracker/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /start command
func HandleStart(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()

		ctx.Logger.Info("user started bot",
			zap.Int64("user_id", sender.ID),
			zap.String("username", sender.Username),
		)

		return c.Send(
			utils.FormatWelcomeMessage(sender.FirstName),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// /help
func HandleHelp(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(
			utils.FormatHelpMessage(),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// HandleText routes the main menu buttons to their commands.
func HandleText(ctx *Context) tele.HandlerFunc {
	jobs := HandleJobs(ctx)
	followUps := HandleFollowUps(ctx)
	stats := HandleStats(ctx)
	help := HandleHelp(ctx)

	return func(c tele.Context) error {
		switch c.Text() {
		case utils.BtnJobs:
			return jobs(c)
		case utils.BtnFollowUps:
			return followUps(c)
		case utils.BtnStats:
			return stats(c)
		case utils.BtnHelp:
			return help(c)
		}
		return c.Send("❓ Unknown command. Send /help for the list of commands.")
	}
}
