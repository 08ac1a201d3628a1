package utils

import (
	"linkedin-job-tracker/internal/models"

	tele "gopkg.in/telebot.v3"
)

// Unique ids of the inline buttons handled by the callback router.
const (
	CallbackStatus = "job_status"
	CallbackRemind = "job_remind"
)

// Reply keyboard labels, routed to the matching commands.
const (
	BtnJobs      = "📋 Jobs"
	BtnFollowUps = "⏰ Follow-ups"
	BtnStats     = "📊 Stats"
	BtnHelp      = "❓ Help"
)

func MainMenuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	btnJobs := menu.Text(BtnJobs)
	btnFollowUps := menu.Text(BtnFollowUps)
	btnStats := menu.Text(BtnStats)
	btnHelp := menu.Text(BtnHelp)

	menu.Reply(
		menu.Row(btnJobs, btnFollowUps),
		menu.Row(btnStats, btnHelp),
	)

	return menu
}

// InlineJobKeyboard links to the posting and offers the common status
// changes. Button data is "<job id>|<status>".
func InlineJobKeyboard(jobID, jobURL string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	btnOpen := menu.URL("🔗 Open job", jobURL)
	btnApplied := menu.Data("✉️ Applied", CallbackStatus, jobID, string(models.StatusApplied))
	btnInterview := menu.Data("🗣 Interview", CallbackStatus, jobID, string(models.StatusInterview))
	btnRejected := menu.Data("❌ Rejected", CallbackStatus, jobID, string(models.StatusRejected))
	btnRemind := menu.Data("⏰ Remind in 7 days", CallbackRemind, jobID)

	menu.Inline(
		menu.Row(btnOpen),
		menu.Row(btnApplied, btnInterview, btnRejected),
		menu.Row(btnRemind),
	)

	return menu
}
