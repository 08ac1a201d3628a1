package utils

import (
	"fmt"
	"strings"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/tracker"
)

const descriptionPreviewLen = 300

// Format job card for Telegram
func FormatJob(job *models.Job) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s*\n\n", EscapeMarkdown(job.Title)))
	sb.WriteString(fmt.Sprintf("🏢 *Company:* %s\n", EscapeMarkdown(job.CompanyName)))
	sb.WriteString(fmt.Sprintf("📍 *Location:* %s\n", EscapeMarkdown(job.Location)))

	if job.Industry != nil {
		sb.WriteString(fmt.Sprintf("🏭 *Industry:* %s\n", EscapeMarkdown(*job.Industry)))
	}

	sb.WriteString(fmt.Sprintf("📅 *Posted:* %s\n", EscapeMarkdown(job.CreatedAt.Format("2006-01-02"))))

	if rel := job.Relevance; rel != nil {
		sb.WriteString(fmt.Sprintf("⭐ *Relevance:* %d", rel.Score))
		if len(rel.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf(" \\(%s\\)", EscapeMarkdown(strings.Join(rel.Keywords, ", "))))
		}
		sb.WriteString("\n")
	}

	if app := job.Application; app != nil {
		sb.WriteString(fmt.Sprintf("📌 *Status:* %s\n", EscapeMarkdown(string(app.Status))))
		if app.AppliedDate != nil {
			sb.WriteString(fmt.Sprintf("✉️ *Applied:* %s\n", EscapeMarkdown(app.AppliedDate.Format("2006-01-02"))))
		}
		if app.FollowUpDate != nil {
			sb.WriteString(fmt.Sprintf("⏰ *Follow\\-up:* %s\n", EscapeMarkdown(app.FollowUpDate.Format("2006-01-02"))))
		}
	}

	if desc := strings.TrimSpace(job.PrimaryDescription); desc != "" {
		sb.WriteString(fmt.Sprintf("\n_%s_\n", EscapeMarkdown(TruncateString(desc, descriptionPreviewLen))))
	}

	sb.WriteString(fmt.Sprintf("\n🆔 `%s`", job.ID()))

	return sb.String()
}

// FormatJobList renders the top of the index, one numbered entry per job.
func FormatJobList(entries []models.IndexEntry, total int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📋 *Jobs tracked:* %d\n", total))
	sb.WriteString(fmt.Sprintf("*Shown:* %d\n\n", len(entries)))

	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("*%d\\. %s*\n", i+1, EscapeMarkdown(e.Title)))
		sb.WriteString(fmt.Sprintf("   🏢 %s\n", EscapeMarkdown(e.Company)))
		sb.WriteString(fmt.Sprintf("   📍 %s\n", EscapeMarkdown(e.Location)))
		sb.WriteString(fmt.Sprintf("   ⭐ %d · %s · `%s`\n", e.Relevance, EscapeMarkdown(string(e.Status)), e.JobID))
		sb.WriteString("\n")
	}

	return sb.String()
}

func FormatNewJobsSummary(count int) string {
	return fmt.Sprintf("🔔 *New jobs\\!*\n\nFound %d new matching postings\\.", count)
}

func FormatFollowUps(followUps []models.FollowUp) string {
	if len(followUps) == 0 {
		return "✅ No follow\\-ups due\\."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ *Follow\\-ups due:* %d\n\n", len(followUps)))

	for _, f := range followUps {
		sb.WriteString(fmt.Sprintf("• *%s* at %s\n", EscapeMarkdown(f.Title), EscapeMarkdown(f.Company)))
		sb.WriteString(fmt.Sprintf("   %s · %s · `%s`\n",
			EscapeMarkdown(f.FollowUpDate.Format("2006-01-02")),
			EscapeMarkdown(string(f.Status)),
			f.JobID,
		))
	}

	return sb.String()
}

func FormatStats(stats *tracker.Stats) string {
	var sb strings.Builder

	sb.WriteString("*📊 Application statistics*\n\n")
	sb.WriteString(fmt.Sprintf("Jobs tracked: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Applied: %d\n", stats.Applied))
	sb.WriteString(fmt.Sprintf("Interviews: %d \\(%s\\)\n", stats.Interviews, EscapeMarkdown(percent(stats.InterviewRate))))
	sb.WriteString(fmt.Sprintf("Offers: %d \\(%s\\)\n", stats.Offers, EscapeMarkdown(percent(stats.OfferRate))))
	sb.WriteString(fmt.Sprintf("Average relevance: %s\n", EscapeMarkdown(fmt.Sprintf("%.1f", stats.AverageRelevance))))
	if stats.AverageResponseDays > 0 {
		sb.WriteString(fmt.Sprintf("Average response time: %s days\n", EscapeMarkdown(fmt.Sprintf("%.1f", stats.AverageResponseDays))))
	}

	sb.WriteString("\n*By status:*\n")
	for _, st := range models.AllStatuses {
		if n := stats.ByStatus[st]; n > 0 {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", EscapeMarkdown(string(st)), n))
		}
	}

	if len(stats.TopCompanies) > 0 {
		sb.WriteString("\n*Top companies:*\n")
		for _, c := range stats.TopCompanies {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", EscapeMarkdown(c.Company), c.Count))
		}
	}

	return sb.String()
}

func FormatWelcomeMessage(firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`👋 Hi, *%s*\!

I keep track of the LinkedIn jobs you scraped and your applications\.

*What I can do:*
• Show the most relevant postings
• Update application status and notes
• Remind you to follow up

Send /help for the list of commands\.`, EscapeMarkdown(name))
}

func FormatHelpMessage() string {
	return `*📖 Help*

/jobs \- most relevant jobs
/job \<id\> \- show one job
/status \<id\> \<status\> \[note\] \- update the status
/note \<id\> \<text\> \- add a note
/remind \<id\> \[days\] \- set a follow\-up reminder
/followups \- reminders that are due
/stats \- application statistics

*Statuses:* Not Applied, Applied, Screening, Interview, Offer, Rejected, Withdrawn`
}

func FormatNoJobsMessage() string {
	return `😔 *No jobs tracked yet*

Run a scrape first, new postings will show up here\.`
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

func EscapeMarkdown(text string) string {
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	return replacer.Replace(text)
}

// TruncateString cuts s to maxLen runes, marking the cut with "...".
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
