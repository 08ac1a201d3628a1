// Package enrich attaches application tracking and relevance data to job
// records and implements the application status transitions.
package enrich

import (
	"strings"
	"time"

	"linkedin-job-tracker/internal/models"
)

// DefaultKeywords are matched when no profile overrides them.
var DefaultKeywords = []string{
	"angular",
	"typescript",
	"frontend",
	"front-end",
	"front end",
	"javascript",
	"react",
}

const (
	titleWeight       = 3
	descriptionWeight = 1

	DefaultFollowUpDays = 7
	noteDateLayout      = "2006-01-02"
)

type Enricher struct {
	keywords []string
}

func New(keywords []string) *Enricher {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}

	return &Enricher{keywords: normalized}
}

// Enrich attaches a fresh Application with default values, replacing any
// existing one, and recomputes Relevance.
func (e *Enricher) Enrich(job *models.Job) *models.Job {
	job.Application = models.NewApplication()
	job.Relevance = e.Relevance(job)
	return job
}

// Merge keeps an existing Application and only recomputes Relevance. Records
// already tracked by the user go through here so status and notes survive a
// rescrape.
func (e *Enricher) Merge(job *models.Job) *models.Job {
	if job.Application == nil {
		job.Application = models.NewApplication()
	}
	job.Relevance = e.Relevance(job)
	return job
}

// Relevance scores a keyword found in the title by 3 and one found only in
// the description by 1. It depends on title and description alone.
func (e *Enricher) Relevance(job *models.Job) *models.Relevance {
	title := strings.ToLower(job.Title)
	desc := strings.ToLower(job.Description)

	rel := &models.Relevance{Keywords: []string{}}
	seen := make(map[string]bool, len(e.keywords))

	for _, k := range e.keywords {
		if seen[k] {
			continue
		}

		switch {
		case strings.Contains(title, k):
			rel.Score += titleWeight
		case strings.Contains(desc, k):
			rel.Score += descriptionWeight
		default:
			continue
		}

		seen[k] = true
		rel.Keywords = append(rel.Keywords, k)
	}

	rel.AngularMentioned = strings.Contains(title, "angular") || strings.Contains(desc, "angular")
	rel.TypeScriptMentioned = strings.Contains(title, "typescript") || strings.Contains(desc, "typescript")
	rel.ReactMentioned = strings.Contains(title, "react") || strings.Contains(desc, "react")

	return rel
}

// UpdateStatus moves app to status and stamps the date belonging to it.
// Going backwards is allowed.
func UpdateStatus(app *models.Application, status models.Status, note string, appliedAt *time.Time, now time.Time) {
	prev := app.Status
	app.Status = status

	switch status {
	case models.StatusApplied:
		switch {
		case appliedAt != nil:
			app.AppliedDate = models.TimePtr(*appliedAt)
		case app.AppliedDate == nil && prev == models.StatusNotApplied:
			app.AppliedDate = models.TimePtr(now)
		}
	case models.StatusScreening:
		app.ResponseDate = models.TimePtr(now)
	case models.StatusInterview:
		app.InterviewDate = models.TimePtr(now)
	case models.StatusOffer:
		app.OfferDate = models.TimePtr(now)
	case models.StatusRejected:
		app.RejectionDate = models.TimePtr(now)
	}

	AppendNote(app, note, now)
}

// AppendNote adds a dated entry to the application notes.
func AppendNote(app *models.Application, note string, now time.Time) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}

	entry := now.Format(noteDateLayout) + ": " + note
	if app.Notes == "" {
		app.Notes = entry
		return
	}
	app.Notes += "\n\n" + entry
}

// SetFollowUp schedules a follow-up at the given time, or days from now when
// at is nil, and returns the date set.
func SetFollowUp(app *models.Application, at *time.Time, days int, now time.Time) time.Time {
	if days <= 0 {
		days = DefaultFollowUpDays
	}

	due := now.AddDate(0, 0, days)
	if at != nil {
		due = *at
	}

	app.FollowUpDate = models.TimePtr(due)
	AppendNote(app, "Follow-up reminder set for "+due.Format(noteDateLayout), now)

	return due
}
