// Package report derives the jobs index from job records and renders it as
// reports, spreadsheet exports and assistant prompts.
package report

import (
	"sort"
	"strings"

	"linkedin-job-tracker/internal/models"
)

// BuildIndex summarizes jobs, most relevant first, keeping input order among
// equal scores. Records without a job id
// are left out.
func BuildIndex(jobs []*models.Job) []models.IndexEntry {
	index := make([]models.IndexEntry, 0, len(jobs))

	for _, job := range jobs {
		id := job.ID()
		if id == "" {
			continue
		}

		entry := models.IndexEntry{
			JobID:         id,
			Title:         job.Title,
			Company:       job.CompanyName,
			Location:      job.Location,
			RemoteStatus:  models.RemoteStatusNotSpecified,
			DetailURL:     job.DetailURL,
			PostedDate:    job.CreatedAt,
			ScrapedDate:   job.ScrapedAt,
			Status:        models.StatusNotApplied,
			Priority:      models.LevelMedium,
			InterestLevel: models.LevelMedium,
		}

		if strings.Contains(strings.ToLower(job.Location), "remote") {
			entry.RemoteStatus = models.RemoteStatusRemote
		}

		if app := job.Application; app != nil {
			entry.Status = models.JobStatus(job)
			entry.AppliedDate = app.AppliedDate
			if app.Priority != "" {
				entry.Priority = app.Priority
			}
			if app.InterestLevel != "" {
				entry.InterestLevel = app.InterestLevel
			}
		}

		if rel := job.Relevance; rel != nil {
			entry.Relevance = rel.Score
			entry.KeywordMatches = len(rel.Keywords)
		}

		index = append(index, entry)
	}

	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Relevance > index[j].Relevance
	})

	return index
}
