package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"linkedin-job-tracker/internal/models"
)

const topCompaniesLimit = 10

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats summarizes the tracked applications. Rates are percentages of the
// applied jobs.
type Stats struct {
	Total               int                   `json:"total"`
	ByStatus            map[models.Status]int `json:"by_status"`
	Applied             int                   `json:"applied"`
	Interviews          int                   `json:"interviews"`
	Offers              int                   `json:"offers"`
	InterviewRate       float64               `json:"interview_rate"`
	OfferRate           float64               `json:"offer_rate"`
	TopCompanies        []CompanyCount        `json:"top_companies"`
	AverageRelevance    float64               `json:"average_relevance"`
	AverageResponseDays float64               `json:"average_response_days"`
}

func (t *Tracker) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	jobs, err := t.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return ComputeStats(jobs, now), nil
}

// ComputeStats counts interviews for both Interview and Offer, since every
// offer went through one. Response time runs from the applied date to now
// for jobs that got an answer.
func ComputeStats(jobs []*models.Job, now time.Time) *Stats {
	s := &Stats{
		Total:        len(jobs),
		ByStatus:     make(map[models.Status]int, len(models.AllStatuses)),
		TopCompanies: []CompanyCount{},
	}
	for _, st := range models.AllStatuses {
		s.ByStatus[st] = 0
	}

	companies := make(map[string]int)
	relevanceSum := 0
	responseDays, responses := 0, 0

	for _, job := range jobs {
		status := models.JobStatus(job)
		s.ByStatus[status]++

		if status != models.StatusNotApplied {
			s.Applied++
		}

		switch status {
		case models.StatusInterview:
			s.Interviews++
		case models.StatusOffer:
			s.Interviews++
			s.Offers++
		}

		companies[job.CompanyName]++
		relevanceSum += models.JobRelevance(job)

		switch status {
		case models.StatusScreening, models.StatusInterview, models.StatusOffer, models.StatusRejected:
			if job.Application != nil && job.Application.AppliedDate != nil {
				responseDays += int(now.Sub(*job.Application.AppliedDate) / (24 * time.Hour))
				responses++
			}
		}
	}

	if s.Applied > 0 {
		s.InterviewRate = percent(s.Interviews, s.Applied)
		s.OfferRate = percent(s.Offers, s.Applied)
	}
	if s.Total > 0 {
		s.AverageRelevance = float64(relevanceSum) / float64(s.Total)
	}
	if responses > 0 {
		s.AverageResponseDays = float64(responseDays) / float64(responses)
	}

	for name, count := range companies {
		s.TopCompanies = append(s.TopCompanies, CompanyCount{Company: name, Count: count})
	}
	sort.Slice(s.TopCompanies, func(i, j int) bool {
		a, b := s.TopCompanies[i], s.TopCompanies[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Company < b.Company
	})
	if len(s.TopCompanies) > topCompaniesLimit {
		s.TopCompanies = s.TopCompanies[:topCompaniesLimit]
	}

	return s
}

func percent(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}
