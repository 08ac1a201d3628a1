package models

import (
	"strings"
	"time"
)

// JobFilter selects tracked jobs. Zero fields do not constrain. Text fields
// match case-insensitive substrings; Status matches exactly.
type JobFilter struct {
	Status        Status
	Company       string
	Title         string
	Location      string
	MinRelevance  int
	AppliedAfter  *time.Time
	AppliedBefore *time.Time
}

// Match reports whether job passes every set criterion. Jobs without an
// applied date never pass an applied date bound.
func (f JobFilter) Match(job *Job) bool {
	if f.Status != "" && JobStatus(job) != f.Status {
		return false
	}

	if !containsFold(job.CompanyName, f.Company) ||
		!containsFold(job.Title, f.Title) ||
		!containsFold(job.Location, f.Location) {
		return false
	}

	if f.MinRelevance > 0 && JobRelevance(job) < f.MinRelevance {
		return false
	}

	if f.AppliedAfter != nil || f.AppliedBefore != nil {
		if job.Application == nil || job.Application.AppliedDate == nil {
			return false
		}
		applied := *job.Application.AppliedDate
		if f.AppliedAfter != nil && applied.Before(*f.AppliedAfter) {
			return false
		}
		if f.AppliedBefore != nil && applied.After(*f.AppliedBefore) {
			return false
		}
	}

	return true
}

// JobStatus returns the application status, NotApplied when untracked.
func JobStatus(job *Job) Status {
	if job.Application == nil || job.Application.Status == "" {
		return StatusNotApplied
	}
	return job.Application.Status
}

func JobRelevance(job *Job) int {
	if job.Relevance == nil {
		return 0
	}
	return job.Relevance.Score
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
