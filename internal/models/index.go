package models

import "time"

const (
	RemoteStatusRemote       = "Remote"
	RemoteStatusNotSpecified = "Not Specified"
)

// IndexEntry is one row of jobs_index.json. It is always rebuilt from the
// job records and never edited on its own.
type IndexEntry struct {
	JobID          string     `json:"JobId"`
	Title          string     `json:"Title"`
	Company        string     `json:"Company"`
	Location       string     `json:"Location"`
	RemoteStatus   string     `json:"RemoteStatus"`
	DetailURL      string     `json:"DetailURL"`
	PostedDate     time.Time  `json:"PostedDate"`
	ScrapedDate    time.Time  `json:"ScrapedDate"`
	Status         Status     `json:"Status"`
	AppliedDate    *time.Time `json:"AppliedDate"`
	Priority       Level      `json:"Priority"`
	InterestLevel  Level      `json:"InterestLevel"`
	Relevance      int        `json:"Relevance"`
	KeywordMatches int        `json:"KeywordMatches"`
}

// FollowUp is a job whose reminder date has passed.
type FollowUp struct {
	JobID        string    `json:"JobId"`
	Title        string    `json:"Title"`
	Company      string    `json:"Company"`
	Status       Status    `json:"Status"`
	FollowUpDate time.Time `json:"FollowUpDate"`
}
