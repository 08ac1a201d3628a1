package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the application status as written to record files.
type Status string

const (
	StatusNotApplied Status = "Not Applied"
	StatusApplied    Status = "Applied"
	StatusScreening  Status = "Screening"
	StatusInterview  Status = "Interview"
	StatusOffer      Status = "Offer"
	StatusRejected   Status = "Rejected"
	StatusWithdrawn  Status = "Withdrawn"
)

// AllStatuses lists statuses in pipeline order, used by reports.
var AllStatuses = []Status{
	StatusNotApplied,
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// ParseStatus accepts the persisted form ("Not Applied") as well as the
// compact and snake forms used on the command line ("NotApplied", "not_applied").
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if strings.ToLower(strings.ReplaceAll(string(st), " ", "")) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Level is used for both priority and interest.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow, nil
	case "medium":
		return LevelMedium, nil
	case "high":
		return LevelHigh, nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Application tracks what the user did about a posting. It is created once on
// first enrichment and afterwards changed only through status updates, notes
// and reminders.
type Application struct {
	Status        Status     `json:"Status"`
	AppliedDate   *time.Time `json:"Applied Date"`
	ResponseDate  *time.Time `json:"Response Date"`
	InterviewDate *time.Time `json:"Interview Date"`
	OfferDate     *time.Time `json:"Offer Date"`
	RejectionDate *time.Time `json:"Rejection Date"`
	Notes         string     `json:"Notes"`
	FollowUpDate  *time.Time `json:"Follow Up Date"`
	CoverLetter   *string    `json:"Cover Letter"`
	SalaryRange   *string    `json:"Salary Range"`
	SkillsMatch   *int       `json:"Skills Match"`
	LocationMatch *string    `json:"Location Match"`
	Priority      Level      `json:"Priority"`
	InterestLevel Level      `json:"Interest Level"`
}

// NewApplication returns the record attached on first enrichment.
func NewApplication() *Application {
	return &Application{
		Status:        StatusNotApplied,
		Priority:      LevelMedium,
		InterestLevel: LevelMedium,
	}
}
