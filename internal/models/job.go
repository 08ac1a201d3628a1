package models

import "time"

// Job is a normalized posting as persisted in record files and the jobs table.
// JSON keys are part of the on-disk format and must not change.
type Job struct {
	Title              string `json:"Title" validate:"required"`
	Description        string `json:"Description" validate:"required"`
	PrimaryDescription string `json:"Primary Description,omitempty"`
	DetailURL          string `json:"Detail URL" validate:"required"`
	Location           string `json:"Location" validate:"required"`

	Skill    []string `json:"Skill" validate:"nilornonempty"`
	Insight  []string `json:"Insight" validate:"nilornonempty"`
	JobState *string  `json:"Job State"`

	PosterID           string   `json:"Poster Id" validate:"required"`
	CompanyName        string   `json:"Company Name" validate:"required"`
	CompanyLogo        string   `json:"Company Logo" validate:"required"`
	CompanyApplyURL    string   `json:"Company Apply Url" validate:"required"`
	CompanyDescription *string  `json:"Company Description"`
	CompanyWebsite     string   `json:"Company Website" validate:"required"`
	Industry           *string  `json:"Industry"`
	EmployeeCount      *int     `json:"Employee Count" validate:"omitempty,gte=0"`
	Headquarters       *string  `json:"Headquarters"`
	CompanyFounded     *int     `json:"Company Founded" validate:"omitempty,gte=1000,lte=9999"`
	Specialties        []string `json:"Specialties" validate:"nilornonempty"`

	CreatedAt time.Time `json:"Created At" validate:"required"`
	ScrapedAt time.Time `json:"ScrapedAt" validate:"required"`

	Application *Application `json:"Application,omitempty"`
	Relevance   *Relevance   `json:"Relevance,omitempty"`
}

// ID returns the LinkedIn job id derived from DetailURL, or "" when the URL
// carries none.
func (j *Job) ID() string {
	return JobIDFromURL(j.DetailURL)
}

// Relevance is recomputed from title and description on every enrichment.
type Relevance struct {
	Score               int      `json:"Score"`
	Keywords            []string `json:"Keywords"`
	AngularMentioned    bool     `json:"Angular Mentioned"`
	TypeScriptMentioned bool     `json:"TypeScript Mentioned"`
	ReactMentioned      bool     `json:"React Mentioned"`
}

func StringPtr(s string) *string {
	return &s
}

func IntPtr(n int) *int {
	return &n
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
