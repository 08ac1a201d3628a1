// Package schema turns extractor output into complete job records and checks
// them against the record schema.
package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"linkedin-job-tracker/internal/dates"
	"linkedin-job-tracker/internal/extractor"
	"linkedin-job-tracker/internal/models"
)

const (
	DefaultTitle       = "Untitled Job"
	DefaultLocation    = "Remote"
	DefaultCompany     = "Unknown Company"
	DefaultPosterID    = "000000"
	DefaultCompanyLogo = "https://static.licdn.com/aero-v1/sc/h/dbvmk0tsk0o0hd59fi64z3own"
	DefaultWebsite     = "https://www.linkedin.com/"
	DefaultJobState    = "LISTED"
)

type Normalizer struct {
	now func() time.Time
}

func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize fills defaults and coerces loose values. The result always has
// every required field set; whether it is valid is up to the Validator.
func (n *Normalizer) Normalize(raw *models.RawJob) *models.Job {
	now := n.now()

	job := &models.Job{
		Title:          orDefault(raw.Title, DefaultTitle),
		Description:    orDefault(raw.Description, extractor.NoDescription),
		DetailURL:      strings.TrimSpace(raw.DetailURL),
		Location:       orDefault(raw.Location, DefaultLocation),
		PosterID:       orDefault(raw.PosterID, DefaultPosterID),
		CompanyName:    orDefault(raw.CompanyName, DefaultCompany),
		CompanyLogo:    orDefault(raw.CompanyLogo, DefaultCompanyLogo),
		CompanyWebsite: orDefault(raw.CompanyWebsite, DefaultWebsite),
		JobState:       models.StringPtr(orDefault(raw.JobState, DefaultJobState)),
		Skill:          List(raw.Skill),
		Insight:        List(raw.Insight),
		Specialties:    List(raw.Specialties),
		EmployeeCount:  Int(raw.EmployeeCount),
		CompanyFounded: Int(raw.CompanyFounded),
		Industry:       nullable(raw.Industry),
		Headquarters:   nullable(raw.Headquarters),
		Application:    raw.Application,
		Relevance:      raw.Relevance,
	}

	job.CompanyDescription = nullable(raw.CompanyDescription)
	job.CompanyApplyURL = orDefault(raw.CompanyApplyURL, job.DetailURL)

	if raw.CreatedAt != nil && !raw.CreatedAt.IsZero() {
		job.CreatedAt = *raw.CreatedAt
	} else {
		job.CreatedAt = now.Add(-dates.FallbackAge)
	}

	if raw.ScrapedAt != nil && !raw.ScrapedAt.IsZero() {
		job.ScrapedAt = *raw.ScrapedAt
	} else {
		job.ScrapedAt = now
	}

	job.PrimaryDescription = strings.TrimSpace(models.StringValue(raw.PrimaryDescription))
	if job.PrimaryDescription == "" {
		job.PrimaryDescription = PrimaryDescription(job)
	}

	return job
}

// PrimaryDescription is "<Title> at <Company> · <Location> · <first sentence>".
func PrimaryDescription(job *models.Job) string {
	parts := []string{job.Title + " at " + job.CompanyName}
	if job.Location != "" {
		parts = append(parts, job.Location)
	}
	if s := extractor.FirstSentence(job.Description); s != "" && job.Description != extractor.NoDescription {
		parts = append(parts, s)
	}
	return strings.Join(parts, " · ")
}

// List coerces a list or a delimited string into a list of trimmed, non-empty
// items. It returns nil rather than an empty list.
func List(v any) []string {
	var items []string

	switch t := v.(type) {
	case nil:
		return nil
	case string:
		items = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ';' })
	case []string:
		items = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Int accepts whole numbers in any numeric type, or a numeric string.
// Anything else becomes nil.
func Int(v any) *int {
	switch t := v.(type) {
	case int:
		return &t
	case int64:
		return models.IntPtr(int(t))
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil
		}
		return models.IntPtr(int(t))
	case json.Number:
		return Int(t.String())
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if ferr != nil {
				return nil
			}
			return Int(f)
		}
		return &n
	}
	return nil
}

func orDefault(s *string, def string) string {
	if v := strings.TrimSpace(models.StringValue(s)); v != "" {
		return v
	}
	return def
}

func nullable(s *string) *string {
	if v := strings.TrimSpace(models.StringValue(s)); v != "" {
		return &v
	}
	return nil
}
