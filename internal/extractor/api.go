package extractor

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"linkedin-job-tracker/internal/dates"
	"linkedin-job-tracker/internal/models"
)

// apiPosting is the vendor shape returned by the job posting endpoint when it
// answers with JSON.
type apiPosting struct {
	Title             string          `json:"title"`
	Description       json.RawMessage `json:"description"`
	FormattedLocation string          `json:"formattedLocation"`
	Location          string          `json:"location"`
	CompanyDetails    *apiCompany     `json:"companyDetails"`
	Company           *apiCompany     `json:"company"`
	ApplyURL          string          `json:"applyUrl"`
	ApplicationURL    string          `json:"applicationUrl"`
	ListedAt          json.RawMessage `json:"listedAt"`
	PostingDate       string          `json:"postingDate"`
	JobState          string          `json:"jobState"`
	Skills            json.RawMessage `json:"skills"`
}

type apiCompany struct {
	Name          string          `json:"name"`
	CompanyName   string          `json:"companyName"`
	LogoURL       string          `json:"logoUrl"`
	Logo          json.RawMessage `json:"logo"`
	CompanyID     json.RawMessage `json:"companyId"`
	ID            json.RawMessage `json:"id"`
	Description   string          `json:"description"`
	WebsiteURL    string          `json:"websiteUrl"`
	Website       string          `json:"website"`
	Industry      string          `json:"industry"`
	EmployeeCount json.RawMessage `json:"employeeCount"`
	Headquarters  string          `json:"headquarters"`
	FoundedYear   json.RawMessage `json:"foundedYear"`
	Specialties   json.RawMessage `json:"specialties"`
}

// fromAPI maps the vendor payload, most specific key first.
func (e *Extractor) fromAPI(data []byte, detailURL string) (*models.RawJob, error) {
	var p apiPosting
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, malformed("decode job posting payload", err)
	}

	now := e.now()
	raw := e.newRaw(detailURL, now)

	setString(&raw.Title, p.Title)

	if desc := rawString(p.Description); desc != "" {
		setString(&raw.Description, StripHTML(desc))
	} else {
		var wrapped struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(p.Description, &wrapped); err == nil {
			setString(&raw.Description, StripHTML(wrapped.Text))
		}
	}

	location := firstNonEmpty(p.FormattedLocation, p.Location)
	if location != "" {
		setString(&raw.Location, MarkRemote(location))
	}

	if p.JobState != "" {
		setString(&raw.JobState, p.JobState)
	}

	if skills := stringOrList(p.Skills); len(skills) > 0 {
		raw.Skill = skills
	}

	company := p.CompanyDetails
	if company == nil {
		company = p.Company
	}
	if company != nil {
		setString(&raw.CompanyName, firstNonEmpty(company.Name, company.CompanyName))
		setString(&raw.CompanyLogo, firstNonEmpty(company.LogoURL, rawString(company.Logo)))
		setString(&raw.PosterID, firstNonEmpty(rawString(company.CompanyID), rawString(company.ID)))
		setString(&raw.CompanyDescription, company.Description)
		setString(&raw.CompanyWebsite, firstNonEmpty(company.WebsiteURL, company.Website))
		setString(&raw.Industry, company.Industry)
		setString(&raw.Headquarters, company.Headquarters)

		var count float64
		if err := json.Unmarshal(company.EmployeeCount, &count); err == nil {
			raw.EmployeeCount = int(count)
		} else if s := rawString(company.EmployeeCount); s != "" {
			if n, ok := ParseEmployeeCount(s); ok {
				raw.EmployeeCount = n
			}
		}

		if s := rawString(company.FoundedYear); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				raw.CompanyFounded = n
			}
		}

		if specialties := stringOrList(company.Specialties); len(specialties) > 0 {
			raw.Specialties = strings.Join(specialties, ", ")
		}
	}

	setString(&raw.CompanyApplyURL, firstNonEmpty(p.ApplyURL, p.ApplicationURL))

	if ms := rawString(p.ListedAt); ms != "" {
		if n, err := strconv.ParseFloat(ms, 64); err == nil && n > 0 {
			t := time.UnixMilli(int64(n)).In(now.Location())
			raw.CreatedAt = &t
		}
	} else if p.PostingDate != "" {
		raw.CreatedAt = parseDate(p.PostingDate, now)
	}

	e.finish(raw)
	return raw, nil
}

// fromJSONLD maps a schema.org JobPosting.
func (e *Extractor) fromJSONLD(p *jsonLDPosting, detailURL string) *models.RawJob {
	now := e.now()
	raw := e.newRaw(detailURL, now)

	setString(&raw.Title, p.Title)
	setString(&raw.Description, p.plainDescription())
	if loc := p.location(); loc != "" {
		setString(&raw.Location, MarkRemote(loc))
	}
	setString(&raw.CompanyName, p.companyName())
	setString(&raw.CompanyLogo, p.companyLogo())
	setString(&raw.CompanyWebsite, p.companyWebsite())
	setString(&raw.Industry, p.industry())
	setString(&raw.CompanyApplyURL, p.URL)

	if skills := stringOrList(p.Skills); len(skills) > 0 {
		raw.Skill = skills
	}

	if p.DatePosted != "" {
		raw.CreatedAt = parseDate(p.DatePosted, now)
	}

	e.finish(raw)
	return raw
}

// parseDate accepts ISO timestamps and dates before falling back to the
// free-text rules. It returns nil when nothing matches.
func parseDate(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return &t
		}
	}
	if t, ok := dates.Parse(s, now); ok {
		return &t
	}
	return nil
}

func setString(dst **string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = &v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
