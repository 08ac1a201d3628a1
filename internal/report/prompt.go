package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/models"
)

const (
	DefaultBatchSize = 5
	excerptLen       = 300

	// DefaultProfile describes the candidate in the cover letter prompt.
	DefaultProfile = "I am a senior front-end developer with over 10 years of professional experience, " +
		"specialized in Angular. I build responsive, accessible web applications with Angular, RxJS, NgRx, " +
		"TypeScript, HTML5 and CSS3, and I am used to working in agile teams."
)

var ErrNoJobs = errors.New("no jobs match")

type ResponseKind string

const (
	ResponseAnalysis    ResponseKind = "analysis"
	ResponseCoverLetter ResponseKind = "cover-letter"
)

func ParseResponseKind(s string) (ResponseKind, error) {
	switch k := ResponseKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ResponseAnalysis, ResponseCoverLetter:
		return k, nil
	case "cover_letter", "coverletter":
		return ResponseCoverLetter, nil
	}
	return "", fmt.Errorf("unknown response kind %q", s)
}

var promptFuncs = template.FuncMap{
	"orDefault": func(s *string, def string) string {
		if s == nil || strings.TrimSpace(*s) == "" {
			return def
		}
		return *s
	},
	"num": func(n *int) string {
		if n == nil {
			return "Not specified"
		}
		return strconv.Itoa(*n)
	},
	"list": func(items []string) string {
		if len(items) == 0 {
			return "Not specified"
		}
		return strings.Join(items, ", ")
	},
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return "Not applied yet"
		}
		return t.Format("2006-01-02")
	},
	"excerpt": excerpt,
}

var analysisTmpl = template.Must(template.New("analysis").Funcs(promptFuncs).Parse(
	`This is a job posting I found on LinkedIn. Help me analyze it and decide whether to apply.

# Posting
- **Title**: {{.Title}}
- **Company**: {{.CompanyName}}
- **Location**: {{.Location}}
- **URL**: {{.DetailURL}}
- **Posted**: {{.CreatedAt.Format "2006-01-02"}}

# Job description
{{.Description}}

# Company
{{orDefault .CompanyDescription "No description available"}}
- **Industry**: {{orDefault .Industry "Not specified"}}
- **Employees**: {{num .EmployeeCount}}
- **Headquarters**: {{orDefault .Headquarters "Not specified"}}
- **Founded**: {{num .CompanyFounded}}
- **Specialties**: {{list .Specialties}}
- **Website**: {{.CompanyWebsite}}
{{with .Relevance}}
# Relevance to my profile
- **Score**: {{.Score}}
- **Angular mentioned**: {{yesno .AngularMentioned}}
- **TypeScript mentioned**: {{yesno .TypeScriptMentioned}}
- **Matched keywords**: {{list .Keywords}}
{{end}}{{with .Application}}
# Application
- **Status**: {{.Status}}
- **Applied**: {{date .AppliedDate}}
- **Priority**: {{.Priority}}
- **Interest**: {{.InterestLevel}}
{{end}}
# Requests
1. Analyze this posting and tell me whether it fits my profile.
2. Point out its strengths and possible concerns.
3. If it is a good fit, help me draft a tailored cover letter.
4. Suggest changes to my CV that would improve my chances of an interview.
`))

var coverLetterTmpl = template.Must(template.New("cover-letter").Funcs(promptFuncs).Parse(
	`Help me write a professional, persuasive cover letter for this position.

# Posting
- **Title**: {{.Job.Title}}
- **Company**: {{.Job.CompanyName}}
- **Location**: {{.Job.Location}}
- **Industry**: {{orDefault .Job.Industry "Not specified"}}

# Job description
{{.Job.Description}}

# Company
{{orDefault .Job.CompanyDescription "No description available"}}

# My profile
{{.Profile}}

# Requests
1. Write a cover letter tailored to this position and company.
2. Show how my skills line up with the requirements of the posting.
3. Keep the tone professional but personal.
4. Keep it to about 300-400 words.
`))

var batchTmpl = template.Must(template.New("batch").Funcs(promptFuncs).Parse(
	`# Job postings to prioritize

I found these {{len .}} postings that could be interesting. Please look at them and help me decide which to apply to first.
{{range .}}
## {{.Title}} - {{.CompanyName}}
- **Location**: {{.Location}}
- **URL**: {{.DetailURL}}
- **Posted**: {{.CreatedAt.Format "2006-01-02"}}
- **Relevance**: {{with .Relevance}}{{.Score}}{{else}}0{{end}}

### Description excerpt
{{excerpt .Description}}
{{end}}
# Requests
1. Briefly assess how well each posting fits my profile.
2. Rank them from most to least interesting.
3. For the top 3, explain why I should consider them and what to stress in the application.
4. Are there postings I should avoid? If so, why?
`))

// AnalysisPrompt asks an assistant to assess a single posting.
func AnalysisPrompt(job *models.Job) (string, error) {
	var b strings.Builder
	if err := analysisTmpl.Execute(&b, job); err != nil {
		return "", fmt.Errorf("render analysis prompt: %w", err)
	}
	return b.String(), nil
}

// CoverLetterPrompt asks for a cover letter. An empty profile uses
// DefaultProfile.
func CoverLetterPrompt(job *models.Job, profile string) (string, error) {
	if strings.TrimSpace(profile) == "" {
		profile = DefaultProfile
	}

	var b strings.Builder
	err := coverLetterTmpl.Execute(&b, struct {
		Job     *models.Job
		Profile string
	}{job, profile})
	if err != nil {
		return "", fmt.Errorf("render cover letter prompt: %w", err)
	}
	return b.String(), nil
}

// BatchPrompt covers the limit most relevant jobs in status. Zero values use
// NotApplied and DefaultBatchSize.
func BatchPrompt(jobs []*models.Job, status models.Status, limit int) (string, error) {
	if status == "" {
		status = models.StatusNotApplied
	}
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	var selected []*models.Job
	for _, job := range jobs {
		if models.JobStatus(job) == status {
			selected = append(selected, job)
		}
	}
	if len(selected) == 0 {
		return "", fmt.Errorf("%w status %q", ErrNoJobs, status)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return models.JobRelevance(selected[i]) > models.JobRelevance(selected[j])
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}

	var b strings.Builder
	if err := batchTmpl.Execute(&b, selected); err != nil {
		return "", fmt.Errorf("render batch prompt: %w", err)
	}
	return b.String(), nil
}

// SaveResponse stores an assistant answer on the job. Analyses are appended
// to the notes; a cover letter replaces the stored one.
func SaveResponse(job *models.Job, kind ResponseKind, content string, now time.Time) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("save response: empty content")
	}

	if job.Application == nil {
		job.Application = models.NewApplication()
	}

	switch kind {
	case ResponseAnalysis:
		enrich.AppendNote(job.Application, "Assistant analysis:\n"+content, now)
	case ResponseCoverLetter:
		job.Application.CoverLetter = models.StringPtr(content)
	default:
		return fmt.Errorf("save response: unknown kind %q", kind)
	}

	return nil
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen]) + "..."
}
