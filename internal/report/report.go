package report

import (
	"encoding/csv"
	"fmt"
	htmltemplate "html/template"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"linkedin-job-tracker/internal/models"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"

	topNewJobs = 10
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatHTML, FormatCSV:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

type StatusCount struct {
	Status  models.Status
	Count   int
	Percent float64
}

// Summary is what the markdown and HTML reports render.
type Summary struct {
	Generated     time.Time
	Total         int
	LatestScraped *time.Time
	LatestApplied *time.Time
	Statuses      []StatusCount
	Active        []models.IndexEntry
	TopNew        []models.IndexEntry
}

// Summarize counts statuses, lists active applications (newest application
// first) and picks the most relevant jobs not applied to yet.
func Summarize(index []models.IndexEntry, now time.Time) *Summary {
	s := &Summary{
		Generated: now,
		Total:     len(index),
	}

	counts := make(map[models.Status]int)
	for i := range index {
		e := &index[i]
		counts[e.Status]++

		if s.LatestScraped == nil || e.ScrapedDate.After(*s.LatestScraped) {
			s.LatestScraped = models.TimePtr(e.ScrapedDate)
		}
		if e.Status != models.StatusNotApplied && e.AppliedDate != nil {
			if s.LatestApplied == nil || e.AppliedDate.After(*s.LatestApplied) {
				s.LatestApplied = models.TimePtr(*e.AppliedDate)
			}
		}

		switch e.Status {
		case models.StatusApplied, models.StatusScreening, models.StatusInterview:
			s.Active = append(s.Active, *e)
		case models.StatusNotApplied:
			s.TopNew = append(s.TopNew, *e)
		}
	}

	for _, st := range models.AllStatuses {
		sc := StatusCount{Status: st, Count: counts[st]}
		if s.Total > 0 {
			sc.Percent = float64(sc.Count) / float64(s.Total) * 100
		}
		s.Statuses = append(s.Statuses, sc)
	}

	sort.SliceStable(s.Active, func(i, j int) bool {
		return appliedUnix(s.Active[i]) > appliedUnix(s.Active[j])
	})

	sort.SliceStable(s.TopNew, func(i, j int) bool {
		return s.TopNew[i].Relevance > s.TopNew[j].Relevance
	})
	if len(s.TopNew) > topNewJobs {
		s.TopNew = s.TopNew[:topNewJobs]
	}

	return s
}

// Write renders index in format. The summary reports use now as their
// generation time.
func Write(w io.Writer, format Format, index []models.IndexEntry, now time.Time) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, Summarize(index, now))
	case FormatHTML:
		return HTML(w, Summarize(index, now))
	case FormatCSV:
		return CSV(w, index)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return t.Format("2006-01-02")
	},
	"pct": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 1, 64) + "%"
	},
	"cell": func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
	},
}

var markdownTmpl = template.Must(template.New("markdown").Funcs(funcs).Parse(
	`# Job Application Report

Generated: {{.Generated.Format "2006-01-02 15:04"}}

## Summary

- **Jobs tracked**: {{.Total}}
- **Latest scraped**: {{date .LatestScraped}}
- **Latest application**: {{date .LatestApplied}}

## Application Status

| Status | Count | Share |
|--------|-------|-------|
{{range .Statuses}}| {{.Status}} | {{.Count}} | {{pct .Percent}} |
{{end}}{{if .Active}}
## Active Applications

| Company | Title | Status | Applied |
|---------|-------|--------|---------|
{{range .Active}}| {{cell .Company}} | {{cell .Title}} | {{.Status}} | {{date .AppliedDate}} |
{{end}}{{end}}{{if .TopNew}}
## Top New Jobs

| Company | Title | Relevance | Location |
|---------|-------|-----------|----------|
{{range .TopNew}}| {{cell .Company}} | {{cell .Title}} | {{.Relevance}} | {{cell .Location}} |
{{end}}{{end}}`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap(funcs)).Parse(
	`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Job Application Report</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; margin: 0; padding: 20px; }
h1, h2 { color: #2a5885; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
tr:nth-child(even) { background-color: #f9f9f9; }
.stats { display: flex; flex-wrap: wrap; gap: 20px; margin-bottom: 20px; }
.stat-card { background: #f2f2f2; padding: 15px; border-radius: 5px; flex: 1; min-width: 200px; }
.stat-value { font-size: 24px; font-weight: bold; color: #2a5885; }
.progress { background-color: #e0e0e0; border-radius: 5px; }
.progress-bar { background-color: #4caf50; height: 20px; border-radius: 5px; }
</style>
</head>
<body>
<h1>Job Application Report</h1>
<p>Generated: {{.Generated.Format "2006-01-02 15:04"}}</p>

<h2>Summary</h2>
<div class="stats">
<div class="stat-card"><div>Jobs tracked</div><div class="stat-value">{{.Total}}</div></div>
<div class="stat-card"><div>Latest scraped</div><div class="stat-value">{{date .LatestScraped}}</div></div>
<div class="stat-card"><div>Latest application</div><div class="stat-value">{{date .LatestApplied}}</div></div>
</div>

<h2>Application Status</h2>
<table>
<tr><th>Status</th><th>Count</th><th>Share</th><th>Progress</th></tr>
{{range .Statuses}}<tr><td>{{.Status}}</td><td>{{.Count}}</td><td>{{pct .Percent}}</td><td><div class="progress"><div class="progress-bar" style="width: {{pct .Percent}}"></div></div></td></tr>
{{end}}</table>
{{if .Active}}
<h2>Active Applications</h2>
<table>
<tr><th>Company</th><th>Title</th><th>Status</th><th>Applied</th></tr>
{{range .Active}}<tr><td>{{.Company}}</td><td><a href="{{.DetailURL}}">{{.Title}}</a></td><td>{{.Status}}</td><td>{{date .AppliedDate}}</td></tr>
{{end}}</table>
{{end}}{{if .TopNew}}
<h2>Top New Jobs</h2>
<table>
<tr><th>Company</th><th>Title</th><th>Relevance</th><th>Location</th></tr>
{{range .TopNew}}<tr><td>{{.Company}}</td><td><a href="{{.DetailURL}}">{{.Title}}</a></td><td>{{.Relevance}}</td><td>{{.Location}}</td></tr>
{{end}}</table>
{{end}}</body>
</html>
`))

func Markdown(w io.Writer, s *Summary) error {
	if err := markdownTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("render markdown report: %w", err)
	}
	return nil
}

func HTML(w io.Writer, s *Summary) error {
	if err := htmlTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"JobId", "Title", "Company", "Location", "RemoteStatus",
	"DetailURL", "PostedDate", "ScrapedDate", "Status",
	"AppliedDate", "Priority", "InterestLevel", "Relevance",
}

// CSV writes one row per index entry with the header used by external
// trackers.
func CSV(w io.Writer, index []models.IndexEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range index {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.JobID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(e models.IndexEntry) []string {
	applied := ""
	if e.AppliedDate != nil {
		applied = e.AppliedDate.Format(time.RFC3339)
	}

	return []string{
		e.JobID,
		e.Title,
		e.Company,
		e.Location,
		e.RemoteStatus,
		e.DetailURL,
		e.PostedDate.Format(time.RFC3339),
		e.ScrapedDate.Format(time.RFC3339),
		string(e.Status),
		applied,
		string(e.Priority),
		string(e.InterestLevel),
		strconv.Itoa(e.Relevance),
	}
}

func appliedUnix(e models.IndexEntry) int64 {
	if e.AppliedDate == nil {
		return 0
	}
	return e.AppliedDate.Unix()
}
