package cli

import (
	"fmt"
	"io"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/scraper"
	"linkedin-job-tracker/internal/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxTitleWidth = 50

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderIndex(w io.Writer, index []models.IndexEntry) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Job ID", "Title", "Company", "Location", "Status", "Relevance", "Posted"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: maxTitleWidth},
		{Name: "Relevance", Align: text.AlignRight},
	})

	for _, e := range index {
		t.AppendRow(table.Row{
			e.JobID,
			e.Title,
			e.Company,
			e.Location,
			e.Status,
			e.Relevance,
			e.PostedDate.Format("2006-01-02"),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", "Total", len(index), ""})
	t.Render()
}

func renderFollowUps(w io.Writer, due []models.FollowUp) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Job ID", "Title", "Company", "Status", "Follow up"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: maxTitleWidth},
	})

	for _, f := range due {
		t.AppendRow(table.Row{f.JobID, f.Title, f.Company, f.Status, f.FollowUpDate.Format("2006-01-02")})
	}

	t.Render()
}

func renderStats(w io.Writer, s *tracker.Stats) {
	t := newTable(w)
	t.SetTitle("Applications")
	t.AppendRows([]table.Row{
		{"Total jobs", s.Total},
		{"Applied", s.Applied},
		{"Interviews", s.Interviews},
		{"Offers", s.Offers},
		{"Interview rate", fmt.Sprintf("%.1f%%", s.InterviewRate)},
		{"Offer rate", fmt.Sprintf("%.1f%%", s.OfferRate)},
		{"Average relevance", fmt.Sprintf("%.1f", s.AverageRelevance)},
		{"Average response (days)", fmt.Sprintf("%.1f", s.AverageResponseDays)},
	})
	t.Render()

	statuses := newTable(w)
	statuses.SetTitle("By status")
	statuses.AppendHeader(table.Row{"Status", "Jobs"})
	for _, st := range models.AllStatuses {
		if n := s.ByStatus[st]; n > 0 {
			statuses.AppendRow(table.Row{st, n})
		}
	}
	statuses.Render()

	if len(s.TopCompanies) == 0 {
		return
	}

	companies := newTable(w)
	companies.SetTitle("Top companies")
	companies.AppendHeader(table.Row{"Company", "Jobs"})
	for _, c := range s.TopCompanies {
		companies.AppendRow(table.Row{c.Company, c.Count})
	}
	companies.Render()
}

func renderBulkResults(w io.Writer, ids []string, results map[string]error) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Job ID", "Result"})
	for _, id := range ids {
		result := "updated"
		if err := results[id]; err != nil {
			result = "failed: " + err.Error()
		}
		t.AppendRow(table.Row{id, result})
	}
	t.Render()
}

func printSummary(w io.Writer, res *scraper.Result) {
	fmt.Fprintf(w, "Run %s: attempted %d, valid %d, excluded %d, failed %d\n",
		res.RunID, len(res.Attempted), len(res.Valid), len(res.Excluded), len(res.Failed))
}
