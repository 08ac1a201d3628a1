package linkedin

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"linkedin-job-tracker/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	guestSearchPath   = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	regularSearchPath = "/jobs/search"
	searchPageSize    = 25
)

// Experience filter codes used by f_E.
var experienceCodes = map[string]string{
	"entry":      "2",
	"associate":  "3",
	"mid-senior": "4",
	"director":   "5",
}

var urnRe = regexp.MustCompile(`:(\d+)$`)

type SearchParams struct {
	Keywords   string
	Location   string
	Remote     bool
	Hybrid     bool
	EasyApply  bool
	PastWeek   bool
	Experience []string
	Guest      bool
}

// BuildSearchURL assembles a search URL on base, or on linkedin.com when base
// is empty. Unknown experience levels are ignored.
func BuildSearchURL(base string, p SearchParams) string {
	if base == "" {
		base = DefaultBaseURL
	}

	path := regularSearchPath
	if p.Guest {
		path = guestSearchPath
	}

	q := url.Values{}
	q.Set("keywords", p.Keywords)
	q.Set("location", p.Location)
	q.Set("trk", "public_jobs_jobs-search-bar_search-submit")
	q.Set("position", "1")
	q.Set("pageNum", "0")

	var workplace []string
	if p.Remote {
		workplace = append(workplace, "2")
	}
	if p.Hybrid {
		workplace = append(workplace, "3")
	}
	if len(workplace) > 0 {
		q.Set("f_WT", strings.Join(workplace, ","))
	}

	if p.EasyApply {
		q.Set("f_AL", "true")
	}
	if p.PastWeek {
		q.Set("f_TPR", "r604800")
	}

	var codes []string
	for _, level := range p.Experience {
		if code, ok := experienceCodes[strings.ToLower(strings.TrimSpace(level))]; ok {
			codes = append(codes, code)
		}
	}
	if len(codes) > 0 {
		q.Set("f_E", strings.Join(codes, ","))
	}

	return base + path + "?" + q.Encode()
}

// PageURL returns the URL of result page n. Guest API URLs page with pageNum,
// regular search URLs with start.
func PageURL(searchURL string, n int) (string, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if strings.Contains(u.Path, "jobs-guest") {
		q.Set("pageNum", strconv.Itoa(n))
	} else {
		q.Set("start", strconv.Itoa(n*searchPageSize))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ParseJobIDs finds job ids on a search result page in discovery order.
func ParseJobIDs(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	doc.Find("div.base-search-card[data-entity-urn]").Each(func(_ int, s *goquery.Selection) {
		urn, _ := s.Attr("data-entity-urn")
		if m := urnRe.FindStringSubmatch(urn); m != nil {
			add(m[1])
		}
	})
	if len(ids) > 0 {
		return ids
	}

	doc.Find("li, div.job-search-card, div.base-card, div.job-card-container").Each(func(_ int, s *goquery.Selection) {
		for _, name := range []string{"data-id", "data-job-id"} {
			if v, ok := s.Attr(name); ok && isDigits(v) {
				add(v)
				return
			}
		}
	})
	if len(ids) > 0 {
		return ids
	}

	doc.Find(`a[href*="/jobs/view/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(models.JobIDFromURL(href))
	})

	return ids
}

// SearchJobIDs walks result pages until maxJobs ids are collected, enough
// consecutive pages bring nothing new, or LinkedIn refuses access.
func (c *Client) SearchJobIDs(ctx context.Context, searchURL string, maxJobs int) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	empty := 0

	for page := 0; empty < c.maxEmptyPages; page++ {
		if maxJobs > 0 && len(ids) >= maxJobs {
			break
		}
		if err := ctx.Err(); err != nil {
			return ids, err
		}

		pageURL, err := PageURL(searchURL, page)
		if err != nil {
			return nil, err
		}

		body, err := c.Fetch(ctx, pageURL)
		switch {
		case errors.Is(err, ErrForbidden):
			c.logger.Error("search stopped by access denial",
				zap.Int("page", page),
				zap.Int("collected", len(ids)),
			)
			if len(ids) == 0 {
				return nil, err
			}
			return ids, nil
		case ctx.Err() != nil:
			return ids, ctx.Err()
		case err != nil:
			c.logger.Warn("search page failed", zap.Int("page", page), zap.Error(err))
			empty++
			continue
		}

		added := 0
		for _, id := range ParseJobIDs(body) {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			added++
		}

		c.logger.Info("search page processed",
			zap.Int("page", page),
			zap.Int("new_ids", added),
			zap.Int("total", len(ids)),
		)

		if added == 0 {
			empty++
		} else {
			empty = 0
		}
	}

	if maxJobs > 0 && len(ids) > maxJobs {
		ids = ids[:maxJobs]
	}
	return ids, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
