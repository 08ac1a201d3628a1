package models

import (
	"net/url"
	"regexp"
)

var jobIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`linkedin\.com/jobs/view/(?:[^/?#]*-)?(\d+)`),
	regexp.MustCompile(`currentJobId=(\d+)`),
}

// JobIDFromURL derives the LinkedIn job id from a job or search URL. Two
// records with the same id denote the same posting.
func JobIDFromURL(rawURL string) string {
	for _, re := range jobIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	q := u.Query()
	for _, param := range []string{"jobId", "currentJobId"} {
		if v := q.Get(param); v != "" {
			return v
		}
	}

	return ""
}

// JobURL is the canonical detail URL for a job id.
func JobURL(jobID string) string {
	return "https://www.linkedin.com/jobs/view/" + jobID + "/"
}
