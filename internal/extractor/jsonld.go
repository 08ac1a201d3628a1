package extractor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDPosting is the subset of schema.org/JobPosting that LinkedIn embeds.
type jsonLDPosting struct {
	Type               json.RawMessage     `json:"@type"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	DatePosted         string              `json:"datePosted"`
	URL                string              `json:"url"`
	Industry           json.RawMessage     `json:"industry"`
	Skills             json.RawMessage     `json:"skills"`
	JobLocationType    string              `json:"jobLocationType"`
	JobLocation        json.RawMessage     `json:"jobLocation"`
	HiringOrganization *jsonLDOrganization `json:"hiringOrganization"`
	Identifier         *struct {
		Value json.RawMessage `json:"value"`
	} `json:"identifier"`
}

type jsonLDOrganization struct {
	Name   string          `json:"name"`
	Logo   json.RawMessage `json:"logo"`
	SameAs string          `json:"sameAs"`
}

type jsonLDPlace struct {
	Address struct {
		Locality string          `json:"addressLocality"`
		Region   string          `json:"addressRegion"`
		Country  json.RawMessage `json:"addressCountry"`
	} `json:"address"`
}

func (p *jsonLDPosting) isJobPosting() bool {
	for _, t := range stringOrList(p.Type) {
		if t == "JobPosting" {
			return true
		}
	}
	return false
}

func (p *jsonLDPosting) plainDescription() string {
	return StripHTML(p.Description)
}

// location joins locality, region and country of the first job location.
func (p *jsonLDPosting) location() string {
	if len(p.JobLocation) == 0 {
		return ""
	}

	var places []jsonLDPlace
	if err := json.Unmarshal(p.JobLocation, &places); err != nil {
		var place jsonLDPlace
		if err := json.Unmarshal(p.JobLocation, &place); err != nil {
			return ""
		}
		places = []jsonLDPlace{place}
	}
	if len(places) == 0 {
		return ""
	}

	addr := places[0].Address
	var parts []string
	for _, v := range []string{addr.Locality, addr.Region} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	if country := nameOrString(addr.Country); country != "" {
		parts = append(parts, country)
	}

	loc := strings.Join(parts, ", ")
	if strings.EqualFold(p.JobLocationType, "TELECOMMUTE") && loc == "" {
		loc = "Remote"
	}
	return loc
}

func (p *jsonLDPosting) companyName() string {
	if p.HiringOrganization == nil {
		return ""
	}
	return p.HiringOrganization.Name
}

func (p *jsonLDPosting) companyLogo() string {
	if p.HiringOrganization == nil {
		return ""
	}
	var logo struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(p.HiringOrganization.Logo, &logo); err == nil && logo.URL != "" {
		return logo.URL
	}
	return rawString(p.HiringOrganization.Logo)
}

func (p *jsonLDPosting) companyWebsite() string {
	if p.HiringOrganization == nil {
		return ""
	}
	return p.HiringOrganization.SameAs
}

func (p *jsonLDPosting) industry() string {
	return strings.Join(stringOrList(p.Industry), ", ")
}

// findPosting looks through every ld+json script for a JobPosting, including
// top-level arrays and @graph containers.
func findPosting(doc *goquery.Document) *jsonLDPosting {
	var found *jsonLDPosting
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = postingFromJSON([]byte(s.Text()))
		return found == nil
	})
	return found
}

func postingFromJSON(data []byte) *jsonLDPosting {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if p := postingFromJSON(item); p != nil {
				return p
			}
		}
		return nil
	}

	var graph struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(data, &graph); err == nil && len(graph.Graph) > 0 {
		for _, item := range graph.Graph {
			if p := postingFromJSON(item); p != nil {
				return p
			}
		}
	}

	var p jsonLDPosting
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	if !p.isJobPosting() {
		return nil
	}
	return &p
}

// rawString returns a JSON string as is and a JSON number as its literal.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

func stringOrList(raw json.RawMessage) []string {
	if s := rawString(raw); s != "" {
		return []string{s}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	out := list[:0]
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nameOrString(raw json.RawMessage) string {
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err == nil && named.Name != "" {
		return strings.TrimSpace(named.Name)
	}
	return rawString(raw)
}
