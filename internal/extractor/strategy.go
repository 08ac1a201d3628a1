package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// page is everything a strategy may look at for one document.
type page struct {
	doc     *goquery.Document
	posting *jsonLDPosting
	jobID   string

	// remoteDescription asks the detail API; nil when no fetcher is set.
	remoteDescription func() (string, bool)
}

// strategy is one way of finding a field value. A strategy reports false when
// it found nothing usable, and the next one in the chain is tried.
type strategy func(p *page) (string, bool)

// listStrategy is the same for list-valued fields.
type listStrategy func(p *page) ([]string, bool)

// firstMatch runs chain in order and returns the first hit with its position.
func firstMatch(p *page, chain []strategy) (string, int, bool) {
	for i, s := range chain {
		if v, ok := s(p); ok {
			return v, i, true
		}
	}
	return "", -1, false
}

func firstListMatch(p *page, chain []listStrategy) ([]string, int, bool) {
	for i, s := range chain {
		if v, ok := s(p); ok {
			return v, i, true
		}
	}
	return nil, -1, false
}

func nonEmpty(s string) (string, bool) {
	s = cleanText(s)
	return s, s != ""
}

// text selects the first element matching selector and returns its text.
func text(selector string) strategy {
	return func(p *page) (string, bool) {
		return nonEmpty(p.doc.Find(selector).First().Text())
	}
}

// attr returns the first non-empty attribute among attrs on the first element
// matching selector.
func attr(selector string, attrs ...string) strategy {
	return func(p *page) (string, bool) {
		sel := p.doc.Find(selector).First()
		for _, a := range attrs {
			if v, ok := sel.Attr(a); ok {
				if v, ok := nonEmpty(v); ok {
					return v, true
				}
			}
		}
		return "", false
	}
}

// minLen accepts the inner strategy's value only when it is longer than n
// characters. Short hits are usually UI chrome rather than content.
func minLen(n int, inner strategy) strategy {
	return func(p *page) (string, bool) {
		v, ok := inner(p)
		if !ok || len([]rune(v)) <= n {
			return "", false
		}
		return v, true
	}
}

// cleaned post-processes a hit with fn and drops it if nothing is left.
func cleaned(fn func(string) string, inner strategy) strategy {
	return func(p *page) (string, bool) {
		v, ok := inner(p)
		if !ok {
			return "", false
		}
		return nonEmpty(fn(v))
	}
}

// fromPosting reads a value from the embedded JSON-LD posting, if any.
func fromPosting(get func(*jsonLDPosting) string) strategy {
	return func(p *page) (string, bool) {
		if p.posting == nil {
			return "", false
		}
		return nonEmpty(get(p.posting))
	}
}

func literal(v string) strategy {
	return func(*page) (string, bool) {
		return v, true
	}
}

// urnDigits reads the trailing number of a data-entity-urn style attribute.
func urnDigits(selector, name string) strategy {
	return func(p *page) (string, bool) {
		v, ok := p.doc.Find(selector).First().Attr(name)
		if !ok {
			return "", false
		}
		return urnID(v)
	}
}

// remoteDescription consults the detail API.
func remoteDescription(p *page) (string, bool) {
	if p.remoteDescription == nil {
		return "", false
	}
	return p.remoteDescription()
}

// containersMatching concatenates the text of outermost elements whose class
// contains any of the given fragments, accepting the result above n chars.
func containersMatching(n int, fragments ...string) strategy {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = "[class*='" + f + "']"
	}
	query := strings.Join(parts, ", ")

	return func(p *page) (string, bool) {
		var texts []string
		p.doc.Find(query).
			FilterFunction(func(_ int, s *goquery.Selection) bool {
				return s.ParentsFiltered(query).Length() == 0
			}).
			Each(func(_ int, s *goquery.Selection) {
				if t := cleanText(s.Text()); t != "" {
					texts = append(texts, t)
				}
			})

		joined := strings.Join(texts, " ")
		if len([]rune(joined)) <= n {
			return "", false
		}
		return joined, true
	}
}

// showMoreParent finds a "show more" control and returns its parent's text
// when it is longer than n characters.
func showMoreParent(n int) strategy {
	return func(p *page) (string, bool) {
		var found string
		p.doc.Find("button, a, [aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			label, _ := s.Attr("aria-label")
			cls, _ := s.Attr("class")
			hay := strings.ToLower(s.Text() + " " + label + " " + cls)
			if !strings.Contains(hay, "show more") && !strings.Contains(hay, "show-more") && !strings.Contains(hay, "mostra") {
				return true
			}

			t := cleanText(s.Parent().Text())
			if len([]rune(t)) > n {
				found = t
				return false
			}
			return true
		})
		return found, found != ""
	}
}

// detailItem returns the text of the first company-detail or criteria item
// mentioning keyword.
func detailItem(keyword string) strategy {
	return func(p *page) (string, bool) {
		var found string
		p.doc.Find("dd.top-card-layout__card-elements, dd.org-page-details__definition-text, li.description__job-criteria-item").
			EachWithBreak(func(_ int, s *goquery.Selection) bool {
				t := cleanText(s.Text())
				if strings.Contains(strings.ToLower(t), keyword) {
					found = t
					return false
				}
				return true
			})
		return found, found != ""
	}
}

// criterion reads the value of a job-criteria entry whose subheader contains
// header, e.g. "Industries".
func criterion(header string) strategy {
	return func(p *page) (string, bool) {
		var found string
		p.doc.Find("li.description__job-criteria-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			h := strings.ToLower(s.Find("h3").Text())
			if !strings.Contains(h, header) {
				return true
			}
			found = cleanText(s.Find("span").First().Text())
			return found == ""
		})
		return found, found != ""
	}
}

// texts collects every non-empty text matching selector.
func texts(selector string) listStrategy {
	return func(p *page) ([]string, bool) {
		var out []string
		p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if t := cleanText(s.Text()); t != "" {
				out = append(out, t)
			}
		})
		return out, len(out) > 0
	}
}

// criteriaPairs renders job-criteria entries as "Header: value".
func criteriaPairs(p *page) ([]string, bool) {
	var out []string
	p.doc.Find("li.description__job-criteria-item").Each(func(_ int, s *goquery.Selection) {
		h := cleanText(s.Find("h3").Text())
		v := cleanText(s.Find("span").First().Text())
		switch {
		case h != "" && v != "":
			out = append(out, h+": "+v)
		case v != "":
			out = append(out, v)
		}
	})
	return out, len(out) > 0
}
