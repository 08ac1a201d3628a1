package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var errNoDescription = errors.New("no description in response")

// FetchDescription returns the raw description of a posting from the guest
// API, HTML included. It is the extractor's last resort before generic page
// scanning. When the posting endpoint was just asked for the same job, its
// answer (or failure) is reused without another request.
func (c *Client) FetchDescription(ctx context.Context, jobID string) (string, error) {
	var (
		data []byte
		err  error
	)
	if last, ok := c.recall(jobID); ok {
		data, err = last.body, last.err
	} else {
		data, err = c.FetchJobPosting(ctx, jobID)
	}
	if err != nil {
		return "", err
	}

	desc := descriptionFromPayload(data)
	if desc == "" {
		return "", fmt.Errorf("job %s: %w", jobID, errNoDescription)
	}
	return desc, nil
}

func descriptionFromPayload(data []byte) string {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload struct {
			Description json.RawMessage `json:"description"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return ""
		}

		var s string
		if err := json.Unmarshal(payload.Description, &s); err == nil {
			return strings.TrimSpace(s)
		}

		var wrapped struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(payload.Description, &wrapped); err == nil {
			return strings.TrimSpace(wrapped.Text)
		}
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}

	sel := doc.Find("div.show-more-less-html__markup, div.description__text").First()
	if sel.Length() == 0 {
		return ""
	}
	html, err := sel.Html()
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}
	return strings.TrimSpace(html)
}
