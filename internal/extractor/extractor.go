// Package extractor pulls job posting fields out of LinkedIn pages and API
// payloads.
//
// Every field has an ordered chain of strategies (CSS selectors, attributes,
// page metadata, embedded JSON-LD). The first strategy producing a usable
// value wins. Fields no strategy can fill are left nil; defaults are applied
// later by the schema package.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkedin-job-tracker/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrMalformedDocument means the input could not be parsed as HTML or JSON at
// all. Missing fields are never an error.
var ErrMalformedDocument = errors.New("malformed document")

const (
	descriptionMinLen = 50
	fallbackMinLen    = 100

	NoDescription = "No description available"
)

// DescriptionFetcher asks the detail API for a description when the page
// itself does not carry one.
type DescriptionFetcher interface {
	FetchDescription(ctx context.Context, jobID string) (string, error)
}

type Extractor struct {
	descriptions DescriptionFetcher
	selectors    map[string][]string
	debugDir     string
	now          func() time.Time
	logger       *zap.Logger
}

type Option func(*Extractor)

func WithDescriptionFetcher(f DescriptionFetcher) Option {
	return func(e *Extractor) { e.descriptions = f }
}

// WithSelectors adds CSS selectors per field name ("Title", "Location", ...)
// that are tried before the built-in ones.
func WithSelectors(selectors map[string][]string) Option {
	return func(e *Extractor) { e.selectors = selectors }
}

// WithDebugDir writes every raw document to dir before extraction.
func WithDebugDir(dir string) Option {
	return func(e *Extractor) { e.debugDir = dir }
}

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func New(logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract sniffs body and dispatches to the JSON or HTML extractor.
func (e *Extractor) Extract(ctx context.Context, body []byte, detailURL string) (*models.RawJob, error) {
	e.dump(body, detailURL)

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, malformed("empty document", nil)
	}

	if trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
		return e.FromJSON(trimmed, detailURL)
	}

	return e.FromHTML(ctx, trimmed, detailURL)
}

// FromJSON handles both JSON-LD JobPosting objects and the vendor API shape.
func (e *Extractor) FromJSON(body []byte, detailURL string) (*models.RawJob, error) {
	if p := postingFromJSON(body); p != nil {
		e.logger.Debug("extracting from JSON-LD", zap.String("url", detailURL))
		return e.fromJSONLD(p, detailURL), nil
	}

	e.logger.Debug("extracting from API payload", zap.String("url", detailURL))
	return e.fromAPI(body, detailURL)
}

// FromHTML runs the field tables over an HTML page.
func (e *Extractor) FromHTML(ctx context.Context, body []byte, detailURL string) (*models.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, malformed("parse html", err)
	}

	now := e.now()
	raw := e.newRaw(detailURL, now)

	p := &page{
		doc:     doc,
		posting: findPosting(doc),
		jobID:   models.JobIDFromURL(detailURL),
	}

	if e.descriptions != nil && p.jobID != "" {
		p.remoteDescription = func() (string, bool) {
			desc, err := e.descriptions.FetchDescription(ctx, p.jobID)
			if err != nil {
				e.logger.Warn("detail API description failed",
					zap.String("job_id", p.jobID),
					zap.Error(err),
				)
				return "", false
			}
			return nonEmpty(StripHTML(desc))
		}
	}

	for _, f := range htmlFields {
		chain := e.withConfigured(f.name, f.chain)
		v, idx, ok := firstMatch(p, chain)
		if !ok {
			e.logger.Debug("field not found", zap.String("field", f.name), zap.String("url", detailURL))
			continue
		}
		e.logger.Debug("field extracted",
			zap.String("field", f.name),
			zap.Int("strategy", idx),
		)
		f.apply(raw, v, now)
	}

	for _, f := range htmlListFields {
		if v, _, ok := firstListMatch(p, f.chain); ok {
			f.apply(raw, v)
		}
	}

	if raw.CompanyApplyURL == nil && p.jobID != "" {
		setString(&raw.CompanyApplyURL, "https://www.linkedin.com/job-apply/"+p.jobID)
	}

	e.finish(raw)
	return raw, nil
}

func (e *Extractor) withConfigured(name string, chain []strategy) []strategy {
	extra := e.selectors[name]
	if len(extra) == 0 {
		return chain
	}

	out := make([]strategy, 0, len(extra)+len(chain))
	for _, sel := range extra {
		if name == fieldDescription {
			out = append(out, minLen(descriptionMinLen, text(sel)))
			continue
		}
		out = append(out, text(sel))
	}
	return append(out, chain...)
}

func (e *Extractor) newRaw(detailURL string, now time.Time) *models.RawJob {
	scraped := now
	return &models.RawJob{
		DetailURL: detailURL,
		JobState:  models.StringPtr("LISTED"),
		ScrapedAt: &scraped,
	}
}

// finish fills values derived from other fields.
func (e *Extractor) finish(raw *models.RawJob) {
	if raw.PosterID == nil && raw.CompanyName != nil {
		setString(&raw.PosterID, PosterIDFromCompany(*raw.CompanyName))
	}
}

func (e *Extractor) dump(body []byte, detailURL string) {
	if e.debugDir == "" {
		return
	}

	name := models.JobIDFromURL(detailURL)
	if name == "" {
		name = "document"
	}
	path := filepath.Join(e.debugDir, fmt.Sprintf("%s_%d.html", name, e.now().Unix()))

	if err := os.MkdirAll(e.debugDir, 0o755); err != nil {
		e.logger.Warn("failed to create debug dir", zap.String("dir", e.debugDir), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		e.logger.Warn("failed to write debug copy", zap.String("path", path), zap.Error(err))
	}
}

func malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", what, ErrMalformedDocument)
	}
	return fmt.Errorf("%s: %w: %v", what, ErrMalformedDocument, err)
}
