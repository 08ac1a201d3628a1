package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JobRow is the jobs table layout. The full record lives in Record; the other
// columns are copies used for listing and filtering.
type JobRow struct {
	ID         string     `db:"id"`
	Title      string     `db:"title"`
	Company    string     `db:"company"`
	Location   string     `db:"location"`
	DetailURL  string     `db:"detail_url"`
	Status     string     `db:"status"`
	Relevance  int        `db:"relevance"`
	PostedAt   time.Time  `db:"posted_at"`
	AppliedAt  *time.Time `db:"applied_at"`
	FollowUpAt *time.Time `db:"follow_up_at"`
	Record     RawJSON    `db:"record"`
	ScrapedAt  time.Time  `db:"scraped_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// NewJobRow flattens job for storage.
func NewJobRow(job *Job) (*JobRow, error) {
	record, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job record: %w", err)
	}

	row := &JobRow{
		ID:        job.ID(),
		Title:     job.Title,
		Company:   job.CompanyName,
		Location:  job.Location,
		DetailURL: job.DetailURL,
		Status:    string(StatusNotApplied),
		PostedAt:  job.CreatedAt,
		Record:    RawJSON(record),
		ScrapedAt: job.ScrapedAt,
	}

	if job.Application != nil {
		row.Status = string(job.Application.Status)
		row.AppliedAt = job.Application.AppliedDate
		row.FollowUpAt = job.Application.FollowUpDate
	}

	if job.Relevance != nil {
		row.Relevance = job.Relevance.Score
	}

	return row, nil
}

// Job decodes the stored record.
func (r *JobRow) Job() (*Job, error) {
	var job Job
	if err := json.Unmarshal(r.Record, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job record %s: %w", r.ID, err)
	}
	return &job, nil
}

type RawJSON json.RawMessage

func (r RawJSON) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return []byte(r), nil
}

func (r *RawJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*r = append(RawJSON(nil), v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("unsupported record type %T", value)
	}

	return nil
}
