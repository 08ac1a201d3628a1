package schema

import (
	"encoding/json"
	"testing"
	"time"

	"linkedin-job-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(func() time.Time { return testNow })
}

func TestNormalizeDefaults(t *testing.T) {
	job := newTestNormalizer().Normalize(&models.RawJob{
		DetailURL: "https://www.linkedin.com/jobs/view/123/",
		Title:     models.StringPtr("   "),
		Industry:  models.StringPtr(""),
		Skill:     []string{" ", ""},
	})

	assert.Equal(t, DefaultTitle, job.Title)
	assert.Equal(t, "No description available", job.Description)
	assert.Equal(t, DefaultLocation, job.Location)
	assert.Equal(t, DefaultCompany, job.CompanyName)
	assert.Equal(t, DefaultPosterID, job.PosterID)
	assert.Equal(t, DefaultCompanyLogo, job.CompanyLogo)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/123/", job.CompanyApplyURL)
	assert.Equal(t, DefaultWebsite, job.CompanyWebsite)
	assert.Equal(t, DefaultJobState, models.StringValue(job.JobState))
	assert.Nil(t, job.Industry)
	assert.Nil(t, job.CompanyDescription)
	assert.Nil(t, job.Skill)
	assert.Nil(t, job.Insight)
	assert.Nil(t, job.Specialties)
	assert.Equal(t, testNow.Add(-30*24*time.Hour), job.CreatedAt)
	assert.Equal(t, testNow, job.ScrapedAt)
	assert.Equal(t, "Untitled Job at Unknown Company · Remote", job.PrimaryDescription)
}

func TestNormalizeKeepsValues(t *testing.T) {
	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	job := newTestNormalizer().Normalize(&models.RawJob{
		DetailURL:      "https://www.linkedin.com/jobs/view/123/",
		Title:          models.StringPtr("Angular Developer"),
		Description:    models.StringPtr("Join our team. We build things."),
		Location:       models.StringPtr("Milan, Italy"),
		CompanyName:    models.StringPtr("Acme Corp"),
		CreatedAt:      &created,
		Specialties:    "Web Development, UI/UX; Mobile Apps",
		EmployeeCount:  3000,
		CompanyFounded: "1998",
	})

	assert.Equal(t, "Angular Developer", job.Title)
	assert.Equal(t, created, job.CreatedAt)
	assert.Equal(t, []string{"Web Development", "UI/UX", "Mobile Apps"}, job.Specialties)
	require.NotNil(t, job.EmployeeCount)
	assert.Equal(t, 3000, *job.EmployeeCount)
	require.NotNil(t, job.CompanyFounded)
	assert.Equal(t, 1998, *job.CompanyFounded)
	assert.Equal(t, "Angular Developer at Acme Corp · Milan, Italy · Join our team.", job.PrimaryDescription)
}

func TestList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty string", in: "", want: nil},
		{name: "delimited", in: "a, b;c", want: []string{"a", "b", "c"}},
		{name: "only separators", in: " , ; ", want: nil},
		{name: "string list", in: []string{" a ", "", "b"}, want: []string{"a", "b"}},
		{name: "decoded json list", in: []any{"a", 1.0, " b"}, want: []string{"a", "b"}},
		{name: "empty list", in: []string{}, want: nil},
		{name: "unsupported", in: 42, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, List(tt.in))
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *int
	}{
		{name: "int", in: 7, want: models.IntPtr(7)},
		{name: "whole float", in: 5000.0, want: models.IntPtr(5000)},
		{name: "fractional float", in: 1.5, want: nil},
		{name: "numeric string", in: " 2001 ", want: models.IntPtr(2001)},
		{name: "float string", in: "250.0", want: models.IntPtr(250)},
		{name: "json number", in: json.Number("12"), want: models.IntPtr(12)},
		{name: "garbage", in: "many", want: nil},
		{name: "nil", in: nil, want: nil},
		{name: "bool", in: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in))
		})
	}
}

func TestNormalizeLegacyRecordFile(t *testing.T) {
	data := []byte(`{
  "Title": "Dev",
  "Detail URL": "https://www.linkedin.com/jobs/view/9/",
  "Skill": "Go, SQL",
  "Specialties": [],
  "Employee Count": "120",
  "Company Founded": 1999.0,
  "Created At": "2023-01-01T00:00:00Z"
}`)

	var raw models.RawJob
	require.NoError(t, json.Unmarshal(data, &raw))

	job := newTestNormalizer().Normalize(&raw)

	assert.Equal(t, []string{"Go", "SQL"}, job.Skill)
	assert.Nil(t, job.Specialties)
	assert.Equal(t, 120, *job.EmployeeCount)
	assert.Equal(t, 1999, *job.CompanyFounded)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), job.CreatedAt)
}

func TestValidate(t *testing.T) {
	v := NewValidator(zap.NewNop())
	n := newTestNormalizer()

	valid := func() *models.Job {
		return n.Normalize(&models.RawJob{
			DetailURL:   "https://www.linkedin.com/jobs/view/123/",
			Title:       models.StringPtr("Dev"),
			CompanyName: models.StringPtr("Acme Corp"),
		})
	}

	t.Run("missing company description is fine", func(t *testing.T) {
		job := valid()
		require.Nil(t, job.CompanyDescription)
		assert.True(t, v.Validate(job))
		assert.Empty(t, v.ValidateErrors(job))
	})

	t.Run("missing title fails until defaulted", func(t *testing.T) {
		job := valid()
		job.Title = ""
		assert.False(t, v.Validate(job))

		errs := v.ValidateErrors(job)
		require.Len(t, errs, 1)
		assert.Equal(t, "Title", errs[0].Field)
		assert.Equal(t, "required", errs[0].Tag)

		defaulted := n.Normalize(&models.RawJob{DetailURL: job.DetailURL})
		assert.True(t, v.Validate(defaulted))
	})

	t.Run("empty list is rejected", func(t *testing.T) {
		job := valid()
		job.Skill = []string{}

		errs := v.ValidateErrors(job)
		require.Len(t, errs, 1)
		assert.Equal(t, "Skill", errs[0].Field)
		assert.Equal(t, "nilornonempty", errs[0].Tag)
	})

	t.Run("zero timestamps are rejected", func(t *testing.T) {
		job := valid()
		job.CreatedAt = time.Time{}

		errs := v.ValidateErrors(job)
		require.Len(t, errs, 1)
		assert.Equal(t, "Created At", errs[0].Field)
	})

	t.Run("founded year out of range", func(t *testing.T) {
		job := valid()
		job.CompanyFounded = models.IntPtr(12)

		errs := v.ValidateErrors(job)
		require.Len(t, errs, 1)
		assert.Equal(t, "Company Founded", errs[0].Field)
	})

	t.Run("nil job", func(t *testing.T) {
		assert.NotEmpty(t, v.ValidateErrors(nil))
	})
}

func TestNewValidatorListRule(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = NewValidator(zap.NewNop()) })

	job := newTestNormalizer().Normalize(&models.RawJob{DetailURL: "https://www.linkedin.com/jobs/view/9/"})
	require.Nil(t, job.Skill)
	assert.Empty(t, v.ValidateErrors(job))
}
