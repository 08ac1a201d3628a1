package handlers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage/jsonfile"
	"linkedin-job-tracker/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

// fakeContext implements the parts of tele.Context the handlers use.
type fakeContext struct {
	tele.Context

	args    []string
	payload string
	sent    []string
	replies []string
}

func (f *fakeContext) Args() []string { return f.args }

func (f *fakeContext) Message() *tele.Message { return &tele.Message{Payload: f.payload} }

func (f *fakeContext) Sender() *tele.User { return &tele.User{ID: 42, FirstName: "Ada"} }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func (f *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	f.replies = append(f.replies, fmt.Sprint(what))
	return nil
}

func newTestContext(t *testing.T, jobs ...*models.Job) (*Context, *jsonfile.Store) {
	t.Helper()

	store, err := jsonfile.New(t.TempDir(), "", zap.NewNop())
	require.NoError(t, err)
	for _, job := range jobs {
		require.NoError(t, store.Save(context.Background(), job))
	}

	clock := func() time.Time { return testNow }
	return &Context{
		Tracker: tracker.New(store, zap.NewNop(), tracker.WithClock(clock)),
		Logger:  zap.NewNop(),
		Now:     clock,
	}, store
}

func testJob(id, title string, score int) *models.Job {
	return &models.Job{
		Title:       title,
		DetailURL:   models.JobURL(id),
		CompanyName: "Acme",
		Location:    "Remote",
		CreatedAt:   testNow.AddDate(0, 0, -2),
		ScrapedAt:   testNow,
		Application: models.NewApplication(),
		Relevance:   &models.Relevance{Score: score},
	}
}

func TestParseStatusArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		id      string
		status  models.Status
		note    string
		wantErr error
	}{
		{name: "status only", args: []string{"1", "Applied"}, id: "1", status: models.StatusApplied},
		{name: "with note", args: []string{"1", "interview", "call", "on", "monday"}, id: "1", status: models.StatusInterview, note: "call on monday"},
		{name: "two word status", args: []string{"1", "Not", "Applied"}, id: "1", status: models.StatusNotApplied},
		{name: "two word status with note", args: []string{"1", "not", "applied", "reset"}, id: "1", status: models.StatusNotApplied, note: "reset"},
		{name: "compact status", args: []string{"1", "NotApplied"}, id: "1", status: models.StatusNotApplied},
		{name: "missing status", args: []string{"1"}, wantErr: errUsage},
		{name: "unknown status", args: []string{"1", "Hired"}, wantErr: errBadStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, status, note, err := parseStatusArgs(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.note, note)
		})
	}
}

func TestParseRemindArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		days    int
		wantErr bool
	}{
		{name: "default days", args: []string{"7"}, days: 7},
		{name: "explicit days", args: []string{"7", "3"}, days: 3},
		{name: "not a number", args: []string{"7", "soon"}, wantErr: true},
		{name: "zero days", args: []string{"7", "0"}, wantErr: true},
		{name: "no args", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, days, err := parseRemindArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "7", id)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestHandleStatus(t *testing.T) {
	ctx, store := newTestContext(t, testJob("10", "Angular Developer", 3))

	c := &fakeContext{args: []string{"10", "Applied", "via", "referral"}}
	require.NoError(t, HandleStatus(ctx)(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Angular Developer")

	job, err := store.Get(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, job.Application.Status)
	assert.Equal(t, "2026-05-04: via referral", job.Application.Notes)
	require.NotNil(t, job.Application.AppliedDate)
}

func TestHandleStatusErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		reply string
	}{
		{name: "usage", args: []string{"10"}, reply: "Usage: /status"},
		{name: "bad status", args: []string{"10", "Hired"}, reply: "Unknown status"},
		{name: "missing job", args: []string{"99", "Applied"}, reply: "Job 99 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, testJob("10", "Angular Developer", 3))

			c := &fakeContext{args: tt.args}
			require.NoError(t, HandleStatus(ctx)(c))

			require.Len(t, c.replies, 1)
			assert.Contains(t, c.replies[0], tt.reply)
			assert.Empty(t, c.sent)
		})
	}
}

func TestHandleNoteAndRemind(t *testing.T) {
	ctx, store := newTestContext(t, testJob("10", "Angular Developer", 3))

	note := &fakeContext{args: []string{"10", "recruiter", "called"}}
	require.NoError(t, HandleNote(ctx)(note))
	assert.Equal(t, []string{"📝 Note added to 10"}, note.replies)

	remind := &fakeContext{args: []string{"10", "3"}}
	require.NoError(t, HandleRemind(ctx)(remind))
	require.Len(t, remind.sent, 1)
	assert.Contains(t, remind.sent[0], "2026\\-05\\-07")

	job, err := store.Get(context.Background(), "10")
	require.NoError(t, err)
	require.NotNil(t, job.Application.FollowUpDate)
	assert.Equal(t, "2026-05-07", job.Application.FollowUpDate.Format("2006-01-02"))
	assert.Contains(t, job.Application.Notes, "2026-05-04: recruiter called")
}

func TestHandleJobs(t *testing.T) {
	ctx, _ := newTestContext(t,
		testJob("1", "Backend Developer", 0),
		testJob("2", "Angular Developer", 4),
	)

	c := &fakeContext{}
	require.NoError(t, HandleJobs(ctx)(c))

	require.Len(t, c.sent, 1)
	out := c.sent[0]
	assert.Contains(t, out, "*Jobs tracked:* 2")
	assert.Less(t, strings.Index(out, "Angular Developer"), strings.Index(out, "Backend Developer"))
}

func TestHandleJobsByStatus(t *testing.T) {
	applied := testJob("2", "Angular Developer", 4)
	applied.Application.Status = models.StatusApplied
	ctx, _ := newTestContext(t, testJob("1", "Backend Developer", 0), applied)

	c := &fakeContext{payload: "applied"}
	require.NoError(t, HandleJobs(ctx)(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Angular Developer")
	assert.NotContains(t, c.sent[0], "Backend Developer")
}

func TestHandleJobsEmpty(t *testing.T) {
	ctx, _ := newTestContext(t)

	c := &fakeContext{}
	require.NoError(t, HandleJobs(ctx)(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "No jobs tracked yet")
}

func TestHandleFollowUpsAndStats(t *testing.T) {
	job := testJob("10", "Angular Developer", 3)
	due := testNow.AddDate(0, 0, -1)
	job.Application.Status = models.StatusApplied
	job.Application.FollowUpDate = &due
	ctx, _ := newTestContext(t, job)

	c := &fakeContext{}
	require.NoError(t, HandleFollowUps(ctx)(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "*Follow\\-ups due:* 1")

	c = &fakeContext{}
	require.NoError(t, HandleStats(ctx)(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Applied: 1")
}
