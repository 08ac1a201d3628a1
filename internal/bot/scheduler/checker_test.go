package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/scraper"
	"linkedin-job-tracker/internal/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type fakeScraper struct {
	result     *scraper.Result
	scrapeErr  error
	persistErr error
	persisted  int
}

func (f *fakeScraper) ScrapeSearch(context.Context, string) (*scraper.Result, error) {
	return f.result, f.scrapeErr
}

func (f *fakeScraper) Persist(context.Context, *scraper.Result) error {
	f.persisted++
	return f.persistErr
}

type fakeSender struct {
	messages []string
	failOn   string
}

func (f *fakeSender) Send(_ tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	msg := fmt.Sprint(what)
	if f.failOn != "" && strings.Contains(msg, f.failOn) {
		return nil, errors.New("telegram unavailable")
	}
	f.messages = append(f.messages, msg)
	return &tele.Message{}, nil
}

func job(id, title string, score int) *models.Job {
	return &models.Job{
		Title:       title,
		DetailURL:   models.JobURL(id),
		CompanyName: "Acme",
		Location:    "Remote",
		CreatedAt:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Application: models.NewApplication(),
		Relevance:   &models.Relevance{Score: score},
	}
}

func newChecker(sender Sender, s Scraper, seen SeenStore) *JobChecker {
	jc := New(sender, s, seen, Options{
		ChatID:       100,
		SearchURL:    "https://www.linkedin.com/jobs/search?keywords=angular",
		Interval:     time.Hour,
		MinRelevance: 3,
	}, zap.NewNop())
	jc.pause = 0
	return jc
}

func TestCheckNotifiesUnseenRelevantJobs(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := redis.New(mr.Addr(), "", 0, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	stores := map[string]SeenStore{
		"memory": NewMemorySeen(),
		"redis":  cache,
	}

	for name, seen := range stores {
		t.Run(name, func(t *testing.T) {
			s := &fakeScraper{result: &scraper.Result{
				RunID: "run-1",
				Valid: []*models.Job{
					job("1", "Angular Developer", 4),
					job("2", "Java Developer", 1),
					job("3", "React Developer", 3),
				},
			}}
			sender := &fakeSender{}
			jc := newChecker(sender, s, seen)

			require.NoError(t, jc.Check(context.Background()))

			require.Len(t, sender.messages, 3)
			assert.Contains(t, sender.messages[0], "Found 2 new matching postings")
			assert.Contains(t, sender.messages[1], "Angular Developer")
			assert.Contains(t, sender.messages[2], "React Developer")
			assert.Equal(t, 1, s.persisted)

			sender.messages = nil
			require.NoError(t, jc.Check(context.Background()))
			assert.Empty(t, sender.messages, "jobs already sent are not repeated")
		})
	}
}

func TestCheckFailedJobIsRetried(t *testing.T) {
	seen := NewMemorySeen()
	s := &fakeScraper{result: &scraper.Result{
		Valid: []*models.Job{job("1", "Angular Developer", 4), job("3", "React Developer", 3)},
	}}
	sender := &fakeSender{failOn: "React Developer"}

	require.NoError(t, newChecker(sender, s, seen).Check(context.Background()))

	unseen, err := seen.Unseen(context.Background(), 100, []string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, unseen)
}

func TestCheckErrors(t *testing.T) {
	t.Run("scrape fails", func(t *testing.T) {
		s := &fakeScraper{scrapeErr: errors.New("forbidden")}
		err := newChecker(&fakeSender{}, s, NewMemorySeen()).Check(context.Background())
		assert.ErrorContains(t, err, "scrape search")
		assert.Equal(t, 0, s.persisted)
	})

	t.Run("persist fails", func(t *testing.T) {
		sender := &fakeSender{}
		s := &fakeScraper{
			result:     &scraper.Result{Valid: []*models.Job{job("1", "Angular Developer", 4)}},
			persistErr: errors.New("disk full"),
		}
		err := newChecker(sender, s, NewMemorySeen()).Check(context.Background())
		assert.ErrorContains(t, err, "persist batch")
		assert.Empty(t, sender.messages)
	})

	t.Run("summary fails", func(t *testing.T) {
		seen := NewMemorySeen()
		s := &fakeScraper{result: &scraper.Result{Valid: []*models.Job{job("1", "Angular Developer", 4)}}}
		err := newChecker(&fakeSender{failOn: "New jobs"}, s, seen).Check(context.Background())
		assert.ErrorContains(t, err, "send summary")

		unseen, _ := seen.Unseen(context.Background(), 100, []string{"1"})
		assert.Equal(t, []string{"1"}, unseen)
	})
}

func TestCheckPartialBatch(t *testing.T) {
	sender := &fakeSender{}
	s := &fakeScraper{
		result:    &scraper.Result{Valid: []*models.Job{job("1", "Angular Developer", 4)}},
		scrapeErr: context.DeadlineExceeded,
	}

	require.NoError(t, newChecker(sender, s, NewMemorySeen()).Check(context.Background()))
	assert.Equal(t, 1, s.persisted)
	assert.Len(t, sender.messages, 2)
}

func TestStartStopsOnCancel(t *testing.T) {
	jc := newChecker(&fakeSender{}, &fakeScraper{}, NewMemorySeen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		jc.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checker did not stop")
	}
}

func TestMemorySeen(t *testing.T) {
	m := NewMemorySeen()
	ctx := context.Background()

	require.NoError(t, m.MarkSeen(ctx, 1, "a", "b"))

	unseen, err := m.Unseen(ctx, 1, []string{"a", "c", "b", "d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, unseen)

	unseen, err = m.Unseen(ctx, 2, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, unseen, "chats are tracked separately")
}
