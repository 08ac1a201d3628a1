package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"linkedin-job-tracker/internal/models"
	"linkedin-job-tracker/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gocraft/dbr/v2"
	"github.com/gocraft/dbr/v2/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var jobColumns = []string{
	"id", "title", "company", "location", "detail_url", "status", "relevance",
	"posted_at", "applied_at", "follow_up_at", "record", "scraped_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := &dbr.Connection{
		DB:            db,
		Dialect:       dialect.PostgreSQL,
		EventReceiver: &dbr.NullEventReceiver{},
	}

	store := NewWithConnection(conn, zap.NewNop())
	store.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }
	return store, mock
}

func testJob(id string) *models.Job {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	app := models.NewApplication()
	app.Status = models.StatusApplied
	app.AppliedDate = models.TimePtr(created.Add(24 * time.Hour))

	return &models.Job{
		Title:       "Go Developer",
		Description: "Build services.",
		DetailURL:   "https://www.linkedin.com/jobs/view/" + id + "/",
		Location:    "Milan",
		CompanyName: "Acme Corp",
		PosterID:    "5247100",
		CreatedAt:   created,
		ScrapedAt:   created,
		Application: app,
		Relevance:   &models.Relevance{Score: 3, Keywords: []string{"go"}},
	}
}

func jobRow(t *testing.T, job *models.Job) []driver.Value {
	t.Helper()

	record, err := json.Marshal(job)
	require.NoError(t, err)

	return []driver.Value{
		job.ID(), job.Title, job.CompanyName, job.Location, job.DetailURL,
		string(job.Application.Status), job.Relevance.Score,
		job.CreatedAt, *job.Application.AppliedDate, nil, record, job.ScrapedAt, job.ScrapedAt,
	}
}

func TestSave(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`(?s)INSERT INTO jobs .* ON CONFLICT \(id\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), testJob("101")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWithoutID(t *testing.T) {
	store, mock := newMockStore(t)

	job := testJob("101")
	job.DetailURL = "https://example.com/careers"

	assert.Error(t, store.Save(context.Background(), job))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO jobs`).WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), testJob("101"))
	assert.ErrorContains(t, err, "save job")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAll(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.SaveAll(context.Background(), []*models.Job{testJob("1"), testJob("2")}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO jobs`).WillReturnError(errors.New("constraint"))
		mock.ExpectRollback()

		assert.Error(t, store.SaveAll(context.Background(), []*models.Job{testJob("1"), testJob("2")}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGet(t *testing.T) {
	store, mock := newMockStore(t)
	job := testJob("101")

	mock.ExpectQuery(`SELECT \* FROM jobs WHERE .*id = '101'`).
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(jobRow(t, job)...))

	got, err := store.Get(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", got.Title)
	assert.Equal(t, models.StatusApplied, got.Application.Status)
	assert.Equal(t, 3, got.Relevance.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM jobs`).WillReturnRows(sqlmock.NewRows(jobColumns))

	_, err := store.Get(context.Background(), "404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFind(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM jobs WHERE .*status = 'Applied'.*company ILIKE '%acme%'.*relevance >= 3.*ORDER BY relevance DESC`).
		WillReturnRows(sqlmock.NewRows(jobColumns).
			AddRow(jobRow(t, testJob("1"))...).
			AddRow(jobRow(t, testJob("2"))...))

	jobs, err := store.Find(context.Background(), models.JobFilter{
		Status:       models.StatusApplied,
		Company:      "acme",
		MinRelevance: 3,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "1", jobs[0].ID())
	assert.Equal(t, "2", jobs[1].ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM jobs ORDER BY`).WillReturnRows(sqlmock.NewRows(jobColumns))

	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM jobs`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "1"))
	assert.ErrorIs(t, store.Delete(context.Background(), "2"), storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeen(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO seen_jobs`).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, store.MarkSeen(ctx, 42, "1", "2"))

	mock.ExpectQuery(`SELECT job_id FROM seen_jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow("2"))

	unseen, err := store.Unseen(ctx, 42, []string{"3", "2", "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, unseen)

	require.NoError(t, store.MarkSeen(ctx, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS jobs`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
