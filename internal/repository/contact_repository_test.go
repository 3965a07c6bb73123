package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
)

func newContactRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestContactRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contact_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ContactRequest{RequesterID: "agent-1", SeafarerID: "seafarer-1"}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.Equal(t, models.RequestPending, request.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contact_requests")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.ContactRequest{RequesterID: "agent-1", SeafarerID: "seafarer-1"})
	require.ErrorIs(t, err, appErrors.ErrDuplicateRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryExistsPending(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("agent-1", "seafarer-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsPending(context.Background(), "agent-1", "seafarer-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryReview(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "requester_id", "seafarer_id", "status", "reviewed_by", "created_at", "reviewed_at"}).
		AddRow("req-1", "agent-1", "seafarer-1", "approved", "admin-1", now.Add(-time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE contact_requests SET status")).
		WithArgs("req-1", "approved", "admin-1", now, "pending").
		WillReturnRows(rows)

	request, err := repo.Review(context.Background(), ReviewParams{
		RequestID:  "req-1",
		Outcome:    models.RequestApproved,
		ReviewedBy: "admin-1",
		ReviewedAt: now,
	})
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, request.Status)
	require.NotNil(t, request.ReviewedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryReviewAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE contact_requests SET status")).
		WithArgs("req-1", "rejected", "admin-1", now, "pending").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM contact_requests")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))

	_, err := repo.Review(context.Background(), ReviewParams{
		RequestID:  "req-1",
		Outcome:    models.RequestRejected,
		ReviewedBy: "admin-1",
		ReviewedAt: now,
	})
	require.ErrorIs(t, err, appErrors.ErrAlreadyDecided)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepositoryReviewNotFound(t *testing.T) {
	db, mock, cleanup := newContactRepoMock(t)
	defer cleanup()

	repo := NewContactRepository(db)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE contact_requests SET status")).
		WithArgs("missing", "approved", "admin-1", now, "pending").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM contact_requests")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Review(context.Background(), ReviewParams{
		RequestID:  "missing",
		Outcome:    models.RequestApproved,
		ReviewedBy: "admin-1",
		ReviewedAt: now,
	})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
