package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositorySnapshot(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewStatsRepository(sqlx.NewDb(db, "sqlmock"))
	rows := sqlmock.NewRows([]string{"total_seafarers", "seafarers_onboard", "total_agents", "pending_verifications", "pending_requests"}).
		AddRow(42, 7, 5, 3, 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("seafarer", "Onboard", "agent", "Pending", "pending").
		WillReturnRows(rows)

	stats, err := repo.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, stats.TotalSeafarers)
	require.Equal(t, 7, stats.SeafarersOnboard)
	require.Equal(t, 5, stats.TotalAgents)
	require.Equal(t, 3, stats.PendingVerifications)
	require.Equal(t, 2, stats.PendingRequests)
	require.NoError(t, mock.ExpectationsWereMet())
}
