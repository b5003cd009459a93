package association

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/telemetry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clearContentPersonas = "DELETE FROM `content_personas` WHERE `content_id` = ?"
	linkContentPersonas  = "INSERT INTO `content_personas` (`content_id`,`persona_id`) VALUES "
)

func newSynchronizer(t *testing.T) (*Synchronizer, sqlmock.Sqlmock, func()) {
	db, mock, cleanup := setupTestDB(t)
	return NewSynchronizer(db, NewResolver(db, nil), nil), mock, cleanup
}

func TestSynchronizer_ReplacesLinks(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(clearContentPersonas)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(linkContentPersonas+"(?,?),(?,?)")).
		WithArgs(10, 2, 10, 3).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.Sync(context.Background(), ContentPersonas, 10, []Target{ID(2), ID(3), ID(2)})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_EmptyTargetsDetachTwice(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(clearContentPersonas)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(clearContentPersonas)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Sync(context.Background(), ContentPersonas, 10, nil))
	require.NoError(t, s.Sync(context.Background(), ContentPersonas, 10, []Target{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_ResolvesLabels(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectPlatform)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "TikTok"))
	mock.ExpectQuery(regexp.QuoteMeta(selectPlatform)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "TikTok"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `content_platforms` WHERE `content_id` = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `content_platforms` (`content_id`,`platform_id`) VALUES (?,?),(?,?)")).
		WithArgs(1, 4, 1, 6).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.Sync(context.Background(), ContentPlatforms, 1, []Target{Label("TikTok"), ID(6), Label("TikTok")})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_RejectsLabelsForIDRelation(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	err := s.Sync(context.Background(), ContentPersonas, 1, []Target{Label("Gen Z")})

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_InsertFailureLeavesOwnerUnderLinked(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	metrics := telemetry.New(prometheus.NewRegistry())
	s := NewSynchronizer(db, NewResolver(db, metrics), metrics)

	mock.ExpectExec(regexp.QuoteMeta(clearContentPersonas)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(linkContentPersonas)).
		WillReturnError(errors.New("lock wait timeout"))

	err := s.Sync(context.Background(), ContentPersonas, 10, []Target{ID(2)})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AssociationSyncs.WithLabelValues("content_personas", "error")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_ClearRelated(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `content_personas` WHERE `persona_id` = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, s.ClearRelated(context.Background(), nil, ContentPersonas, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_Links(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM content_platforms AS j JOIN platforms AS r ON r.id = j.platform_id WHERE j.content_id IN (?,?) ORDER BY j.id ASC")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "id", "name"}).
			AddRow(1, 4, "TikTok").
			AddRow(2, 6, "Instagram").
			AddRow(1, 6, "Instagram"))

	links, err := s.Links(context.Background(), ContentPlatforms, []int64{1, 2})

	require.NoError(t, err)
	assert.Equal(t, []dbmysql.NamedRef{{ID: 4, Name: "TikTok"}, {ID: 6, Name: "Instagram"}}, links[1])
	assert.Equal(t, []dbmysql.NamedRef{{ID: 6, Name: "Instagram"}}, links[2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynchronizer_LinksNoOwners(t *testing.T) {
	s, mock, cleanup := newSynchronizer(t)
	defer cleanup()

	links, err := s.Links(context.Background(), ContentPersonas, nil)

	require.NoError(t, err)
	assert.Empty(t, links)
	assert.NoError(t, mock.ExpectationsWereMet())
}
