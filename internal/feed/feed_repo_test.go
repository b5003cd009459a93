package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"personafeed/internal/association"
	"personafeed/internal/common"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	feedQuery = `FROM content AS c JOIN content_personas AS cp ON cp\.content_id = c\.id ` +
		`LEFT JOIN users AS u ON u\.user_id = c\.author_id ` +
		`WHERE .*cp\.persona_id = \? AND c\.company_id = \?.*ORDER BY c\.publish_date DESC, c\.id DESC`
	platformsQuery = `FROM content_platforms AS j JOIN platforms AS r ON r\.id = j\.platform_id`
	personasQuery  = `FROM content_personas AS cp JOIN personas AS p ON p\.id = cp\.persona_id`
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, func() { db.Close() }
}

func newRepo(db *gorm.DB) *FeedRepository {
	return NewFeedRepository(db, association.NewSynchronizer(db, association.NewResolver(db, nil), nil), nil)
}

func TestFeedRepository_OrderedAndHydrated(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(feedQuery).
		WithArgs(5, 9, "published").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "company_id", "publish_date", "author_name"}).
			AddRow(2, "C2", "published", 9, day3, "maya").
			AddRow(1, "C1", "published", 9, day1, nil))
	mock.ExpectQuery(platformsQuery).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "id", "name"}).
			AddRow(2, 4, "TikTok").
			AddRow(2, 6, "Instagram"))
	mock.ExpectQuery(personasQuery).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"content_id", "id", "name", "is_active", "company_id"}).
			AddRow(2, 5, "Gen Z", true, 9).
			AddRow(1, 5, "Gen Z", true, 9).
			AddRow(1, 8, "Parents", true, 9))

	rows, err := newRepo(db).GetByPersonaAndCompany(context.Background(), 5, 9, FeedOptions{PublishedOnly: true})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "C2", rows[0].Title)
	assert.Equal(t, "C1", rows[1].Title)
	require.NotNil(t, rows[0].AuthorName)
	assert.Equal(t, "maya", *rows[0].AuthorName)
	assert.Nil(t, rows[1].AuthorName)
	assert.Equal(t, []string{"TikTok", "Instagram"}, rows[0].Platforms)
	assert.Equal(t, []string{}, rows[1].Platforms)
	require.Len(t, rows[1].Personas, 2)
	assert.Equal(t, "Parents", rows[1].Personas[1].Name)
	assert.Equal(t, day3, pageStamp(rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_EmptyIsNotAnError(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(feedQuery).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	rows, err := newRepo(db).GetByPersonaAndCompany(context.Background(), 5, 9, FeedOptions{})

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_QueryFailure(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(feedQuery).WillReturnError(errors.New("too many connections"))

	_, err := newRepo(db).GetByPersonaAndCompany(context.Background(), 5, 9, FeedOptions{})

	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedRepository_HydrationFailure(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(feedQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "C1"))
	mock.ExpectQuery(platformsQuery).WillReturnError(errors.New("deadlock"))
	mock.ExpectQuery(personasQuery).
		WillReturnRows(sqlmock.NewRows([]string{"content_id", "id", "name"}))

	_, err := newRepo(db).GetByPersonaAndCompany(context.Background(), 5, 9, FeedOptions{})

	assert.ErrorIs(t, err, common.ErrStorage)
}
