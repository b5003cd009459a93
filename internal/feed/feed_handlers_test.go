package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Fake FeedUsecase for handler tests ----

type fakeFeedSvc struct {
	GetPersonaFeedFn func(ctx context.Context, personaID, companyID int64, opts FeedOptions) ([]FeedRow, error)
}

func (f *fakeFeedSvc) GetPersonaFeed(ctx context.Context, p, c int64, o FeedOptions) ([]FeedRow, error) {
	return f.GetPersonaFeedFn(ctx, p, c, o)
}

func serve(t *testing.T, svc FeedUsecase, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	NewFeedHandlers(svc, logger.NewNop()).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetPersonaFeed_ReturnsArray(t *testing.T) {
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotOpts FeedOptions
	svc := &fakeFeedSvc{GetPersonaFeedFn: func(_ context.Context, p, c int64, o FeedOptions) ([]FeedRow, error) {
		assert.Equal(t, int64(3), p)
		assert.Equal(t, int64(7), c)
		gotOpts = o
		return []FeedRow{{
			Content:   dbmysql.Content{ID: 11, Title: "Launch", PublishDate: &published},
			Platforms: []string{"TikTok"},
			Personas:  []dbmysql.Persona{},
		}}, nil
	}}

	rec := serve(t, svc, "/content/persona/3/company/7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOpts.PublishedOnly)
	assert.Equal(t, published.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Launch", body[0]["title"])
	assert.Equal(t, []interface{}{"TikTok"}, body[0]["platforms"])
}

func TestGetPersonaFeed_EmptyEnvelope(t *testing.T) {
	svc := &fakeFeedSvc{GetPersonaFeedFn: func(context.Context, int64, int64, FeedOptions) ([]FeedRow, error) {
		return []FeedRow{}, nil
	}}

	rec := serve(t, svc, "/content/persona/3/company/7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"No content found for that persona & company","data":[]}`, rec.Body.String())
}

func TestGetPersonaFeed_IncludeUnpublished(t *testing.T) {
	var gotOpts FeedOptions
	svc := &fakeFeedSvc{GetPersonaFeedFn: func(_ context.Context, _, _ int64, o FeedOptions) ([]FeedRow, error) {
		gotOpts = o
		return nil, nil
	}}

	rec := serve(t, svc, "/content/persona/3/company/7?include_unpublished=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOpts.PublishedOnly)

	rec = serve(t, svc, "/content/persona/3/company/7?include_unpublished=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPersonaFeed_StorageFailure(t *testing.T) {
	svc := &fakeFeedSvc{GetPersonaFeedFn: func(context.Context, int64, int64, FeedOptions) ([]FeedRow, error) {
		return nil, common.NewStorageError("feed query", errors.New("db down"))
	}}

	rec := serve(t, svc, "/content/persona/3/company/7")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestGetPersonaFeed_NonNumericIDsDoNotMatch(t *testing.T) {
	svc := &fakeFeedSvc{GetPersonaFeedFn: func(context.Context, int64, int64, FeedOptions) ([]FeedRow, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	rec := serve(t, svc, "/content/persona/abc/company/7")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
