package feed

import (
	"context"
	"time"

	"personafeed/internal/association"
	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/telemetry"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FeedRow is one playable feed entry: the content record, its author's
// handle, the names of its platforms and the personas it targets.
type FeedRow struct {
	dbmysql.Content
	AuthorName *string           `json:"author_name"`
	Platforms  []string          `json:"platforms"`
	Personas   []dbmysql.Persona `json:"personas"`
}

type FeedOptions struct {
	// PublishedOnly restricts the feed to status = published.
	PublishedOnly bool
}

type Feed interface {
	GetByPersonaAndCompany(ctx context.Context, personaID, companyID int64, opts FeedOptions) ([]FeedRow, error)
}

type FeedRepository struct {
	db      *gorm.DB
	links   *association.Synchronizer
	metrics *telemetry.Metrics
}

func NewFeedRepository(db *gorm.DB, links *association.Synchronizer, metrics *telemetry.Metrics) *FeedRepository {
	return &FeedRepository{db: db, links: links, metrics: metrics}
}

type feedRecord struct {
	dbmysql.Content `gorm:"embedded"`
	AuthorName      *string `gorm:"column:author_name"`
}

type personaLink struct {
	ContentID       int64 `gorm:"column:content_id"`
	dbmysql.Persona `gorm:"embedded"`
}

// GetByPersonaAndCompany returns the content linked to personaID and owned
// by companyID, newest publish_date first with id as tie-break. No match is
// an empty slice, not an error.
func (r *FeedRepository) GetByPersonaAndCompany(ctx context.Context, personaID, companyID int64, opts FeedOptions) ([]FeedRow, error) {
	// Step 1: matching content with author handle
	q := r.db.WithContext(ctx).
		Table("content AS c").
		Select("c.*, u.handle AS author_name").
		Joins("JOIN content_personas AS cp ON cp.content_id = c.id").
		Joins("LEFT JOIN users AS u ON u.user_id = c.author_id").
		Where("cp.persona_id = ? AND c.company_id = ?", personaID, companyID)
	if opts.PublishedOnly {
		q = q.Where("c.status = ?", common.StatusPublished)
	}

	var records []feedRecord
	if err := q.Order("c.publish_date DESC, c.id DESC").Scan(&records).Error; err != nil {
		return nil, common.NewStorageError("feed query", err)
	}
	r.metrics.ObserveFeedRows(len(records))
	if len(records) == 0 {
		return []FeedRow{}, nil
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	// Step 2: platforms and personas for every row, loaded side by side
	var (
		platforms map[int64][]dbmysql.NamedRef
		personas  map[int64][]dbmysql.Persona
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		platforms, err = r.links.Links(gctx, association.ContentPlatforms, ids)
		return err
	})
	g.Go(func() error {
		var err error
		personas, err = r.personasFor(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 3: assemble
	rows := make([]FeedRow, len(records))
	for i, rec := range records {
		names := make([]string, 0, len(platforms[rec.ID]))
		for _, p := range platforms[rec.ID] {
			names = append(names, p.Name)
		}
		ps := personas[rec.ID]
		if ps == nil {
			ps = []dbmysql.Persona{}
		}
		rows[i] = FeedRow{
			Content:    rec.Content,
			AuthorName: rec.AuthorName,
			Platforms:  names,
			Personas:   ps,
		}
	}
	return rows, nil
}

func (r *FeedRepository) personasFor(ctx context.Context, contentIDs []int64) (map[int64][]dbmysql.Persona, error) {
	var links []personaLink
	err := r.db.WithContext(ctx).
		Table("content_personas AS cp").
		Select("cp.content_id, p.*").
		Joins("JOIN personas AS p ON p.id = cp.persona_id").
		Where("cp.content_id IN ?", contentIDs).
		Order("cp.id ASC").
		Scan(&links).Error
	if err != nil {
		return nil, common.NewStorageError("feed personas", err)
	}

	out := make(map[int64][]dbmysql.Persona, len(contentIDs))
	for _, l := range links {
		out[l.ContentID] = append(out[l.ContentID], l.Persona)
	}
	return out, nil
}

// pageStamp is used by callers that want a stable "as of" marker for a feed
// snapshot; it is the newest publish_date in rows or zero.
func pageStamp(rows []FeedRow) time.Time {
	var newest time.Time
	for _, r := range rows {
		if r.PublishDate != nil && r.PublishDate.After(newest) {
			newest = *r.PublishDate
		}
	}
	return newest
}
