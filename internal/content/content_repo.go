package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"personafeed/internal/association"
	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/engagement"
	"personafeed/internal/feed"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *dbmysql.Content, personas, platforms association.TargetSet) (int64, error)
	Update(ctx context.Context, id int64, patch ContentPatch) error
	FindByID(ctx context.Context, id int64) (*ContentWithRelations, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetByPersonaAndCompany(ctx context.Context, personaID, companyID int64, opts feed.FeedOptions) ([]feed.FeedRow, error)
	Publish(ctx context.Context, id int64) error
	UpdateMetrics(ctx context.Context, id int64, d engagement.Deltas) error
	BulkCreate(ctx context.Context, items []ContentInput) ([]int64, error)
	Delete(ctx context.Context, id int64) error
	ListByCompany(ctx context.Context, companyID int64) ([]dbmysql.Content, error)
}

type ContentRepository struct {
	db    *gorm.DB
	links *association.Synchronizer
	feed  feed.Feed
	now   func() time.Time
}

func NewContentRepository(db *gorm.DB, links *association.Synchronizer, f feed.Feed) *ContentRepository {
	return &ContentRepository{db: db, links: links, feed: f, now: time.Now}
}

// --------- WRITES ---------

// Create inserts the row and then syncs each relation that is set. A relation
// failure leaves the row committed and returns its id with the error.
func (r *ContentRepository) Create(ctx context.Context, c *dbmysql.Content, personas, platforms association.TargetSet) (int64, error) {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return 0, common.NewStorageError("create content", err)
	}
	if err := r.syncRelations(ctx, c.ID, personas, platforms); err != nil {
		return c.ID, err
	}
	return c.ID, nil
}

// Update writes only the patched columns, then replaces whichever relations
// the patch sets. Existence is checked by the caller. A status change on a
// published row is a ConflictError; publishing cannot be undone.
func (r *ContentRepository) Update(ctx context.Context, id int64, patch ContentPatch) error {
	cols, err := patch.Columns()
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		if err := r.updateColumns(ctx, id, cols); err != nil {
			return err
		}
	}
	return r.syncRelations(ctx, id, patch.Personas, patch.Platforms)
}

func (r *ContentRepository) updateColumns(ctx context.Context, id int64, cols map[string]interface{}) error {
	db := r.db.WithContext(ctx).Model(&dbmysql.Content{})
	_, statusChange := cols["status"]
	if statusChange {
		db = db.Where("id = ? AND status <> ?", id, common.StatusPublished)
	} else {
		db = db.Where("id = ?", id)
	}

	res := db.Updates(cols)
	if res.Error != nil {
		return common.NewStorageError("update content", res.Error)
	}
	if !statusChange || res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched the guard: tell a published row from a missing one.
	var statuses []common.ContentStatus
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Content{}).
		Where("id = ?", id).
		Pluck("status", &statuses).Error
	if err != nil {
		return common.NewStorageError("update content", err)
	}
	if len(statuses) == 0 {
		return common.NewNotFoundError("content %d not found", id)
	}
	if statuses[0] == common.StatusPublished {
		return common.NewConflictError("content %d is already published", id)
	}
	return nil
}

func (r *ContentRepository) syncRelations(ctx context.Context, id int64, personas, platforms association.TargetSet) error {
	if personas.IsSet() {
		if err := r.links.Sync(ctx, association.ContentPersonas, id, personas.Targets()); err != nil {
			return err
		}
	}
	if platforms.IsSet() {
		if err := r.links.Sync(ctx, association.ContentPlatforms, id, platforms.Targets()); err != nil {
			return err
		}
	}
	return nil
}

// Publish moves a not-yet-published row to published and stamps
// publish_date. A second publish is a ConflictError.
func (r *ContentRepository) Publish(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&dbmysql.Content{}).
		Where("id = ? AND status <> ?", id, common.StatusPublished).
		Updates(map[string]interface{}{
			"status":       common.StatusPublished,
			"publish_date": r.now().UTC().Truncate(time.Second),
		})
	if res.Error != nil {
		return common.NewStorageError("publish content", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewNotFoundError("content %d not found", id)
	}
	return common.NewConflictError("content %d is already published", id)
}

// UpdateMetrics adds each present delta to its counter in one statement.
// Zero deltas are skipped.
func (r *ContentRepository) UpdateMetrics(ctx context.Context, id int64, d engagement.Deltas) error {
	if err := d.Validate(); err != nil {
		return err
	}
	exprs := make(map[string]interface{}, 4)
	for col, v := range d.Columns() {
		if v == 0 {
			continue
		}
		exprs[col] = gorm.Expr(col+" + ?", v)
	}
	if len(exprs) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&dbmysql.Content{}).
		Where("id = ?", id).
		UpdateColumns(exprs)
	if res.Error != nil {
		return common.NewStorageError("update metrics", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NewNotFoundError("content %d not found", id)
	}
	return nil
}

// BulkCreate inserts items one at a time. On failure the ids committed so
// far are returned with the error; earlier items stay.
func (r *ContentRepository) BulkCreate(ctx context.Context, items []ContentInput) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	for i, item := range items {
		c, err := item.ToModel()
		if err != nil {
			return ids, fmt.Errorf("item %d: %w", i, err)
		}
		id, err := r.Create(ctx, c, item.Personas, item.Platforms)
		if id > 0 {
			ids = append(ids, id)
		}
		if err != nil {
			return ids, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return ids, nil
}

// Delete removes the row's links and then the row, in one transaction.
func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.links.Clear(ctx, tx, association.ContentPersonas, id); err != nil {
			return err
		}
		if err := r.links.Clear(ctx, tx, association.ContentPlatforms, id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&dbmysql.Content{})
		if res.Error != nil {
			return common.NewStorageError("delete content", res.Error)
		}
		if res.RowsAffected == 0 {
			return common.NewNotFoundError("content %d not found", id)
		}
		return nil
	})
}

// --------- READS ---------

// FindByID returns the hydrated row, or nil when there is none.
func (r *ContentRepository) FindByID(ctx context.Context, id int64) (*ContentWithRelations, error) {
	var c dbmysql.Content
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStorageError("find content", err)
	}

	personas, err := r.links.Links(ctx, association.ContentPersonas, []int64{id})
	if err != nil {
		return nil, err
	}
	platforms, err := r.links.Links(ctx, association.ContentPlatforms, []int64{id})
	if err != nil {
		return nil, err
	}
	return &ContentWithRelations{
		Content:   c,
		Personas:  nonNil(personas[id]),
		Platforms: nonNil(platforms[id]),
	}, nil
}

func (r *ContentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Content{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, common.NewStorageError("count content", err)
	}
	return n > 0, nil
}

func (r *ContentRepository) GetByPersonaAndCompany(ctx context.Context, personaID, companyID int64, opts feed.FeedOptions) ([]feed.FeedRow, error) {
	return r.feed.GetByPersonaAndCompany(ctx, personaID, companyID, opts)
}

func (r *ContentRepository) ListByCompany(ctx context.Context, companyID int64) ([]dbmysql.Content, error) {
	contents := make([]dbmysql.Content, 0)
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Find(&contents).Error
	if err != nil {
		return nil, common.NewStorageError("list content", err)
	}
	return contents, nil
}

func nonNil(refs []dbmysql.NamedRef) []dbmysql.NamedRef {
	if refs == nil {
		return []dbmysql.NamedRef{}
	}
	return refs
}
