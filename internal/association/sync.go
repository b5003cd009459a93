package association

import (
	"context"
	"fmt"
	"strings"

	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/telemetry"

	"gorm.io/gorm"
)

// Relation describes one junction table. Label-keyed relations resolve
// string targets through the Resolver; id-keyed ones take ids only.
type Relation struct {
	Table         string
	OwnerColumn   string
	RelatedColumn string
	RelatedTable  string
	Dimension     Dimension
}

var (
	ContentPersonas = Relation{
		Table:         "content_personas",
		OwnerColumn:   "content_id",
		RelatedColumn: "persona_id",
		RelatedTable:  "personas",
	}
	ContentPlatforms = Relation{
		Table:         "content_platforms",
		OwnerColumn:   "content_id",
		RelatedColumn: "platform_id",
		RelatedTable:  "platforms",
		Dimension:     Platforms,
	}
	PersonaPlatforms = Relation{
		Table:         "persona_platforms",
		OwnerColumn:   "persona_id",
		RelatedColumn: "platform_id",
		RelatedTable:  "platforms",
		Dimension:     Platforms,
	}
	PersonaInterests = Relation{
		Table:         "persona_interests",
		OwnerColumn:   "persona_id",
		RelatedColumn: "interest_id",
		RelatedTable:  "interests",
		Dimension:     Interests,
	}
)

func (r Relation) LabelKeyed() bool { return r.Dimension != "" }

type Synchronizer struct {
	db       *gorm.DB
	resolver *Resolver
	metrics  *telemetry.Metrics
}

func NewSynchronizer(db *gorm.DB, resolver *Resolver, metrics *telemetry.Metrics) *Synchronizer {
	return &Synchronizer{db: db, resolver: resolver, metrics: metrics}
}

// Sync replaces the owner's rows in rel with exactly targets, in order and
// without duplicates. The delete and the insert are separate statements: if
// the insert fails the owner is left with fewer links, never stale ones.
func (s *Synchronizer) Sync(ctx context.Context, rel Relation, ownerID int64, targets []Target) error {
	err := s.sync(ctx, rel, ownerID, targets)
	s.metrics.ObserveSync(rel.Table, err)
	return err
}

func (s *Synchronizer) sync(ctx context.Context, rel Relation, ownerID int64, targets []Target) error {
	ids, err := s.resolveTargets(ctx, rel, targets)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	del := fmt.Sprintf("DELETE FROM `%s` WHERE `%s` = ?", rel.Table, rel.OwnerColumn)
	if err := db.Exec(del, ownerID).Error; err != nil {
		return common.NewStorageError("clear "+rel.Table, err)
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, 2*len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "(?,?)")
		args = append(args, ownerID, id)
	}
	ins := fmt.Sprintf("INSERT INTO `%s` (`%s`,`%s`) VALUES %s",
		rel.Table, rel.OwnerColumn, rel.RelatedColumn, strings.Join(placeholders, ","))
	if err := db.Exec(ins, args...).Error; err != nil {
		return common.NewStorageError("link "+rel.Table, err)
	}
	return nil
}

// Clear removes every row of rel that points at ownerID. tx may be a
// transaction handle; nil means the synchronizer's own connection.
func (s *Synchronizer) Clear(ctx context.Context, tx *gorm.DB, rel Relation, ownerID int64) error {
	return s.clearColumn(ctx, tx, rel, rel.OwnerColumn, ownerID)
}

// ClearRelated removes every row of rel that points at relatedID from the
// other side, e.g. all content links of a persona being deleted.
func (s *Synchronizer) ClearRelated(ctx context.Context, tx *gorm.DB, rel Relation, relatedID int64) error {
	return s.clearColumn(ctx, tx, rel, rel.RelatedColumn, relatedID)
}

func (s *Synchronizer) clearColumn(ctx context.Context, tx *gorm.DB, rel Relation, column string, id int64) error {
	if tx == nil {
		tx = s.db
	}
	del := fmt.Sprintf("DELETE FROM `%s` WHERE `%s` = ?", rel.Table, column)
	if err := tx.WithContext(ctx).Exec(del, id).Error; err != nil {
		return common.NewStorageError("clear "+rel.Table, err)
	}
	return nil
}

type linkRow struct {
	OwnerID int64  `gorm:"column:owner_id"`
	ID      int64  `gorm:"column:id"`
	Name    string `gorm:"column:name"`
}

// Links loads the related {id, name} pairs for many owners in one query,
// each list in insertion order. Owners without links are absent from the map.
func (s *Synchronizer) Links(ctx context.Context, rel Relation, ownerIDs []int64) (map[int64][]dbmysql.NamedRef, error) {
	out := make(map[int64][]dbmysql.NamedRef, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	var rows []linkRow
	err := s.db.WithContext(ctx).
		Table(rel.Table+" AS j").
		Select(fmt.Sprintf("j.%s AS owner_id, r.id AS id, r.name AS name", rel.OwnerColumn)).
		Joins(fmt.Sprintf("JOIN %s AS r ON r.id = j.%s", rel.RelatedTable, rel.RelatedColumn)).
		Where(fmt.Sprintf("j.%s IN ?", rel.OwnerColumn), ownerIDs).
		Order("j.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, common.NewStorageError("load "+rel.Table, err)
	}

	for _, row := range rows {
		out[row.OwnerID] = append(out[row.OwnerID], dbmysql.NamedRef{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (s *Synchronizer) resolveTargets(ctx context.Context, rel Relation, targets []Target) ([]int64, error) {
	ids := make([]int64, 0, len(targets))
	seen := make(map[int64]struct{}, len(targets))
	for _, t := range targets {
		id := t.ID
		switch {
		case id > 0:
		case t.Label != "" && rel.LabelKeyed():
			resolved, err := s.resolver.Resolve(ctx, rel.Dimension, t.Label)
			if err != nil {
				return nil, err
			}
			id = resolved
		case t.Label != "":
			return nil, common.NewValidationError("%s must be referenced by id, got %q", rel.RelatedTable, t.Label)
		default:
			return nil, common.NewValidationError("%s target needs an id or a name", rel.RelatedTable)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
