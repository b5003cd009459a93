// Package association keeps junction tables between content, personas and
// the platform/interest dimensions in step with the latest write.
package association

import (
	"context"
	"errors"
	"strings"

	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/telemetry"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Dimension names a label-keyed lookup table.
type Dimension string

const (
	Platforms Dimension = "platforms"
	Interests Dimension = "interests"
)

func (d Dimension) valid() bool {
	return d == Platforms || d == Interests
}

const mysqlDuplicateEntry = 1062

// Resolver maps dimension labels to row ids, creating rows on first use.
type Resolver struct {
	db      *gorm.DB
	metrics *telemetry.Metrics
}

func NewResolver(db *gorm.DB, metrics *telemetry.Metrics) *Resolver {
	return &Resolver{db: db, metrics: metrics}
}

// Resolve returns the id of the row whose name equals label exactly,
// inserting it when absent. A concurrent insert of the same label is
// detected through the unique index and answered with the winner's id.
func (r *Resolver) Resolve(ctx context.Context, dim Dimension, label string) (int64, error) {
	if !dim.valid() {
		return 0, common.NewValidationError("unknown dimension %q", dim)
	}
	if strings.TrimSpace(label) == "" {
		return 0, common.NewValidationError("%s label is required", dim)
	}

	id, err := r.lookup(ctx, dim, label)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, common.NewStorageError("lookup "+string(dim), err)
	}

	row := dbmysql.NamedRef{Name: label}
	if err := r.db.WithContext(ctx).Table(string(dim)).Create(&row).Error; err != nil {
		if !isDuplicateKey(err) {
			return 0, common.NewStorageError("create "+string(dim), err)
		}
		id, err = r.lookup(ctx, dim, label)
		if err != nil {
			return 0, common.NewStorageError("reload "+string(dim), err)
		}
		return id, nil
	}

	r.metrics.ObserveDimensionCreated(string(dim))
	return row.ID, nil
}

// ResolveAll resolves labels in order, collapsing duplicates.
func (r *Resolver) ResolveAll(ctx context.Context, dim Dimension, labels []string) ([]int64, error) {
	ids := make([]int64, 0, len(labels))
	seen := make(map[int64]struct{}, len(labels))
	for _, label := range labels {
		id, err := r.Resolve(ctx, dim, label)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListAll returns every row of the dimension sorted by name.
func (r *Resolver) ListAll(ctx context.Context, dim Dimension) ([]dbmysql.NamedRef, error) {
	if !dim.valid() {
		return nil, common.NewValidationError("unknown dimension %q", dim)
	}
	refs := make([]dbmysql.NamedRef, 0)
	err := r.db.WithContext(ctx).
		Table(string(dim)).
		Select("id, name").
		Order("name ASC").
		Find(&refs).Error
	if err != nil {
		return nil, common.NewStorageError("list "+string(dim), err)
	}
	return refs, nil
}

func (r *Resolver) lookup(ctx context.Context, dim Dimension, label string) (int64, error) {
	var ref dbmysql.NamedRef
	err := r.db.WithContext(ctx).
		Table(string(dim)).
		Select("id, name").
		Where("name = ?", label).
		Take(&ref).Error
	if err != nil {
		return 0, err
	}
	return ref.ID, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
