package persona

import (
	"context"
	"errors"
	"strings"

	"personafeed/internal/association"
	"personafeed/internal/common"
	"personafeed/internal/dbmysql"

	"gorm.io/gorm"
)

// PersonaInput is the body of POST /personas.
type PersonaInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	AgeRange    string `json:"age_range" validate:"max=50"`
	IsActive    *bool  `json:"is_active"`
	CompanyID   *int64 `json:"company_id" validate:"omitempty,gt=0"`

	Platforms association.TargetSet `json:"platforms"`
	Interests association.TargetSet `json:"interests"`
}

func (in PersonaInput) ToModel() (*dbmysql.Persona, error) {
	if err := common.ValidateStruct(in); err != nil {
		return nil, err
	}
	p := &dbmysql.Persona{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		AgeRange:    in.AgeRange,
		IsActive:    true,
		CompanyID:   in.CompanyID,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}

// PersonaPatch is a partial update; set relation lists replace links.
type PersonaPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	AgeRange    *string `json:"age_range" validate:"omitempty,max=50"`
	IsActive    *bool   `json:"is_active"`
	CompanyID   *int64  `json:"company_id" validate:"omitempty,gt=0"`

	Platforms association.TargetSet `json:"platforms"`
	Interests association.TargetSet `json:"interests"`
}

func (p PersonaPatch) Columns() (map[string]interface{}, error) {
	if err := common.ValidateStruct(p); err != nil {
		return nil, err
	}
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.AgeRange != nil {
		cols["age_range"] = *p.AgeRange
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.CompanyID != nil {
		cols["company_id"] = *p.CompanyID
	}
	return cols, nil
}

type PersonaWithRelations struct {
	dbmysql.Persona
	Platforms []dbmysql.NamedRef `json:"platforms"`
	Interests []dbmysql.NamedRef `json:"interests"`
}

type Repository interface {
	Create(ctx context.Context, p *dbmysql.Persona, platforms, interests association.TargetSet) (int64, error)
	Update(ctx context.Context, id int64, patch PersonaPatch) error
	FindByID(ctx context.Context, id int64) (*PersonaWithRelations, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByCompany(ctx context.Context, companyID int64) ([]PersonaWithRelations, error)
	Delete(ctx context.Context, id int64) error
	ListPlatforms(ctx context.Context) ([]dbmysql.NamedRef, error)
	ListInterests(ctx context.Context) ([]dbmysql.NamedRef, error)
}

type PersonaRepository struct {
	db       *gorm.DB
	links    *association.Synchronizer
	resolver *association.Resolver
}

func NewPersonaRepository(db *gorm.DB, links *association.Synchronizer, resolver *association.Resolver) *PersonaRepository {
	return &PersonaRepository{db: db, links: links, resolver: resolver}
}

func (r *PersonaRepository) Create(ctx context.Context, p *dbmysql.Persona, platforms, interests association.TargetSet) (int64, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return 0, common.NewStorageError("create persona", err)
	}
	return p.ID, r.syncRelations(ctx, p.ID, platforms, interests)
}

func (r *PersonaRepository) Update(ctx context.Context, id int64, patch PersonaPatch) error {
	cols, err := patch.Columns()
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		err := r.db.WithContext(ctx).
			Model(&dbmysql.Persona{}).
			Where("id = ?", id).
			Updates(cols).Error
		if err != nil {
			return common.NewStorageError("update persona", err)
		}
	}
	return r.syncRelations(ctx, id, patch.Platforms, patch.Interests)
}

func (r *PersonaRepository) syncRelations(ctx context.Context, id int64, platforms, interests association.TargetSet) error {
	if platforms.IsSet() {
		if err := r.links.Sync(ctx, association.PersonaPlatforms, id, platforms.Targets()); err != nil {
			return err
		}
	}
	if interests.IsSet() {
		if err := r.links.Sync(ctx, association.PersonaInterests, id, interests.Targets()); err != nil {
			return err
		}
	}
	return nil
}

func (r *PersonaRepository) FindByID(ctx context.Context, id int64) (*PersonaWithRelations, error) {
	var p dbmysql.Persona
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStorageError("find persona", err)
	}
	out, err := r.hydrate(ctx, []dbmysql.Persona{p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *PersonaRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Persona{}).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, common.NewStorageError("count persona", err)
	}
	return n > 0, nil
}

func (r *PersonaRepository) ListByCompany(ctx context.Context, companyID int64) ([]PersonaWithRelations, error) {
	var personas []dbmysql.Persona
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&personas).Error
	if err != nil {
		return nil, common.NewStorageError("list personas", err)
	}
	return r.hydrate(ctx, personas)
}

func (r *PersonaRepository) hydrate(ctx context.Context, personas []dbmysql.Persona) ([]PersonaWithRelations, error) {
	out := make([]PersonaWithRelations, 0, len(personas))
	if len(personas) == 0 {
		return out, nil
	}
	ids := make([]int64, len(personas))
	for i, p := range personas {
		ids[i] = p.ID
	}
	platforms, err := r.links.Links(ctx, association.PersonaPlatforms, ids)
	if err != nil {
		return nil, err
	}
	interests, err := r.links.Links(ctx, association.PersonaInterests, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range personas {
		out = append(out, PersonaWithRelations{
			Persona:   p,
			Platforms: orEmpty(platforms[p.ID]),
			Interests: orEmpty(interests[p.ID]),
		})
	}
	return out, nil
}

// Delete removes the persona's platform links, interest links and content
// links, then the persona row. Nothing else is touched.
func (r *PersonaRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.links.Clear(ctx, tx, association.PersonaPlatforms, id); err != nil {
			return err
		}
		if err := r.links.Clear(ctx, tx, association.PersonaInterests, id); err != nil {
			return err
		}
		if err := r.links.ClearRelated(ctx, tx, association.ContentPersonas, id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&dbmysql.Persona{})
		if res.Error != nil {
			return common.NewStorageError("delete persona", res.Error)
		}
		if res.RowsAffected == 0 {
			return common.NewNotFoundError("persona %d not found", id)
		}
		return nil
	})
}

func (r *PersonaRepository) ListPlatforms(ctx context.Context) ([]dbmysql.NamedRef, error) {
	return r.resolver.ListAll(ctx, association.Platforms)
}

func (r *PersonaRepository) ListInterests(ctx context.Context) ([]dbmysql.NamedRef, error) {
	return r.resolver.ListAll(ctx, association.Interests)
}

func orEmpty(refs []dbmysql.NamedRef) []dbmysql.NamedRef {
	if refs == nil {
		return []dbmysql.NamedRef{}
	}
	return refs
}
