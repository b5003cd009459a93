package persona

import (
	"context"

	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
	"personafeed/internal/logger"
)

type PersonaUsecase interface {
	CreatePersona(ctx context.Context, in PersonaInput) (*PersonaWithRelations, error)
	GetPersona(ctx context.Context, id int64) (*PersonaWithRelations, error)
	UpdatePersona(ctx context.Context, id int64, patch PersonaPatch) (*PersonaWithRelations, error)
	DeletePersona(ctx context.Context, id int64) error
	ListCompanyPersonas(ctx context.Context, companyID int64) ([]PersonaWithRelations, error)
	ListPlatforms(ctx context.Context) ([]dbmysql.NamedRef, error)
	ListInterests(ctx context.Context) ([]dbmysql.NamedRef, error)
}

type PersonaService struct {
	personaRepo Repository
	log         logger.Logger
}

func NewPersonaService(repo Repository, log logger.Logger) *PersonaService {
	return &PersonaService{personaRepo: repo, log: log}
}

func (s *PersonaService) CreatePersona(ctx context.Context, in PersonaInput) (*PersonaWithRelations, error) {
	p, err := in.ToModel()
	if err != nil {
		return nil, err
	}
	id, err := s.personaRepo.Create(ctx, p, in.Platforms, in.Interests)
	if err != nil {
		if id > 0 {
			s.log.Warn(ctx, "persona created with incomplete links", logger.F("persona_id", id), logger.Err(err))
		}
		return nil, err
	}
	s.log.Info(ctx, "persona created", logger.F("persona_id", id))
	return s.GetPersona(ctx, id)
}

func (s *PersonaService) GetPersona(ctx context.Context, id int64) (*PersonaWithRelations, error) {
	p, err := s.personaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, common.NewNotFoundError("persona %d not found", id)
	}
	return p, nil
}

func (s *PersonaService) UpdatePersona(ctx context.Context, id int64, patch PersonaPatch) (*PersonaWithRelations, error) {
	ok, err := s.personaRepo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewNotFoundError("persona %d not found", id)
	}
	if err := s.personaRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetPersona(ctx, id)
}

func (s *PersonaService) DeletePersona(ctx context.Context, id int64) error {
	if err := s.personaRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "persona deleted", logger.F("persona_id", id))
	return nil
}

func (s *PersonaService) ListCompanyPersonas(ctx context.Context, companyID int64) ([]PersonaWithRelations, error) {
	if companyID <= 0 {
		return nil, common.NewValidationError("invalid company ID")
	}
	return s.personaRepo.ListByCompany(ctx, companyID)
}

func (s *PersonaService) ListPlatforms(ctx context.Context) ([]dbmysql.NamedRef, error) {
	return s.personaRepo.ListPlatforms(ctx)
}

func (s *PersonaService) ListInterests(ctx context.Context) ([]dbmysql.NamedRef, error) {
	return s.personaRepo.ListInterests(ctx)
}
