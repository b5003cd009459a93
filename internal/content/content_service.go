package content

import (
	"context"

	"personafeed/internal/common"
	"personafeed/internal/dbmongo"
	"personafeed/internal/dbmysql"
	"personafeed/internal/logger"
)

// ContentUsecase is what the HTTP handlers call.
type ContentUsecase interface {
	CreateContent(ctx context.Context, in ContentInput) (*ContentWithRelations, error)
	BulkCreateContent(ctx context.Context, items []ContentInput) ([]int64, error)
	GetContent(ctx context.Context, id int64) (*ContentWithRelations, error)
	UpdateContent(ctx context.Context, id int64, patch ContentPatch) (*ContentWithRelations, error)
	DeleteContent(ctx context.Context, id int64) error
	PublishContent(ctx context.Context, id int64) (*ContentWithRelations, error)
	RecordEngagement(ctx context.Context, id int64, engagementType string) error
	EngagementHistory(ctx context.Context, id int64, limit int64) ([]dbmongo.EngagementEvent, error)
	ListCompanyContent(ctx context.Context, companyID int64) ([]dbmysql.Content, error)
}

// Recorder applies one engagement increment.
type Recorder interface {
	Record(ctx context.Context, contentID int64, et common.EngagementType) error
}

// HistoryReader reads the engagement log. It is nil when the log is disabled.
type HistoryReader interface {
	History(ctx context.Context, contentID int64, limit int64) ([]dbmongo.EngagementEvent, error)
}

type ContentService struct {
	contentRepo Repository
	recorder    Recorder
	history     HistoryReader
	log         logger.Logger
}

func NewContentService(repo Repository, recorder Recorder, history HistoryReader, log logger.Logger) *ContentService {
	return &ContentService{
		contentRepo: repo,
		recorder:    recorder,
		history:     history,
		log:         log,
	}
}

func (s *ContentService) CreateContent(ctx context.Context, in ContentInput) (*ContentWithRelations, error) {
	// Step 1: validate and normalise
	c, err := in.ToModel()
	if err != nil {
		return nil, err
	}
	if c.AuthorID == nil {
		if uid, ok := logger.UserIDFromContext(ctx); ok {
			c.AuthorID = &uid
		}
	}

	// Step 2: insert row and links
	id, err := s.contentRepo.Create(ctx, c, in.Personas, in.Platforms)
	if err != nil {
		if id > 0 {
			s.log.Warn(ctx, "content created with incomplete links", logger.F("content_id", id), logger.Err(err))
		}
		return nil, err
	}
	s.log.Info(ctx, "content created", logger.F("content_id", id))

	// Step 3: read back hydrated
	return s.contentRepo.FindByID(ctx, id)
}

func (s *ContentService) BulkCreateContent(ctx context.Context, items []ContentInput) ([]int64, error) {
	if len(items) == 0 {
		return nil, common.NewValidationError("at least one content item is required")
	}
	if uid, ok := logger.UserIDFromContext(ctx); ok {
		for i := range items {
			if items[i].AuthorID == nil {
				items[i].AuthorID = &uid
			}
		}
	}
	ids, err := s.contentRepo.BulkCreate(ctx, items)
	if err != nil {
		s.log.Warn(ctx, "bulk create stopped", logger.F("committed", len(ids)), logger.Err(err))
		return ids, err
	}
	s.log.Info(ctx, "bulk content created", logger.F("count", len(ids)))
	return ids, nil
}

func (s *ContentService) GetContent(ctx context.Context, id int64) (*ContentWithRelations, error) {
	c, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, common.NewNotFoundError("content %d not found", id)
	}
	return c, nil
}

func (s *ContentService) UpdateContent(ctx context.Context, id int64, patch ContentPatch) (*ContentWithRelations, error) {
	ok, err := s.contentRepo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewNotFoundError("content %d not found", id)
	}
	if err := s.contentRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetContent(ctx, id)
}

func (s *ContentService) DeleteContent(ctx context.Context, id int64) error {
	if err := s.contentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "content deleted", logger.F("content_id", id))
	return nil
}

func (s *ContentService) PublishContent(ctx context.Context, id int64) (*ContentWithRelations, error) {
	if err := s.contentRepo.Publish(ctx, id); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "content published", logger.F("content_id", id))
	return s.GetContent(ctx, id)
}

func (s *ContentService) RecordEngagement(ctx context.Context, id int64, engagementType string) error {
	et, err := common.ParseEngagementType(engagementType)
	if err != nil {
		return err
	}
	return s.recorder.Record(ctx, id, et)
}

func (s *ContentService) EngagementHistory(ctx context.Context, id int64, limit int64) ([]dbmongo.EngagementEvent, error) {
	if s.history == nil {
		return nil, common.NewNotFoundError("engagement log is disabled")
	}
	return s.history.History(ctx, id, limit)
}

func (s *ContentService) ListCompanyContent(ctx context.Context, companyID int64) ([]dbmysql.Content, error) {
	if companyID <= 0 {
		return nil, common.NewValidationError("invalid company ID")
	}
	return s.contentRepo.ListByCompany(ctx, companyID)
}
