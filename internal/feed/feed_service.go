package feed

import (
	"context"

	"personafeed/internal/common"
	"personafeed/internal/logger"
)

// FeedUsecase is the read side consumed by the HTTP handlers and the
// content service.
type FeedUsecase interface {
	GetPersonaFeed(ctx context.Context, personaID, companyID int64, opts FeedOptions) ([]FeedRow, error)
}

type FeedService struct {
	feedRepo Feed
	log      logger.Logger
}

func NewFeedService(f Feed, log logger.Logger) *FeedService {
	return &FeedService{feedRepo: f, log: log}
}

func (s *FeedService) GetPersonaFeed(ctx context.Context, personaID, companyID int64, opts FeedOptions) ([]FeedRow, error) {
	if personaID <= 0 {
		return nil, common.NewValidationError("invalid persona ID")
	}
	if companyID <= 0 {
		return nil, common.NewValidationError("invalid company ID")
	}

	rows, err := s.feedRepo.GetByPersonaAndCompany(ctx, personaID, companyID, opts)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "feed assembled",
		logger.F("persona_id", personaID),
		logger.F("company_id", companyID),
		logger.F("rows", len(rows)))
	return rows, nil
}
