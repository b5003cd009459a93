//go:build wireinject
// +build wireinject

package wire

import (
	"personafeed/internal/association"
	"personafeed/internal/config"
	"personafeed/internal/content"
	"personafeed/internal/engagement"
	"personafeed/internal/feed"
	"personafeed/internal/logger"
	"personafeed/internal/persona"
	"personafeed/internal/telemetry"

	"github.com/google/wire"
)

var storeSet = wire.NewSet(
	ProvideDatabase,
	ProvideMongo,
	ProvideEngagementLog,
	ProvideEventSink,
	ProvideHistoryReader,
)

var feedSet = wire.NewSet(
	feed.NewFeedRepository,
	wire.Bind(new(feed.Feed), new(*feed.FeedRepository)),
	feed.NewFeedService,
	wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
	feed.NewFeedHandlers,
)

var contentSet = wire.NewSet(
	content.NewContentRepository,
	wire.Bind(new(content.Repository), new(*content.ContentRepository)),
	wire.Bind(new(engagement.MetricsUpdater), new(*content.ContentRepository)),
	engagement.NewAccumulator,
	wire.Bind(new(content.Recorder), new(*engagement.Accumulator)),
	content.NewContentService,
	wire.Bind(new(content.ContentUsecase), new(*content.ContentService)),
	content.NewContentHandlers,
)

var personaSet = wire.NewSet(
	persona.NewPersonaRepository,
	wire.Bind(new(persona.Repository), new(*persona.PersonaRepository)),
	persona.NewPersonaService,
	wire.Bind(new(persona.PersonaUsecase), new(*persona.PersonaService)),
	persona.NewPersonaHandlers,
)

// InitializeApplication builds the content service. The returned cleanup
// closes the MySQL pool and, when enabled, the Mongo client.
func InitializeApplication(cfg *config.Config, log logger.Logger) (*Application, func(), error) {
	wire.Build(
		storeSet,
		ProvideRegistry,
		telemetry.New,
		ProvideJWTManager,
		association.NewResolver,
		association.NewSynchronizer,
		feedSet,
		contentSet,
		personaSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
