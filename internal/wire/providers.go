package wire

import (
	"context"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/config"
	"personafeed/internal/content"
	"personafeed/internal/dbmongo"
	"personafeed/internal/dbmysql"
	"personafeed/internal/engagement"
	"personafeed/internal/feed"
	"personafeed/internal/logger"
	"personafeed/internal/persona"
	"personafeed/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Application struct {
	Config   *config.Config
	Log      logger.Logger
	DB       *gorm.DB
	Mongo    *dbmongo.MongoClient // nil when the engagement log is disabled
	Registry *prometheus.Registry
	Metrics  *telemetry.Metrics
	JWT      *common.JWTManager
	Feed     *feed.FeedHandlers
	Content  *content.ContentHandlers
	Persona  *persona.PersonaHandlers
}

func ProvideDatabase(cfg *config.Config, log logger.Logger) (*gorm.DB, func(), error) {
	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info(context.Background(), "mysql connected",
		logger.F("host", cfg.Database.Host),
		logger.F("database", cfg.Database.DatabaseName),
		logger.F("auto_migrate", cfg.Database.AutoMigrate),
	)
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// ProvideMongo connects only when MONGO_ENABLED is set. A nil client turns
// the engagement log off.
func ProvideMongo(cfg *config.Config, log logger.Logger) (*dbmongo.MongoClient, func(), error) {
	if !cfg.MongoDB.Enabled {
		log.Info(context.Background(), "engagement log disabled")
		return nil, func() {}, nil
	}
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info(context.Background(), "mongodb connected", logger.F("database", cfg.MongoDB.Database))
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mc.Close(ctx)
	}
	return mc, cleanup, nil
}

func ProvideEngagementLog(mc *dbmongo.MongoClient) *dbmongo.EngagementLog {
	if mc == nil {
		return nil
	}
	return dbmongo.NewEngagementLog(mc)
}

// The two adapters below return untyped nil when the log is off so the
// consumers' nil checks work.

func ProvideEventSink(l *dbmongo.EngagementLog) engagement.EventSink {
	if l == nil {
		return nil
	}
	return l
}

func ProvideHistoryReader(l *dbmongo.EngagementLog) content.HistoryReader {
	if l == nil {
		return nil
	}
	return l
}

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideJWTManager(cfg *config.Config) *common.JWTManager {
	return common.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
}
