package cmd

import (
	"context"
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/core/config"
	"github.com/Sydwelll/nft-marketplace-backend/core/database"
	"github.com/Sydwelll/nft-marketplace-backend/core/logger"
	"github.com/Sydwelll/nft-marketplace-backend/core/storage"
	"github.com/Sydwelll/nft-marketplace-backend/feature/integrity/checks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	client storage.Client
}

// bootstrap loads configuration, builds the logger, connects and migrates
// the database and, when enabled, the journal bucket.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger tables: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg, db: db}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := checks.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region, logg); err != nil {
			return nil, err
		}
		rt.client = client
	}

	return rt, nil
}

// publisher returns the journal publisher, or nil when storage is disabled.
func (rt *runtime) publisher() *journal.Publisher {
	if rt.client == nil {
		return nil
	}
	return journal.NewPublisher(rt.client, rt.cfg.Storage.Bucket)
}

// service builds the market service on the runtime's database.
func (rt *runtime) service() *market.Service {
	return market.NewService(rt.db, rt.publisher(), rt.logger)
}
