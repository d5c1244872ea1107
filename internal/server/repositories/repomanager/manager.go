// Package repomanager vends the metadata store repositories for the
// configured backend and owns the underlying connection.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema (or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Assets() assets.Repository
	Users() users.Repository
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New connects to the metadata store selected by cfg.MetadataDriver.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.MetadataDriver {
	case config.DriverMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		return NewPostgresRepositoryManager(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown metadata driver %q", cfg.MetadataDriver)
	}
}
