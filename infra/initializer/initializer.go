// Package initializer builds the application's dependency set from
// configuration.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/pinbank/infra"
	infrarepo "github.com/amirasaad/pinbank/infra/repository"
	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/pkg/repository"
)

// Deps holds everything the application layer needs.
type Deps struct {
	Config *config.App
	Logger *slog.Logger
	Uow    repository.UnitOfWork
}

// InitializeDependencies wires the logger, database, and unit of work.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	logger := setupLogger(cfg.Log)
	db, err := infra.NewDBConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Deps{
		Config: cfg,
		Logger: logger,
		Uow:    infrarepo.NewUoW(db),
	}, nil
}
