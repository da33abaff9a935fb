package app

import (
	"context"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/db"
	"github.com/filmorate/backend/internal/handlers"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/services"
)

// buildDependencies selects the storage driver named in cfg and wires the
// services used by the HTTP handlers. On success the returned cleanup
// releases any storage resources.
func buildDependencies(ctx context.Context, cfg config.Config) (handlers.Dependencies, func(), error) {
	if cfg.Storage != config.StoragePostgres {
		return memoryDependencies(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}
	return postgresDependencies(pool), pool.Close, nil
}

func memoryDependencies() handlers.Dependencies {
	return serviceDependencies(repositories.NewMemoryFilmRepository(), repositories.NewMemoryUserRepository())
}

func postgresDependencies(pool db.Pool) handlers.Dependencies {
	deps := serviceDependencies(repositories.NewPostgresFilmRepository(pool), repositories.NewPostgresUserRepository(pool))
	if pinger, ok := pool.(handlers.Pinger); ok {
		deps.Storage = pinger
	}
	return deps
}

func serviceDependencies(films repositories.FilmRepository, users repositories.UserRepository) handlers.Dependencies {
	return handlers.Dependencies{
		Films: services.NewFilmService(films, users),
		Users: services.NewUserService(users),
	}
}
