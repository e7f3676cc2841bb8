// Package repomanager selects a storage backend from the database DSN and
// vends the repositories built on it.
package repomanager

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Prescriptions() prescriptions.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New opens the backend named by the DSN scheme: postgres/postgresql,
// mongodb/mongodb+srv, or memory (also used for an empty DSN).
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewInMemoryRepositoryManager(), nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database DSN: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		m, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "mongodb", "mongodb+srv":
		m, err := OpenMongo(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "memory":
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
