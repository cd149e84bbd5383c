// Package backend opens the store selected by configuration.
package backend

import (
	"fmt"
	"io"

	"taskpro/internal/backend/rest"
	"taskpro/internal/backend/sqlstore"
	"taskpro/internal/config"
	"taskpro/internal/service"
)

// Store is a service backend holding resources until closed.
type Store interface {
	service.Service
	io.Closer
}

// Open returns the backend named by cfg.Backend.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		c, err := rest.New(cfg.RemoteURL, cfg.ClientID)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendSQLite, config.BackendMySQL:
		s, err := OpenSQL(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// OpenSQL opens the database for the sqlite or mysql backend.
func OpenSQL(cfg *config.Config) (*sqlstore.Store, error) {
	driver := sqlstore.DriverSQLite
	switch cfg.Backend {
	case config.BackendSQLite:
	case config.BackendMySQL:
		driver = sqlstore.DriverMySQL
	default:
		return nil, fmt.Errorf("backend %q has no database", cfg.Backend)
	}
	return sqlstore.Open(driver, cfg.DSN, sqlstore.WithSessionTTL(cfg.SessionTTL))
}
