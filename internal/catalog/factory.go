package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"ciid-go/internal/ciid"
	"ciid-go/internal/config"
)

// FileName is the catalog database inside the configured data directory.
const FileName = "ciid.db"

// NewCatalogFromConfig opens the catalog selected by cfg.Type and brings its
// schema up to date. An empty type means no catalog and returns nil.
func NewCatalogFromConfig(cfg config.CatalogConfig, clock ciid.Clock, ids ciid.IDGenerator) (*SQLiteCatalog, error) {
	var path string
	switch cfg.Type {
	case "":
		return nil, nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite catalog")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, FileName)
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}

	c, err := NewSQLiteCatalog(path, clock, ids)
	if err != nil {
		return nil, err
	}
	if err := c.MigrateUp(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.CheckMigrations(); err != nil {
		c.Close()
		return nil, fmt.Errorf("catalog schema out of date: %w", err)
	}
	return c, nil
}
