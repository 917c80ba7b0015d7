package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
	"github.com/sagarc03/quire/breaker"
	"github.com/sagarc03/quire/config"
	"github.com/sagarc03/quire/database"
	"github.com/sagarc03/quire/filesystem"
	"github.com/sagarc03/quire/internal/supaclient"
	"github.com/sagarc03/quire/keybackend"
	"github.com/sagarc03/quire/objectstore"
)

// backends holds the opened metadata and blob stores for one command run.
type backends struct {
	db       database.Database
	repo     quire.RecordRepo
	storage  quire.BlobStorage
	supabase *supaclient.Lazy
	closers  []func() error
}

func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackends connects the configured stores. createStorage makes a missing filesystem
// root instead of failing, for init and serve.
func openBackends(ctx context.Context, cfg *config.Config, createStorage bool) (*backends, error) {
	b := &backends{}
	if cfg.NeedsSupabase() {
		b.supabase = supaclient.NewLazy(cfg.Supabase)
	}

	db, err := database.Connect(ctx, database.Config{
		Type:     cfg.Database.Type,
		DSN:      cfg.Database.DSN,
		Tables:   cfg.Database.Tables,
		Supabase: b.supabase,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	b.db = db
	b.closers = append(b.closers, db.Close)
	b.repo = db.GetRepo()

	if err = b.openStorage(cfg, createStorage); err != nil {
		_ = b.Close()
		return nil, err
	}

	if cfg.Breaker.Enabled {
		settings := cfg.Breaker.Settings()
		if cfg.Database.Type == "supabase" {
			b.repo = breaker.Repo(b.repo, breaker.New("metadata", settings))
		}
		if cfg.Storage.Type == "supabase" {
			b.storage = breaker.Storage(b.storage, breaker.New("storage", settings))
		}
	}

	slog.Debug("backends ready", "database", cfg.Database.Type, "storage", cfg.Storage.Type)
	return b, nil
}

func (b *backends) openStorage(cfg *config.Config, create bool) error {
	switch cfg.Storage.Type {
	case "supabase":
		store, err := objectstore.New(b.supabase, cfg.Storage.Bucket)
		if err != nil {
			return fmt.Errorf("open object store: %w", err)
		}
		b.storage = store
		return nil

	case "filesystem":
		if create {
			if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
				return fmt.Errorf("create storage directory: %w", err)
			}
		} else if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
			return fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
		}

		root, err := os.OpenRoot(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open storage root: %w", err)
		}
		b.closers = append(b.closers, root.Close)
		b.storage = filesystem.NewFileStorage(root, filesystem.WithCompression(cfg.Storage.Compress))
		return nil

	default:
		return fmt.Errorf("unsupported storage type: %q", cfg.Storage.Type)
	}
}

func (b *backends) service() (*quire.Service, error) {
	return quire.NewService(b.repo, b.storage, quire.ServiceConfig{})
}

// newVerifier builds the bearer token verifier for the configured auth mode.
func newVerifier(cfg *config.Config, client *supaclient.Lazy) (auth.Verifier, error) {
	switch cfg.Auth.Mode {
	case "jwt":
		v, err := auth.NewJWTVerifier(cfg.Auth.JWT)
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: %w", err)
		}
		return v, nil
	case "supabase":
		return auth.NewSupabaseVerifier(client), nil
	case "static":
		store, err := keybackend.NewTokenStore(cfg.Auth.Tokens)
		if err != nil {
			return nil, fmt.Errorf("load static tokens: %w", err)
		}
		if store.Len() == 0 {
			slog.Warn("static auth mode with no tokens configured, every request will be rejected")
		}
		return auth.NewStaticVerifier(store), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Auth.Mode)
	}
}
