package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/config"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/storage"
	"github.com/Veraticus/coursemix/internal/vault"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine opens storage and the vault and builds the gradebook engine.
// The returned store must be closed by the caller.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, error) {
	settings, err := config.LoadSettings(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	v, err := vault.New(viper.GetString("vault.key"))
	if err != nil {
		return nil, nil, common.NewUserError(
			"No vault key configured. Set COURSEMIX_VAULT_KEY (or vault.key in config.yaml) to the secret used to encrypt your grades.",
			err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	e, err := engine.New(store, v, settings)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return e, store, nil
}

func parseTermFlag(raw string) (model.Term, error) {
	if raw == "" {
		return "", nil
	}
	return model.ParseTerm(raw)
}

func parseStatusFlag(raw string) (model.GradeStatus, error) {
	if raw == "" {
		return "", nil
	}
	status, ok := model.ParseGradeStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown status %q (expected completed or in-progress)", raw)
	}
	return status, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &v, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
