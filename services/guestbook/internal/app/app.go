package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"guestbook/internal/util"
	"guestbook/pkg/domain"
	"guestbook/pkg/store"
)

const defaultStoreTimeout = 5 * time.Second

// Config holds runtime configuration for the core application.
type Config struct {
	// Store, when set, is used as-is and the driver settings are ignored.
	Store store.Store

	Driver      string
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	SQLitePath  string
	Table       string

	Location     *time.Location
	StoreTimeout time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// App is the guestbook service: validation, timestamping and store access.
type App struct {
	store   store.Store
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

// New constructs the application and opens the configured entry store.
func New(cfg Config) (*App, error) {
	entries := cfg.Store
	if entries == nil {
		var err error
		entries, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		store:   entries,
		loc:     loc,
		timeout: timeout,
		now:     now,
	}, nil
}

func openStore(cfg Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgrest":
		s, err := store.NewPostgRESTStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Table, nil)
		if err != nil {
			return nil, fmt.Errorf("init postgrest store: %w", err)
		}
		return s, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("database URL required")
		}
		s, err := store.NewGormStore(cfg.DatabaseURL, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return s, nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Close releases the store when it holds resources.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Create validates the submission, stamps it and inserts it, then returns the
// refreshed list. Invalid input never reaches the store.
func (a *App) Create(ctx context.Context, name, message string) ([]domain.Entry, error) {
	name = domain.NormalizeText(name)
	message = domain.NormalizeText(message)
	if err := domain.ValidateEntry(name, message); err != nil {
		return nil, err
	}
	entry := domain.Entry{
		Name:      name,
		Message:   message,
		Timestamp: a.Timestamp(),
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	created, err := a.store.InsertEntry(callCtx, entry)
	cancel()
	if err != nil {
		return nil, a.storeError(ctx, "insert", err)
	}
	util.LoggerFromContext(ctx).Debug("entry created", "id", created.ID)
	return a.List(ctx)
}

// List returns every entry, newest first.
func (a *App) List(ctx context.Context) ([]domain.Entry, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	entries, err := a.store.ListEntries(callCtx)
	if err != nil {
		return nil, a.storeError(ctx, "list", err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

// Delete removes the entry with id and returns the refreshed list. Deleting an
// id that does not exist succeeds.
func (a *App) Delete(ctx context.Context, id int64) ([]domain.Entry, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	err := a.store.DeleteEntry(callCtx, id)
	cancel()
	if err != nil {
		return nil, a.storeError(ctx, "delete", err)
	}
	util.LoggerFromContext(ctx).Debug("entry deleted", "id", id)
	return a.List(ctx)
}

// Timestamp formats the current time in the configured zone.
func (a *App) Timestamp() string {
	return a.now().In(a.loc).Format(domain.TimestampLayout)
}

func (a *App) storeError(ctx context.Context, op string, err error) error {
	util.LoggerFromContext(ctx).Error("entry store call failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
