package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/config"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/kv"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/metrics"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/objectstore"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// App is the application layer between the CLI and the screenshot store.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings and file paths, and manages store lifecycles on
// Close.
type App struct {
	cfg     *config.Config
	kv      screenshot.KVStore
	objects screenshot.ObjectStore
	store   *screenshot.Store
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Store", "Sweep").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	clock := screenshot.RealClock{}

	objects, err := objectstore.NewObjectStoreFromConfig(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	kvStore, err := kv.NewKVStoreFromConfig(cfg.KV, clock)
	if err != nil {
		return nil, fmt.Errorf("creating kv store: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		kvStore.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	retention := screenshot.NewRetentionPolicy(log)
	retention.SetTierDays(screenshot.TierFree, cfg.Retention.Free)
	retention.SetTierDays(screenshot.TierUser, cfg.Retention.User)
	retention.SetTierDays(screenshot.TierTeam, cfg.Retention.Team)
	retention.SetTierDays(screenshot.TierEnterprise, cfg.Retention.Enterprise)

	if cfg.SigningSecret == "" {
		log.Warn("signing_secret is empty; signed URLs will not be secure")
	}
	signer := screenshot.NewURLSigner(cfg.ScreenshotHost, []byte(cfg.SigningSecret))

	store := screenshot.NewStore(objects, kvStore, retention, signer,
		log, metrics.Default(), clock, screenshot.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		kv:      kvStore,
		objects: objects,
		store:   store,
		logFile: logFile,
	}, nil
}

// StoreParams are the raw inputs for storing a screenshot from a local file.
type StoreParams struct {
	FilePath   string
	URL        string
	Title      string
	TenantType string
	TenantID   string
	Plan       string
	Project    string
	SessionID  string
	Tags       []string
}

// StoreScreenshot reads a capture from disk and stores it.
func (a *App) StoreScreenshot(ctx context.Context, p StoreParams) (*screenshot.Response, error) {
	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading screenshot file: %w", err)
	}

	req := screenshot.StoreRequest{
		Data:    base64.StdEncoding.EncodeToString(data),
		URL:     p.URL,
		Title:   p.Title,
		Project: p.Project,
		Tags:    p.Tags,
	}
	if p.TenantType != "" || p.TenantID != "" {
		req.Tenant = &screenshot.TenantInfo{
			Type:       screenshot.TenantType(p.TenantType),
			Identifier: p.TenantID,
			Plan:       p.Plan,
		}
	}
	if p.SessionID != "" {
		req.Session = &screenshot.SessionInfo{ID: p.SessionID, Type: screenshot.SessionDefault}
	}

	return a.store.Store(ctx, req)
}

// GetScreenshot retrieves a screenshot record by id. Returns nil when the
// id is unknown.
func (a *App) GetScreenshot(ctx context.Context, id string) (*screenshot.Response, error) {
	return a.store.Get(ctx, id)
}

// DownloadScreenshot writes the stored blob for id to w. Returns false when
// the id is unknown.
func (a *App) DownloadScreenshot(ctx context.Context, id string, w io.Writer) (bool, error) {
	resp, err := a.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if resp == nil {
		return false, nil
	}
	if err := a.objects.Get(ctx, resp.Path, w); err != nil {
		return false, fmt.Errorf("downloading screenshot: %w", err)
	}
	return true, nil
}

// ListScreenshots returns one page of screenshots.
func (a *App) ListScreenshots(ctx context.Context, req screenshot.ListRequest) (*screenshot.ListResult, error) {
	return a.store.List(ctx, req)
}

// DeleteScreenshot removes a screenshot. Returns false when the id is
// unknown.
func (a *App) DeleteScreenshot(ctx context.Context, id string) (bool, error) {
	return a.store.Delete(ctx, id)
}

// SweepExpired removes all screenshots past their expiry, returning how
// many were removed.
func (a *App) SweepExpired(ctx context.Context) (int, error) {
	return a.store.SweepExpired(ctx)
}

// SignURL returns a time-limited signed URL for a stored path.
func (a *App) SignURL(path string, ttl time.Duration) string {
	return a.store.SignedURL(path, ttl)
}

// ValidateSetup verifies the object store backend is reachable.
func (a *App) ValidateSetup(ctx context.Context) error {
	return a.objects.ValidateSetup(ctx)
}

// Close releases the kv store and log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.kv.Close(); err != nil {
		firstErr = err
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
