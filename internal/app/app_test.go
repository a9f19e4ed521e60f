package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/app"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/config"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/testutil"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		ScreenshotHost: "screenshots.test",
		SigningSecret:  "test-secret",
		LogDir:         t.TempDir(),
		ObjectStore:    config.ObjectStoreConfig{Type: "memory"},
		KV:             config.KVConfig{Type: "memory"},
	}
	a, err := app.NewApp(context.Background(), cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.png")
	if err := os.WriteFile(path, testutil.PNGData(), 0644); err != nil {
		t.Fatalf("writing capture file: %v", err)
	}
	return path
}

func TestApp_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	resp, err := a.StoreScreenshot(ctx, app.StoreParams{
		FilePath:   writeCapture(t),
		URL:        "https://shop.example.com/cart",
		Title:      "Cart page",
		TenantType: "team",
		TenantID:   "acme",
		Project:    "checkout",
		SessionID:  "sess-42",
	})
	if err != nil {
		t.Fatalf("StoreScreenshot() error = %v", err)
	}
	if resp.ID == "" || resp.Path == "" {
		t.Fatalf("StoreScreenshot() = %+v", resp)
	}

	got, err := a.GetScreenshot(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetScreenshot() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetScreenshot() = nil for stored id")
	}
	if got.Metadata.Tenant.Identifier != "acme" || got.Metadata.Project.Name != "checkout" {
		t.Errorf("metadata = %+v", got.Metadata)
	}
}

func TestApp_StoreScreenshot_MissingFile(t *testing.T) {
	a := newTestApp(t)
	_, err := a.StoreScreenshot(context.Background(), app.StoreParams{
		FilePath: filepath.Join(t.TempDir(), "absent.png"),
		URL:      "https://example.com/",
	})
	if err == nil {
		t.Error("StoreScreenshot() expected error for missing file")
	}
}

func TestApp_DownloadScreenshot(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	resp, err := a.StoreScreenshot(ctx, app.StoreParams{
		FilePath: writeCapture(t),
		URL:      "https://example.com/",
	})
	if err != nil {
		t.Fatalf("StoreScreenshot() error = %v", err)
	}

	var buf bytes.Buffer
	found, err := a.DownloadScreenshot(ctx, resp.ID, &buf)
	if err != nil {
		t.Fatalf("DownloadScreenshot() error = %v", err)
	}
	if !found {
		t.Fatal("DownloadScreenshot() = false for stored id")
	}
	if !bytes.Equal(buf.Bytes(), testutil.PNGData()) {
		t.Error("downloaded bytes differ from original capture")
	}

	found, err = a.DownloadScreenshot(ctx, "absent", &buf)
	if err != nil {
		t.Fatalf("DownloadScreenshot() error = %v", err)
	}
	if found {
		t.Error("DownloadScreenshot() = true for unknown id")
	}
}

func TestApp_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	resp, err := a.StoreScreenshot(ctx, app.StoreParams{
		FilePath: writeCapture(t),
		URL:      "https://example.com/",
	})
	if err != nil {
		t.Fatalf("StoreScreenshot() error = %v", err)
	}

	result, err := a.ListScreenshots(ctx, screenshot.ListRequest{})
	if err != nil {
		t.Fatalf("ListScreenshots() error = %v", err)
	}
	if len(result.Screenshots) != 1 {
		t.Fatalf("ListScreenshots() = %d entries, want 1", len(result.Screenshots))
	}

	deleted, err := a.DeleteScreenshot(ctx, resp.ID)
	if err != nil {
		t.Fatalf("DeleteScreenshot() error = %v", err)
	}
	if !deleted {
		t.Fatal("DeleteScreenshot() = false for stored id")
	}

	result, err = a.ListScreenshots(ctx, screenshot.ListRequest{})
	if err != nil {
		t.Fatalf("ListScreenshots() error = %v", err)
	}
	if len(result.Screenshots) != 0 {
		t.Errorf("ListScreenshots() after delete = %d entries", len(result.Screenshots))
	}
}

func TestApp_SignURL(t *testing.T) {
	a := newTestApp(t)
	signed := a.SignURL("some/path.png", 0)
	if !bytes.Contains([]byte(signed), []byte("signature=")) {
		t.Errorf("SignURL() = %q", signed)
	}
}

func TestApp_ValidateSetup(t *testing.T) {
	a := newTestApp(t)
	if err := a.ValidateSetup(context.Background()); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
