package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnews/internal/config"
	"goodnews/internal/logger"
)

const testFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Good</title>
<item><title>Volunteers rescue stranded dolphins</title><link>https://example.org/dolphins</link><description>A happy ending.</description></item>
</channel></rss>`

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Logger.File = filepath.Join(dir, "app.log")
	cfg.Logger.ErrorFile = filepath.Join(dir, "error.log")
	cfg.App.ProcessingInterval = "0"
	cfg.App.FeedURLs = []config.FeedURL{{Name: "Test", URL: feedURL}}
	cfg.Server.Address = "127.0.0.1:0"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestApp_FetchOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, srv.URL))
	require.NoError(t, err)
	defer a.Close()

	report, err := a.FetchOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.NewArticles)
	assert.Equal(t, 1, report.TotalInDatabase)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, testConfig(t, "https://example.org/feed"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := config.New()
	cfg.Database.Driver = "mongo"
	_, err := OpenStorage(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrate_SQLite(t *testing.T) {
	cfg := testConfig(t, "https://example.org/feed")
	require.NoError(t, Migrate(context.Background(), cfg, logger.Discard()))
	assert.FileExists(t, cfg.Database.Path)
}

func TestIngestionConfig(t *testing.T) {
	cfg := testConfig(t, "https://example.org/feed")
	cfg.App.FeedTimeout = "3s"
	ic := IngestionConfig(cfg)
	require.Len(t, ic.Feeds, 1)
	assert.Equal(t, "Test", ic.Feeds[0].Name)
	assert.Equal(t, 3*time.Second, ic.FeedTimeout)
	assert.Equal(t, 300, ic.ContentMaxLength)
}

func TestAdminFetchTimeout_BelowWriteTimeout(t *testing.T) {
	for _, wt := range []time.Duration{time.Second, 5 * time.Second, 60 * time.Second, 10 * time.Minute} {
		got := adminFetchTimeout(wt)
		assert.Less(t, got, wt, wt.String())
		assert.Positive(t, got, wt.String())
	}
	assert.Equal(t, 54*time.Second, adminFetchTimeout(60*time.Second))
}
