package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("REPORT_ENGINE", "")

	cfg := Load()
	assert.Equal(t, "voltbill", cfg.AppName)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, ReportEngineMaroto, cfg.Report.Engine)
	assert.Equal(t, ReportStorageFilesystem, cfg.Report.Storage)
	assert.Equal(t, 500, cfg.Ingest.ChunkSize)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.UploadBurst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("REPORT_ENGINE", "chromedp")
	t.Setenv("REPORT_STORAGE", "S3")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("INGEST_CHUNK_SIZE", "not-a-number")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_UPLOAD_RATE", "0.5")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, ReportEngineChromedp, cfg.Report.Engine)
	assert.Equal(t, ReportStorageS3, cfg.Report.Storage)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 500, cfg.Ingest.ChunkSize)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 0.5, cfg.RateLimit.UploadRate, 1e-9)
}

func TestCSVDialectHolderDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewCSVDialectHolder(zap.NewNop())
	require.NoError(t, err)

	dialect := holder.Get()
	assert.Equal(t, ';', dialect.Comma())
	assert.Equal(t, "Poraba [kWh]", dialect.ConsumptionColumn)
	assert.NotEmpty(t, dialect.TimestampLayouts)
}

func TestCSVDialectHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "csv:\n  delimiter: \",\"\n  timestampColumn: ts\n  consumptionColumn: kwh\n  priceColumn: eur\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ingest.yml"), []byte(content), 0o644))

	holder, err := NewCSVDialectHolder(zap.NewNop())
	require.NoError(t, err)

	dialect := holder.Get()
	assert.Equal(t, ',', dialect.Comma())
	assert.Equal(t, "ts", dialect.TimestampColumn)
	assert.Equal(t, "kwh", dialect.ConsumptionColumn)
}

func TestCSVDialectHolderRejectsBadDelimiter(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "csv:\n  delimiter: \";;\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ingest.yml"), []byte(content), 0o644))

	_, err := NewCSVDialectHolder(zap.NewNop())
	assert.Error(t, err)
}
