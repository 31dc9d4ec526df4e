package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ROOT", "/srv/shop")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/shop", "csv/VG.csv"), cfg.Import.FilePath)
	assert.Equal(t, 100, cfg.Import.BatchSize)
	assert.Equal(t, time.Hour, cfg.Import.ProgressTTL)
	assert.Equal(t, VariantsInline, cfg.Media.VariantsMode)
	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
}

func TestLoad_AbsoluteImportPath(t *testing.T) {
	t.Setenv("IMPORT_FILE_PATH", "/data/catalog.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.csv", cfg.Import.FilePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown driver",
			env:     map[string]string{"STORE_DRIVER": "mysql"},
			wantErr: "STORE_DRIVER",
		},
		{
			name:    "unknown variants mode",
			env:     map[string]string{"MEDIA_VARIANTS_MODE": "later"},
			wantErr: "MEDIA_VARIANTS_MODE",
		},
		{
			name:    "max batch below default batch",
			env:     map[string]string{"IMPORT_BATCH_SIZE": "200", "IMPORT_MAX_BATCH_SIZE": "50"},
			wantErr: "IMPORT_MAX_BATCH_SIZE",
		},
		{
			name:    "production with default secret",
			env:     map[string]string{"APP_ENV": "production"},
			wantErr: "JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
