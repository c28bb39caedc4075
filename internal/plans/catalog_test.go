package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportiq/entitlement-service/internal/apperr"
)

func TestCatalog_Limit(t *testing.T) {
	catalog := Default()

	tests := []struct {
		name      string
		plan      string
		feature   string
		wantLimit int64
		wantKind  apperr.Kind
	}{
		{
			name:      "free plan tickets limit",
			plan:      PlanFree,
			feature:   "tickets_analyzed",
			wantLimit: 100,
		},
		{
			name:      "growth plan tickets limit",
			plan:      PlanGrowth,
			feature:   "tickets_analyzed",
			wantLimit: 1000,
		},
		{
			name:      "scale plan exports limit",
			plan:      PlanScale,
			feature:   "csv_exports",
			wantLimit: 200,
		},
		{
			name:     "unknown plan",
			plan:     "legacy",
			feature:  "tickets_analyzed",
			wantKind: apperr.KindNotFound,
		},
		{
			name:     "feature missing from plan",
			plan:     PlanFree,
			feature:  "pdf_reports",
			wantKind: apperr.KindUnknownFeature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, err := catalog.Limit(tt.plan, tt.feature)
			if tt.wantKind != "" {
				assert.Error(t, err)
				assert.True(t, apperr.Is(err, tt.wantKind))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantLimit, limit)
			}
		})
	}
}

func TestCatalog_Has(t *testing.T) {
	catalog := Default()

	assert.True(t, catalog.Has(PlanFree))
	assert.True(t, catalog.Has(PlanGrowth))
	assert.True(t, catalog.Has(PlanScale))
	assert.False(t, catalog.Has("legacy"))
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	catalog, err := Load("")
	require.NoError(t, err)

	limit, err := catalog.Limit(PlanGrowth, "ai_insights")
	require.NoError(t, err)
	assert.Equal(t, int64(200), limit)
}

func TestLoad_FromFile(t *testing.T) {
	content := `plans:
  - key: free
    features:
      tickets_analyzed:
        limit: 50
  - key: enterprise
    features:
      tickets_analyzed:
        limit: 100000
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := Load(path)
	require.NoError(t, err)

	limit, err := catalog.Limit("free", "tickets_analyzed")
	require.NoError(t, err)
	assert.Equal(t, int64(50), limit)

	limit, err = catalog.Limit("enterprise", "tickets_analyzed")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), limit)

	// Файл полностью замещает встроенный каталог.
	assert.False(t, catalog.Has(PlanGrowth))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("file without plans", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plans: []\n"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
