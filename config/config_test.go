package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablesmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "app-table", cfg.TableName)
	assert.Equal(t, "#", cfg.Delimiter)
	assert.Equal(t, "pk", cfg.PartitionKeyName)
	assert.Equal(t, "sk", cfg.SortKeyName)
	assert.Equal(t, "entityType", cfg.EntityTypeAttribute)
	assert.Equal(t, MaxSecondaryIndexes, cfg.MaxGSICount)
	assert.Equal(t, "deletedAt", cfg.SoftDeleteAttribute)
	assert.Equal(t, "expiresAt", cfg.TTLAttribute)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
tableName: orders
delimiter: "|"
maxGSICount: 3
gsiKeys:
  - partitionKey: GSI1PK
    sortKey: GSI1SK
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.TableName)
	assert.Equal(t, "|", cfg.Delimiter)
	assert.Equal(t, 3, cfg.MaxGSICount)
	// untouched fields keep their defaults
	assert.Equal(t, "pk", cfg.PartitionKeyName)
	assert.Equal(t, GSIKeyPair{PartitionKey: "GSI1PK", SortKey: "GSI1SK"}, cfg.GSIKeyPairFor(1))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tableName: from-file\n")
	t.Setenv("TABLESMITH_TABLE_NAME", "from-env")
	t.Setenv("TABLESMITH_MAX_GSI", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TableName)
	assert.Equal(t, 2, cfg.MaxGSICount)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "tableName: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ClampsIndexBudget(t *testing.T) {
	for _, raw := range []string{"maxGSICount: 99", "maxGSICount: -1", "maxGSICount: 0"} {
		cfg, err := Load(writeConfig(t, raw))
		require.NoError(t, err)
		assert.Equal(t, MaxSecondaryIndexes, cfg.MaxGSICount, raw)
	}
}

func TestGSIKeyPairFor_Fallback(t *testing.T) {
	cfg := Default()

	assert.Equal(t, GSIKeyPair{PartitionKey: "gsi3pk", SortKey: "gsi3sk"}, cfg.GSIKeyPairFor(3))

	// a half-filled slot falls back too
	cfg.GSIKeys = []GSIKeyPair{{PartitionKey: "GSI1PK"}}
	assert.Equal(t, GSIKeyPair{PartitionKey: "gsi1pk", SortKey: "gsi1sk"}, cfg.GSIKeyPairFor(1))
}

func TestGSIName(t *testing.T) {
	assert.Equal(t, "gsi1", Default().GSIName(1))
	assert.Equal(t, "gsi5", Default().GSIName(5))
}
