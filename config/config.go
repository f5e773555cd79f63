// Package config holds the table-wide configuration consumed by the schema
// compiler: key attribute names, the key delimiter, and the secondary index
// budget. Configuration is loaded from an optional YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// MaxSecondaryIndexes is the hard ceiling on GSI slots the compiler will
// assign, and separately on LSIs per table. LSIs cannot be added after table
// creation, so the LSI cap is enforced at schema-authoring time.
const MaxSecondaryIndexes = 5

// GSIKeyPair names the physical partition/sort attributes of one GSI slot.
type GSIKeyPair struct {
	PartitionKey string `yaml:"partitionKey"`
	SortKey      string `yaml:"sortKey"`
}

// Table is the table-wide configuration for one compilation.
type Table struct {
	TableName string `yaml:"tableName" env:"TABLESMITH_TABLE_NAME"`

	// Delimiter joins entity type prefixes and values inside keys.
	Delimiter string `yaml:"delimiter" env:"TABLESMITH_DELIMITER"`

	PartitionKeyName string `yaml:"partitionKeyName" env:"TABLESMITH_PK_NAME"`
	SortKeyName      string `yaml:"sortKeyName" env:"TABLESMITH_SK_NAME"`

	// EntityTypeAttribute is the item attribute holding the entity type name,
	// used by scan-based access patterns to filter one entity out of the table.
	EntityTypeAttribute string `yaml:"entityTypeAttribute" env:"TABLESMITH_TYPE_ATTR"`

	// MaxGSICount bounds the shared GSI/sparse index budget. Clamped to
	// MaxSecondaryIndexes.
	MaxGSICount int `yaml:"maxGSICount" env:"TABLESMITH_MAX_GSI"`

	SoftDeleteAttribute string `yaml:"softDeleteAttribute" env:"TABLESMITH_SOFT_DELETE_ATTR"`
	TTLAttribute        string `yaml:"ttlAttribute" env:"TABLESMITH_TTL_ATTR"`

	// GSIKeys names the physical key attributes per GSI slot, 1-based by
	// position. Unset slots default to gsi<N>pk / gsi<N>sk.
	GSIKeys []GSIKeyPair `yaml:"gsiKeys,omitempty"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Table {
	return Table{
		TableName:           "app-table",
		Delimiter:           "#",
		PartitionKeyName:    "pk",
		SortKeyName:         "sk",
		EntityTypeAttribute: "entityType",
		MaxGSICount:         MaxSecondaryIndexes,
		SoftDeleteAttribute: "deletedAt",
		TTLAttribute:        "expiresAt",
	}
}

// Load reads configuration from the YAML file at path (skipped when path is
// empty or the file does not exist), then applies environment overrides, then
// normalizes defaults and clamps the index budget.
func Load(path string) (Table, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Table{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Table{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Table{}, fmt.Errorf("apply env overrides: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (t *Table) normalize() {
	if t.Delimiter == "" {
		t.Delimiter = "#"
	}
	if t.PartitionKeyName == "" {
		t.PartitionKeyName = "pk"
	}
	if t.SortKeyName == "" {
		t.SortKeyName = "sk"
	}
	if t.MaxGSICount <= 0 || t.MaxGSICount > MaxSecondaryIndexes {
		t.MaxGSICount = MaxSecondaryIndexes
	}
}

// GSIKeyPairFor returns the physical key attribute names for index slot n
// (1-based), falling back to the gsi<N>pk / gsi<N>sk convention.
func (t Table) GSIKeyPairFor(n int) GSIKeyPair {
	if n >= 1 && n <= len(t.GSIKeys) {
		pair := t.GSIKeys[n-1]
		if pair.PartitionKey != "" && pair.SortKey != "" {
			return pair
		}
	}
	return GSIKeyPair{
		PartitionKey: fmt.Sprintf("gsi%dpk", n),
		SortKey:      fmt.Sprintf("gsi%dsk", n),
	}
}

// GSIName returns the conventional name for index slot n.
func (t Table) GSIName(n int) string {
	return fmt.Sprintf("gsi%d", n)
}
