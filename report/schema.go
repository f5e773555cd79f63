// Package report renders a compilation result for human and tooling
// consumers: a YAML schema file describing the physical table, a JSON catalog,
// and a markdown access-pattern reference.
package report

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
)

// SchemaFile is the root structure of the generated schema YAML.
type SchemaFile struct {
	Tables []TableSchema `yaml:"tables"`
}

// TableSchema describes the physical table structure with its entities.
type TableSchema struct {
	Name         string         `yaml:"name"`
	PartitionKey KeyDefYAML     `yaml:"partitionKey"`
	SortKey      *KeyDefYAML    `yaml:"sortKey,omitempty"`
	GSIs         []GSISchema    `yaml:"gsis,omitempty"`
	LSIs         []LSISchema    `yaml:"lsis,omitempty"`
	Entities     []EntitySchema `yaml:"entities,omitempty"`
}

// KeyDefYAML is a key attribute definition for YAML output.
type KeyDefYAML struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // "S", "N", or "B"
}

// GSISchema describes a Global Secondary Index.
type GSISchema struct {
	Name         string      `yaml:"name"`
	PartitionKey KeyDefYAML  `yaml:"partitionKey"`
	SortKey      *KeyDefYAML `yaml:"sortKey,omitempty"`
	Projection   string      `yaml:"projection,omitempty"`
	Sparse       bool        `yaml:"sparse,omitempty"`
}

// LSISchema describes a Local Secondary Index.
type LSISchema struct {
	Name       string `yaml:"name"`
	SortKey    string `yaml:"sortKey"`
	Projection string `yaml:"projection,omitempty"`
	Entity     string `yaml:"entity,omitempty"`
}

// EntitySchema describes an entity type stored in the table.
type EntitySchema struct {
	Type                string           `yaml:"type"`
	PartitionKeyPattern string           `yaml:"partitionKeyPattern"`
	SortKeyPattern      string           `yaml:"sortKeyPattern,omitempty"`
	Fields              []FieldSchema    `yaml:"fields,omitempty"`
	GSIMappings         []GSIMappingYAML `yaml:"gsiMappings,omitempty"`
	SoftDelete          bool             `yaml:"softDelete,omitempty"`
	TTL                 bool             `yaml:"ttl,omitempty"`
	Versioned           bool             `yaml:"versioned,omitempty"`
}

// FieldSchema describes an entity field.
type FieldSchema struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Unique   bool   `yaml:"unique,omitempty"`
}

// GSIMappingYAML describes how an entity maps onto a GSI.
type GSIMappingYAML struct {
	GSI              string `yaml:"gsi"`
	PartitionPattern string `yaml:"partitionPattern"`
	SortPattern      string `yaml:"sortPattern,omitempty"`
}

// BuildSchema converts a compilation result into the schema file structure.
func BuildSchema(res *compiler.Result, cfg config.Table) SchemaFile {
	tbl := TableSchema{
		Name:         cfg.TableName,
		PartitionKey: KeyDefYAML{Name: cfg.PartitionKeyName, Kind: "S"},
		SortKey:      &KeyDefYAML{Name: cfg.SortKeyName, Kind: "S"},
	}

	for _, def := range res.AllGlobalIndexes() {
		tbl.GSIs = append(tbl.GSIs, GSISchema{
			Name:         def.Name,
			PartitionKey: KeyDefYAML{Name: def.PartitionKey, Kind: "S"},
			SortKey:      &KeyDefYAML{Name: def.SortKey, Kind: "S"},
			Projection:   string(def.Projection),
			Sparse:       def.Sparse,
		})
	}

	for i, def := range res.LSIs {
		entry := LSISchema{
			Name:       def.Name,
			SortKey:    def.SortKey,
			Projection: string(def.Projection),
		}
		if i < len(res.LSIUsage) {
			entry.Entity = res.LSIUsage[i].Entity
		}
		tbl.LSIs = append(tbl.LSIs, entry)
	}

	for _, e := range res.Registry.Entities() {
		es := EntitySchema{
			Type:                e.Name,
			PartitionKeyPattern: e.KeyPattern.PartitionKey,
			SortKeyPattern:      e.KeyPattern.SortKey,
			SoftDelete:          e.Traits.SoftDelete,
			TTL:                 e.Traits.TTL,
			Versioned:           e.Traits.Versioning,
		}
		for _, a := range e.Attributes {
			if a.Hidden {
				continue
			}
			es.Fields = append(es.Fields, FieldSchema{
				Name:     a.Name,
				Type:     a.Cast,
				Required: a.Required,
				Unique:   a.Unique,
			})
		}
		for n := 1; n <= config.MaxSecondaryIndexes; n++ {
			pair, ok := e.KeyPattern.Indexes[n]
			if !ok {
				continue
			}
			es.GSIMappings = append(es.GSIMappings, GSIMappingYAML{
				GSI:              cfg.GSIName(n),
				PartitionPattern: pair.PartitionKey,
				SortPattern:      pair.SortKey,
			})
		}
		tbl.Entities = append(tbl.Entities, es)
	}

	return SchemaFile{Tables: []TableSchema{tbl}}
}

// SchemaYAML renders the schema file as YAML.
func SchemaYAML(res *compiler.Result, cfg config.Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(BuildSchema(res, cfg)); err != nil {
		return nil, fmt.Errorf("encode schema yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close schema yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}
