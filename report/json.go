package report

import (
	"encoding/json"
	"fmt"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// Catalog is the JSON form of a compilation result consumed by CI tooling:
// the validate step fails a build when Conflicts is non-empty.
type Catalog struct {
	Table       string                  `json:"table"`
	Deployable  bool                    `json:"deployable"`
	Entities    []CatalogEntity         `json:"entities"`
	Patterns    []model.AccessPattern   `json:"accessPatterns"`
	Assignments map[string]int          `json:"indexAssignments"`
	Conflicts   []string                `json:"conflicts,omitempty"`
	Missing     []model.MissingPattern  `json:"missingPatterns,omitempty"`
	Suggestions []string                `json:"suggestions,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// CatalogEntity summarizes one entity's computed key patterns.
type CatalogEntity struct {
	Name         string                     `json:"name"`
	TypePrefix   string                     `json:"typePrefix"`
	PrimaryKey   string                     `json:"primaryKey"`
	PartitionKey string                     `json:"partitionKey"`
	SortKey      string                     `json:"sortKey"`
	Indexes      map[int]model.IndexKeyPair `json:"indexes,omitempty"`
}

// JSON renders the catalog with indentation.
func JSON(res *compiler.Result, cfg config.Table) ([]byte, error) {
	cat := Catalog{
		Table:       cfg.TableName,
		Deployable:  res.Deployable(),
		Patterns:    res.Patterns,
		Assignments: res.Registry.Assignments(),
		Missing:     res.Missing,
		Suggestions: res.Suggestions,
		Warnings:    res.Warnings,
	}

	for _, c := range res.Conflicts {
		cat.Conflicts = append(cat.Conflicts, c.String())
	}
	for _, e := range res.Registry.Entities() {
		cat.Entities = append(cat.Entities, CatalogEntity{
			Name:         e.Name,
			TypePrefix:   e.TypePrefix,
			PrimaryKey:   e.PrimaryKey,
			PartitionKey: e.KeyPattern.PartitionKey,
			SortKey:      e.KeyPattern.SortKey,
			Indexes:      e.KeyPattern.Indexes,
		})
	}

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog json: %w", err)
	}
	return data, nil
}
