package deriver

import (
	"fmt"
	"strings"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// maxLSIPerEntity caps how many alternate sort orders one entity may claim.
const maxLSIPerEntity = 2

// LSIUsage documents which entity and attribute an LSI serves.
type LSIUsage struct {
	Index     string
	Entity    string
	Attribute string
}

// DeriveLSIs finds, per entity, up to two attributes worth sorting by within
// the entity's own partition: timestamp-like attributes and attributes
// explicitly flagged as local index columns. The table-wide cap of
// config.MaxSecondaryIndexes is hard; LSIs cannot be added after the table is
// created, so excess candidates are dropped with a warning at authoring time.
//
// The primary key and the soft-delete attribute are excluded: the primary key
// already orders the base table, and soft-delete is better served by a sparse
// global index.
func DeriveLSIs(reg *model.Registry, cfg config.Table) ([]IndexDefinition, []LSIUsage) {
	var (
		defs  []IndexDefinition
		usage []LSIUsage
	)

	for _, e := range reg.Entities() {
		candidates := lsiCandidates(e, cfg)
		if len(candidates) > maxLSIPerEntity {
			candidates = candidates[:maxLSIPerEntity]
		}

		for _, attr := range candidates {
			if len(defs) >= config.MaxSecondaryIndexes {
				reg.Warnf("exceeded max LSI count (%d): no local index for %s.%s", config.MaxSecondaryIndexes, e.Name, attr)
				continue
			}
			name := fmt.Sprintf("lsi%d", len(defs)+1)
			defs = append(defs, IndexDefinition{
				Name:         name,
				PartitionKey: cfg.PartitionKeyName,
				SortKey:      attr,
				Projection:   ProjectAll,
				Local:        true,
			})
			usage = append(usage, LSIUsage{Index: name, Entity: e.Name, Attribute: attr})
		}
	}

	return defs, usage
}

func lsiCandidates(e *model.EntityDescriptor, cfg config.Table) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range e.Attributes {
		if a.Name == e.PrimaryKey || a.Name == cfg.SoftDeleteAttribute {
			continue
		}
		if !a.LocalIndex && !timestampLike(a) {
			continue
		}
		if !seen[a.Name] {
			seen[a.Name] = true
			out = append(out, a.Name)
		}
	}
	return out
}

func timestampLike(a model.AttributeDescriptor) bool {
	switch a.Cast {
	case "datetime", "timestamp", "date":
		return true
	}
	lower := strings.ToLower(a.Name)
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
		return true
	}
	return a.Name == "createdAt" || a.Name == "updatedAt"
}
