package keypattern

import (
	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// Base computes the base key pattern for one entity:
// partition key and sort key are both "{PREFIX}{delimiter}{primaryKey}".
// Secondary index templates are attached later by the derivers.
func Base(e *model.EntityDescriptor, cfg config.Table) *model.KeyPattern {
	tpl := e.TypePrefix + cfg.Delimiter + "{" + e.PrimaryKey + "}"
	return &model.KeyPattern{
		PartitionKey: tpl,
		SortKey:      tpl,
		Indexes:      make(map[int]model.IndexKeyPair),
	}
}

// Generate attaches a base key pattern to every entity in the registry, in
// declaration order. Entities that already have a pattern keep it.
func Generate(reg *model.Registry, cfg config.Table) {
	for _, e := range reg.Entities() {
		if e.KeyPattern == nil {
			e.KeyPattern = Base(e, cfg)
		}
	}
}
