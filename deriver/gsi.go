package deriver

import (
	"strings"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/keypattern"
	"github.com/okvist/tablesmith/model"
)

// DeriveGSIs walks the registry in entity-declaration order and assigns global
// secondary index slots: first to relationships flagged as requiring an index,
// then to unique attributes. Slot numbers are first-come-first-served and
// bounded by cfg.MaxGSICount; once the budget is exhausted every further
// candidate is recorded in the registry's missing-pattern list instead.
//
// The returned definitions describe the physical indexes to provision, one per
// assigned slot, in slot order.
func DeriveGSIs(reg *model.Registry, cfg config.Table) []IndexDefinition {
	defs := make(map[int]IndexDefinition)

	// Relationships across all entities claim slots before any unique
	// attribute does: cross-entity queries are the reason the index budget
	// exists, unique lookups fill what remains.
	for _, e := range reg.Entities() {
		for i := range e.Relationships {
			deriveRelationshipGSI(reg, cfg, e, &e.Relationships[i], defs)
		}
	}
	for _, e := range reg.Entities() {
		for _, attr := range e.UniqueAttributes() {
			deriveUniqueGSI(reg, cfg, e, attr.Name, defs)
		}
	}

	return slotOrder(defs)
}

func deriveRelationshipGSI(reg *model.Registry, cfg config.Table, e *model.EntityDescriptor, r *model.RelationshipDescriptor, defs map[int]IndexDefinition) {
	if !r.RequiresIndex {
		return
	}

	related := reg.Get(r.Related)
	if related == nil {
		reg.Warnf("related model %q not found for %s %s relationship; omitting index", r.Related, e.Name, r.Kind)
		return
	}

	fk := r.ForeignKey
	if fk == "" {
		fk = defaultForeignKey(r.Related)
	}

	var pair model.IndexKeyPair
	switch r.Kind {
	case model.BelongsTo, model.BelongsToMany:
		// Adjacency list: all children of one parent share an index partition.
		// For belongsToMany the caller follows up with a batch get against the
		// main table to materialize the related items.
		pair = model.IndexKeyPair{
			PartitionKey: related.TypePrefix + cfg.Delimiter + "{" + fk + "}",
			SortKey:      e.TypePrefix + cfg.Delimiter + "{" + e.PrimaryKey + "}",
		}
	case model.HasOne:
		// Reverse lookup from the owning side.
		pair = model.IndexKeyPair{
			PartitionKey: e.TypePrefix + cfg.Delimiter + "{" + e.PrimaryKey + "}",
			SortKey:      related.TypePrefix + cfg.Delimiter + "{" + fk + "}",
		}
	case model.HasMany:
		// Children are queried on the main table via the parent partition and
		// a begins_with sort condition; no dedicated index needed.
		return
	default:
		reg.Warnf("unknown relationship kind %q on %s; omitting index", r.Kind, e.Name)
		return
	}

	key := model.AssignmentKey(e.Name, string(r.Kind), r.Related)
	n, ok := reg.Assign(key, cfg.MaxGSICount)
	if !ok {
		reg.Warnf("exceeded max GSI count (%d): no index for %s %s %s", cfg.MaxGSICount, e.Name, r.Kind, r.Related)
		reg.AddMissing(model.MissingPattern{
			Entity: e.Name,
			Kind:   string(r.Kind),
			Target: r.Related,
			Reason: "GSI budget exhausted; consider raising maxGSICount",
		})
		return
	}

	r.IndexNumber = n
	e.KeyPattern.Indexes[n] = pair
	ensureDefinition(defs, cfg, n, false)
}

func deriveUniqueGSI(reg *model.Registry, cfg config.Table, e *model.EntityDescriptor, attr string, defs map[int]IndexDefinition) {
	key := model.AssignmentKey(e.Name, "unique", attr)
	n, ok := reg.Assign(key, cfg.MaxGSICount)
	if !ok {
		reg.Warnf("exceeded max GSI count (%d): no unique lookup index for %s.%s", cfg.MaxGSICount, e.Name, attr)
		reg.AddMissing(model.MissingPattern{
			Entity: e.Name,
			Kind:   "unique",
			Target: attr,
			Reason: "GSI budget exhausted; consider raising maxGSICount",
		})
		return
	}

	e.KeyPattern.Indexes[n] = model.IndexKeyPair{
		PartitionKey: strings.ToUpper(attr) + cfg.Delimiter + "{" + attr + "}",
		SortKey:      e.TypePrefix + cfg.Delimiter + "{" + e.PrimaryKey + "}",
	}
	ensureDefinition(defs, cfg, n, false)
}

func ensureDefinition(defs map[int]IndexDefinition, cfg config.Table, n int, sparse bool) {
	if _, ok := defs[n]; ok {
		return
	}
	pair := cfg.GSIKeyPairFor(n)
	defs[n] = IndexDefinition{
		Name:         cfg.GSIName(n),
		PartitionKey: pair.PartitionKey,
		SortKey:      pair.SortKey,
		Projection:   ProjectAll,
		Sparse:       sparse,
	}
}

func slotOrder(defs map[int]IndexDefinition) []IndexDefinition {
	out := make([]IndexDefinition, 0, len(defs))
	for n := 1; n <= config.MaxSecondaryIndexes; n++ {
		if def, ok := defs[n]; ok {
			out = append(out, def)
		}
	}
	return out
}

// defaultForeignKey derives the conventional foreign key attribute for a
// related entity name: "User" -> "userId".
func defaultForeignKey(related string) string {
	if related == "" {
		return "id"
	}
	return strings.ToLower(related[:1]) + related[1:] + "Id"
}

// verifyPlaceholders is used by tests to check that every placeholder in an
// index template names a declared attribute.
func verifyPlaceholders(e *model.EntityDescriptor, template string) []string {
	var unknown []string
	for _, name := range keypattern.Placeholders(template) {
		if e.Attribute(name) == nil {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
