// Package accesspattern synthesizes the documented access-pattern catalog of
// a compiled registry: per entity, every supported way of reading the data,
// tagged with the index it uses and whether it avoids a table scan. The
// generator is pure data transformation over already-validated input; nothing
// in it can fail.
package accesspattern

import (
	"fmt"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/keypattern"
	"github.com/okvist/tablesmith/model"
)

// Result holds the generated catalog, the per-entity reporting matrices, and
// the optimization suggestions.
type Result struct {
	Patterns    []model.AccessPattern
	Matrices    map[string]Matrix
	Suggestions []string
}

// Generate walks the index-annotated registry and emits the access-pattern
// catalog for every entity, in declaration order. Patterns are also attached
// to their entity descriptors for downstream reporting.
func Generate(reg *model.Registry, cfg config.Table) Result {
	res := Result{Matrices: make(map[string]Matrix, reg.Len())}

	for _, e := range reg.Entities() {
		g := entityGenerator{reg: reg, cfg: cfg, entity: e}
		patterns, suggestions := g.generate()

		e.AccessPatterns = patterns
		res.Patterns = append(res.Patterns, patterns...)
		res.Suggestions = append(res.Suggestions, suggestions...)
		res.Matrices[e.Name] = buildMatrix(e, patterns)
	}

	return res
}

type entityGenerator struct {
	reg    *model.Registry
	cfg    config.Table
	entity *model.EntityDescriptor
}

func (g *entityGenerator) generate() ([]model.AccessPattern, []string) {
	var (
		patterns    []model.AccessPattern
		suggestions []string
	)

	patterns = append(patterns, g.getByID())
	patterns = append(patterns, g.listAll())

	for _, r := range g.entity.Relationships {
		switch r.Kind {
		case model.HasMany:
			if p, ok := g.queryChildren(r); ok {
				patterns = append(patterns, p)
			}
		case model.BelongsTo, model.BelongsToMany:
			// Relationships that missed an index slot are already recorded in
			// the registry's missing-pattern list; no catalog entry here.
			if p, ok := g.queryParent(r); ok {
				patterns = append(patterns, p)
			}
		case model.HasOne:
			if p, ok := g.queryRelated(r); ok {
				patterns = append(patterns, p)
			}
		}
	}

	for _, attr := range g.entity.UniqueAttributes() {
		if p, ok := g.uniqueLookup(attr.Name); ok {
			patterns = append(patterns, p)
		}
	}

	if g.entity.Traits.SoftDelete {
		p, suggestion := g.activeItems()
		patterns = append(patterns, p)
		if suggestion != "" {
			suggestions = append(suggestions, suggestion)
		}
	}

	return patterns, suggestions
}

func (g *entityGenerator) getByID() model.AccessPattern {
	e := g.entity
	values := exampleValues(e)
	return model.AccessPattern{
		Name:        fmt.Sprintf("Get %s by ID", e.Name),
		Description: fmt.Sprintf("Fetch a single %s item by its primary key", e.Name),
		Entity:      e.Name,
		Operation:   model.OperationGet,
		Index:       "main",
		KeyCondition: fmt.Sprintf("%s = %s AND %s = %s",
			g.cfg.PartitionKeyName, e.KeyPattern.PartitionKey, g.cfg.SortKeyName, e.KeyPattern.SortKey),
		ExampleKeys:    []string{keypattern.Resolve(e.KeyPattern.PartitionKey, values)},
		Efficient:      true,
		Category:       "key-lookup",
		RequiredParams: []string{e.PrimaryKey},
		Notes:          "Single-item read on the main table.",

		PartitionAttr:     g.cfg.PartitionKeyName,
		PartitionTemplate: e.KeyPattern.PartitionKey,
		SortAttr:          g.cfg.SortKeyName,
		SortTemplate:      e.KeyPattern.SortKey,
		SortOperator:      model.SortEquals,
	}
}

func (g *entityGenerator) listAll() model.AccessPattern {
	e := g.entity
	return model.AccessPattern{
		Name:         fmt.Sprintf("List all %ss", e.Name),
		Description:  fmt.Sprintf("Enumerate every %s item in the table", e.Name),
		Entity:       e.Name,
		Operation:    model.OperationScan,
		Index:        "scan",
		KeyCondition: fmt.Sprintf("%s = %q (filter)", g.cfg.EntityTypeAttribute, e.Name),
		Efficient:    false,
		Category:     "scan",
		Notes:        "Full table scan filtered by entity type; cost grows with total table size.",
	}
}

func (g *entityGenerator) queryChildren(r model.RelationshipDescriptor) (model.AccessPattern, bool) {
	e := g.entity
	related := g.reg.Get(r.Related)
	if related == nil {
		return model.AccessPattern{}, false
	}
	values := exampleValues(e)
	childPrefix := related.TypePrefix + g.cfg.Delimiter
	return model.AccessPattern{
		Name:        fmt.Sprintf("Get %ss for %s", r.Related, e.Name),
		Description: fmt.Sprintf("Query %s children within a %s partition", r.Related, e.Name),
		Entity:      e.Name,
		Operation:   model.OperationQuery,
		Index:       "main",
		KeyCondition: fmt.Sprintf("%s = %s AND begins_with(%s, %s)",
			g.cfg.PartitionKeyName, e.KeyPattern.PartitionKey, g.cfg.SortKeyName, childPrefix),
		ExampleKeys:    []string{keypattern.Resolve(e.KeyPattern.PartitionKey, values), childPrefix},
		Efficient:      true,
		Category:       "children",
		RequiredParams: []string{e.PrimaryKey},
		Notes:          "Range query over the parent partition.",

		PartitionAttr:     g.cfg.PartitionKeyName,
		PartitionTemplate: e.KeyPattern.PartitionKey,
		SortAttr:          g.cfg.SortKeyName,
		SortTemplate:      childPrefix,
		SortOperator:      model.SortBeginsWith,
	}, true
}

func (g *entityGenerator) queryParent(r model.RelationshipDescriptor) (model.AccessPattern, bool) {
	e := g.entity
	if r.IndexNumber == 0 {
		return model.AccessPattern{}, false
	}
	pair, ok := e.KeyPattern.Indexes[r.IndexNumber]
	if !ok {
		return model.AccessPattern{}, false
	}

	physical := g.cfg.GSIKeyPairFor(r.IndexNumber)
	category := "parent-lookup"
	notes := fmt.Sprintf("Index query on %s.", g.cfg.GSIName(r.IndexNumber))
	if r.Kind == model.BelongsToMany {
		category = "many-to-many"
		notes = fmt.Sprintf("Adjacency list query on %s; batch-get the main table to materialize full related items.",
			g.cfg.GSIName(r.IndexNumber))
	}

	fk := firstPlaceholder(pair.PartitionKey, e.PrimaryKey)
	return model.AccessPattern{
		Name:           fmt.Sprintf("Get %ss for %s", e.Name, r.Related),
		Description:    fmt.Sprintf("Query all %s items belonging to one %s", e.Name, r.Related),
		Entity:         e.Name,
		Operation:      model.OperationQuery,
		Index:          g.cfg.GSIName(r.IndexNumber),
		KeyCondition:   fmt.Sprintf("%s = %s", physical.PartitionKey, pair.PartitionKey),
		ExampleKeys:    []string{keypattern.Resolve(pair.PartitionKey, exampleValues(e))},
		Efficient:      true,
		Category:       category,
		RequiredParams: []string{fk},
		Notes:          notes,

		PartitionAttr:     physical.PartitionKey,
		PartitionTemplate: pair.PartitionKey,
	}, true
}

func (g *entityGenerator) queryRelated(r model.RelationshipDescriptor) (model.AccessPattern, bool) {
	e := g.entity
	if r.IndexNumber == 0 {
		return model.AccessPattern{}, false
	}
	pair, ok := e.KeyPattern.Indexes[r.IndexNumber]
	if !ok {
		return model.AccessPattern{}, false
	}

	physical := g.cfg.GSIKeyPairFor(r.IndexNumber)
	return model.AccessPattern{
		Name:           fmt.Sprintf("Get %s for %s", r.Related, e.Name),
		Description:    fmt.Sprintf("Reverse lookup of the %s owned by one %s", r.Related, e.Name),
		Entity:         e.Name,
		Operation:      model.OperationQuery,
		Index:          g.cfg.GSIName(r.IndexNumber),
		KeyCondition:   fmt.Sprintf("%s = %s", physical.PartitionKey, pair.PartitionKey),
		ExampleKeys:    []string{keypattern.Resolve(pair.PartitionKey, exampleValues(e))},
		Efficient:      true,
		Category:       "reverse-lookup",
		RequiredParams: []string{e.PrimaryKey},
		Notes:          fmt.Sprintf("Index query on %s.", g.cfg.GSIName(r.IndexNumber)),

		PartitionAttr:     physical.PartitionKey,
		PartitionTemplate: pair.PartitionKey,
	}, true
}

func (g *entityGenerator) uniqueLookup(attr string) (model.AccessPattern, bool) {
	e := g.entity
	n := g.reg.Assignment(model.AssignmentKey(e.Name, "unique", attr))
	if n == 0 {
		return model.AccessPattern{}, false
	}
	pair, ok := e.KeyPattern.Indexes[n]
	if !ok {
		return model.AccessPattern{}, false
	}

	physical := g.cfg.GSIKeyPairFor(n)
	return model.AccessPattern{
		Name:           fmt.Sprintf("Get %s by %s", e.Name, attr),
		Description:    fmt.Sprintf("Look up a single %s by its unique %s", e.Name, attr),
		Entity:         e.Name,
		Operation:      model.OperationQuery,
		Index:          g.cfg.GSIName(n),
		KeyCondition:   fmt.Sprintf("%s = %s", physical.PartitionKey, pair.PartitionKey),
		ExampleKeys:    []string{keypattern.Resolve(pair.PartitionKey, exampleValues(e))},
		Efficient:      true,
		Category:       "unique-lookup",
		RequiredParams: []string{attr},
		Notes:          "Unique business-key lookup; expect at most one item.",

		PartitionAttr:     physical.PartitionKey,
		PartitionTemplate: pair.PartitionKey,
	}, true
}

// activeItems emits the soft-delete access pattern. With a sparse index
// assigned it is an efficient index query; without one it degrades to a
// filtered scan and a suggestion to add a sparse GSI.
func (g *entityGenerator) activeItems() (model.AccessPattern, string) {
	e := g.entity
	attr := g.cfg.SoftDeleteAttribute
	n := g.reg.Assignment(model.AssignmentKey(e.Name, "sparse", attr))

	if n > 0 {
		pair := e.KeyPattern.Indexes[n]
		physical := g.cfg.GSIKeyPairFor(n)
		return model.AccessPattern{
			Name:         fmt.Sprintf("List active %ss", e.Name),
			Description:  fmt.Sprintf("Query non-deleted %s items via the sparse index", e.Name),
			Entity:       e.Name,
			Operation:    model.OperationQuery,
			Index:        g.cfg.GSIName(n),
			KeyCondition: fmt.Sprintf("%s = %s", physical.PartitionKey, pair.PartitionKey),
			Efficient:    true,
			Category:     "active",
			Notes:        "Sparse index: only live items are present, so the query reads no deleted data.",

			PartitionAttr:     physical.PartitionKey,
			PartitionTemplate: pair.PartitionKey,
		}, ""
	}

	pattern := model.AccessPattern{
		Name:         fmt.Sprintf("List active %ss", e.Name),
		Description:  fmt.Sprintf("Scan for %s items that are not soft-deleted", e.Name),
		Entity:       e.Name,
		Operation:    model.OperationScan,
		Index:        "scan",
		KeyCondition: fmt.Sprintf("attribute_not_exists(%s) (filter)", attr),
		Efficient:    false,
		Category:     "active",
		Notes:        "Full table scan with a soft-delete filter.",
	}
	suggestion := fmt.Sprintf("Add a sparse GSI on %s.%s to serve active-record queries without scanning", e.Name, attr)
	return pattern, suggestion
}

// exampleValues builds the value map used for documentation examples: every
// declared attribute maps to an angle-bracketed placeholder value.
func exampleValues(e *model.EntityDescriptor) map[string]string {
	values := make(map[string]string, len(e.Attributes))
	for _, a := range e.Attributes {
		values[a.Name] = "<" + a.Name + ">"
	}
	return values
}

// firstPlaceholder returns the first placeholder of a template, or fallback
// if the template has none.
func firstPlaceholder(template, fallback string) string {
	if names := keypattern.Placeholders(template); len(names) > 0 {
		return names[0]
	}
	return fallback
}
