// Package deriver assigns the bounded secondary index slots of a single-table
// schema: global indexes for cross-entity lookups (GSI), partition-local
// alternate sort orders (LSI), and sparse global indexes for filtered queries.
// All derivers share the registry's assignment table and report unsatisfiable
// candidates as warnings and missing-pattern entries, never as errors.
package deriver

// Projection describes which attributes a secondary index copies.
type Projection string

const (
	ProjectAll      Projection = "ALL"
	ProjectKeysOnly Projection = "KEYS_ONLY"
	ProjectInclude  Projection = "INCLUDE"
)

// IndexDefinition describes one physical secondary index to provision.
// For a GSI, PartitionKey and SortKey name the index's own key attributes.
// For an LSI, PartitionKey is the table's partition key and SortKey is the
// alternate sort attribute.
type IndexDefinition struct {
	Name         string
	PartitionKey string
	SortKey      string
	Projection   Projection
	// IncludeAttributes lists the projected attributes when Projection is INCLUDE.
	IncludeAttributes []string

	// Sparse marks a GSI that only contains items defining its partition key.
	Sparse bool
	// Local marks an LSI.
	Local bool
}
