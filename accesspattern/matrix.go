package accesspattern

import "github.com/okvist/tablesmith/model"

// Matrix summarizes one entity's access-pattern coverage for reporting:
// how many patterns are efficient, and which relationships and unique
// attributes have query support.
type Matrix struct {
	Entity      string
	Efficient   int
	Inefficient int

	// ChildQueries lists related entities reachable parent-to-child.
	ChildQueries []string
	// ParentQueries lists related entities reachable child-to-parent.
	ParentQueries []string
	// UniqueLookups lists unique attributes with an index-backed lookup.
	UniqueLookups []string
}

func buildMatrix(e *model.EntityDescriptor, patterns []model.AccessPattern) Matrix {
	m := Matrix{Entity: e.Name}

	for _, p := range patterns {
		if p.Efficient {
			m.Efficient++
		} else {
			m.Inefficient++
		}
		if p.Category == "unique-lookup" && len(p.RequiredParams) > 0 {
			m.UniqueLookups = append(m.UniqueLookups, p.RequiredParams[0])
		}
	}

	for _, r := range e.Relationships {
		switch r.Kind {
		case model.HasMany:
			m.ChildQueries = append(m.ChildQueries, r.Related)
		case model.BelongsTo, model.BelongsToMany:
			if r.IndexNumber > 0 {
				m.ParentQueries = append(m.ParentQueries, r.Related)
			}
		case model.HasOne:
			// reverse lookups are tracked as parent queries for reporting
			if r.IndexNumber > 0 {
				m.ParentQueries = append(m.ParentQueries, r.Related)
			}
		}
	}

	return m
}
