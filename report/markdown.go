package report

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/okvist/tablesmith/compiler"
	"github.com/okvist/tablesmith/config"
)

// Markdown renders the access-pattern reference for a compilation result.
func Markdown(res *compiler.Result, cfg config.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Table %s\n\n", cfg.TableName)
	fmt.Fprintf(&b, "Partition key: `%s`, sort key: `%s`, delimiter: `%s`\n\n",
		cfg.PartitionKeyName, cfg.SortKeyName, cfg.Delimiter)

	writeIndexes(&b, res)
	writeEntities(&b, res)
	writeAssignments(&b, res)
	writeDiagnostics(&b, res)

	return b.String()
}

func writeIndexes(b *strings.Builder, res *compiler.Result) {
	globals := res.AllGlobalIndexes()
	if len(globals) == 0 && len(res.LSIs) == 0 {
		return
	}

	b.WriteString("## Indexes\n\n")
	b.WriteString("| Name | Partition key | Sort key | Projection | Kind |\n")
	b.WriteString("|------|---------------|----------|------------|------|\n")
	for _, def := range globals {
		kind := "GSI"
		if def.Sparse {
			kind = "sparse GSI"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			def.Name, def.PartitionKey, def.SortKey, def.Projection, kind)
	}
	for _, def := range res.LSIs {
		fmt.Fprintf(b, "| %s | %s | %s | %s | LSI |\n",
			def.Name, def.PartitionKey, def.SortKey, def.Projection)
	}
	b.WriteString("\n")
}

func writeEntities(b *strings.Builder, res *compiler.Result) {
	for _, e := range res.Registry.Entities() {
		fmt.Fprintf(b, "## %s\n\n", e.Name)
		fmt.Fprintf(b, "Keys: `%s` / `%s`\n\n", e.KeyPattern.PartitionKey, e.KeyPattern.SortKey)

		if m, ok := res.Matrices[e.Name]; ok {
			fmt.Fprintf(b, "%d efficient pattern(s), %d inefficient.", m.Efficient, m.Inefficient)
			if len(m.ChildQueries) > 0 {
				fmt.Fprintf(b, " Child queries: %s.", strings.Join(m.ChildQueries, ", "))
			}
			if len(m.ParentQueries) > 0 {
				fmt.Fprintf(b, " Parent queries: %s.", strings.Join(m.ParentQueries, ", "))
			}
			if len(m.UniqueLookups) > 0 {
				fmt.Fprintf(b, " Unique lookups: %s.", strings.Join(m.UniqueLookups, ", "))
			}
			b.WriteString("\n\n")
		}

		b.WriteString("| Access pattern | Operation | Index | Key condition | Efficient |\n")
		b.WriteString("|----------------|-----------|-------|---------------|-----------|\n")
		for _, p := range e.AccessPatterns {
			fmt.Fprintf(b, "| %s | %s | %s | `%s` | %v |\n",
				p.Name, p.Operation, p.Index, p.KeyCondition, p.Efficient)
		}
		b.WriteString("\n")

		for _, p := range e.AccessPatterns {
			if len(p.ExampleKeys) > 0 {
				fmt.Fprintf(b, "- %s, example keys: `%s`\n", p.Name, strings.Join(p.ExampleKeys, "`, `"))
			}
		}
		b.WriteString("\n")
	}
}

func writeAssignments(b *strings.Builder, res *compiler.Result) {
	assignments := res.Registry.Assignments()
	if len(assignments) == 0 {
		return
	}

	b.WriteString("## Index assignments\n\n")
	keys := maps.Keys(assignments)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- `%s` -> gsi%d\n", k, assignments[k])
	}
	b.WriteString("\n")
}

func writeDiagnostics(b *strings.Builder, res *compiler.Result) {
	if len(res.Conflicts) > 0 {
		b.WriteString("## Conflicts\n\n")
		for _, c := range res.Conflicts {
			fmt.Fprintf(b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(res.Missing) > 0 {
		b.WriteString("## Missing patterns\n\n")
		for _, m := range res.Missing {
			fmt.Fprintf(b, "- %s\n", m)
		}
		b.WriteString("\n")
	}

	if len(res.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for _, s := range res.Suggestions {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(res.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
}
