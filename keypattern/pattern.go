// Package keypattern generates and resolves the key templates of a
// single-table schema. Templates are plain strings with {attributeName}
// placeholders, e.g. "USER#{id}". Substitution is deliberately hand-rolled:
// the syntax is small enough that a templating engine would only add
// nondeterminism to test against.
package keypattern

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okvist/tablesmith/config"
	"github.com/okvist/tablesmith/model"
)

// ResolvedKey is a key pattern with every placeholder substituted. Placeholders
// without a value fall back to the placeholder name itself, so documentation
// examples can be rendered from partial value maps.
type ResolvedKey struct {
	PartitionKey string
	SortKey      string
}

// Resolve substitutes {name} tokens in template with values[name]. Tokens
// without a value resolve to the bare name. Resolution is pure: the same
// template and value map always produce the same output.
func Resolve(template string, values map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(template, '{')
		if i < 0 {
			b.WriteString(template)
			return b.String()
		}
		j := strings.IndexByte(template[i:], '}')
		if j < 0 {
			b.WriteString(template)
			return b.String()
		}
		b.WriteString(template[:i])
		name := template[i+1 : i+j]
		if v, ok := values[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(name)
		}
		template = template[i+j+1:]
	}
}

// ResolveKey resolves the base partition and sort key of a pattern.
func ResolveKey(p *model.KeyPattern, values map[string]string) ResolvedKey {
	return ResolvedKey{
		PartitionKey: Resolve(p.PartitionKey, values),
		SortKey:      Resolve(p.SortKey, values),
	}
}

// ResolveIndex resolves the key pair of secondary index n. The second return
// is false when the pattern has no templates for that index.
func ResolveIndex(p *model.KeyPattern, n int, values map[string]string) (ResolvedKey, bool) {
	pair, ok := p.Indexes[n]
	if !ok {
		return ResolvedKey{}, false
	}
	return ResolvedKey{
		PartitionKey: Resolve(pair.PartitionKey, values),
		SortKey:      Resolve(pair.SortKey, values),
	}, true
}

// Placeholders returns the {name} tokens of a template in order of appearance.
func Placeholders(template string) []string {
	var out []string
	for {
		i := strings.IndexByte(template, '{')
		if i < 0 {
			return out
		}
		j := strings.IndexByte(template[i:], '}')
		if j < 0 {
			return out
		}
		out = append(out, template[i+1:i+j])
		template = template[i+j+1:]
	}
}

// Prefix returns the literal portion of a template before its first
// placeholder, e.g. "ORDER#" for "ORDER#{id}". Used for collision detection.
func Prefix(template string) string {
	if i := strings.IndexByte(template, '{'); i >= 0 {
		return template[:i]
	}
	return template
}

// Item renders the resolved key as a DynamoDB key item under the configured
// attribute names.
func (k ResolvedKey) Item(cfg config.Table) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		cfg.PartitionKeyName: mustMarshalKey(k.PartitionKey),
		cfg.SortKeyName:      mustMarshalKey(k.SortKey),
	}
}

func mustMarshalKey(v string) types.AttributeValue {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("failed to marshal key value %q: %w", v, err))
	}
	return av
}
