package charts

import (
	"strings"

	"goeda/domain/dataset"
)

type node struct {
	id     string
	label  string
	parent string
	depth  int
	value  float64
}

// buildHierarchy aggregates rows into sunburst/treemap nodes. Each node id is
// the "/"-joined path from the root, with '/' and '\' inside values
// backslash-escaped; a node's value is the sum over the rows beneath it (row
// count when weights is nil). Rows missing any path value, or the weight, are
// skipped. Nodes come out leaves first, each level in first-appearance order.
func buildHierarchy(path []*dataset.Column, weights *dataset.Column) []node {
	if len(path) == 0 {
		return nil
	}

	levels := make([][]*node, len(path))
	index := make(map[string]*node)
	keys := make([]string, len(path))

rows:
	for i := 0; i < path[0].Len(); i++ {
		for d, col := range path {
			key, ok := col.Key(i)
			if !ok {
				continue rows
			}
			keys[d] = key
		}

		w := 1.0
		if weights != nil {
			f, ok := weights.Float(i)
			if !ok {
				continue
			}
			w = f
		}

		for d := range path {
			id := nodeID(keys[:d+1])
			n, seen := index[id]
			if !seen {
				n = &node{id: id, label: keys[d], depth: d}
				if d > 0 {
					n.parent = nodeID(keys[:d])
				}
				index[id] = n
				levels[d] = append(levels[d], n)
			}
			n.value += w
		}
	}

	var out []node
	for d := len(levels) - 1; d >= 0; d-- {
		for _, n := range levels[d] {
			out = append(out, *n)
		}
	}
	return out
}

var idEscaper = strings.NewReplacer("\\", "\\\\", "/", "\\/")

func nodeID(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = idEscaper.Replace(k)
	}
	return strings.Join(parts, "/")
}
