// internal/change/batch.go
package change

import "sort"

// Batch is the set of filesystem mutations observed since the last import
// cycle. Paths are asset paths.
type Batch struct {
	Created   []string `json:"created"`
	Deleted   []string `json:"deleted"`
	MovedTo   []string `json:"moved_to"`
	MovedFrom []string `json:"moved_from"`
}

func (b Batch) IsEmpty() bool {
	return len(b.Created) == 0 && len(b.Deleted) == 0 && len(b.MovedTo) == 0 && len(b.MovedFrom) == 0
}

func (b Batch) Len() int {
	return len(b.Created) + len(b.Deleted) + len(b.MovedTo) + len(b.MovedFrom)
}

// Normalized returns a copy with each set sorted and deduplicated.
func (b Batch) Normalized() Batch {
	return Batch{
		Created:   uniqueSorted(b.Created),
		Deleted:   uniqueSorted(b.Deleted),
		MovedTo:   uniqueSorted(b.MovedTo),
		MovedFrom: uniqueSorted(b.MovedFrom),
	}
}

func uniqueSorted(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
