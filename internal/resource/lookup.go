package resource

// Key identifies a record within the directory: slugs are unique per type,
// not across types.
type Key struct {
	Type ResourceType
	Slug string
}

// Duplicate records a slug that appears more than once for the same type.
type Duplicate struct {
	Key
	// Positions are the indexes in the input slice, first occurrence first.
	Positions []int
}

// Index resolves (type, slug) to a position in a resource slice. The first
// occurrence of a key wins; later ones are reported by Duplicates.
type Index struct {
	pos  map[Key]int
	dups map[Key][]int
	keys []Key
}

// NewIndex indexes resources by type and slug.
func NewIndex(resources []Resource) *Index {
	idx := &Index{
		pos:  make(map[Key]int, len(resources)),
		dups: make(map[Key][]int),
	}
	for i, r := range resources {
		k := Key{Type: r.Type, Slug: r.Slug}
		if first, ok := idx.pos[k]; ok {
			if len(idx.dups[k]) == 0 {
				idx.dups[k] = []int{first}
				idx.keys = append(idx.keys, k)
			}
			idx.dups[k] = append(idx.dups[k], i)
			continue
		}
		idx.pos[k] = i
	}
	return idx
}

// Lookup returns the position of the first resource with type t and slug.
func (idx *Index) Lookup(t ResourceType, slug string) (int, bool) {
	i, ok := idx.pos[Key{Type: t, Slug: slug}]
	return i, ok
}

// Primary reports whether position i is the winning occurrence of its key.
func (idx *Index) Primary(resources []Resource, i int) bool {
	j, ok := idx.Lookup(resources[i].Type, resources[i].Slug)
	return ok && i == j
}

// Duplicates returns every repeated key in first-seen order.
func (idx *Index) Duplicates() []Duplicate {
	out := make([]Duplicate, 0, len(idx.keys))
	for _, k := range idx.keys {
		out = append(out, Duplicate{Key: k, Positions: idx.dups[k]})
	}
	return out
}
