package lsystree

import "fmt"

// NodeKey identifies one shape-token occurrence in a generation string.
// Index is the rune offset in the string and Occurrence counts earlier
// occurrences of the same symbol, so a key stays meaningful even if the
// traversal order of other symbols changes.
type NodeKey struct {
	Generation int
	Index      int
	Occurrence int
}

func (k NodeKey) String() string {
	return fmt.Sprintf("g%d:%d#%d", k.Generation, k.Index, k.Occurrence)
}

// Registry maps node keys to the parts created for them by the last Build.
type Registry struct {
	parts map[NodeKey]Part
}

func NewRegistry() *Registry {
	return &Registry{parts: make(map[NodeKey]Part)}
}

// Register records part under key. A key can be registered once.
func (r *Registry) Register(key NodeKey, part Part) error {
	if part == nil {
		return invalidArgument("nil part for node %s", key)
	}
	if _, ok := r.parts[key]; ok {
		return invalidArgument("node %s is already registered", key)
	}
	r.parts[key] = part
	return nil
}

func (r *Registry) Lookup(key NodeKey) (Part, bool) {
	p, ok := r.parts[key]
	return p, ok
}

func (r *Registry) Len() int {
	return len(r.parts)
}
