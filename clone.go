package skema

import "maps"

// Clone returns a deep structural copy of n. Equal(Clone(n), n) always holds.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	return rebuild(n, Clone)
}

// Dereference replaces every reference node whose name is in defs with the
// definition, itself dereferenced, and rebuilds the containers above it.
// A definition that refers back to itself becomes a lazy node. Names missing
// from defs stay references; see References.
func Dereference(n *Node, defs map[string]*Node) *Node {
	d := &derefer{defs: defs, done: map[string]*Node{}, active: map[string]bool{}}
	return d.walk(n)
}

type derefer struct {
	defs   map[string]*Node
	done   map[string]*Node
	active map[string]bool
}

func (d *derefer) walk(n *Node) *Node {
	switch def := n.def.(type) {
	case *RefDef:
		target, ok := d.defs[def.Name]
		if !ok {
			return n
		}
		return d.apply(n, d.resolve(def.Name, target))
	case *LazyDef:
		// The cell resolves during validation, possibly on several goroutines
		// at once, so it walks with its own state seeded from what is done now.
		getter := def.Getter
		defs, done := d.defs, maps.Clone(d.done)
		return n.derive(KindLazy, &LazyDef{Getter: getter, cell: &lazyCell{getter: func() *Node {
			sub := &derefer{defs: defs, done: maps.Clone(done), active: map[string]bool{}}
			return sub.walk(getter())
		}}})
	}
	return rebuild(n, d.walk)
}

func (d *derefer) resolve(name string, target *Node) *Node {
	if r, ok := d.done[name]; ok {
		return r
	}
	if d.active[name] {
		return Lazy(func() *Node { return d.done[name] })
	}
	d.active[name] = true
	r := d.walk(target)
	delete(d.active, name)
	d.done[name] = r
	return r
}

// apply carries the description and metadata written on the reference node
// over to its replacement.
func (d *derefer) apply(ref, r *Node) *Node {
	if ref.description != "" {
		r = r.Describe(ref.description)
	}
	if len(ref.meta) > 0 {
		r = r.WithMetadata(ref.meta)
	}
	return r
}

// References returns the names of the reference nodes reachable from n, each
// once, in the order first seen. Lazy nodes are resolved and walked once.
func References(n *Node) []string {
	var out []string
	seenName := map[string]bool{}
	seenLazy := map[*lazyCell]bool{}
	var walk func(*Node)
	walk = func(n *Node) {
		switch d := n.def.(type) {
		case *RefDef:
			if !seenName[d.Name] {
				seenName[d.Name] = true
				out = append(out, d.Name)
			}
			return
		case *LazyDef:
			if seenLazy[d.cell] {
				return
			}
			seenLazy[d.cell] = true
			walk(d.Resolve())
			return
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(n)
	return out
}
