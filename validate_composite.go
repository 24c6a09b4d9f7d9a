package skema

import (
	"time"
)

// parseUnion tries every option on an isolated issue list. The first valid
// option in declared order wins; failing that, the first dirty option and its
// issues. Sync and async parses choose identically; async only runs the
// options concurrently.
func (p *pass) parseUnion(n *Node, d *UnionDef, input any) result {
	branches := make([]*pass, len(d.Options))
	results := make([]result, len(d.Options))
	if p.rt.async {
		p.each(len(d.Options), func(i int, c *pass) result {
			branches[i] = c.isolated()
			results[i] = branches[i].parse(d.Options[i], input)
			return okResult(nil)
		})
	} else {
		for i, opt := range d.Options {
			branches[i] = p.isolated()
			results[i] = branches[i].parse(opt, input)
			if results[i].status == statusValid {
				return results[i]
			}
		}
	}

	for i := range results {
		if branches[i] != nil && results[i].status == statusValid {
			return results[i]
		}
	}
	for i := range results {
		if branches[i] != nil && results[i].status == statusDirty {
			*p.issues = append(*p.issues, *branches[i].issues...)
			return results[i]
		}
	}
	errs := make([]*Error, len(d.Options))
	for i, b := range branches {
		errs[i] = &Error{Issues: Issues(*b.issues)}
	}
	p.add(n, input, Issue{Code: CodeInvalidUnion, UnionErrors: errs})
	return abortedResult
}

func (p *pass) parseDiscriminatedUnion(n *Node, d *DiscriminatedUnionDef, input any) result {
	obj, ok := asObject(input)
	if !ok {
		return p.invalidType(n, TypeObject, input)
	}
	v, present := obj[d.Discriminator]
	if !present {
		v = Undefined
	}
	opt, ok := d.Option(v)
	if !ok {
		p.add(n, input, Issue{Code: CodeInvalidUnionDiscriminator, Options: d.Values, Path: Path{d.Discriminator}})
		return abortedResult
	}
	return p.parse(opt, input)
}

func (p *pass) parseIntersection(n *Node, d *IntersectionDef, input any) result {
	sides := []*Node{d.Left, d.Right}
	results := p.each(2, func(i int, c *pass) result {
		return c.parse(sides[i], input)
	})
	left, right := results[0], results[1]
	if left.status == statusAborted || right.status == statusAborted {
		return abortedResult
	}
	merged, ok := mergeValues(left.value, right.value)
	if !ok {
		p.add(n, input, Issue{Code: CodeInvalidIntersectionTypes})
		return abortedResult
	}
	var t tracker
	t.absorb(left.status)
	t.absorb(right.status)
	return t.result(merged)
}

// mergeValues deep-merges the outputs of both intersection sides.
func mergeValues(a, b any) (any, bool) {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta == tb && isPrimitiveType(ta) && sameLiteral(a, b) {
		return a, true
	}
	if ta == TypeObject && tb == TypeObject {
		ao, _ := asObject(a)
		bo, _ := asObject(b)
		out := make(map[string]any, len(ao)+len(bo))
		for k, v := range ao {
			out[k] = v
		}
		for k, bv := range bo {
			av, shared := ao[k]
			if !shared {
				out[k] = bv
				continue
			}
			m, ok := mergeValues(av, bv)
			if !ok {
				return nil, false
			}
			out[k] = m
		}
		return out, true
	}
	if ta == TypeArray && tb == TypeArray {
		as, _ := asSlice(a)
		bs, _ := asSlice(b)
		if len(as) != len(bs) {
			return nil, false
		}
		out := make([]any, len(as))
		for i := range as {
			m, ok := mergeValues(as[i], bs[i])
			if !ok {
				return nil, false
			}
			out[i] = m
		}
		return out, true
	}
	if ta == TypeDate && tb == TypeDate {
		if a.(time.Time).Equal(b.(time.Time)) {
			return a, true
		}
		return nil, false
	}
	return nil, false
}

func isPrimitiveType(t ParsedType) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeBigInt, TypeNull, TypeUndefined, TypeSymbol:
		return true
	}
	return false
}
