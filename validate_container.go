package skema

import (
	"maps"
	"slices"
)

// sizeChecks validates the length/min/max checks of an array or set, in that
// order. It reports whether any failed.
func (p *pass) sizeChecks(n *Node, checks []Check, size int, typ string, data any) bool {
	failed := false
	if c, ok := findCheck(checks, CheckLength); ok {
		want := c.Value.(int)
		if size > want {
			p.add(n, data, Issue{Code: CodeTooBig, Maximum: want, Type: typ, Inclusive: true, Exact: true, Message: c.Message})
			failed = true
		} else if size < want {
			p.add(n, data, Issue{Code: CodeTooSmall, Minimum: want, Type: typ, Inclusive: true, Exact: true, Message: c.Message})
			failed = true
		}
	}
	if c, ok := findCheck(checks, CheckMin); ok && size < c.Value.(int) {
		p.add(n, data, Issue{Code: CodeTooSmall, Minimum: c.Value, Type: typ, Inclusive: true, Message: c.Message})
		failed = true
	}
	if c, ok := findCheck(checks, CheckMax); ok && size > c.Value.(int) {
		p.add(n, data, Issue{Code: CodeTooBig, Maximum: c.Value, Type: typ, Inclusive: true, Message: c.Message})
		failed = true
	}
	return failed
}

func (p *pass) parseArray(n *Node, d *ArrayDef, input any) result {
	items, ok := asSlice(input)
	if !ok {
		return p.invalidType(n, TypeArray, input)
	}
	var t tracker
	if p.sizeChecks(n, d.Checks, len(items), "array", input) {
		t.dirty()
	}
	results := p.each(len(items), func(i int, c *pass) result {
		return c.at(i).parse(d.Element, items[i])
	})
	return mergeArray(&t, results)
}

func (p *pass) parseTuple(n *Node, d *TupleDef, input any) result {
	items, ok := asSlice(input)
	if !ok {
		return p.invalidType(n, TypeArray, input)
	}
	var t tracker
	if len(items) < len(d.Items) {
		p.add(n, input, Issue{Code: CodeTooSmall, Minimum: len(d.Items), Type: "array", Inclusive: true})
		return abortedResult
	}
	if d.Rest == nil && len(items) > len(d.Items) {
		p.add(n, input, Issue{Code: CodeTooBig, Maximum: len(d.Items), Type: "array", Inclusive: true})
		t.dirty()
		items = items[:len(d.Items)]
	}
	results := p.each(len(items), func(i int, c *pass) result {
		schema := d.Rest
		if i < len(d.Items) {
			schema = d.Items[i]
		}
		return c.at(i).parse(schema, items[i])
	})
	return mergeArray(&t, results)
}

func (p *pass) parseSet(n *Node, d *SetDef, input any) result {
	items, ok := input.(Set)
	if !ok {
		return p.invalidType(n, TypeSet, input)
	}
	var t tracker
	if p.sizeChecks(n, d.Checks, len(items), "set", input) {
		t.dirty()
	}
	results := p.each(len(items), func(i int, c *pass) result {
		return c.at(i).parse(d.Element, items[i])
	})
	out := make(Set, 0, len(results))
	for _, r := range results {
		if r.status == statusAborted {
			return abortedResult
		}
		t.absorb(r.status)
		out = append(out, r.value)
	}
	return t.result(out)
}

func (p *pass) parseRecord(n *Node, d *RecordDef, input any) result {
	obj, ok := asObject(input)
	if !ok {
		return p.invalidType(n, TypeObject, input)
	}
	keys := sortedKeys(obj)
	pairs := make([]pair, len(keys))
	done := p.each(len(keys), func(i int, c *pass) result {
		k := keys[i]
		at := c.at(k)
		pairs[i] = pair{key: at.parse(d.Key, k), value: at.parse(d.Value, obj[k]), alwaysSet: true}
		return okResult(nil)
	})
	if skipped(done) {
		return abortedResult
	}
	var t tracker
	return mergeObject(&t, pairs)
}

func (p *pass) parseMap(n *Node, d *MapDef, input any) result {
	entries, ok := asMap(input)
	if !ok {
		return p.invalidType(n, TypeMap, input)
	}
	keys := make([]result, len(entries))
	values := make([]result, len(entries))
	done := p.each(len(entries), func(i int, c *pass) result {
		at := c.at(i)
		keys[i] = at.at("key").parse(d.Key, entries[i].Key)
		values[i] = at.at("value").parse(d.Value, entries[i].Value)
		return okResult(nil)
	})
	if skipped(done) {
		return abortedResult
	}
	var t tracker
	out := make(Map, 0, len(entries))
	for i := range entries {
		if keys[i].status == statusAborted || values[i].status == statusAborted {
			return abortedResult
		}
		t.absorb(keys[i].status)
		t.absorb(values[i].status)
		out = append(out, MapEntry{Key: keys[i].value, Value: values[i].value})
	}
	return t.result(out)
}

func (p *pass) parseObject(n *Node, d *ObjectDef, input any) result {
	obj, ok := asObject(input)
	if !ok {
		return p.invalidType(n, TypeObject, input)
	}
	var t tracker

	declared := make(map[string]bool, len(d.Props))
	for _, prop := range d.Props {
		declared[prop.Key] = true
	}
	var extra []string
	for _, k := range sortedKeys(obj) {
		if !declared[k] {
			extra = append(extra, k)
		}
	}

	type job struct {
		key    string
		schema *Node
	}
	jobs := make([]job, 0, len(d.Props)+len(extra))
	for _, prop := range d.Props {
		jobs = append(jobs, job{key: prop.Key, schema: prop.Node})
	}
	if d.Catchall != nil {
		for _, k := range extra {
			jobs = append(jobs, job{key: k, schema: d.Catchall})
		}
	}

	pairs := make([]pair, len(jobs), len(jobs)+len(extra))
	done := p.each(len(jobs), func(i int, c *pass) result {
		j := jobs[i]
		v, present := obj[j.key]
		if !present {
			v = Undefined
		}
		pairs[i] = pair{key: okResult(j.key), value: c.at(j.key).parse(j.schema, v), alwaysSet: present}
		return okResult(nil)
	})
	if skipped(done) {
		return abortedResult
	}

	if d.Catchall == nil {
		switch d.UnknownKeys {
		case UnknownPassthrough:
			for _, k := range extra {
				pairs = append(pairs, pair{key: okResult(k), value: okResult(obj[k]), alwaysSet: true})
			}
		case UnknownStrict:
			if len(extra) > 0 {
				p.add(n, input, Issue{Code: CodeUnrecognizedKeys, Keys: extra})
				t.dirty()
			}
		}
	}
	return mergeObject(&t, pairs)
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// skipped reports whether each stopped early under FailFast.
func skipped(results []result) bool {
	for _, r := range results {
		if r.status == statusAborted {
			return true
		}
	}
	return false
}
