package skema

import "fmt"

// status is the outcome discipline of one validation step. It only moves
// forward: valid -> dirty -> aborted.
type status uint8

const (
	statusValid status = iota
	statusDirty
	statusAborted
)

func (s status) String() string {
	switch s {
	case statusValid:
		return "valid"
	case statusDirty:
		return "dirty"
	default:
		return "aborted"
	}
}

// result is a status plus the value computed so far. An aborted result never
// carries a value.
type result struct {
	status status
	value  any
}

func okResult(v any) result    { return result{status: statusValid, value: v} }
func dirtyResult(v any) result { return result{status: statusDirty, value: v} }

var abortedResult = result{status: statusAborted}

// tracker accumulates the status of a step across its checks and children.
type tracker struct{ s status }

func (t *tracker) dirty() {
	if t.s == statusValid {
		t.s = statusDirty
	}
}

func (t *tracker) abort() { t.s = statusAborted }

// absorb folds a child status into t.
func (t *tracker) absorb(s status) {
	switch s {
	case statusDirty:
		t.dirty()
	case statusAborted:
		t.abort()
	}
}

// result wraps v with the tracked status, dropping v once aborted.
func (t *tracker) result(v any) result {
	if t.s == statusAborted {
		return abortedResult
	}
	return result{status: t.s, value: v}
}

// mergeArray combines element results: aborted if any element aborted,
// otherwise dirty if any element is dirty.
func mergeArray(t *tracker, results []result) result {
	out := make([]any, 0, len(results))
	for _, r := range results {
		if r.status == statusAborted {
			return abortedResult
		}
		t.absorb(r.status)
		out = append(out, r.value)
	}
	return t.result(out)
}

// pair is one validated key/value of an object or record.
type pair struct {
	key   result
	value result
	// alwaysSet keeps the key even when the value came out undefined, i.e. the
	// key was present in the input.
	alwaysSet bool
}

// mergeObject combines pair results, dropping undefined values for keys not
// forced by alwaysSet.
func mergeObject(t *tracker, pairs []pair) result {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		if p.key.status == statusAborted || p.value.status == statusAborted {
			return abortedResult
		}
		t.absorb(p.key.status)
		t.absorb(p.value.status)
		if IsUndefined(p.value.value) && !p.alwaysSet {
			continue
		}
		k, ok := p.key.value.(string)
		if !ok {
			k = fmt.Sprint(p.key.value)
		}
		out[k] = p.value.value
	}
	return t.result(out)
}
