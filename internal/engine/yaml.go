package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes the first YAML document in data under the same rules as
// DecodeJSON. Mapping keys are rendered as strings; anchors and aliases are
// expanded.
func DecodeYAML(data []byte, opt Options) (any, []Finding, error) {
	if err := checkSize(len(data), opt); err != nil {
		return nil, nil, err
	}
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}
	y := &yamlDecoder{opt: opt}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	v, err := y.value(root, nil, 0)
	return v, y.findings, err
}

type yamlDecoder struct {
	opt      Options
	findings []Finding
}

func (y *yamlDecoder) value(n *yaml.Node, path []any, depth int) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return y.value(n.Alias, path, depth)
	case yaml.MappingNode, yaml.SequenceNode:
		depth++
		if y.opt.MaxDepth > 0 && depth > y.opt.MaxDepth {
			return nil, FindingError{Finding{Code: "parse_error", Path: path, Message: "max depth exceeded"}}
		}
	}
	switch n.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn := n.Content[i]
			if kn.Kind == yaml.AliasNode {
				kn = kn.Alias
			}
			key := kn.Value
			kp := append(path[:len(path):len(path)], key)
			if key == "<<" && kn.Tag == "!!merge" {
				if err := y.merge(m, n.Content[i+1], path, depth); err != nil {
					return nil, err
				}
				continue
			}
			if _, dup := m[key]; dup && y.opt.OnDuplicate != DupIgnore {
				f := Finding{Code: "duplicate_key", Path: kp, Message: "key '" + key + "' duplicated"}
				if y.opt.OnDuplicate == DupError {
					return nil, FindingError{f}
				}
				y.findings = append(y.findings, f)
			}
			v, err := y.value(n.Content[i+1], kp, depth)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.value(c, append(path[:len(path):len(path)], i), depth)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return y.scalar(n)
	}
	return nil, fmt.Errorf("engine: unsupported yaml node kind %d at line %d", n.Kind, n.Line)
}

// merge applies a "<<" merge key: explicit keys of the mapping win.
func (y *yamlDecoder) merge(m map[string]any, src *yaml.Node, path []any, depth int) error {
	v, err := y.value(src, path, depth-1)
	if err != nil {
		return err
	}
	sources := []any{v}
	if list, ok := v.([]any); ok {
		sources = list
	}
	for _, s := range sources {
		sm, ok := s.(map[string]any)
		if !ok {
			return fmt.Errorf("engine: merge value at line %d is not a mapping", src.Line)
		}
		for k, val := range sm {
			if _, exists := m[k]; !exists {
				m[k] = val
			}
		}
	}
	return nil
}

func (y *yamlDecoder) scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if y.opt.Numbers == NumberJSONNumber {
			var i int64
			if err := n.Decode(&i); err == nil {
				return y.opt.number(strconv.FormatInt(i, 10))
			}
			return y.opt.number(n.Value)
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || y.opt.Numbers == NumberFloat64 {
			return f, nil
		}
		return y.opt.number(strings.TrimPrefix(strconv.FormatFloat(f, 'g', -1, 64), "+"))
	}
	return n.Value, nil
}
