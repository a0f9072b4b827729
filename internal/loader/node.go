package loader

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"whlsl/internal/diag"
	"whlsl/internal/source"
)

type nodeKind uint8

const (
	nullNode nodeKind = iota
	scalarNode
	seqNode
	mapNode
)

func (k nodeKind) String() string {
	switch k {
	case scalarNode:
		return "scalar"
	case seqNode:
		return "sequence"
	case mapNode:
		return "map"
	default:
		return "null"
	}
}

// Scalar tags, shared by both encodings.
const (
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
)

// dnode is a decoded document node. YAML documents carry spans; MessagePack
// documents have none.
type dnode struct {
	kind  nodeKind
	tag   string
	value string
	items []*dnode
	keys  []string
	vals  []*dnode
	span  source.Span
}

func (n *dnode) isNull() bool { return n == nil || n.kind == nullNode }

// get returns the value stored under key, or nil.
func (n *dnode) get(key string) *dnode {
	if n == nil || n.kind != mapNode {
		return nil
	}
	for i, k := range n.keys {
		if k == key {
			return n.vals[i]
		}
	}
	return nil
}

// str reads a scalar as a string.
func (n *dnode) str() (string, bool) {
	if n == nil || n.kind != scalarNode {
		return "", false
	}
	return n.value, true
}

// scalar is str for values that must be scalars; what names the value in
// the error.
func (n *dnode) scalar(what string) (string, error) {
	raw, ok := n.str()
	if !ok {
		return "", errorf(diag.LoadBadValue, n, "%s must be a scalar", what)
	}
	return raw, nil
}

// list returns the items of a sequence; null is an empty list and any other
// single node a one-element list.
func (n *dnode) list() []*dnode {
	switch {
	case n.isNull():
		return nil
	case n.kind == seqNode:
		return n.items
	default:
		return []*dnode{n}
	}
}

// fromYAML converts a parsed YAML tree, resolving line and column positions
// against the file the document was read from.
func fromYAML(y *yaml.Node, fs *source.FileSet, file source.FileID) (*dnode, error) {
	if y == nil {
		return &dnode{}, nil
	}
	span := source.Span{File: file}
	if fs != nil && y.Line > 0 {
		line, err := toUint32(y.Line)
		if err != nil {
			return nil, err
		}
		col, err := toUint32(y.Column)
		if err != nil {
			return nil, err
		}
		span.Start = fs.Offset(file, source.LineCol{Line: line, Col: col})
		span.End = span.Start
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &dnode{span: span}, nil
		}
		return fromYAML(y.Content[0], fs, file)
	case yaml.AliasNode:
		return fromYAML(y.Alias, fs, file)
	case yaml.ScalarNode:
		tag := y.ShortTag()
		if tag == tagNull {
			return &dnode{kind: nullNode, tag: tag, span: span}, nil
		}
		if n, err := toUint32(len(y.Value)); err == nil && y.Style == 0 {
			span.End = span.Start + n
		}
		return &dnode{kind: scalarNode, tag: tag, value: y.Value, span: span}, nil
	case yaml.SequenceNode:
		out := &dnode{kind: seqNode, span: span, items: make([]*dnode, 0, len(y.Content))}
		for _, c := range y.Content {
			item, err := fromYAML(c, fs, file)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, item)
		}
		return out, nil
	case yaml.MappingNode:
		out := &dnode{kind: mapNode, span: span}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			val, err := fromYAML(v, fs, file)
			if err != nil {
				return nil, err
			}
			out.keys = append(out.keys, k.Value)
			out.vals = append(out.vals, val)
		}
		return out, nil
	}
	return nil, &Error{Code: diag.LoadBadDocument, Span: span, Msg: fmt.Sprintf("unsupported YAML node kind %d", y.Kind)}
}

// fromValue converts a value decoded from MessagePack. Map keys are sorted
// so that conversion is deterministic.
func fromValue(v any, file source.FileID) (*dnode, error) {
	span := source.Span{File: file}
	switch x := v.(type) {
	case nil:
		return &dnode{kind: nullNode, tag: tagNull, span: span}, nil
	case string:
		return &dnode{kind: scalarNode, tag: tagStr, value: x, span: span}, nil
	case bool:
		return &dnode{kind: scalarNode, tag: tagBool, value: strconv.FormatBool(x), span: span}, nil
	case int64:
		return &dnode{kind: scalarNode, tag: tagInt, value: strconv.FormatInt(x, 10), span: span}, nil
	case uint64:
		return &dnode{kind: scalarNode, tag: tagInt, value: strconv.FormatUint(x, 10), span: span}, nil
	case float64:
		return &dnode{kind: scalarNode, tag: tagFloat, value: strconv.FormatFloat(x, 'g', -1, 64), span: span}, nil
	case []any:
		out := &dnode{kind: seqNode, span: span, items: make([]*dnode, 0, len(x))}
		for _, item := range x {
			n, err := fromValue(item, file)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, n)
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &dnode{kind: mapNode, span: span}
		for _, k := range keys {
			n, err := fromValue(x[k], file)
			if err != nil {
				return nil, err
			}
			out.keys = append(out.keys, k)
			out.vals = append(out.vals, n)
		}
		return out, nil
	case map[any]any:
		conv := make(map[string]any, len(x))
		for k, val := range x {
			conv[fmt.Sprint(k)] = val
		}
		return fromValue(conv, file)
	}
	return nil, &Error{Code: diag.LoadBadDocument, Span: span, Msg: fmt.Sprintf("unsupported MessagePack value of type %T", v)}
}

// toValue is the inverse of fromValue, used to re-encode documents.
func (n *dnode) toValue() (any, error) {
	switch n.kind {
	case nullNode:
		return nil, nil
	case scalarNode:
		switch n.tag {
		case tagBool:
			return strconv.ParseBool(n.value)
		case tagInt:
			if i, err := strconv.ParseInt(n.value, 0, 64); err == nil {
				return i, nil
			}
			return strconv.ParseUint(n.value, 0, 64)
		case tagFloat:
			f, err := strconv.ParseFloat(n.value, 64)
			if err != nil || math.IsInf(f, 0) {
				return n.value, nil
			}
			return f, nil
		}
		return n.value, nil
	case seqNode:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			v, err := item.toValue()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			v, err := n.vals[i].toValue()
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
}

func toUint32(v int) (uint32, error) {
	return safecast.Conv[uint32](v)
}
