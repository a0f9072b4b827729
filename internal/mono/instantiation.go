package mono

import (
	"strings"

	"whlsl/internal/ast"
	"whlsl/internal/source"
)

// InstantiationKey is a comparable key for instantiations.
//
// Note: Go maps cannot use slices as keys, so we store a stable ArgsKey string.
// The corresponding type arguments are stored in InstEntry.
type InstantiationKey struct {
	Func    ast.Func
	ArgsKey string
}

// UseSite records a location where an instantiation is requested.
type UseSite struct {
	Span   source.Span
	Caller string
	Note   string
}

// InstEntry captures every request for one (function, type arguments) pair.
type InstEntry struct {
	Key      InstantiationKey
	TypeArgs []ast.Node
	Instance ast.Func
	UseSites []UseSite

	seq int
}

// InstantiationMap tracks all generic instantiations of a program.
type InstantiationMap struct {
	Entries map[InstantiationKey]*InstEntry
	next    int
}

// NewInstantiationMap creates a new empty InstantiationMap.
func NewInstantiationMap() *InstantiationMap {
	return &InstantiationMap{Entries: make(map[InstantiationKey]*InstEntry)}
}

// Record registers an instantiation of fn at a specific site.
func (m *InstantiationMap) Record(fn ast.Func, typeArgs []ast.Node, instance ast.Func, site source.Span, caller, note string) {
	if m == nil || fn == nil || len(typeArgs) == 0 {
		return
	}
	if m.Entries == nil {
		m.Entries = make(map[InstantiationKey]*InstEntry)
	}

	key := InstantiationKey{Func: fn, ArgsKey: typeArgsKey(typeArgs)}
	entry := m.Entries[key]
	if entry == nil {
		entry = &InstEntry{
			Key:      key,
			TypeArgs: typeArgs,
			Instance: instance,
			seq:      m.next,
		}
		m.next++
		m.Entries[key] = entry
	}

	if site != (source.Span{}) {
		us := UseSite{Span: site, Caller: caller, Note: note}
		for _, existing := range entry.UseSites {
			if existing == us {
				return
			}
		}
		entry.UseSites = append(entry.UseSites, us)
	}
}

// Len reports the number of distinct instantiations.
func (m *InstantiationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

func typeArgsKey(args []ast.Node) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(ast.NodeString(arg))
	}
	return b.String()
}
