package mono

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"whlsl/internal/ast"
	"whlsl/internal/source"
)

// DumpOptions configures the instantiation dump.
type DumpOptions struct {
	// If true, prints only the instance headers without use sites.
	HeadersOnly bool
}

// DumpInstantiations writes one line per instantiation in request order,
// followed by its use sites.
func DumpInstantiations(w io.Writer, m *InstantiationMap, fs *source.FileSet, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	entries := make([]*InstEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e != nil {
			entries = append(entries, e)
		}
	}
	slices.SortStableFunc(entries, func(a, b *InstEntry) int {
		return a.seq - b.seq
	})

	if _, err := fmt.Fprintf(w, "instantiations=%d\n", len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Key.Func.Base().Name + "<" + formatTypeArgs(e.TypeArgs) + ">"
		kind := "fn"
		if _, ok := e.Instance.(*ast.NativeFuncInstance); ok {
			kind = "native"
		}
		if _, err := fmt.Fprintf(w, "%s %s uses=%d\n", kind, name, len(e.UseSites)); err != nil {
			return err
		}
		if opts.HeadersOnly {
			continue
		}
		for _, us := range e.UseSites {
			if _, err := fmt.Fprintf(w, "  at %s in %s\n", formatSite(fs, us.Span), us.Caller); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatTypeArgs(args []ast.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = ast.NodeString(a)
	}
	return strings.Join(parts, ", ")
}

func formatSite(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	f := fs.Get(sp.File)
	if f == nil {
		return sp.String()
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}
